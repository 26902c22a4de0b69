// Package jsonfile provides an event repository that keeps the whole event
// collection inside a single pretty-printed JSON document
package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rvndudz/scheduled-music-console/internal/log"
	"github.com/rvndudz/scheduled-music-console/internal/models"
)

const (
	// Name of the collection file inside the data directory
	eventsFile = "events.json"
)

// EventRepo is a repository that stores the full event collection in a single
// JSON file. Every mutation rewrites the whole file - there is no locking and
// no partial-write recovery
type EventRepo struct {
	path   string
	logger *logrus.Entry
}

// New creates a new event repository storing its data below the given data directory
func New(dataDir string, logger *logrus.Entry) *EventRepo {
	return &EventRepo{
		path:   filepath.Join(dataDir, eventsFile),
		logger: logger,
	}
}

// Path returns the location of the backing file
func (r *EventRepo) Path() string {
	return r.path
}

// ReadAll returns the full ordered event collection. A missing backing file
// reads as an empty collection and the containing directory is created so the
// following write succeeds
func (r *EventRepo) ReadAll() ([]models.EventRecord, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.WithField(log.FldFile, r.path).Debug("No collection file yet - starting empty")
			if err := os.MkdirAll(filepath.Dir(r.path), os.ModePerm); err != nil {
				return nil, errors.Wrap(err, "ReadAll: Failed to create data directory")
			}
			return []models.EventRecord{}, nil
		}
		return nil, errors.Wrapf(err, "ReadAll: Cannot read collection file '%s'", r.path)
	}
	var events []models.EventRecord
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, errors.Wrapf(err, "ReadAll: Collection file '%s' contains invalid JSON", r.path)
	}
	if events == nil {
		events = []models.EventRecord{}
	}
	return events, nil
}

// ReplaceAll overwrites the persisted collection with the given ordered
// sequence, serialized as pretty-printed JSON with a trailing newline
func (r *EventRepo) ReplaceAll(events []models.EventRecord) error {
	r.logger.WithFields(logrus.Fields{
		log.FldFile:  r.path,
		log.FldCount: len(events),
	}).Debug("Writing event collection")
	if events == nil {
		events = []models.EventRecord{}
	}
	if err := os.MkdirAll(filepath.Dir(r.path), os.ModePerm); err != nil {
		return errors.Wrap(err, "ReplaceAll: Failed to create data directory")
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return errors.Wrap(err, "ReplaceAll: Failed to serialize event collection")
	}
	data = append(data, '\n')
	if err := os.WriteFile(r.path, data, 0644); err != nil {
		return errors.Wrapf(err, "ReplaceAll: Cannot write collection file '%s'", r.path)
	}
	return nil
}
