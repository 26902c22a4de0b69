package internal

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	"github.com/rvndudz/scheduled-music-console/internal/log"
	"github.com/rvndudz/scheduled-music-console/internal/models"
	"github.com/rvndudz/scheduled-music-console/internal/repos"
	"github.com/rvndudz/scheduled-music-console/internal/storage"
	"github.com/rvndudz/scheduled-music-console/internal/timefmt"
)

// DeleteResult reports the outcome of a single-event deletion
type DeleteResult struct {
	// ID of the removed event
	Deleted string `json:"deleted"`
	// Number of events left in the collection
	Remaining int `json:"remaining"`
}

// SweepResult reports the outcome of an expiration sweep
type SweepResult struct {
	// Number of expired events that were removed
	Deleted int `json:"deleted"`
	// Number of events left in the collection
	Remaining int `json:"remaining"`
}

// EventService provides service functions for working with events
type EventService interface {
	List(ctx context.Context, search *Search) ([]models.EventRecord, uint, error)
	Get(ctx context.Context, id string) (*models.EventRecord, error)
	// Create builds a new event record from the given payload - all required
	// fields have to be present
	Create(ctx context.Context, payload map[string]interface{}) (*models.EventRecord, error)
	// Update patches the event with the given ID - only fields present in the
	// payload are touched
	Update(ctx context.Context, id string, payload map[string]interface{}) (*models.EventRecord, error)
	// Delete removes an event together with all storage objects it owns
	Delete(ctx context.Context, id string) (*DeleteResult, error)
	// DeleteExpired removes every event whose window has fully elapsed
	// relative to the reference time
	DeleteExpired(ctx context.Context, ref time.Time) (*SweepResult, error)
}

// -- EventService implementation --------------------------------------------------------------------------------------

type eventService struct {
	repo   repos.EventRepo
	assets storage.ObjectStore
	norm   *timefmt.Normalizer
	logger *logrus.Entry
	// Serializes mutations within this process. The backing file itself stays
	// unguarded across processes - single-operator deployment
	mu sync.Mutex
}

// NewEventService creates a new event service instance
func NewEventService(repo repos.EventRepo, assets storage.ObjectStore, norm *timefmt.Normalizer, logger *logrus.Entry) EventService {
	return &eventService{
		repo:   repo,
		assets: assets,
		norm:   norm,
		logger: logger,
	}
}

// readAll loads the full collection, mapping store faults to an opaque failure
func (s *eventService) readAll() ([]models.EventRecord, error) {
	events, err := s.repo.ReadAll()
	if err != nil {
		s.logger.WithError(err).Error("Failed to read the event collection")
		return nil, MakeErrorWithData(http.StatusInternalServerError, ErrCodeStoreError,
			"Failed to load the event collection", err,
		)
	}
	return events, nil
}

// replaceAll persists the full collection, mapping store faults to an opaque failure
func (s *eventService) replaceAll(events []models.EventRecord) error {
	if err := s.repo.ReplaceAll(events); err != nil {
		s.logger.WithError(err).Error("Failed to write the event collection")
		return MakeErrorWithData(http.StatusInternalServerError, ErrCodeStoreError,
			"Failed to persist the event collection", err,
		)
	}
	return nil
}

// findEvent returns the index of the event with the given ID, or -1
func findEvent(events []models.EventRecord, id string) int {
	for i := range events {
		if events[i].ID == id {
			return i
		}
	}
	return -1
}

// List returns the events matching the given search term in collection order
func (s *eventService) List(ctx context.Context, search *Search) ([]models.EventRecord, uint, error) {
	events, err := s.readAll()
	if err != nil {
		return nil, 0, err
	}
	term := strings.ToLower(strings.TrimSpace(search.Search))
	matches := make([]models.EventRecord, 0, len(events))
	for _, ev := range events {
		if term == "" ||
			strings.Contains(strings.ToLower(ev.Name), term) ||
			strings.Contains(strings.ToLower(ev.Artist), term) {
			matches = append(matches, ev)
		}
	}
	numRows := uint(len(matches))
	if search.Offset >= numRows {
		return []models.EventRecord{}, numRows, nil
	}
	matches = matches[search.Offset:]
	if search.Limit > 0 && uint(len(matches)) > search.Limit {
		matches = matches[:search.Limit]
	}
	return matches, numRows, nil
}

// Get returns the event with the given ID
func (s *eventService) Get(ctx context.Context, id string) (*models.EventRecord, error) {
	events, err := s.readAll()
	if err != nil {
		return nil, err
	}
	idx := findEvent(events, id)
	if idx == -1 {
		return nil, MakeError(http.StatusNotFound, ErrCodeEventNotFound,
			fmt.Sprintf("Event '%s' does not exist", id),
		)
	}
	ev := events[idx]
	return &ev, nil
}

// checkWindow enforces the cross-field rule that an event ends after it starts
func checkWindow(ev *models.EventRecord) error {
	if ev.StartTimeUTC == "" {
		return MakeValidationError("start_time_utc is required")
	}
	if ev.EndTimeUTC == "" {
		return MakeValidationError("end_time_utc is required")
	}
	start, err := time.Parse(time.RFC3339, ev.StartTimeUTC)
	if err != nil {
		return MakeValidationError("start_time_utc is not a valid date/time value")
	}
	end, err := time.Parse(time.RFC3339, ev.EndTimeUTC)
	if err != nil {
		return MakeValidationError("end_time_utc is not a valid date/time value")
	}
	if !end.After(start) {
		return MakeValidationError("end_time_utc must be after start_time_utc")
	}
	return nil
}

// checkDefaultUnique enforces that at most one record carries the default flag
func checkDefaultUnique(events []models.EventRecord, candidate *models.EventRecord) error {
	if !candidate.IsDefault {
		return nil
	}
	for i := range events {
		if events[i].IsDefault && events[i].ID != candidate.ID {
			return MakeValidationError("A default event already exists")
		}
	}
	return nil
}

// checkOverlap rejects the candidate when its window conflicts with another event
func (s *eventService) checkOverlap(events []models.EventRecord, candidate *models.EventRecord) error {
	conflict := findConflictingEvent(events, candidate.StartTimeUTC, candidate.EndTimeUTC, candidate.ID, candidate)
	if conflict != nil {
		return MakeValidationError(fmt.Sprintf(
			`Time window overlaps with "%s" (%s - %s)`,
			conflict.Name,
			s.norm.FormatDisplay(conflict.StartTimeUTC),
			s.norm.FormatDisplay(conflict.EndTimeUTC),
		))
	}
	return nil
}

// deleteAssets removes the given storage objects before anything is persisted.
// A failure aborts the whole mutation so a retry of the same request is safe
func (s *eventService) deleteAssets(ctx context.Context, eventID string, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	if err := s.assets.DeleteObjectsForURLs(ctx, urls); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			log.FldEvent: eventID,
			log.FldCount: len(urls),
		}).Error("Failed to delete event assets from storage")
		return MakeErrorWithData(http.StatusBadGateway, ErrCodeStorageDeleteFailed,
			"Unable to delete removed assets from storage", err,
		)
	}
	return nil
}

// Create creates a new event from the given payload
func (s *eventService) Create(ctx context.Context, payload map[string]interface{}) (*models.EventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events, err := s.readAll()
	if err != nil {
		return nil, err
	}
	ev := models.EventRecord{}
	if err := applyEventPatch(s.norm, payload, &ev); err != nil {
		return nil, err
	}
	if ev.Name == "" {
		return nil, MakeValidationError("event_name is required")
	}
	if ev.Artist == "" {
		return nil, MakeValidationError("artist_name is required")
	}
	// A fallback event has no fixed playlist - everything else needs tracks
	if !ev.IsDefault && len(ev.Tracks) == 0 {
		return nil, MakeValidationError("At least one track is required")
	}
	if err := checkWindow(&ev); err != nil {
		return nil, err
	}
	if err := checkDefaultUnique(events, &ev); err != nil {
		return nil, err
	}
	if err := s.checkOverlap(events, &ev); err != nil {
		return nil, err
	}
	ev.ID = uuid.NewString()
	if ev.Tracks == nil {
		ev.Tracks = []models.TrackRecord{}
	}
	if err := s.replaceAll(append(events, ev)); err != nil {
		return nil, err
	}
	s.logger.WithField(log.FldEvent, ev.ID).Info("Event created")
	return &ev, nil
}

// Update patches an existing event. Fields absent from the payload keep their
// current value; storage objects that fall out of the record are deleted
// before the new collection state is persisted
func (s *eventService) Update(ctx context.Context, id string, payload map[string]interface{}) (*models.EventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events, err := s.readAll()
	if err != nil {
		return nil, err
	}
	idx := findEvent(events, id)
	if idx == -1 {
		return nil, MakeError(http.StatusNotFound, ErrCodeEventNotFound,
			fmt.Sprintf("Event '%s' does not exist", id),
		)
	}
	if len(payload) == 0 {
		return nil, MakeValidationError("No fields provided to update")
	}
	current := events[idx]
	updated := current
	if err := applyEventPatch(s.norm, payload, &updated); err != nil {
		return nil, err
	}
	if err := checkDefaultUnique(events, &updated); err != nil {
		return nil, err
	}
	if err := checkWindow(&updated); err != nil {
		return nil, err
	}
	if err := s.checkOverlap(events, &updated); err != nil {
		return nil, err
	}
	if err := s.deleteAssets(ctx, id, removedAssetURLs(&current, &updated)); err != nil {
		return nil, err
	}
	events[idx] = updated
	if err := s.replaceAll(events); err != nil {
		return nil, err
	}
	s.logger.WithField(log.FldEvent, id).Info("Event updated")
	return &updated, nil
}

// Delete removes an existing event. All storage objects the event owns are
// deleted first - the record only leaves the collection once that succeeded
func (s *eventService) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events, err := s.readAll()
	if err != nil {
		return nil, err
	}
	idx := findEvent(events, id)
	if idx == -1 {
		return nil, MakeError(http.StatusNotFound, ErrCodeEventNotFound,
			fmt.Sprintf("Event '%s' does not exist", id),
		)
	}
	ev := events[idx]
	if err := s.deleteAssets(ctx, id, dedupStrings(ev.AssetURLs())); err != nil {
		return nil, err
	}
	remaining := append(events[:idx:idx], events[idx+1:]...)
	if err := s.replaceAll(remaining); err != nil {
		return nil, err
	}
	s.logger.WithField(log.FldEvent, id).Info("Event deleted")
	return &DeleteResult{Deleted: ev.ID, Remaining: len(remaining)}, nil
}

// DeleteExpired removes every event whose window has fully elapsed. When
// nothing has expired, the collection file is not touched at all. Storage
// objects of swept events are deliberately left alone - see the delete flow
// for the hard removal that cleans them up
func (s *eventService) DeleteExpired(ctx context.Context, ref time.Time) (*SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	events, err := s.readAll()
	if err != nil {
		return nil, err
	}
	active := make([]models.EventRecord, 0, len(events))
	for _, ev := range events {
		if !ev.Expired(ref) {
			active = append(active, ev)
		}
	}
	deleted := len(events) - len(active)
	if deleted == 0 {
		return &SweepResult{Deleted: 0, Remaining: len(events)}, nil
	}
	if err := s.replaceAll(active); err != nil {
		return nil, err
	}
	s.logger.WithField(log.FldCount, deleted).Info("Expired events removed")
	return &SweepResult{Deleted: deleted, Remaining: len(active)}, nil
}
