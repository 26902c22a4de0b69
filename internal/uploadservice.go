package internal

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"

	"github.com/rvndudz/scheduled-music-console/internal/log"
	"github.com/rvndudz/scheduled-music-console/internal/models"
	"github.com/rvndudz/scheduled-music-console/internal/mp3meta"
	"github.com/rvndudz/scheduled-music-console/internal/storage"
)

// CoverUpload is the response to a cover image upload
type CoverUpload struct {
	CoverImageURL string `json:"cover_image_url"`
}

// UploadService stores uploaded media files in the object storage
type UploadService interface {
	// UploadTrack extracts the metadata of an uploaded MP3 file, stores the
	// file and returns the track record to attach to an event
	UploadTrack(ctx context.Context, filename string, data []byte) (*models.TrackRecord, error)
	// UploadCover stores an uploaded cover image and returns its public URL
	UploadCover(ctx context.Context, filename, contentType string, data []byte) (*CoverUpload, error)
}

// -- UploadService implementation -------------------------------------------------------------------------------------

type uploadService struct {
	assets storage.ObjectStore
	logger *logrus.Entry
}

// NewUploadService creates a new upload service instance
func NewUploadService(assets storage.ObjectStore, logger *logrus.Entry) UploadService {
	return &uploadService{
		assets: assets,
		logger: logger,
	}
}

// UploadTrack extracts the metadata of an uploaded MP3 file, stores the file
// and returns the track record to attach to an event
func (s *uploadService) UploadTrack(ctx context.Context, filename string, data []byte) (*models.TrackRecord, error) {
	if len(data) == 0 {
		return nil, MakeError(http.StatusBadRequest, ErrCodeIllegalUpload, "No file provided")
	}
	if ext := strings.ToLower(filepath.Ext(filename)); ext != ".mp3" {
		return nil, MakeError(http.StatusBadRequest, ErrCodeIllegalUpload, "Only MP3 files are supported")
	}
	meta, err := mp3meta.Extract(bytes.NewReader(data), filename)
	if err != nil {
		s.logger.WithError(err).WithField(log.FldFile, filename).Info("Rejecting upload without decodable audio")
		return nil, MakeError(http.StatusBadRequest, ErrCodeIllegalUpload,
			fmt.Sprintf("'%s' does not contain playable MP3 audio", filename),
		)
	}
	seconds := int(math.Round(meta.Duration.Seconds()))
	if seconds <= 0 {
		return nil, MakeError(http.StatusBadRequest, ErrCodeIllegalUpload,
			fmt.Sprintf("'%s' does not contain playable MP3 audio", filename),
		)
	}
	trackID := uuid.NewString()
	key := "tracks/" + trackID + ".mp3"
	url, err := s.assets.UploadObject(ctx, key, "audio/mpeg", bytes.NewReader(data))
	if err != nil {
		s.logger.WithError(err).WithField(log.FldFile, filename).Error("Track upload to storage failed")
		return nil, MakeErrorWithData(http.StatusBadGateway, ErrCodeStorageUploadFailed,
			"Unable to store the uploaded track", err,
		)
	}
	s.logger.WithFields(logrus.Fields{
		log.FldTrack: trackID,
		log.FldURL:   url,
	}).Info("Track uploaded")
	return &models.TrackRecord{
		ID:              trackID,
		Name:            meta.Title,
		URL:             url,
		DurationSeconds: seconds,
	}, nil
}

// Extensions accepted for cover images, by MIME type
var coverExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadCover stores an uploaded cover image and returns its public URL
func (s *uploadService) UploadCover(ctx context.Context, filename, contentType string, data []byte) (*CoverUpload, error) {
	if len(data) == 0 {
		return nil, MakeError(http.StatusBadRequest, ErrCodeIllegalUpload, "No file provided")
	}
	ext, ok := coverExtensions[contentType]
	if !ok {
		return nil, MakeError(http.StatusBadRequest, ErrCodeIllegalUpload,
			"Cover images have to be JPEG, PNG or WebP",
		)
	}
	key := "covers/" + uuid.NewString() + ext
	url, err := s.assets.UploadObject(ctx, key, contentType, bytes.NewReader(data))
	if err != nil {
		s.logger.WithError(err).WithField(log.FldFile, filename).Error("Cover upload to storage failed")
		return nil, MakeErrorWithData(http.StatusBadGateway, ErrCodeStorageUploadFailed,
			"Unable to store the uploaded cover image", err,
		)
	}
	s.logger.WithField(log.FldURL, url).Info("Cover image uploaded")
	return &CoverUpload{CoverImageURL: url}, nil
}
