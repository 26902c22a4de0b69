package internal

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"
)

// synthTrack builds a playable MP3 stream out of silent MPEG1 Layer III
// frames (128 kbit/s, 44.1 kHz). One frame is ~26ms
func synthTrack(frames int) []byte {
	const frameSize = 417
	var buf bytes.Buffer
	for i := 0; i < frames; i++ {
		buf.Write([]byte{0xFF, 0xFB, 0x90, 0x00})
		buf.Write(make([]byte, frameSize-4))
	}
	return buf.Bytes()
}

func newTestUploadService() (UploadService, *fakeObjectStore) {
	assets := &fakeObjectStore{}
	return NewUploadService(assets, testLogger()), assets
}

func TestUploadTrack(t *testing.T) {
	srv, assets := newTestUploadService()

	track, err := srv.UploadTrack(context.Background(), "warmup-set.mp3", synthTrack(115))
	require.NoError(t, err)

	assert.NotEmpty(t, track.ID)
	// No ID3 tag in the synthetic file - the name falls back to the file name
	assert.Equal(t, "warmup-set", track.Name)
	assert.Equal(t, 3, track.DurationSeconds)

	require.Len(t, assets.uploadedKey, 1)
	key := assets.uploadedKey[0]
	assert.True(t, strings.HasPrefix(key, "tracks/"), "unexpected object key %q", key)
	assert.True(t, strings.HasSuffix(key, ".mp3"), "unexpected object key %q", key)
	assert.Equal(t, "https://assets.example.com/"+key, track.URL)
}

func TestUploadTrackRejectsEmptyFile(t *testing.T) {
	srv, assets := newTestUploadService()

	_, err := srv.UploadTrack(context.Background(), "empty.mp3", nil)
	httpErr := requireHTTPError(t, err, 400, ErrCodeIllegalUpload)
	assert.Equal(t, "No file provided", httpErr.Error())
	assert.Empty(t, assets.uploadedKey)
}

func TestUploadTrackRejectsWrongExtension(t *testing.T) {
	srv, assets := newTestUploadService()

	_, err := srv.UploadTrack(context.Background(), "song.wav", synthTrack(10))
	httpErr := requireHTTPError(t, err, 400, ErrCodeIllegalUpload)
	assert.Equal(t, "Only MP3 files are supported", httpErr.Error())
	assert.Empty(t, assets.uploadedKey)
}

func TestUploadTrackRejectsNonAudioContent(t *testing.T) {
	srv, assets := newTestUploadService()

	_, err := srv.UploadTrack(context.Background(), "fake.mp3", []byte("just some text"))
	httpErr := requireHTTPError(t, err, 400, ErrCodeIllegalUpload)
	assert.Contains(t, httpErr.Error(), "does not contain playable MP3 audio")
	assert.Empty(t, assets.uploadedKey)
}

func TestUploadTrackStorageFailure(t *testing.T) {
	assets := &fakeObjectStore{uploadErr: fmt.Errorf("bucket unreachable")}
	srv := NewUploadService(assets, testLogger())

	_, err := srv.UploadTrack(context.Background(), "warmup-set.mp3", synthTrack(115))
	requireHTTPError(t, err, 502, ErrCodeStorageUploadFailed)
}

func TestUploadCover(t *testing.T) {
	tests := []struct {
		contentType string
		ext         string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"image/webp", ".webp"},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			srv, assets := newTestUploadService()

			cover, err := srv.UploadCover(context.Background(), "cover.bin", tt.contentType, []byte{1, 2, 3})
			require.NoError(t, err)

			require.Len(t, assets.uploadedKey, 1)
			key := assets.uploadedKey[0]
			assert.True(t, strings.HasPrefix(key, "covers/"), "unexpected object key %q", key)
			assert.True(t, strings.HasSuffix(key, tt.ext), "unexpected object key %q", key)
			assert.Equal(t, "https://assets.example.com/"+key, cover.CoverImageURL)
		})
	}
}

func TestUploadCoverRejectsUnknownType(t *testing.T) {
	srv, assets := newTestUploadService()

	_, err := srv.UploadCover(context.Background(), "cover.gif", "image/gif", []byte{1, 2, 3})
	httpErr := requireHTTPError(t, err, 400, ErrCodeIllegalUpload)
	assert.Equal(t, "Cover images have to be JPEG, PNG or WebP", httpErr.Error())
	assert.Empty(t, assets.uploadedKey)
}

func TestUploadCoverRejectsEmptyFile(t *testing.T) {
	srv, _ := newTestUploadService()

	_, err := srv.UploadCover(context.Background(), "cover.jpg", "image/jpeg", nil)
	requireHTTPError(t, err, 400, ErrCodeIllegalUpload)
}
