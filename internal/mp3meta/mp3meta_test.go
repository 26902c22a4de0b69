package mp3meta

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// synthMP3 builds a valid headerless-tag MP3 stream: MPEG1 Layer III frames at
// 128 kbit/s, 44.1 kHz, with silent frame bodies. One frame is ~26ms
func synthMP3(frames int) []byte {
	const frameSize = 417 // floor(144 * 128000 / 44100)
	var buf bytes.Buffer
	for i := 0; i < frames; i++ {
		buf.Write([]byte{0xFF, 0xFB, 0x90, 0x00})
		buf.Write(make([]byte, frameSize-4))
	}
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	// ~115 frames make roughly three seconds of audio
	data := synthMP3(115)

	meta, err := Extract(bytes.NewReader(data), "beach-party-opener.mp3")
	require.NoError(t, err)

	// No ID3 tag present - the title falls back to the file name stem
	assert.Equal(t, "beach-party-opener", meta.Title)
	assert.Empty(t, meta.Artist)
	assert.InDelta(t, 3.0, meta.Duration.Seconds(), 0.1)
}

func TestExtractRejectsNonAudio(t *testing.T) {
	_, err := Extract(bytes.NewReader([]byte("this is not an mp3 file at all")), "document.mp3")
	assert.Error(t, err)
}

func TestExtractRejectsEmptyInput(t *testing.T) {
	_, err := Extract(bytes.NewReader(nil), "empty.mp3")
	assert.Error(t, err)
}

func TestExtractSingleFrame(t *testing.T) {
	meta, err := Extract(bytes.NewReader(synthMP3(1)), "blip.mp3")
	require.NoError(t, err)
	assert.Greater(t, meta.Duration, time.Duration(0))
}

func TestTitleFromFilename(t *testing.T) {
	assert.Equal(t, "track", titleFromFilename("track.mp3"))
	assert.Equal(t, "track", titleFromFilename("/uploads/track.mp3"))
	assert.Equal(t, "a.b", titleFromFilename("a.b.mp3"))
	assert.Equal(t, "noext", titleFromFilename("noext"))
}
