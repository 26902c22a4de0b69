// Package mp3meta extracts the metadata the console needs from an uploaded
// MP3 file: a display title, the artist and the playback duration
package mp3meta

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/pkg/errors"
	"github.com/tcolgate/mp3"
)

// Meta is the metadata extracted from one MP3 file
type Meta struct {
	// Title from the ID3 tag, or the file name stem when the tag carries none
	Title string
	// Artist from the ID3 tag - may be empty
	Artist string
	// Playback length summed over all MPEG frames
	Duration time.Duration
}

// Extract reads the ID3 tag and walks the MPEG frames of the given file.
// A missing or unreadable tag is not an error - the title falls back to the
// file name. A file without a single decodable frame is rejected
func Extract(r io.ReadSeeker, filename string) (*Meta, error) {
	meta := &Meta{
		Title: titleFromFilename(filename),
	}
	if m, err := tag.ReadFrom(r); err == nil {
		if t := strings.TrimSpace(m.Title()); t != "" {
			meta.Title = t
		}
		meta.Artist = strings.TrimSpace(m.Artist())
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "Extract: Failed to rewind file")
	}
	dur, err := scanDuration(r)
	if err != nil {
		return nil, err
	}
	meta.Duration = dur
	return meta, nil
}

// titleFromFilename derives a display title from the uploaded file's name
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// scanDuration sums the duration of all decodable MPEG frames. Decoding stops
// at the first broken frame; everything read up to that point still counts
func scanDuration(r io.Reader) (time.Duration, error) {
	dec := mp3.NewDecoder(r)
	var (
		frame   mp3.Frame
		skipped int
		total   time.Duration
		frames  int
	)
	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			if err == io.EOF || frames > 0 {
				break
			}
			return 0, errors.Wrap(err, "scanDuration: File contains no decodable MPEG frames")
		}
		total += frame.Duration()
		frames++
	}
	if frames == 0 {
		return 0, errors.New("scanDuration: File contains no decodable MPEG frames")
	}
	return total, nil
}
