package internal

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rvndudz/scheduled-music-console/internal/models"
	"github.com/rvndudz/scheduled-music-console/internal/timefmt"
)

// applyEventPatch validates the untyped payload and copies every field that is
// present onto the target record. Fields absent from the payload are left
// untouched - this is a partial update, not a full replacement. The function
// is a pure transform: on a validation failure the returned error names the
// offending field and the target must be considered undefined.
func applyEventPatch(norm *timefmt.Normalizer, payload map[string]interface{}, target *models.EventRecord) error {
	if v, ok := payload["event_name"]; ok {
		name, ok := v.(string)
		if !ok || strings.TrimSpace(name) == "" {
			return MakeValidationError("event_name is required")
		}
		target.Name = strings.TrimSpace(name)
	}
	if v, ok := payload["artist_name"]; ok {
		name, ok := v.(string)
		if !ok || strings.TrimSpace(name) == "" {
			return MakeValidationError("artist_name is required")
		}
		target.Artist = strings.TrimSpace(name)
	}
	if v, ok := payload["start_time_utc"]; ok {
		ts, err := normalizeTimeField(norm, v, "start_time_utc")
		if err != nil {
			return err
		}
		target.StartTimeUTC = ts
	}
	if v, ok := payload["end_time_utc"]; ok {
		ts, err := normalizeTimeField(norm, v, "end_time_utc")
		if err != nil {
			return err
		}
		target.EndTimeUTC = ts
	}
	if v, ok := payload["is_default"]; ok {
		flag, ok := v.(bool)
		if !ok {
			return MakeValidationError("is_default must be a boolean if provided")
		}
		target.IsDefault = flag
	}
	if v, ok := payload["tracks"]; ok {
		tracks, err := parseTrackList(v)
		if err != nil {
			return err
		}
		target.Tracks = tracks
	}
	if v, ok := payload["cover_image_url"]; ok {
		switch cover := v.(type) {
		case nil:
			target.CoverImageURL = ""
		case string:
			if cover == "" {
				target.CoverImageURL = ""
			} else if strings.TrimSpace(cover) != "" {
				target.CoverImageURL = strings.TrimSpace(cover)
			} else {
				return MakeValidationError("cover_image_url must be a string if provided")
			}
		default:
			return MakeValidationError("cover_image_url must be a string if provided")
		}
	}
	return nil
}

// normalizeTimeField runs a raw payload value through the timestamp normalizer
func normalizeTimeField(norm *timefmt.Normalizer, v interface{}, field string) (string, error) {
	raw, ok := v.(string)
	if !ok {
		return "", MakeValidationError(fmt.Sprintf("%s is not a valid date/time value", field))
	}
	ts, err := norm.Normalize(raw, field)
	if err != nil {
		return "", MakeValidationError(err.Error())
	}
	return ts, nil
}

// parseTrackList validates the raw track payload. Violations name the
// offending track by its position in the list, counted from 1
func parseTrackList(raw interface{}) ([]models.TrackRecord, error) {
	list, ok := raw.([]interface{})
	if !ok || len(list) == 0 {
		return nil, MakeValidationError("At least one track is required")
	}
	tracks := make([]models.TrackRecord, 0, len(list))
	for i, item := range list {
		pos := i + 1
		fields, ok := item.(map[string]interface{})
		if !ok {
			return nil, MakeValidationError(fmt.Sprintf("Track #%d is invalid", pos))
		}
		id, ok := fields["track_id"].(string)
		if !ok || strings.TrimSpace(id) == "" {
			return nil, MakeValidationError(fmt.Sprintf("Track #%d is missing track_id", pos))
		}
		name, ok := fields["track_name"].(string)
		if !ok || strings.TrimSpace(name) == "" {
			return nil, MakeValidationError(fmt.Sprintf("Track #%d is missing track_name", pos))
		}
		url, ok := fields["track_url"].(string)
		if !ok || strings.TrimSpace(url) == "" {
			return nil, MakeValidationError(fmt.Sprintf("Track #%d is missing track_url", pos))
		}
		duration, ok := asNumber(fields["track_duration_seconds"])
		if !ok || math.IsNaN(duration) || math.IsInf(duration, 0) || duration <= 0 {
			return nil, MakeValidationError(fmt.Sprintf("Track #%d has an invalid track_duration_seconds", pos))
		}
		tracks = append(tracks, models.TrackRecord{
			ID:              id,
			Name:            name,
			URL:             url,
			DurationSeconds: int(math.Round(duration)),
		})
	}
	return tracks, nil
}

// asNumber coerces the JSON value types a duration may arrive as
func asNumber(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
