package internal

import (
	"time"

	"github.com/rvndudz/scheduled-music-console/internal/models"
)

// findConflictingEvent returns the first record in collection order (other
// than selfID) whose window intersects the half-open candidate window
// [start, end). Default events are expected to span arbitrary ranges, so a
// pair is exempt from the check whenever either side carries the default
// flag. Records with unreadable timestamps never conflict
func findConflictingEvent(
	events []models.EventRecord,
	startUTC, endUTC, selfID string,
	candidate *models.EventRecord,
) *models.EventRecord {
	start, err := time.Parse(time.RFC3339, startUTC)
	if err != nil {
		return nil
	}
	end, err := time.Parse(time.RFC3339, endUTC)
	if err != nil {
		return nil
	}
	for i := range events {
		other := &events[i]
		if other.ID == selfID {
			continue
		}
		if candidate.IsDefault || other.IsDefault {
			continue
		}
		otherStart, err := time.Parse(time.RFC3339, other.StartTimeUTC)
		if err != nil {
			continue
		}
		otherEnd, err := time.Parse(time.RFC3339, other.EndTimeUTC)
		if err != nil {
			continue
		}
		// Half-open interval overlap: a.start < b.end && b.start < a.end
		if start.Before(otherEnd) && otherStart.Before(end) {
			return other
		}
	}
	return nil
}

// removedAssetURLs computes the storage URLs no longer referenced after a
// mutation: tracks present before but absent after (matched by track ID) plus
// the previous cover image when it was cleared or replaced. The result is
// deduplicated, first occurrence wins
func removedAssetURLs(before, after *models.EventRecord) []string {
	var removed []string
	kept := make(map[string]bool, len(after.Tracks))
	for _, tr := range after.Tracks {
		kept[tr.ID] = true
	}
	for _, tr := range before.Tracks {
		if !kept[tr.ID] {
			removed = append(removed, tr.URL)
		}
	}
	if before.CoverImageURL != "" && before.CoverImageURL != after.CoverImageURL {
		removed = append(removed, before.CoverImageURL)
	}
	return dedupStrings(removed)
}

// dedupStrings removes duplicates while keeping the original order
func dedupStrings(in []string) []string {
	if len(in) < 2 {
		return in
	}
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
