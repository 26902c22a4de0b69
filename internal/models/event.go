package models

import "time"

// TrackRecord is a single MP3 track belonging to an event. The order of the
// tracks inside their event is the playback order.
type TrackRecord struct {
	// Unique track ID within the parent event's track list
	ID string `json:"track_id"`
	// Display name of the track - usually the ID3 title or the file name
	Name string `json:"track_name"`
	// Public URL of the stored MP3 object. The object is owned by the event:
	// dropping the track (or the whole event) deletes it from storage
	URL string `json:"track_url"`
	// Playback length in whole seconds
	DurationSeconds int `json:"track_duration_seconds"`
}

// EventRecord describes one scheduled music event and its track list
type EventRecord struct {
	// Opaque unique identifier, assigned on creation and immutable afterwards
	ID string `json:"event_id"`
	// Name of the event
	Name string `json:"event_name"`
	// Name of the performing artist / DJ
	Artist string `json:"artist_name"`
	// Start of the event window as a canonical UTC RFC 3339 timestamp
	StartTimeUTC string `json:"start_time_utc"`
	// End of the event window as a canonical UTC RFC 3339 timestamp - always
	// strictly after the start time
	EndTimeUTC string `json:"end_time_utc"`
	// Marks the fallback event that plays whenever nothing else is scheduled.
	// At most one record in the collection may carry this flag
	IsDefault bool `json:"is_default"`
	// Public URL of the stored cover image - empty means no cover
	CoverImageURL string `json:"cover_image_url,omitempty"`
	// The tracks played during this event, in playback order
	Tracks []TrackRecord `json:"tracks"`
}

// Expired reports whether the event's window has fully elapsed relative to the
// given reference time. Records with an unreadable end timestamp are treated
// as still active
func (e *EventRecord) Expired(ref time.Time) bool {
	end, err := time.Parse(time.RFC3339, e.EndTimeUTC)
	if err != nil {
		return false
	}
	return !end.After(ref)
}

// AssetURLs returns the URLs of every storage object owned by this event:
// all track files plus the cover image, if one is set
func (e *EventRecord) AssetURLs() []string {
	var urls []string
	for _, tr := range e.Tracks {
		urls = append(urls, tr.URL)
	}
	if e.CoverImageURL != "" {
		urls = append(urls, e.CoverImageURL)
	}
	return urls
}
