// Package timefmt normalizes operator-supplied date input into the canonical
// UTC timestamps stored on event records and renders them back in the
// configured display timezone.
package timefmt

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Canonical is the layout every stored timestamp uses: UTC, second precision
const Canonical = "2006-01-02T15:04:05Z"

// Layouts tried for input that carries its own zone information
var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z07:00",
}

// Layouts tried for wall-clock input without any zone - the HTML
// datetime-local control produces the first of these
var wallClockLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// Normalizer converts arbitrary date input into canonical UTC timestamps.
// Zone-less wall-clock strings are interpreted in the display location.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer creates a Normalizer that reads wall-clock input in the given
// IANA timezone
func NewNormalizer(displayTimezone string) (*Normalizer, error) {
	loc, err := time.LoadLocation(displayTimezone)
	if err != nil {
		return nil, errors.Wrapf(err, "NewNormalizer: unknown timezone '%s'", displayTimezone)
	}
	return &Normalizer{loc: loc}, nil
}

// Location returns the display location the normalizer was created with
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// Normalize converts the given raw date string into the canonical UTC form.
// The returned error names the offending field so it can be surfaced to the
// operator as-is
func (n *Normalizer) Normalize(raw, field string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.Errorf("%s is not a valid date/time value", field)
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(Canonical), nil
		}
	}
	for _, layout := range wallClockLayouts {
		if t, err := time.ParseInLocation(layout, raw, n.loc); err == nil {
			return t.UTC().Format(Canonical), nil
		}
	}
	return "", errors.Errorf("%s is not a valid date/time value", field)
}

// FormatDisplay renders a canonical timestamp in the display timezone for
// human-readable messages. Unparseable input is returned unchanged
func (n *Normalizer) FormatDisplay(canonical string) string {
	t, err := time.Parse(time.RFC3339, canonical)
	if err != nil {
		return canonical
	}
	return t.In(n.loc).Format("2006-01-02 15:04")
}
