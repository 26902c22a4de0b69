package timefmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizer(t *testing.T) {
	norm, err := NewNormalizer("Asia/Colombo")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Colombo", norm.Location().String())

	_, err = NewNormalizer("Moon/Tranquility")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	norm, err := NewNormalizer("Asia/Colombo") // UTC+5:30
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already canonical", "2026-09-04T18:00:00Z", "2026-09-04T18:00:00Z"},
		{"zoned offset", "2026-09-04T18:00:00+02:00", "2026-09-04T16:00:00Z"},
		{"zoned with fraction", "2026-09-04T18:00:00.500+0000", "2026-09-04T18:00:00Z"},
		{"zoned without seconds", "2026-09-04T18:00Z", "2026-09-04T18:00:00Z"},
		{"datetime-local", "2026-09-04T18:00", "2026-09-04T12:30:00Z"},
		{"wall clock with seconds", "2026-09-04T18:00:30", "2026-09-04T12:30:30Z"},
		{"space separated", "2026-09-04 18:00:30", "2026-09-04T12:30:30Z"},
		{"surrounding whitespace", "  2026-09-04T18:00:00Z  ", "2026-09-04T18:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := norm.Normalize(tt.in, "start_time_utc")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeErrorNamesField(t *testing.T) {
	norm, err := NewNormalizer("UTC")
	require.NoError(t, err)

	for _, in := range []string{"", "   ", "yesterday", "04.09.2026 18:00", "2026-13-40T99:99"} {
		_, err := norm.Normalize(in, "end_time_utc")
		require.Error(t, err, "input %q", in)
		assert.EqualError(t, err, "end_time_utc is not a valid date/time value")
	}
}

func TestFormatDisplay(t *testing.T) {
	norm, err := NewNormalizer("Asia/Colombo")
	require.NoError(t, err)

	assert.Equal(t, "2026-09-04 23:30", norm.FormatDisplay("2026-09-04T18:00:00Z"))
	// Unreadable timestamps pass through unchanged
	assert.Equal(t, "garbage", norm.FormatDisplay("garbage"))
}
