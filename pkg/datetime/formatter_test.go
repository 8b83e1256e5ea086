package datetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRSSDate(t *testing.T) {
	f := NewFormatter()

	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"RFC1123Z", "Mon, 02 Jan 2006 15:04:05 -0700", time.Date(2006, 1, 2, 22, 4, 5, 0, time.UTC)},
		{"RFC3339", "2026-01-15T08:30:00Z", time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC)},
		{"date only", "2026-01-15", time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"single digit day", "Mon, 2 Jan 2006 15:04:05 -0700", time.Date(2006, 1, 2, 22, 4, 5, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.ParseRSSDate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseRSSDateUnknown(t *testing.T) {
	f := NewFormatter()

	_, err := f.ParseRSSDate("sometime last week")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = f.ParseRSSDate("")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestIsParseable(t *testing.T) {
	f := NewFormatter()

	assert.True(t, f.IsParseable("Mon, 02 Jan 2006 15:04:05 GMT"))
	assert.False(t, f.IsParseable("not a date"))
	assert.False(t, f.IsParseable(""))
}
