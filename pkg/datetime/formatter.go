package datetime

import (
	"errors"
	"time"
)

// Formatter parses the date strings found in the wild across RSS and Atom
// feeds. Publishers are wildly inconsistent, so parsing is attempted against
// a table of known layouts rather than a single format.
type Formatter struct{}

func NewFormatter() *Formatter {
	return &Formatter{}
}

var ErrUnknownFormat = errors.New("unrecognized date format")

var rssDateFormats = []string{
	time.RFC1123Z,    // "Mon, 02 Jan 2006 15:04:05 -0700"
	time.RFC1123,     // "Mon, 02 Jan 2006 15:04:05 MST"
	time.RFC822Z,     // "02 Jan 06 15:04 -0700"
	time.RFC822,      // "02 Jan 06 15:04 MST"
	time.RFC3339,     // "2006-01-02T15:04:05Z07:00"
	time.RFC3339Nano, // "2006-01-02T15:04:05.999999999Z07:00"
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05-07:00",
	"2006-01-02T15:04:05.000-07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 -07:00",
	"2006-01-02 15:04:05",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 -07:00",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04:05 GMT",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 -07:00",
	"2 Jan 2006 15:04:05",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05.00Z",
	"2006-01-02T15:04:05.0Z",
	"2006-01-02T15:04:05Z",
	"Mon, 02 Jan 2006 15:04:05 GMT",
	"Mon, 02 Jan 2006 15:04:05 UTC",
	"02 Jan 2006 15:04:05 GMT",
	"02 Jan 2006 15:04:05 UTC",
	"January 2, 2006 15:04:05",
	"January 2, 2006, 15:04:05",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006, 15:04:05",
	"2006/01/02 15:04:05",
	"02/01/2006 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
}

// ParseRSSDate parses a feed-supplied date string against the known layouts.
// The returned time is normalized to UTC. An empty or unrecognized string
// yields ErrUnknownFormat; choosing a fallback is the caller's call.
func (f *Formatter) ParseRSSDate(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, ErrUnknownFormat
	}

	for _, format := range rssDateFormats {
		if parsedTime, err := time.Parse(format, dateStr); err == nil {
			return parsedTime.UTC(), nil
		}
	}

	return time.Time{}, ErrUnknownFormat
}

// IsParseable reports whether the string matches any known feed date layout.
func (f *Formatter) IsParseable(dateStr string) bool {
	_, err := f.ParseRSSDate(dateStr)
	return err == nil
}

func (f *Formatter) NormalizeToUTC(t time.Time) time.Time {
	return t.UTC()
}
