package feed

import "fmt"

// FetchError reports that every avenue for retrieving a feed was exhausted.
// Err holds the last underlying cause; earlier proxy failures are logged at
// the fetch site but not carried here.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("feed fetch failed for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports that a retrieved payload was not recognizable RSS/Atom.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unable to parse feed %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
