package scrape

import (
	"fmt"
	"strings"
)

// FetchError covers network and HTTP failures while pulling a source page.
type FetchError struct {
	URL    string
	Status int
	Reason string
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Reason)
}

// ParseError means a source page had an unexpected shape. Individual
// malformed records are skipped and counted instead.
type ParseError struct {
	Source string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Source, e.Reason)
}

// ValidationError names every candidate field that failed normalization.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid candidate: " + strings.Join(e.Fields, ", ")
}

// GeocodeError means no usable coordinates and no landmark match.
type GeocodeError struct {
	Location string
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("no coordinates for location %q", e.Location)
}

// PersistenceError wraps a database failure for a single record.
type PersistenceError struct {
	Title string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %q: %v", e.Title, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
