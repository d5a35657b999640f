package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound means the input file or table does not exist.
	ErrSourceNotFound = errors.New("source not found")
	// ErrMissingColumn means a required column is absent from the header.
	ErrMissingColumn = errors.New("missing required column")
	// ErrMalformedRow means a cell could not be parsed.
	ErrMalformedRow = errors.New("malformed row")
	// ErrEmptySource means the source has no header row.
	ErrEmptySource = errors.New("empty source")
)

// LoadError reports why a source could not be turned into a table. It is
// fatal to session start.
type LoadError struct {
	Source string
	Line   int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("load %s: line %d, column %q: %v", e.Source, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("load %s: line %d: %v", e.Source, e.Line, e.Err)
	case e.Column != "":
		return fmt.Sprintf("load %s: column %q: %v", e.Source, e.Column, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
