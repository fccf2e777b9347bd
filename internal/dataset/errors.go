package dataset

import (
	"errors"
	"fmt"
)

// Loading errors. All of them are fatal: a run cannot proceed without its
// observation table.
//
// Design decision: We use package-level sentinel errors wrapped inside
// LoadError so callers can both test the category with errors.Is and show
// the offending path without string matching.
var (
	// ErrEmptyFile is returned when the input contains no data rows.
	ErrEmptyFile = errors.New("input file has no data rows")

	// ErrUndecodable is returned when no encoding candidate, including
	// byte-level detection, produced a usable decoding.
	ErrUndecodable = errors.New("could not determine input encoding")

	// ErrMissingColumn is returned when a required column (patient, round,
	// or an explicitly requested variable) is absent from the header.
	ErrMissingColumn = errors.New("required column not found")

	// ErrColumnRange is returned when the requested variable column range
	// does not fit the file.
	ErrColumnRange = errors.New("invalid variable column range")

	// ErrNoVariables is returned when column selection leaves no measured
	// variables to analyze.
	ErrNoVariables = errors.New("no measured variable columns selected")
)

// LoadError wraps any failure to produce an observation table from a file.
type LoadError struct {
	// Path is the input file that failed to load.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *LoadError) Unwrap() error { return e.Err }
