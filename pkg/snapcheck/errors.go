package snapcheck

import (
	"errors"
	"fmt"
)

// StageError reports which workflow stage failed and why. It wraps the
// underlying cause so callers can match sentinel or driver errors with
// errors.Is / errors.As.
type StageError struct {
	// RunID is the unique identifier for this run
	RunID string

	// Stage is the workflow stage that failed
	Stage Stage

	// Cause is the underlying error
	Cause error

	// Message provides additional context
	Message string
}

func (e *StageError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("[%s] stage %s: %s: %v", e.RunID, e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] stage %s: %v", e.RunID, e.Stage, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}

// Phase says whether a verification ran against the live in-memory store or
// against the exported file.
type Phase string

const (
	PhaseLive      Phase = "live"
	PhasePersisted Phase = "persisted"
)

// MismatchKind categorizes a verification failure.
type MismatchKind string

const (
	// MismatchCount means the scan returned the wrong number of rows.
	MismatchCount MismatchKind = "count"

	// MismatchContent means a row holds values not present in the expected
	// dataset at all.
	MismatchContent MismatchKind = "content"

	// MismatchOrder means a row's values exist in the expected dataset but
	// at a different position.
	MismatchOrder MismatchKind = "order"
)

// MismatchError is a hard verification failure: the scanned rows do not
// match the expected dataset. It is an assertion failure, distinct from an
// engine error, and reports both the phase and the kind of mismatch.
type MismatchError struct {
	Phase Phase
	Kind  MismatchKind
	Index int // offending element for content/order mismatches, -1 for count
	Want  any
	Got   any
}

func (e *MismatchError) Error() string {
	if e.Kind == MismatchCount {
		return fmt.Sprintf("%s verification: row count mismatch: want %v, got %v", e.Phase, e.Want, e.Got)
	}
	return fmt.Sprintf("%s verification: row %s mismatch at index %d: want %v, got %v",
		e.Phase, e.Kind, e.Index, e.Want, e.Got)
}

// Common sentinel errors
var (
	// ErrTargetExists is returned when the export destination already
	// exists. Export never overwrites; each run provisions a fresh path.
	ErrTargetExists = errors.New("export target already exists")

	// ErrDriverClosed is returned when a driver is used after Close
	ErrDriverClosed = errors.New("driver is closed")

	// ErrEmptyCatalog is returned when the exported store reports no tables
	ErrEmptyCatalog = errors.New("table catalog is empty")

	// ErrMissingTable is returned when the seeded table is absent from the
	// exported store's catalog
	ErrMissingTable = errors.New("seeded table missing from catalog")
)
