package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrRunInProgress is returned when another run holds the (event, platform) lock.
	ErrRunInProgress = errors.New("reconciliation already in progress")

	// ErrAlreadyResolved is returned when a discrepancy is in a terminal state.
	ErrAlreadyResolved = errors.New("discrepancy already resolved")

	// ErrInvalidResolution is returned for resolutions an operator may not set.
	ErrInvalidResolution = errors.New("invalid resolution")

	// ErrInvalidAdjustment is returned for malformed manual adjustments.
	ErrInvalidAdjustment = errors.New("invalid manual adjustment")

	// ErrNotFound is returned when a sale, discrepancy or platform link does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError reports malformed input. It aborts a run before any write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// FetchError reports that one side of the comparison could not be loaded.
type FetchError struct {
	Source   string
	EventID  string
	Platform string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s sales for event %s on %s: %v", e.Source, e.EventID, e.Platform, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ResolutionError reports a failed resolution action for one discrepancy.
type ResolutionError struct {
	DiscrepancyID string
	Kind          Kind
	Err           error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s discrepancy %s: %v", e.Kind, e.DiscrepancyID, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed write of report or health state.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
