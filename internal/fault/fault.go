// Package fault defines the error taxonomy shared by the reservation
// service and the tool dispatch layer.
package fault

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound: unknown appointment or user id.
	ErrNotFound = errors.New("not found")
	// ErrNotIdentified: the operation needs an identified caller first.
	ErrNotIdentified = errors.New("caller not identified")
	// ErrInvalidState: the status transition is not permitted.
	ErrInvalidState = errors.New("invalid status transition")
	// ErrUnavailable: the store could not be reached; the caller should retry.
	ErrUnavailable = errors.New("service unavailable")
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation: " + e.Reason }

func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ConflictError means the requested slot overlaps an existing booking.
// Suggestion carries the next conflict-free slot strictly after the
// requested time, or nil when none was found in the search window.
// The booking is never silently moved; the caller must re-invoke with
// the suggested time.
type ConflictError struct {
	Requested  time.Time
	Suggestion *time.Time
}

func (e *ConflictError) Error() string {
	if e.Suggestion != nil {
		return fmt.Sprintf("slot %s unavailable, next free %s",
			e.Requested.Format(time.RFC3339), e.Suggestion.Format(time.RFC3339))
	}
	return fmt.Sprintf("slot %s unavailable", e.Requested.Format(time.RFC3339))
}

// Unavailable wraps a store failure so the façade can tell the caller to
// try again without leaking driver details.
func Unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
