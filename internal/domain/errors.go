package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a requested resource does not exist.
// Handlers map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is the root of every caller-side input error: missing slip
// fields, an inverted time window, or a missing query parameter.
// Handlers map this to HTTP 400.
var ErrValidation = errors.New("validation error")

// ErrInvalidTimeOrder is returned when start_time or end_time cannot be parsed
// as a clock time, or when start_time is not strictly before end_time.
var ErrInvalidTimeOrder = fmt.Errorf("%w: start time must be before end time", ErrValidation)

// ErrStorage wraps any failure to write to or read from the slip store.
var ErrStorage = errors.New("storage error")

// ErrNotConfigured is returned by the lookup endpoints when the upstream
// integration lacks a base URL or credentials. It is not retryable.
var ErrNotConfigured = errors.New("upstream not configured")

// ErrUpstream is the root of every failure talking to the upstream service.
var ErrUpstream = errors.New("upstream error")

// MissingFieldsError reports the required submission keys that were absent or
// empty, in RequiredFields order.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Unwrap makes errors.Is(err, ErrValidation) hold.
func (e *MissingFieldsError) Unwrap() error { return ErrValidation }

// UpstreamError describes a single failed call to the upstream service.
// Status is zero for transport and decoding failures.
type UpstreamError struct {
	Resource string
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream %s: status %d: %v", e.Resource, e.Status, e.Err)
	}
	return fmt.Sprintf("upstream %s: %v", e.Resource, e.Err)
}

// Unwrap exposes both ErrUpstream and the underlying cause.
func (e *UpstreamError) Unwrap() []error { return []error{ErrUpstream, e.Err} }
