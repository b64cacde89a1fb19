// Package errors implements the closed error-kind taxonomy from the design,
// replacing the HTTP-response-shaped APIError of the upstream project (this
// repo has no public HTTP surface beyond the pipeline driver).
package errors

import (
	"errors"
	"fmt"
)

// Kind is a closed enum of the terminal/retryable error categories a stage
// or admission check can return.
type Kind string

const (
	KindUnsupportedURL      Kind = "UNSUPPORTED_URL"
	KindFetchFailed         Kind = "FETCH_FAILED"
	KindAuthMissing         Kind = "AUTH_MISSING"
	KindContentPolicyBlocked Kind = "CONTENT_POLICY_BLOCKED"
	KindAnalysisFailed      Kind = "ANALYSIS_FAILED"
	KindPoolExhausted       Kind = "POOL_EXHAUSTED"
	KindQueueFull           Kind = "QUEUE_FULL"
	KindCapacityExceeded    Kind = "CAPACITY_EXCEEDED"
	KindResourcePressure    Kind = "RESOURCE_PRESSURE"
)

// Retryable reports whether the caller is expected to retry this kind of
// error, per the §7 disposition table.
func (k Kind) Retryable() bool {
	switch k {
	case KindPoolExhausted, KindQueueFull, KindCapacityExceeded, KindResourcePressure:
		return true
	default:
		return false
	}
}

// PipelineError carries a Kind alongside the human-readable message and
// underlying cause, the way job.result.error is reported to callers.
type PipelineError struct {
	Kind Kind
	Msg  string
	Err  error
}

func New(kind Kind, msg string) error {
	return PipelineError{Kind: kind, Msg: msg}
}

func Wrap(kind Kind, msg string, cause error) error {
	return PipelineError{Kind: kind, Msg: msg, Err: cause}
}

func (e PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e PipelineError) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind from an error, if it (or something it wraps) is
// a PipelineError.
func KindOf(err error) (Kind, bool) {
	var pe PipelineError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return "", false
}

// UnretriableError marks an error as not worth resubmitting, regardless of
// its Kind. This is the upstream project's own wrapper, carried over
// unchanged because §7's retryable/terminal split needs exactly this
// "mark and unwrap" idiom.
type UnretriableError struct{ error }

func Unretriable(err error) error {
	return UnretriableError{err}
}

func (e UnretriableError) Unwrap() error {
	return e.error
}

// IsUnretriable checks if the given error is an UnretriableError.
func IsUnretriable(err error) bool {
	return errors.As(err, &UnretriableError{})
}
