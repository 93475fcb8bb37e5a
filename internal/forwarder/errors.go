package forwarder

import (
	"errors"
	"fmt"
)

// ErrSinkNotConfigured is returned when no sink URL was provided.
var ErrSinkNotConfigured = errors.New("sink url is not configured")

// ErrSinkRejected means the sink answered with a non-2xx status.
// Body holds the start of the sink's response for diagnostics.
type ErrSinkRejected struct {
	StatusCode int
	Body       string
}

func (e *ErrSinkRejected) Error() string {
	return fmt.Sprintf("sink rejected job: status %d", e.StatusCode)
}

// ErrSinkUnreachable wraps a connection, DNS or transport failure.
type ErrSinkUnreachable struct{ Err error }

func (e *ErrSinkUnreachable) Error() string { return fmt.Sprintf("sink unreachable: %v", e.Err) }
func (e *ErrSinkUnreachable) Unwrap() error { return e.Err }

// ErrSinkTimeout means the sink did not answer before the deadline.
type ErrSinkTimeout struct{ Err error }

func (e *ErrSinkTimeout) Error() string { return fmt.Sprintf("sink timed out: %v", e.Err) }
func (e *ErrSinkTimeout) Unwrap() error { return e.Err }

// Outcome classifies the result of a single forwarding attempt.
type Outcome string

const (
	Forwarded         Outcome = "forwarded"
	SinkRejected      Outcome = "sink_rejected"
	SinkUnreachable   Outcome = "sink_unreachable"
	SinkTimeout       Outcome = "sink_timeout"
	SinkNotConfigured Outcome = "sink_not_configured"
)

// OutcomeOf maps an error returned by Forward to its Outcome. Errors not
// produced by Forward are reported as SinkUnreachable.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return Forwarded
	}

	var rejected *ErrSinkRejected
	var timeout *ErrSinkTimeout
	switch {
	case errors.Is(err, ErrSinkNotConfigured):
		return SinkNotConfigured
	case errors.As(err, &rejected):
		return SinkRejected
	case errors.As(err, &timeout):
		return SinkTimeout
	default:
		return SinkUnreachable
	}
}
