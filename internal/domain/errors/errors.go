package errors

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists        = errors.New("already exists")
	ErrNotFound             = errors.New("not found")
	ErrInvalidRequest       = errors.New("invalid request")
	ErrMisconfigured        = errors.New("service misconfigured")
	ErrInvalidEventMetadata = errors.New("invalid event metadata")
)

// UpstreamError wraps a failed call to the payment processor.
// Body carries the processor's own error document when it answered at all.
type UpstreamError struct {
	StatusCode int
	Body       json.RawMessage
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment processor unavailable: %v", e.Err)
	}
	return fmt.Sprintf("payment processor error: status %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Unreachable reports whether the processor never produced a response.
func (e *UpstreamError) Unreachable() bool {
	return e.StatusCode == 0
}
