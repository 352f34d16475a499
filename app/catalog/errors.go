package catalog

import (
	"errors"
	"fmt"
)

var errReviewsUnavailable = errors.New("reviews unavailable")

// APIError describes a failed call to the store API. StatusCode is zero
// when no response was received.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// lookupError marks the failure of a stage the lookup cannot continue without.
type lookupError struct {
	stage string
	err   error
}

func (e *lookupError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.stage, e.err)
}

func (e *lookupError) Unwrap() error {
	return e.err
}

// optional carries the result of a stage whose failure only drops a field.
type optional[T any] struct {
	value T
	err   error
}

func (o optional[T]) ok() bool {
	return o.err == nil
}
