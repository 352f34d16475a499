package messaging

import (
	"errors"
	"fmt"
)

// ErrNonRetryable marks handler errors that must not be redelivered.
var ErrNonRetryable = errors.New("non-retryable")

var ErrDeliveriesClosed = errors.New("delivery channel closed")

// NonRetryable wraps err so the consumer dead-letters the message at once.
func NonRetryable(err error) error {
	return fmt.Errorf("%w: %w", ErrNonRetryable, err)
}

// PublishError reports a message the broker did not accept.
type PublishError struct {
	Exchange   string
	RoutingKey string
	Err        error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("failed to publish to %s/%s: %v", e.Exchange, e.RoutingKey, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}
