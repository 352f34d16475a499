package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xmer/fitgirl-rss-reader/app/metrics"
)

// HandlerFunc processes one message body. Errors wrapping ErrNonRetryable
// dead-letter the message immediately; other errors requeue it once.
type HandlerFunc func(ctx context.Context, body []byte) error

const DefaultHandlerTimeout = 30 * time.Second

type Consumer struct {
	ch             Channel
	queue          string
	tag            string
	handler        HandlerFunc
	handlerTimeout time.Duration
}

func NewConsumer(ch Channel, queue, tag string, handler HandlerFunc) *Consumer {
	return &Consumer{
		ch:             ch,
		queue:          queue,
		tag:            tag,
		handler:        handler,
		handlerTimeout: DefaultHandlerTimeout,
	}
}

func (c *Consumer) Queue() string {
	return c.queue
}

// Run consumes until ctx is cancelled or the broker closes the channel.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.ch.ConsumeWithContext(ctx, c.queue, c.tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", c.queue, err)
	}

	slog.Info("Consumer started", "queue", c.queue, "tag", c.tag)

	for {
		select {
		case <-ctx.Done():
			if err := c.ch.Cancel(c.tag, false); err != nil {
				slog.Warn("Failed to cancel consumer", "queue", c.queue, "error", err)
			}
			slog.Info("Consumer stopped", "queue", c.queue)
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("consumer %s: %w", c.queue, ErrDeliveriesClosed)
			}
			c.handle(ctx, delivery)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, delivery amqp.Delivery) {
	// A delivery already taken is finished even when the consumer is stopping.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.handlerTimeout)
	defer cancel()

	err := c.handler(ctx, delivery.Body)

	switch {
	case err == nil:
		c.settle(delivery, "acked", delivery.Ack(false))
	case errors.Is(err, ErrNonRetryable):
		slog.Warn("Rejecting invalid message", "queue", c.queue, "message_id", delivery.MessageId, "error", err)
		c.settle(delivery, "rejected", delivery.Nack(false, false))
	case delivery.Redelivered:
		slog.Error("Message failed after redelivery, dead-lettering", "queue", c.queue, "message_id", delivery.MessageId, "error", err)
		c.settle(delivery, "dead_lettered", delivery.Nack(false, false))
	default:
		slog.Warn("Message processing failed, requeueing", "queue", c.queue, "message_id", delivery.MessageId, "error", err)
		c.settle(delivery, "requeued", delivery.Nack(false, true))
	}
}

func (c *Consumer) settle(delivery amqp.Delivery, result string, err error) {
	if err != nil {
		slog.Error("Failed to settle message", "queue", c.queue, "message_id", delivery.MessageId, "result", result, "error", err)
		return
	}
	metrics.RecordControl(c.queue, result)
}
