package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xmer/fitgirl-rss-reader/app/metrics"
)

// Publisher sends JSON messages to a topic exchange. When the channel is in
// confirm mode a publish only succeeds once the broker acknowledges it.
type Publisher struct {
	ch       Channel
	exchange string
	source   string
}

func NewPublisher(ch Channel, exchange, source string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, source: source}
}

func (p *Publisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		metrics.RecordPublish(routingKey, "error")
		return fmt.Errorf("failed to encode %s message: %w", routingKey, err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		AppId:        p.source,
		Body:         body,
	}

	if err := p.publish(ctx, routingKey, msg); err != nil {
		metrics.RecordPublish(routingKey, "error")
		return &PublishError{Exchange: p.exchange, RoutingKey: routingKey, Err: err}
	}

	metrics.RecordPublish(routingKey, "success")
	slog.Debug("Published message", "exchange", p.exchange, "routing_key", routingKey, "message_id", msg.MessageId)

	return nil
}

func (p *Publisher) publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	confirmation, err := p.ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, routingKey, false, false, msg)
	if err != nil {
		return err
	}

	// nil when the channel is not in confirm mode
	if confirmation == nil {
		return nil
	}

	acked, err := confirmation.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return errors.New("broker rejected message")
	}

	return nil
}
