package messaging

import (
	"errors"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Broker owns the AMQP connection. Publishing uses a dedicated channel in
// confirm mode; each consumer gets its own channel.
type Broker struct {
	conn     *amqp.Connection
	publish  *amqp.Channel
	channels []*amqp.Channel
}

func Dial(url string) (*Broker, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	slog.Info("Connected to RabbitMQ")

	return &Broker{conn: conn, publish: ch}, nil
}

// PublishChannel returns the confirm-mode channel used for publishing and
// topology declarations.
func (b *Broker) PublishChannel() *amqp.Channel {
	return b.publish
}

// ConsumerChannel opens a channel with a prefetch of one message.
func (b *Broker) ConsumerChannel() (*amqp.Channel, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open consumer channel: %w", err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to set prefetch: %w", err)
	}

	b.channels = append(b.channels, ch)
	return ch, nil
}

// NotifyClose reports an unexpected connection loss.
func (b *Broker) NotifyClose() <-chan *amqp.Error {
	return b.conn.NotifyClose(make(chan *amqp.Error, 1))
}

func (b *Broker) Close() error {
	var errs []error
	for _, ch := range b.channels {
		if err := ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if err := b.publish.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		errs = append(errs, err)
	}
	if err := b.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
