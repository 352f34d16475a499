package messaging

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

type binding struct {
	destination string
	key         string
	source      string
}

type publishedMessage struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	mu         sync.Mutex
	exchanges  map[string]string
	queues     map[string]amqp.Table
	bindings   []binding
	published  []publishedMessage
	publishErr error
	cancelled  []string
	deliveries chan amqp.Delivery
}

var _ Channel = (*fakeChannel)(nil)

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		exchanges:  make(map[string]string),
		queues:     make(map[string]amqp.Table),
		deliveries: make(chan amqp.Delivery, 8),
	}
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchanges[name] = kind
	return nil
}

func (f *fakeChannel) ExchangeBind(destination, key, source string, noWait bool, args amqp.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bindings = append(f.bindings, binding{destination: destination, key: key, source: source})
	return nil
}

func (f *fakeChannel) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queues[name] = args
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bindings = append(f.bindings, binding{destination: name, key: key, source: exchange})
	return nil
}

func (f *fakeChannel) PublishWithDeferredConfirmWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) (*amqp.DeferredConfirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	f.published = append(f.published, publishedMessage{exchange: exchange, key: key, msg: msg})
	return nil, nil
}

func (f *fakeChannel) ConsumeWithContext(ctx context.Context, queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) Cancel(consumer string, noWait bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, consumer)
	return nil
}

// fakeAcknowledger records how each delivery was settled.
type fakeAcknowledger struct {
	mu      sync.Mutex
	acks    []uint64
	nacks   []uint64
	requeue []bool
	settled chan struct{}
}

var _ amqp.Acknowledger = (*fakeAcknowledger)(nil)

func newFakeAcknowledger() *fakeAcknowledger {
	return &fakeAcknowledger{settled: make(chan struct{}, 8)}
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.mu.Lock()
	a.acks = append(a.acks, tag)
	a.mu.Unlock()
	a.settled <- struct{}{}
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.mu.Lock()
	a.nacks = append(a.nacks, tag)
	a.requeue = append(a.requeue, requeue)
	a.mu.Unlock()
	a.settled <- struct{}{}
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}
