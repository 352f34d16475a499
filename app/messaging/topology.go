package messaging

import (
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	RoutingKeyRelease  = "release.new"
	RoutingKeyEnriched = "steam.enriched"
	RoutingKeyReset    = "reset"
	RoutingKeyRefresh  = "steam.refresh"

	NotificationsExchange = "notifications"
)

// DeclareExchanges asserts the durable topic exchange and forwards new
// releases to the notifications exchange.
func DeclareExchanges(ch Channel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	if err := ch.ExchangeDeclare(NotificationsExchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", NotificationsExchange, err)
	}

	if err := ch.ExchangeBind(NotificationsExchange, RoutingKeyRelease, exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s to %s: %w", NotificationsExchange, exchange, err)
	}

	slog.Info("RabbitMQ topology asserted",
		"exchanges", []string{exchange, NotificationsExchange},
		"binding", fmt.Sprintf("%s -> %s (%s)", exchange, NotificationsExchange, RoutingKeyRelease))

	return nil
}

// DeclareQueue asserts a durable queue bound to exchange with routingKey.
// Rejected messages go to <queue>.dlq through the <exchange>.dlx exchange.
func DeclareQueue(ch Channel, exchange, queue, routingKey string) error {
	dlx := DeadLetterExchange(exchange)
	dlq := DeadLetterQueue(queue)

	if err := ch.ExchangeDeclare(dlx, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead-letter exchange %s: %w", dlx, err)
	}

	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare dead-letter queue %s: %w", dlq, err)
	}

	if err := ch.QueueBind(dlq, queue, dlx, false, nil); err != nil {
		return fmt.Errorf("failed to bind dead-letter queue %s: %w", dlq, err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    dlx,
		"x-dead-letter-routing-key": queue,
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, args); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	if err := ch.QueueBind(queue, routingKey, exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s: %w", queue, err)
	}

	return nil
}

func DeadLetterExchange(exchange string) string {
	return exchange + ".dlx"
}

func DeadLetterQueue(queue string) string {
	return queue + ".dlq"
}

func ResetQueue(serviceName string) string {
	return "fitgirl.reset." + serviceName
}

func RefreshQueue(serviceName string) string {
	return "fitgirl.steam-refresh." + serviceName
}
