package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"chat-notify/internal/domain"
)

const eventsExchange = "chat.events"

// bridgeEnvelope is the AMQP representation of one dispatched domain event.
type bridgeEnvelope struct {
	Event      string          `json:"event"`
	Recipients []int64         `json:"recipients"`
	Payload    json.RawMessage `json:"payload"`
	Timestamp  int64           `json:"timestamp"`
}

// EventBridge republishes every decoded domain event to a topic exchange so
// downstream services (search indexers, push gateways) can consume the same
// feed. Client delivery never depends on the bridge: a publish failure is
// logged and the event still reaches connected subscribers.
type EventBridge struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewEventBridge connects to RabbitMQ and declares the events exchange.
func NewEventBridge(url string) (*EventBridge, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(
		eventsExchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare events exchange: %w", err)
	}

	slog.Info("event bridge connected", slog.String("exchange", eventsExchange))

	return &EventBridge{conn: conn, channel: ch}, nil
}

// NewEventBridgeWithRetry retries the connection until ctx expires. RabbitMQ
// tends to come up after this service in compose environments.
func NewEventBridgeWithRetry(ctx context.Context, url string) (*EventBridge, error) {
	var lastErr error
	for attempt := 1; ; attempt++ {
		bridge, err := NewEventBridge(url)
		if err == nil {
			return bridge, nil
		}
		lastErr = err

		slog.Warn("event bridge connection failed, retrying",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("giving up connecting to RabbitMQ: %w", lastErr)
		case <-time.After(2 * time.Second):
		}
	}
}

// HandleEvent implements notify.Sink.
func (b *EventBridge) HandleEvent(ctx context.Context, ev *domain.Event, recipients []int64) error {
	payload, err := ev.Payload()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	body, err := json.Marshal(bridgeEnvelope{
		Event:      string(ev.Type),
		Recipients: recipients,
		Payload:    payload,
		Timestamp:  time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	routingKey := "chat.event." + string(ev.Type)

	err = b.channel.PublishWithContext(
		ctx,
		eventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    uuid.NewString(),
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.Debug("bridged event",
		slog.String("event", string(ev.Type)),
		slog.String("routing_key", routingKey))
	return nil
}

// IsClosed reports whether the underlying connection is closed
func (b *EventBridge) IsClosed() bool {
	return b.conn.IsClosed()
}

// Close shuts down the channel and connection
func (b *EventBridge) Close() {
	if b.channel != nil {
		b.channel.Close()
	}
	if b.conn != nil {
		b.conn.Close()
	}
}
