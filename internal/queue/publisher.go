package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// DefaultQueue receives every center.* event.
const DefaultQueue = "fitness_center.events"

// Publisher emits audit events.  Publishing is best effort: callers log the
// error and carry on, a failed publish never fails the request.
type Publisher interface {
	Publish(ctx context.Context, ev CenterEvent) error
}

// NopPublisher drops events.  It is used when EVENTS_ENABLED is false.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, CenterEvent) error { return nil }

// AMQPPublisher sends each event over a short-lived connection to RabbitMQ.
// Mutations are infrequent, so a connection per publish keeps the
// publisher free of reconnect state.
type AMQPPublisher struct {
	URL   string
	Queue string
	Log   *zap.Logger
}

func NewAMQPPublisher(url string, log *zap.Logger) *AMQPPublisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &AMQPPublisher{URL: url, Queue: DefaultQueue, Log: log}
}

// Publish declares the durable queue (idempotent) and sends ev as a
// persistent JSON message routed through the default exchange.
func (p *AMQPPublisher) Publish(ctx context.Context, ev CenterEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}

	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(3 * time.Second),
	})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.Queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		Type:          ev.Type,
		CorrelationId: ev.RequestID,
		Timestamp:     time.Now().UTC(),
		Body:          body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}

	p.Log.Debug("event published",
		zap.String("type", ev.Type),
		zap.Uint64("center_id", ev.CenterID),
		zap.String("queue", p.Queue),
	)
	return nil
}
