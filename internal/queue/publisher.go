package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/practice-booking/internal/model"
)

// Publisher sends ContactSubmittedEvents to RabbitMQ.  Each publish opens
// its own connection.
type Publisher struct {
	url   string
	queue string
	log   zerolog.Logger
}

// NewPublisher publishes to queue on the broker at url.
func NewPublisher(url, queue string, log zerolog.Logger) *Publisher {
	if queue == "" {
		queue = ContactSubmittedQueue
	}
	return &Publisher{url: url, queue: queue, log: log.With().Str("component", "publisher").Logger()}
}

// NotifyContact publishes the event for c.
func (p *Publisher) NotifyContact(ctx context.Context, c model.Contact) error {
	return p.Publish(ctx, NewContactSubmittedEvent(c))
}

// Publish sends ev as a persistent message to the configured queue.
// Failures are logged and returned.
func (p *Publisher) Publish(ctx context.Context, ev ContactSubmittedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Error().Err(err).Msg("rabbitmq dial failed")
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Error().Err(err).Msg("rabbitmq channel open failed")
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := declareQueue(ch, p.queue); err != nil {
		p.log.Error().Err(err).Str("queue", p.queue).Msg("rabbitmq queue declare failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		MessageId:    ev.ContactID,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		p.log.Error().Err(err).Str("queue", p.queue).Msg("rabbitmq publish failed")
		return fmt.Errorf("publish: %w", err)
	}
	p.log.Debug().Str("contact_id", ev.ContactID).Str("queue", p.queue).Msg("contact event published")
	return nil
}

// declareQueue makes sure the durable queue exists.  Publisher and consumer
// both call it so either may start first.
func declareQueue(ch *amqp.Channel, name string) error {
	if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return nil
}
