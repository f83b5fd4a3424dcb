package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/iliyamo/practice-booking/internal/mail"
	"github.com/iliyamo/practice-booking/internal/metrics"
)

const maxBackoff = 30 * time.Second

var errMalformed = errors.New("malformed event")

// Consumer reads ContactSubmittedEvents and mails them to the practice.
type Consumer struct {
	url    string
	queue  string
	sender mail.Sender
	from   string
	to     string
	log    zerolog.Logger
}

// NewConsumer builds a consumer sending mail from -> to through sender.
func NewConsumer(url, queue string, sender mail.Sender, from, to string, log zerolog.Logger) *Consumer {
	if queue == "" {
		queue = ContactSubmittedQueue
	}
	return &Consumer{
		url:    url,
		queue:  queue,
		sender: sender,
		from:   from,
		to:     to,
		log:    log.With().Str("component", "consumer").Str("queue", queue).Logger(),
	}
}

// Run connects to the broker and consumes until ctx is cancelled.  Dial
// failures and dropped connections are retried with exponential backoff
// capped at 30s.  It always returns ctx.Err().
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn().Err(err).Msg("consume loop ended, reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("set QoS failed")
	}
	if err := declareQueue(ch, c.queue); err != nil {
		return err
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}
	c.log.Info().Msg("consuming contact events")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.deliver(ctx, d)
		}
	}
}

// acker is the part of amqp.Delivery the consumer acknowledges through.
type acker interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (c *Consumer) deliver(ctx context.Context, d amqp.Delivery) {
	c.settle(d, d.Redelivered, c.handleMessage(ctx, d.Body))
}

// settle acks handled messages.  Malformed ones are dropped; a failed send
// is requeued once and dropped when it fails again.
func (c *Consumer) settle(d acker, redelivered bool, err error) {
	switch {
	case err == nil:
		metrics.IncContactEvent("notified")
		_ = d.Ack(false)
	case errors.Is(err, errMalformed):
		metrics.IncContactEvent("notify_dropped")
		c.log.Error().Err(err).Msg("dropping malformed message")
		_ = d.Nack(false, false)
	default:
		metrics.IncContactEvent("notify_failed")
		c.log.Error().Err(err).Bool("requeue", !redelivered).Msg("handle message failed")
		_ = d.Nack(false, !redelivered)
	}
}

func (c *Consumer) handleMessage(ctx context.Context, body []byte) error {
	var ev ContactSubmittedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	if ev.ContactID == "" {
		return fmt.Errorf("%w: missing contact_id", errMalformed)
	}
	msg, err := RenderContactEmail(ev, c.from, c.to)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := c.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	c.log.Info().Str("contact_id", ev.ContactID).Msg("contact notification sent")
	return nil
}

// sleep waits for d or until ctx ends; it reports whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
