package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/logger"
	amqp "github.com/rabbitmq/amqp091-go"
)

const maxBackoff = 30 * time.Second

type Consumer struct {
	url      string
	queue    string
	consumer string
}

func NewConsumer(url, queue, consumerName string) *Consumer {
	return &Consumer{url: url, queue: queue, consumer: consumerName}
}

// Consume reconnects with exponential backoff until ctx is done. A handler
// error rejects the delivery without requeueing it.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, domain.Notification) error) error {
	log := logger.FromContext(ctx).WithField("queue", c.queue)
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err == nil {
			backoff = time.Second
			err = c.consumeLoop(ctx, conn, handler)
			_ = conn.Close()
		}
		if ctx.Err() != nil {
			return nil
		}
		log.WithError(err).WithField("retry_in", backoff.String()).Warn("notification consumer disconnected")

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection, handler func(context.Context, domain.Notification) error) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	if err := declare(ch, c.queue); err != nil {
		return err
	}
	deliveries, err := ch.ConsumeWithContext(ctx, c.queue, c.consumer, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range deliveries {
		if err := handle(ctx, d.Body, handler); err != nil {
			logger.FromContext(ctx).WithError(err).Warn("rejecting notification")
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handle(ctx context.Context, body []byte, handler func(context.Context, domain.Notification) error) error {
	var note domain.Notification
	if err := json.Unmarshal(body, &note); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return handler(ctx, note)
}
