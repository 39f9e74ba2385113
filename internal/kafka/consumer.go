package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/logger"
	"github.com/segmentio/kafka-go"
)

// Consumer reads a topic as part of a consumer group. Offsets are committed
// only after the handler succeeds, so delivery is at least once.
type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, groupID, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			MaxWait:           time.Second,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume blocks until ctx is done or the handler fails. A failed message is
// left uncommitted and is redelivered to the group.
func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			return fmt.Errorf("fetch message: %w", err)
		}

		if err := handler(ctx, msg); err != nil {
			return fmt.Errorf("handle message at offset %d: %w", msg.Offset, err)
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			return fmt.Errorf("commit offset %d: %w", msg.Offset, err)
		}
	}
}

// ConsumeNotifications decodes each message as a notification. Undecodable
// messages are logged and skipped.
func (c *Consumer) ConsumeNotifications(ctx context.Context, handler func(context.Context, domain.Notification) error) error {
	return c.Consume(ctx, NotificationHandler(handler))
}

func NotificationHandler(handler func(context.Context, domain.Notification) error) func(context.Context, kafka.Message) error {
	return func(ctx context.Context, msg kafka.Message) error {
		var note domain.Notification
		if err := json.Unmarshal(msg.Value, &note); err != nil {
			logger.FromContext(ctx).WithError(err).WithField("offset", msg.Offset).Warn("skipping undecodable notification")
			return nil
		}
		return handler(ctx, note)
	}
}
