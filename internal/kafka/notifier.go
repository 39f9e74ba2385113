package kafka

import (
	"context"
	"errors"

	"github.com/Domenick1991/seatbooking/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

// Notifier publishes booking notifications to the notifications topic and,
// when configured, to the booking lifecycle topic.
type Notifier struct {
	publisher          Publisher
	notificationsTopic string
	eventsTopic        string
}

func NewNotifier(publisher Publisher, notificationsTopic, eventsTopic string) *Notifier {
	return &Notifier{publisher: publisher, notificationsTopic: notificationsTopic, eventsTopic: eventsTopic}
}

func (n *Notifier) Notify(ctx context.Context, note domain.Notification) error {
	var errs []error
	if n.eventsTopic != "" {
		errs = append(errs, n.publisher.Publish(ctx, n.eventsTopic, note.Reference, note))
	}
	if n.notificationsTopic != "" {
		errs = append(errs, n.publisher.Publish(ctx, n.notificationsTopic, note.Reference, note))
	}
	return errors.Join(errs...)
}
