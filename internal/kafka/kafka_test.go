package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	args := m.Called(ctx, topic, key, payload)
	return args.Error(0)
}

func TestNotifier_PublishesToBothTopics(t *testing.T) {
	ctx := context.Background()
	pub := &MockPublisher{}
	note := domain.Notification{Kind: domain.NotificationBookingConfirmed, Reference: "ABC123"}
	pub.On("Publish", ctx, "booking.events", "ABC123", note).Return(nil)
	pub.On("Publish", ctx, "booking.notifications", "ABC123", note).Return(nil)

	err := NewNotifier(pub, "booking.notifications", "booking.events").Notify(ctx, note)
	require.NoError(t, err)
	pub.AssertExpectations(t)
}

func TestNotifier_ReportsFailure(t *testing.T) {
	ctx := context.Background()
	pub := &MockPublisher{}
	note := domain.Notification{Reference: "ABC123"}
	pub.On("Publish", ctx, "booking.notifications", "ABC123", note).Return(errors.New("leader not available"))

	err := NewNotifier(pub, "booking.notifications", "").Notify(ctx, note)
	assert.Error(t, err)
	pub.AssertNumberOfCalls(t, "Publish", 1)
}

func TestNotificationHandler(t *testing.T) {
	var got []domain.Notification
	handle := NotificationHandler(func(_ context.Context, n domain.Notification) error {
		got = append(got, n)
		return nil
	})

	require.NoError(t, handle(context.Background(), kafka.Message{Value: []byte("garbage")}))
	require.NoError(t, handle(context.Background(), kafka.Message{Value: []byte(`{"kind":"booking_cancelled","booking_reference":"XYZ789","seat_number":"4C"}`)}))

	require.Len(t, got, 1)
	assert.Equal(t, domain.NotificationBookingCancelled, got[0].Kind)
	assert.Equal(t, "XYZ789", got[0].Reference)
}
