// Package audit stores booking and payment event records in MongoDB.
package audit

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	bookingLogsCollection = "booking_logs"
	paymentLogsCollection = "payment_logs"
)

// Booking event types.
const (
	BookingCreated   = "created"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Payment event types.
const (
	PaymentCaptured = "captured"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

type BookingLog struct {
	BookingID  int64          `bson:"booking_id"`
	UserID     int64          `bson:"user_id"`
	FlightID   int64          `bson:"flight_id"`
	SeatNumber string         `bson:"seat_id"`
	EventType  string         `bson:"event_type"`
	Status     string         `bson:"status"`
	Metadata   map[string]any `bson:"metadata"`
	Timestamp  time.Time      `bson:"timestamp"`
}

type PaymentLog struct {
	PaymentID     int64          `bson:"payment_id"`
	BookingID     int64          `bson:"booking_id"`
	AmountCents   int64          `bson:"amount_cents"`
	EventType     string         `bson:"event_type"`
	PaymentStatus string         `bson:"payment_status"`
	Reason        string         `bson:"reason,omitempty"`
	Metadata      map[string]any `bson:"metadata"`
	Timestamp     time.Time      `bson:"timestamp"`
}

// Connect opens and pings a MongoDB client.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

type MongoRecorder struct {
	bookings *mongo.Collection
	payments *mongo.Collection
}

func NewMongoRecorder(db *mongo.Database) *MongoRecorder {
	return &MongoRecorder{
		bookings: db.Collection(bookingLogsCollection),
		payments: db.Collection(paymentLogsCollection),
	}
}

func (r *MongoRecorder) RecordBooking(ctx context.Context, entry BookingLog) error {
	prepare(&entry.Timestamp, &entry.Metadata)
	if _, err := r.bookings.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert booking log: %w", err)
	}
	return nil
}

func (r *MongoRecorder) RecordPayment(ctx context.Context, entry PaymentLog) error {
	prepare(&entry.Timestamp, &entry.Metadata)
	if _, err := r.payments.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("insert payment log: %w", err)
	}
	return nil
}

func prepare(ts *time.Time, metadata *map[string]any) {
	if ts.IsZero() {
		*ts = time.Now().UTC()
	}
	if *metadata == nil {
		*metadata = map[string]any{}
	}
}
