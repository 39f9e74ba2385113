package domain

import "time"

type NotificationKind string

const (
	NotificationBookingConfirmed NotificationKind = "booking_confirmed"
	NotificationBookingCancelled NotificationKind = "booking_cancelled"
)

// Notification is handed to the confirmation/cancellation collaborator after commit.
type Notification struct {
	Kind          NotificationKind `json:"kind"`
	BookingID     int64            `json:"booking_id"`
	Reference     string           `json:"booking_reference"`
	TicketNumber  string           `json:"ticket_number,omitempty"`
	FlightID      int64            `json:"flight_id"`
	FlightNumber  string           `json:"flight_number,omitempty"`
	SeatNumber    string           `json:"seat_number"`
	PassengerName string           `json:"passenger_name"`
	Email         string           `json:"email"`
	AmountCents   int64            `json:"amount_cents"`
	Currency      string           `json:"currency"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

func NewNotification(kind NotificationKind, b *Booking, flightNumber string, at time.Time) Notification {
	return Notification{
		Kind:          kind,
		BookingID:     b.ID,
		Reference:     b.Reference,
		TicketNumber:  b.TicketNumber,
		FlightID:      b.FlightID,
		FlightNumber:  flightNumber,
		SeatNumber:    b.SeatNumber,
		PassengerName: b.Passenger.Name,
		Email:         b.Passenger.Email,
		AmountCents:   b.AmountCents,
		Currency:      b.Currency,
		OccurredAt:    at.UTC(),
	}
}
