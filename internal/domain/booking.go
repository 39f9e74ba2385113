package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Holding reports whether a booking in this status occupies its seat.
func (s BookingStatus) Holding() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

type Passenger struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	IDNumber string `json:"id_number,omitempty"`
	IDType   string `json:"id_type,omitempty"`
}

type Booking struct {
	ID           int64
	Reference    string
	TicketNumber string
	UserID       int64
	FlightID     int64
	SeatNumber   string
	Passenger    Passenger
	AmountCents  int64
	Currency     string
	Status       BookingStatus
	IssuedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
