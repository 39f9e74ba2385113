package broadcast

import "time"

const (
	EventSeatBooked   = "seat_booked"
	EventSeatReleased = "seat_released"
)

// SeatEvent is pushed to every live viewer of a flight.
type SeatEvent struct {
	Type       string    `json:"type"`
	SeatNumber string    `json:"seat_number"`
	FlightID   int64     `json:"flight_id"`
	Timestamp  time.Time `json:"timestamp"`
}

func SeatBooked(flightID int64, seat string, at time.Time) SeatEvent {
	return SeatEvent{Type: EventSeatBooked, SeatNumber: seat, FlightID: flightID, Timestamp: at.UTC()}
}

func SeatReleased(flightID int64, seat string, at time.Time) SeatEvent {
	return SeatEvent{Type: EventSeatReleased, SeatNumber: seat, FlightID: flightID, Timestamp: at.UTC()}
}
