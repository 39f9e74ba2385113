package domain

import "time"

type Flight struct {
	ID             int64     `json:"id"`
	FlightNumber   string    `json:"flight_number"`
	AirlineCode    string    `json:"airline_code"`
	AircraftID     int64     `json:"aircraft_id"`
	FromAirport    string    `json:"from_airport"`
	ToAirport      string    `json:"to_airport"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	TotalSeats     int       `json:"total_seats"`
	BasePriceCents int64     `json:"base_price_cents"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Aircraft struct {
	ID            int64   `json:"id"`
	Model         string  `json:"model"`
	TotalCapacity int     `json:"total_capacity"`
	SeatMap       SeatMap `json:"seat_map"`
}

// SeatMap is the aircraft layout document stored alongside the aircraft.
// A document without "rows" decodes to an empty map.
type SeatMap struct {
	Rows []SeatRow `json:"rows"`
}

type SeatRow struct {
	Row   int    `json:"row_number"`
	Class string `json:"class"`
	Seats []Seat `json:"seats"`
}

type Seat struct {
	Number string `json:"number"`
}
