package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	AircraftForFlight(ctx context.Context, flightID int64) (*domain.Aircraft, error)
	SeatMapForFlight(ctx context.Context, flightID int64) (domain.SeatMap, error)
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) *PGFlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `f.id, f.flight_number, a.code, f.aircraft_id, f.from_airport, f.to_airport,
	f.departure_time, f.arrival_time, ac.total_capacity, f.base_price_cents, f.created_at, f.updated_at`

const flightFrom = ` FROM flights f
	JOIN airlines a ON a.id = f.airline_id
	JOIN aircraft ac ON ac.id = f.aircraft_id`

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	if err := row.Scan(&f.ID, &f.FlightNumber, &f.AirlineCode, &f.AircraftID, &f.FromAirport, &f.ToAirport,
		&f.DepartureTime, &f.ArrivalTime, &f.TotalSeats, &f.BasePriceCents, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+flightFrom+` ORDER BY f.departure_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+flightFrom+` WHERE f.id=$1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return f, nil
}

func (r *PGFlightRepository) AircraftForFlight(ctx context.Context, flightID int64) (*domain.Aircraft, error) {
	var (
		ac  domain.Aircraft
		raw []byte
	)
	err := r.db.QueryRow(ctx, `SELECT ac.id, ac.model, ac.total_capacity, ac.seat_map
		FROM flights f JOIN aircraft ac ON ac.id = f.aircraft_id
		WHERE f.id=$1`, flightID).Scan(&ac.ID, &ac.Model, &ac.TotalCapacity, &raw)
	if err != nil {
		return nil, translate(err)
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &ac.SeatMap); err != nil {
			return nil, fmt.Errorf("decode seat map of aircraft %d: %w", ac.ID, err)
		}
	}
	return &ac, nil
}

func (r *PGFlightRepository) SeatMapForFlight(ctx context.Context, flightID int64) (domain.SeatMap, error) {
	ac, err := r.AircraftForFlight(ctx, flightID)
	if err != nil {
		return domain.SeatMap{}, err
	}
	return ac.SeatMap, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
