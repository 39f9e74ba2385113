package flights

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/logger"
	"github.com/Domenick1991/seatbooking/internal/repository"
	"github.com/samber/lo"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	SeatAvailability(ctx context.Context, id int64) (*SeatAvailability, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
}

// Seats is the read side of the seat inventory.
type Seats interface {
	ValidSeats(ctx context.Context, flightID int64) ([]string, error)
	BookedSeats(ctx context.Context, flightID int64) ([]string, error)
}

type SeatAvailability struct {
	FlightID  int64    `json:"flight_id"`
	Valid     []string `json:"valid"`
	Booked    []string `json:"booked"`
	Available []string `json:"available"`
}

type FlightService struct {
	repo  repository.FlightRepository
	cache FlightCache
	seats Seats
}

// NewFlightService accepts a nil cache; listings then always hit the repository.
func NewFlightService(repo repository.FlightRepository, cache FlightCache, seats Seats) *FlightService {
	return &FlightService{repo: repo, cache: cache, seats: seats}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list flights: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			logger.FromContext(ctx).WithError(err).Warn("flights cache write failed")
		}
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	flight, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFound("Flight not found")
		}
		return nil, fmt.Errorf("get flight %d: %w", id, err)
	}
	return flight, nil
}

func (s *FlightService) SeatAvailability(ctx context.Context, id int64) (*SeatAvailability, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	valid, err := s.seats.ValidSeats(ctx, id)
	if err != nil {
		return nil, err
	}
	booked, err := s.seats.BookedSeats(ctx, id)
	if err != nil {
		return nil, err
	}
	return &SeatAvailability{FlightID: id, Valid: valid, Booked: booked, Available: lo.Without(valid, booked...)}, nil
}

var _ FlightUseCase = (*FlightService)(nil)
