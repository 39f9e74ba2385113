// Package seats derives which seat codes exist on a flight's aircraft and
// which of them are currently held by a pending or confirmed booking.
package seats

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/repository"
	"github.com/samber/lo"
)

var seatPattern = regexp.MustCompile(`^[1-9][0-9]{0,2}[A-Z]$`)

type SeatMapSource interface {
	SeatMapForFlight(ctx context.Context, flightID int64) (domain.SeatMap, error)
}

type HoldingSource interface {
	BookedSeats(ctx context.Context, flightID int64) ([]string, error)
}

// SeatMapCache is optional; a nil cache always reads through.
type SeatMapCache interface {
	GetSeatMap(ctx context.Context, flightID int64) (*domain.SeatMap, error)
	SetSeatMap(ctx context.Context, flightID int64, seatMap domain.SeatMap) error
}

type Inventory struct {
	seatMaps SeatMapSource
	holdings HoldingSource
	cache    SeatMapCache
}

func NewInventory(seatMaps SeatMapSource, holdings HoldingSource, cache SeatMapCache) *Inventory {
	return &Inventory{seatMaps: seatMaps, holdings: holdings, cache: cache}
}

// Normalize trims and upper-cases a seat code and checks its shape.
func Normalize(code string) (string, error) {
	seat := strings.ToUpper(strings.TrimSpace(code))
	if !seatPattern.MatchString(seat) {
		return "", domain.InvalidInput("Invalid seat number %q", code)
	}
	return seat, nil
}

// ValidSeats walks the seat map rows. A map without rows yields no seats.
func ValidSeats(seatMap domain.SeatMap) []string {
	codes := lo.FlatMap(seatMap.Rows, func(row domain.SeatRow, _ int) []string {
		return lo.Map(row.Seats, func(s domain.Seat, _ int) string {
			return strings.ToUpper(strings.TrimSpace(s.Number))
		})
	})
	return lo.Uniq(lo.Compact(codes))
}

func (i *Inventory) ValidSeats(ctx context.Context, flightID int64) ([]string, error) {
	seatMap, err := i.seatMap(ctx, flightID)
	if err != nil {
		return nil, err
	}
	return ValidSeats(seatMap), nil
}

func (i *Inventory) BookedSeats(ctx context.Context, flightID int64) ([]string, error) {
	booked, err := i.holdings.BookedSeats(ctx, flightID)
	if err != nil {
		return nil, fmt.Errorf("load booked seats for flight %d: %w", flightID, err)
	}
	return booked, nil
}

// Available returns the valid seats of the flight that nobody holds.
func (i *Inventory) Available(ctx context.Context, flightID int64) ([]string, error) {
	valid, err := i.ValidSeats(ctx, flightID)
	if err != nil {
		return nil, err
	}
	booked, err := i.BookedSeats(ctx, flightID)
	if err != nil {
		return nil, err
	}
	return lo.Without(valid, booked...), nil
}

// Check normalizes the code and fails fast when the seat does not exist or
// is already held. It reads a snapshot; the storage constraint stays authoritative.
func (i *Inventory) Check(ctx context.Context, flightID int64, code string) (string, error) {
	seat, err := Normalize(code)
	if err != nil {
		return "", err
	}

	valid, err := i.ValidSeats(ctx, flightID)
	if err != nil {
		return "", err
	}
	if !lo.Contains(valid, seat) {
		return "", domain.InvalidInput("Seat %s does not exist on this aircraft", seat)
	}

	booked, err := i.BookedSeats(ctx, flightID)
	if err != nil {
		return "", err
	}
	if lo.Contains(booked, seat) {
		return "", domain.Conflict("Seat %s is already booked", seat)
	}
	return seat, nil
}

func (i *Inventory) seatMap(ctx context.Context, flightID int64) (domain.SeatMap, error) {
	if i.cache != nil {
		if cached, err := i.cache.GetSeatMap(ctx, flightID); err == nil && cached != nil {
			return *cached, nil
		}
	}

	seatMap, err := i.seatMaps.SeatMapForFlight(ctx, flightID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.SeatMap{}, domain.NotFound("Flight %d not found", flightID)
		}
		return domain.SeatMap{}, fmt.Errorf("load seat map for flight %d: %w", flightID, err)
	}
	if i.cache != nil {
		_ = i.cache.SetSeatMap(ctx, flightID, seatMap)
	}
	return seatMap, nil
}
