package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrSeatTaken          = errors.New("seat already held for this flight")
	ErrDuplicateReference = errors.New("booking reference already exists")
	ErrAlreadyPaid        = errors.New("booking already has a successful payment")
	ErrStaleState         = errors.New("record is not in the expected state")
)

const (
	uniqueViolationCode = "23505"

	seatHoldConstraint       = "bookings_flight_seat_active_key"
	referenceConstraint      = "bookings_reference_key"
	successPaymentConstraint = "payments_booking_success_key"
)

// translate maps driver errors onto the package sentinels so that constraint
// details never leave the repository.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		switch pgErr.ConstraintName {
		case seatHoldConstraint:
			return ErrSeatTaken
		case referenceConstraint:
			return ErrDuplicateReference
		case successPaymentConstraint:
			return ErrAlreadyPaid
		}
	}
	return err
}
