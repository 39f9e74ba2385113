package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	// CreateWithPayment writes a booking and its payment in one transaction.
	CreateWithPayment(ctx context.Context, booking *domain.Booking, payment *domain.Payment) error
	CreatePending(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ReferenceExists(ctx context.Context, reference string) (bool, error)
	BookedSeats(ctx context.Context, flightID int64) ([]string, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	// ConfirmWithPayment inserts a successful payment and moves the pending
	// booking to confirmed in one transaction.
	ConfirmWithPayment(ctx context.Context, booking *domain.Booking, payment *domain.Payment) error
	RecordFailedPayment(ctx context.Context, payment *domain.Payment) error
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) *PGBookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, booking_reference, ticket_number, user_id, flight_id, seat_number,
	passenger_name, passenger_email, passenger_phone, passenger_id_number, passenger_id_type,
	amount_cents, currency, status, issued_at, created_at, updated_at`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.Reference, &b.TicketNumber, &b.UserID, &b.FlightID, &b.SeatNumber,
		&b.Passenger.Name, &b.Passenger.Email, &b.Passenger.Phone, &b.Passenger.IDNumber, &b.Passenger.IDType,
		&b.AmountCents, &b.Currency, &b.Status, &b.IssuedAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func insertBooking(ctx context.Context, tx pgx.Tx, b *domain.Booking) error {
	err := tx.QueryRow(ctx, `INSERT INTO bookings (booking_reference, ticket_number, user_id, flight_id, seat_number,
		passenger_name, passenger_email, passenger_phone, passenger_id_number, passenger_id_type,
		amount_cents, currency, status, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at`,
		b.Reference, b.TicketNumber, b.UserID, b.FlightID, b.SeatNumber,
		b.Passenger.Name, b.Passenger.Email, b.Passenger.Phone, b.Passenger.IDNumber, b.Passenger.IDType,
		b.AmountCents, b.Currency, b.Status, b.IssuedAt).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	return translate(err)
}

func insertPayment(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	err := tx.QueryRow(ctx, `INSERT INTO payments (booking_id, amount_cents, currency, method, card_brand, card_last4,
		transaction_id, status, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		p.BookingID, p.AmountCents, p.Currency, p.Method, p.CardBrand, p.CardLast4,
		p.TransactionID, p.Status, p.FailureReason).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return translate(err)
}

func (r *PGBookingRepository) CreateWithPayment(ctx context.Context, booking *domain.Booking, payment *domain.Payment) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := insertBooking(ctx, tx, booking); err != nil {
			return err
		}
		payment.BookingID = booking.ID
		return insertPayment(ctx, tx, payment)
	})
}

func (r *PGBookingRepository) CreatePending(ctx context.Context, booking *domain.Booking) error {
	booking.Status = domain.BookingStatusPending
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		return insertBooking(ctx, tx, booking)
	})
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return b, nil
}

func (r *PGBookingRepository) ReferenceExists(ctx context.Context, reference string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE booking_reference=$1)`, reference).Scan(&exists)
	return exists, err
}

func (r *PGBookingRepository) BookedSeats(ctx context.Context, flightID int64) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT seat_number FROM bookings
		WHERE flight_id=$1 AND status IN ('pending', 'confirmed')
		ORDER BY seat_number`, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]string, 0)
	for rows.Next() {
		var seat string
		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) ConfirmWithPayment(ctx context.Context, booking *domain.Booking, payment *domain.Payment) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		payment.BookingID = booking.ID
		if err := insertPayment(ctx, tx, payment); err != nil {
			return err
		}

		updated, err := scanBooking(tx.QueryRow(ctx, `UPDATE bookings
			SET status=$2, ticket_number=$3, issued_at=$4, updated_at=now()
			WHERE id=$1 AND status=$5
			RETURNING `+bookingColumns,
			booking.ID, domain.BookingStatusConfirmed, booking.TicketNumber, booking.IssuedAt, domain.BookingStatusPending))
		if err != nil {
			if errors.Is(translate(err), ErrNotFound) {
				return fmt.Errorf("confirm booking %d: %w", booking.ID, ErrStaleState)
			}
			return err
		}
		*booking = *updated
		return nil
	})
}

func (r *PGBookingRepository) RecordFailedPayment(ctx context.Context, payment *domain.Payment) error {
	payment.Status = domain.PaymentStatusFailed
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		return insertPayment(ctx, tx, payment)
	})
}

var _ BookingRepository = (*PGBookingRepository)(nil)
