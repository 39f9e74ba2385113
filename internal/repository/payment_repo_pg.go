package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error)
	HasSuccessful(ctx context.Context, bookingID int64) (bool, error)
	// Refund marks a successful payment refunded and cancels its booking in
	// one transaction. ErrStaleState means the payment was no longer successful.
	Refund(ctx context.Context, paymentID int64, refundTransactionID string) (*domain.Payment, *domain.Booking, error)
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) *PGPaymentRepository {
	return &PGPaymentRepository{db: db}
}

const paymentColumns = `id, booking_id, amount_cents, currency, method, card_brand, card_last4,
	transaction_id, refund_transaction_id, status, failure_reason, created_at, updated_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	if err := row.Scan(&p.ID, &p.BookingID, &p.AmountCents, &p.Currency, &p.Method, &p.CardBrand, &p.CardLast4,
		&p.TransactionID, &p.RefundTransactionID, &p.Status, &p.FailureReason, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGPaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	p, err := scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (r *PGPaymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id=$1 ORDER BY created_at`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}

func (r *PGPaymentRepository) HasSuccessful(ctx context.Context, bookingID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM payments WHERE booking_id=$1 AND status=$2)`,
		bookingID, domain.PaymentStatusSuccess).Scan(&exists)
	return exists, err
}

func (r *PGPaymentRepository) Refund(ctx context.Context, paymentID int64, refundTransactionID string) (*domain.Payment, *domain.Booking, error) {
	var (
		payment *domain.Payment
		booking *domain.Booking
	)
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		payment, err = scanPayment(tx.QueryRow(ctx, `UPDATE payments
			SET status=$2, refund_transaction_id=$3, updated_at=now()
			WHERE id=$1 AND status=$4
			RETURNING `+paymentColumns,
			paymentID, domain.PaymentStatusRefunded, refundTransactionID, domain.PaymentStatusSuccess))
		if err != nil {
			if errors.Is(translate(err), ErrNotFound) {
				return fmt.Errorf("refund payment %d: %w", paymentID, ErrStaleState)
			}
			return err
		}

		booking, err = scanBooking(tx.QueryRow(ctx, `UPDATE bookings
			SET status=$2, updated_at=now()
			WHERE id=$1
			RETURNING `+bookingColumns,
			payment.BookingID, domain.BookingStatusCancelled))
		return translate(err)
	})
	if err != nil {
		return nil, nil, err
	}
	return payment, booking, nil
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
