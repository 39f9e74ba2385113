package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusSuccess  PaymentStatus = "success"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusSuccess, PaymentStatusFailed},
	PaymentStatusSuccess: {PaymentStatusRefunded},
}

// CanTransition reports whether a payment may move from s to next.
func (s PaymentStatus) CanTransition(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Payment never carries the full card number or CVV.
type Payment struct {
	ID                  int64
	BookingID           int64
	AmountCents         int64
	Currency            string
	Method              string
	CardBrand           string
	CardLast4           string
	TransactionID       string
	RefundTransactionID string
	Status              PaymentStatus
	FailureReason       string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Transition moves the payment to next or returns an InvalidStateTransition error.
func (p *Payment) Transition(next PaymentStatus) error {
	if !p.Status.CanTransition(next) {
		return InvalidStateTransition("payment cannot move from %s to %s", p.Status, next)
	}
	p.Status = next
	return nil
}
