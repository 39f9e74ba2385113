package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/seatbooking/internal/card"
	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/logger"
	"github.com/Domenick1991/seatbooking/internal/metrics"
	"github.com/Domenick1991/seatbooking/internal/payment"
	"github.com/Domenick1991/seatbooking/internal/repository"
)

type chargeParams struct {
	amountCents int64
	currency    string
	card        CardInput
	holder      string
	description string
	metadata    map[string]string
}

func validateCard(in CardInput, now time.Time) (card.Details, error) {
	details, err := card.Validate(in.Number, in.Expiry, in.CVV, now)
	if err != nil {
		var verr *card.ValidationError
		if errors.As(err, &verr) {
			return card.Details{}, domain.InvalidInput("%s", verr.Reason)
		}
		return card.Details{}, err
	}
	return details, nil
}

// charge calls the gateway once. Every non-success, including an expired
// deadline, comes back as PaymentDeclined; the call is never retried here.
func (s *BookingService) charge(ctx context.Context, p chargeParams) (string, error) {
	if s.chargeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.chargeTimeout)
		defer cancel()
	}

	start := time.Now()
	res, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		AmountCents:    p.amountCents,
		Currency:       p.currency,
		CardNumber:     p.card.Number,
		CardExpiry:     p.card.Expiry,
		CardCVV:        p.card.CVV,
		CardholderName: p.holder,
		Description:    p.description,
		Metadata:       p.metadata,
	})
	metrics.ChargeDuration.Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, context.DeadlineExceeded) || (err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded)):
		metrics.ChargeOutcomes.WithLabelValues(payment.CodeTimeout).Inc()
		return "", domain.PaymentDeclined("Gateway timeout")
	case err != nil:
		metrics.ChargeOutcomes.WithLabelValues("error").Inc()
		logger.FromContext(ctx).WithError(err).Warn("payment gateway call failed")
		return "", domain.PaymentDeclined("Payment gateway unavailable")
	case !res.Success:
		metrics.ChargeOutcomes.WithLabelValues("declined").Inc()
		msg := res.ErrorMessage
		if msg == "" {
			msg = "Payment declined"
		}
		return "", domain.PaymentDeclined("%s", msg)
	}
	metrics.ChargeOutcomes.WithLabelValues("success").Inc()
	return res.TransactionID, nil
}

// voidCharge returns money taken for a booking that could not be stored.
func (s *BookingService) voidCharge(ctx context.Context, txnID string, amountCents int64) {
	log := logger.FromContext(ctx).WithField("transaction_id", txnID)
	if s.chargeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.chargeTimeout)
		defer cancel()
	}
	res, err := s.gateway.Refund(ctx, txnID, &amountCents)
	if err != nil || !res.Success {
		metrics.Refunds.WithLabelValues("void_failed").Inc()
		log.WithError(err).WithField("reason", res.ErrorMessage).Error("could not void orphan charge")
		return
	}
	metrics.Refunds.WithLabelValues("void").Inc()
	log.WithField("refund_transaction_id", res.TransactionID).Warn("voided orphan charge")
}

func declineReason(err error) string {
	var derr *domain.Error
	if errors.As(err, &derr) {
		return derr.Message
	}
	return err.Error()
}

// ProcessPayment charges an existing pending booking. A decline is stored as
// a failed payment; success confirms the booking in the same transaction as
// the payment row.
func (s *BookingService) ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*domain.Payment, error) {
	caller, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	booking, err := s.loadBooking(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(booking.UserID) {
		return nil, domain.AuthorizationDenied("Not authorized to pay for this booking")
	}
	if booking.Status == domain.BookingStatusCancelled {
		return nil, domain.InvalidStateTransition("Booking is cancelled")
	}

	paid, err := s.payments.HasSuccessful(ctx, booking.ID)
	if err != nil {
		return nil, fmt.Errorf("check payments of booking %d: %w", booking.ID, err)
	}
	if paid || booking.Status == domain.BookingStatusConfirmed {
		return nil, domain.Conflict("Booking already paid")
	}

	diff := input.AmountCents - booking.AmountCents
	if diff > amountTolerance || diff < -amountTolerance {
		return nil, domain.PaymentDeclined("Payment amount (%s) does not match booking total (%s)",
			formatCents(input.AmountCents), formatCents(booking.AmountCents))
	}
	currency, err := s.normalizeCurrency(input.Currency)
	if err != nil {
		return nil, err
	}
	details, err := validateCard(input.Card, s.now())
	if err != nil {
		return nil, err
	}
	flight, err := s.loadFlight(ctx, booking.FlightID)
	if err != nil {
		return nil, err
	}

	method := input.PaymentMethod
	if method == "" {
		method = defaultPaymentMethod
	}
	holder := input.Card.HolderName
	if holder == "" {
		holder = booking.Passenger.Name
	}
	pay := &domain.Payment{
		BookingID:   booking.ID,
		AmountCents: input.AmountCents,
		Currency:    currency,
		Method:      method,
		CardBrand:   string(details.Brand),
		CardLast4:   details.Last4,
		Status:      domain.PaymentStatusPending,
	}

	txnID, chargeErr := s.charge(ctx, chargeParams{
		amountCents: input.AmountCents,
		currency:    currency,
		card:        input.Card,
		holder:      holder,
		description: fmt.Sprintf("Flight booking %s", booking.Reference),
		metadata: map[string]string{
			"booking_id":        fmt.Sprint(booking.ID),
			"booking_reference": booking.Reference,
			"user_id":           fmt.Sprint(caller.UserID),
			"flight_id":         fmt.Sprint(booking.FlightID),
		},
	})

	persistCtx := context.WithoutCancel(ctx)
	if chargeErr != nil {
		if err := pay.Transition(domain.PaymentStatusFailed); err != nil {
			return nil, err
		}
		pay.FailureReason = declineReason(chargeErr)
		if err := s.bookings.RecordFailedPayment(persistCtx, pay); err != nil {
			logger.FromContext(ctx).WithError(err).WithField("booking_id", booking.ID).Error("could not record failed payment")
		} else {
			s.afterPaymentFailed(ctx, pay)
		}
		return nil, chargeErr
	}

	if err := pay.Transition(domain.PaymentStatusSuccess); err != nil {
		return nil, err
	}
	pay.TransactionID = txnID
	issued := s.now().UTC()
	confirmed := *booking
	confirmed.TicketNumber = ticketNumber(flight.AirlineCode, booking.Reference)
	confirmed.IssuedAt = &issued

	if err := s.bookings.ConfirmWithPayment(persistCtx, &confirmed, pay); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyPaid):
			s.voidCharge(persistCtx, txnID, input.AmountCents)
			return nil, domain.Conflict("Booking already paid")
		case errors.Is(err, repository.ErrStaleState):
			s.voidCharge(persistCtx, txnID, input.AmountCents)
			return nil, domain.InvalidStateTransition("Booking is no longer pending")
		default:
			logger.FromContext(ctx).WithError(err).WithField("transaction_id", txnID).Error("charged but payment was not stored")
			return nil, fmt.Errorf("confirm booking %d: %w", booking.ID, err)
		}
	}

	logger.FromContext(ctx).WithField("reference", confirmed.Reference).WithField("payment_id", pay.ID).Info("booking paid")
	s.afterConfirm(ctx, flight, &confirmed, pay)
	return pay, nil
}

// RefundPayment returns a successful payment through the gateway, then marks
// it refunded and cancels the booking in one transaction.
func (s *BookingService) RefundPayment(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	caller, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	pay, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFound("Payment not found")
		}
		return nil, fmt.Errorf("load payment %d: %w", paymentID, err)
	}
	booking, err := s.loadBooking(ctx, pay.BookingID)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(booking.UserID) {
		return nil, domain.AuthorizationDenied("Not authorized")
	}
	switch {
	case pay.Status == domain.PaymentStatusRefunded:
		return nil, domain.InvalidStateTransition("Payment already refunded")
	case !pay.Status.CanTransition(domain.PaymentStatusRefunded):
		return nil, domain.InvalidStateTransition("Can only refund successful payments")
	}

	refundCtx := ctx
	if s.chargeTimeout > 0 {
		var cancel context.CancelFunc
		refundCtx, cancel = context.WithTimeout(ctx, s.chargeTimeout)
		defer cancel()
	}
	amount := pay.AmountCents
	res, err := s.gateway.Refund(refundCtx, pay.TransactionID, &amount)
	switch {
	case err != nil:
		metrics.Refunds.WithLabelValues("error").Inc()
		logger.FromContext(ctx).WithError(err).WithField("payment_id", pay.ID).Warn("refund call failed")
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.PaymentDeclined("Gateway timeout")
		}
		return nil, domain.PaymentDeclined("Payment gateway unavailable")
	case !res.Success:
		metrics.Refunds.WithLabelValues("declined").Inc()
		msg := res.ErrorMessage
		if msg == "" {
			msg = "Refund declined"
		}
		return nil, domain.PaymentDeclined("%s", msg)
	}

	refunded, cancelled, err := s.payments.Refund(context.WithoutCancel(ctx), pay.ID, res.TransactionID)
	if err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			metrics.Refunds.WithLabelValues("stale").Inc()
			return nil, domain.InvalidStateTransition("Payment already refunded")
		}
		logger.FromContext(ctx).WithError(err).WithField("refund_transaction_id", res.TransactionID).Error("refunded but status was not stored")
		return nil, fmt.Errorf("store refund of payment %d: %w", pay.ID, err)
	}
	metrics.Refunds.WithLabelValues("success").Inc()

	logger.FromContext(ctx).WithField("reference", cancelled.Reference).WithField("payment_id", refunded.ID).Info("payment refunded")
	s.afterRefund(ctx, cancelled, refunded)
	return refunded, nil
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
