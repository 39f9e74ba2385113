package booking

import (
	"context"

	"github.com/Domenick1991/seatbooking/internal/audit"
	"github.com/Domenick1991/seatbooking/internal/broadcast"
	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/logger"
)

// Everything here runs after commit. Failures are logged and never reach the caller.

func (s *BookingService) afterCreate(ctx context.Context, flight *domain.Flight, booking *domain.Booking, pay *domain.Payment) {
	s.publishSeat(ctx, broadcast.SeatBooked(booking.FlightID, booking.SeatNumber, s.now()))

	s.auditBooking(ctx, booking, audit.BookingCreated)
	if pay == nil {
		return
	}
	s.auditPayment(ctx, pay, audit.PaymentCaptured, "")
	s.notify(ctx, domain.NewNotification(domain.NotificationBookingConfirmed, booking, flight.FlightNumber, s.now()))
}

func (s *BookingService) afterConfirm(ctx context.Context, flight *domain.Flight, booking *domain.Booking, pay *domain.Payment) {
	s.auditPayment(ctx, pay, audit.PaymentCaptured, "")
	s.auditBooking(ctx, booking, audit.BookingConfirmed)
	s.notify(ctx, domain.NewNotification(domain.NotificationBookingConfirmed, booking, flight.FlightNumber, s.now()))
}

func (s *BookingService) afterPaymentFailed(ctx context.Context, pay *domain.Payment) {
	s.auditPayment(ctx, pay, audit.PaymentFailed, pay.FailureReason)
}

func (s *BookingService) afterRefund(ctx context.Context, booking *domain.Booking, pay *domain.Payment) {
	s.publishSeat(ctx, broadcast.SeatReleased(booking.FlightID, booking.SeatNumber, s.now()))

	s.auditPayment(ctx, pay, audit.PaymentRefunded, "")
	s.auditBooking(ctx, booking, audit.BookingCancelled)

	if s.notifier == nil {
		return
	}
	at := s.now()
	s.background(ctx, "notify", func(ctx context.Context) error {
		flightNumber := ""
		if flight, err := s.flights.GetByID(ctx, booking.FlightID); err == nil {
			flightNumber = flight.FlightNumber
		}
		return s.notifier.Notify(ctx, domain.NewNotification(domain.NotificationBookingCancelled, booking, flightNumber, at))
	})
}

// publishSeat runs inline: hub sends only enqueue, so this cannot stall the response.
func (s *BookingService) publishSeat(ctx context.Context, event broadcast.SeatEvent) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(context.WithoutCancel(ctx), event.FlightID, event)
}

func (s *BookingService) notify(ctx context.Context, note domain.Notification) {
	if s.notifier == nil {
		return
	}
	s.background(ctx, "notify", func(ctx context.Context) error {
		return s.notifier.Notify(ctx, note)
	})
}

func (s *BookingService) auditBooking(ctx context.Context, booking *domain.Booking, event string) {
	if s.auditor == nil {
		return
	}
	entry := audit.BookingLog{
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		FlightID:   booking.FlightID,
		SeatNumber: booking.SeatNumber,
		EventType:  event,
		Status:     string(booking.Status),
		Metadata: map[string]any{
			"booking_reference": booking.Reference,
			"total_amount":      booking.AmountCents,
		},
		Timestamp: s.now().UTC(),
	}
	s.background(ctx, "audit_booking", func(ctx context.Context) error {
		return s.auditor.RecordBooking(ctx, entry)
	})
}

func (s *BookingService) auditPayment(ctx context.Context, pay *domain.Payment, event, reason string) {
	if s.auditor == nil {
		return
	}
	entry := audit.PaymentLog{
		PaymentID:     pay.ID,
		BookingID:     pay.BookingID,
		AmountCents:   pay.AmountCents,
		EventType:     event,
		PaymentStatus: string(pay.Status),
		Reason:        reason,
		Metadata: map[string]any{
			"card_brand":     pay.CardBrand,
			"card_last4":     pay.CardLast4,
			"transaction_id": pay.TransactionID,
		},
		Timestamp: s.now().UTC(),
	}
	if pay.RefundTransactionID != "" {
		entry.Metadata["refund_transaction_id"] = pay.RefundTransactionID
	}
	s.background(ctx, "audit_payment", func(ctx context.Context) error {
		return s.auditor.RecordPayment(ctx, entry)
	})
}

func (s *BookingService) background(ctx context.Context, task string, fn func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	s.tasks.Add(1)
	go func() {
		defer s.tasks.Done()
		if s.notifyTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.notifyTimeout)
			defer cancel()
		}
		if err := fn(ctx); err != nil {
			logger.FromContext(ctx).WithError(err).WithField("task", task).Warn("post-commit task failed")
		}
	}()
}
