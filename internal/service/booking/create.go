package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/logger"
	"github.com/Domenick1991/seatbooking/internal/metrics"
	"github.com/Domenick1991/seatbooking/internal/reference"
	"github.com/Domenick1991/seatbooking/internal/repository"
)

const (
	flowCombined  = "combined"
	flowDecoupled = "decoupled"
)

// CreateBookingWithPayment validates, charges and only then persists the
// booking together with its successful payment. A failed charge leaves no rows.
func (s *BookingService) CreateBookingWithPayment(ctx context.Context, input CreateBookingWithPaymentInput) (result *BookingWithPayment, err error) {
	log := logger.FromContext(ctx).WithField("flow", flowCombined).WithField("flight_id", input.FlightID)
	defer func() { s.recordOutcome(ctx, flowCombined, result != nil, err) }()

	caller, err := identity(ctx)
	if err != nil {
		return nil, err
	}

	// VALIDATE
	if err := s.normalizeInput(&input.CreateBookingInput); err != nil {
		return nil, err
	}
	flight, err := s.loadFlight(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	seat, err := s.seats.Check(ctx, flight.ID, input.SeatNumber)
	if err != nil {
		return nil, err
	}
	card, err := validateCard(input.Card, s.now())
	if err != nil {
		return nil, err
	}
	log = log.WithField("seat", seat)

	// CHARGE
	holder := input.Card.HolderName
	if holder == "" {
		holder = input.Passenger.Name
	}
	txnID, err := s.charge(ctx, chargeParams{
		amountCents: input.AmountCents,
		currency:    input.Currency,
		card:        input.Card,
		holder:      holder,
		description: fmt.Sprintf("Flight booking %s seat %s", flight.FlightNumber, seat),
		metadata: map[string]string{
			"user_id":   fmt.Sprint(caller.UserID),
			"flight_id": fmt.Sprint(flight.ID),
			"seat":      seat,
		},
	})
	if err != nil {
		log.WithError(err).Info("charge failed, nothing persisted")
		return nil, err
	}

	// PERSIST. The money has moved, so a caller going away must not abort the write.
	persistCtx := context.WithoutCancel(ctx)
	now := s.now().UTC()
	method := input.PaymentMethod
	if method == "" {
		method = defaultPaymentMethod
	}

	var booking *domain.Booking
	var pay *domain.Payment
	err = s.persistWithReference(persistCtx, func(ref string) error {
		booking = &domain.Booking{
			Reference:    ref,
			TicketNumber: ticketNumber(flight.AirlineCode, ref),
			UserID:       caller.UserID,
			FlightID:     flight.ID,
			SeatNumber:   seat,
			Passenger:    input.Passenger,
			AmountCents:  input.AmountCents,
			Currency:     input.Currency,
			Status:       domain.BookingStatusConfirmed,
			IssuedAt:     &now,
		}
		pay = &domain.Payment{
			AmountCents:   input.AmountCents,
			Currency:      input.Currency,
			Method:        method,
			CardBrand:     string(card.Brand),
			CardLast4:     card.Last4,
			TransactionID: txnID,
			Status:        domain.PaymentStatusSuccess,
		}
		return s.bookings.CreateWithPayment(persistCtx, booking, pay)
	})
	if err != nil {
		if errors.Is(err, repository.ErrSeatTaken) || errors.Is(err, reference.ErrExhausted) {
			s.voidCharge(persistCtx, txnID, input.AmountCents)
		} else {
			log.WithError(err).WithField("transaction_id", txnID).Error("charged but booking was not stored")
		}
		return nil, s.persistError(err, seat)
	}

	log.WithField("reference", booking.Reference).Info("booking confirmed")

	// NOTIFY
	s.afterCreate(ctx, flight, booking, pay)
	return &BookingWithPayment{Booking: booking, Payment: pay}, nil
}

// CreateBooking holds the seat with a pending booking; payment follows later.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (result *domain.Booking, err error) {
	log := logger.FromContext(ctx).WithField("flow", flowDecoupled).WithField("flight_id", input.FlightID)
	defer func() { s.recordOutcome(ctx, flowDecoupled, result != nil, err) }()

	caller, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.normalizeInput(&input); err != nil {
		return nil, err
	}
	flight, err := s.loadFlight(ctx, input.FlightID)
	if err != nil {
		return nil, err
	}
	seat, err := s.seats.Check(ctx, flight.ID, input.SeatNumber)
	if err != nil {
		return nil, err
	}

	var booking *domain.Booking
	err = s.persistWithReference(ctx, func(ref string) error {
		booking = &domain.Booking{
			Reference:   ref,
			UserID:      caller.UserID,
			FlightID:    flight.ID,
			SeatNumber:  seat,
			Passenger:   input.Passenger,
			AmountCents: input.AmountCents,
			Currency:    input.Currency,
			Status:      domain.BookingStatusPending,
		}
		return s.bookings.CreatePending(ctx, booking)
	})
	if err != nil {
		return nil, s.persistError(err, seat)
	}

	log.WithField("seat", seat).WithField("reference", booking.Reference).Info("booking pending payment")
	s.afterCreate(ctx, flight, booking, nil)
	return booking, nil
}

// persistWithReference draws a fresh reference for each attempt and retries
// only when the write lost a race on the reference itself.
func (s *BookingService) persistWithReference(ctx context.Context, write func(ref string) error) error {
	for attempt := 0; attempt < s.refs.Attempts(); attempt++ {
		ref, err := s.refs.Next(ctx)
		if err != nil {
			return err
		}
		err = write(ref)
		if errors.Is(err, repository.ErrDuplicateReference) {
			continue
		}
		return err
	}
	return reference.ErrExhausted
}

func (s *BookingService) persistError(err error, seat string) error {
	switch {
	case errors.Is(err, repository.ErrSeatTaken):
		return domain.Conflict("Seat %s is already booked", seat)
	case errors.Is(err, reference.ErrExhausted):
		return domain.Conflict("Booking reference space exhausted")
	default:
		return fmt.Errorf("persist booking: %w", err)
	}
}

func (s *BookingService) recordOutcome(ctx context.Context, flow string, ok bool, err error) {
	outcome := "success"
	if !ok {
		outcome = domain.KindOf(err).String()
	}
	metrics.BookingOutcomes.WithLabelValues(flow, outcome).Inc()
	if domain.KindOf(err) == domain.KindInternal && err != nil {
		logger.FromContext(ctx).WithError(err).WithField("flow", flow).Error("booking failed")
	}
}
