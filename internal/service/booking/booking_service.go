package booking

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/seatbooking/internal/audit"
	"github.com/Domenick1991/seatbooking/internal/broadcast"
	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/payment"
	"github.com/Domenick1991/seatbooking/internal/reference"
	"github.com/Domenick1991/seatbooking/internal/repository"
)

type BookingUseCase interface {
	CreateBookingWithPayment(ctx context.Context, input CreateBookingWithPaymentInput) (*BookingWithPayment, error)
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	ProcessPayment(ctx context.Context, input ProcessPaymentInput) (*domain.Payment, error)
	RefundPayment(ctx context.Context, paymentID int64) (*domain.Payment, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	ListMyBookings(ctx context.Context) ([]domain.Booking, error)
	ListPayments(ctx context.Context, bookingID int64) ([]domain.Payment, error)
}

// SeatChecker is the fast-fail pre-check. It returns the normalized seat code.
type SeatChecker interface {
	Check(ctx context.Context, flightID int64, code string) (string, error)
}

type SeatPublisher interface {
	Publish(ctx context.Context, flightID int64, event broadcast.SeatEvent)
}

type Notifier interface {
	Notify(ctx context.Context, note domain.Notification) error
}

type Auditor interface {
	RecordBooking(ctx context.Context, entry audit.BookingLog) error
	RecordPayment(ctx context.Context, entry audit.PaymentLog) error
}

type CardInput struct {
	Number     string
	Expiry     string
	CVV        string
	HolderName string
}

type CreateBookingInput struct {
	FlightID    int64
	SeatNumber  string
	Passenger   domain.Passenger
	AmountCents int64
	Currency    string
}

type CreateBookingWithPaymentInput struct {
	CreateBookingInput
	PaymentMethod string
	Card          CardInput
}

type ProcessPaymentInput struct {
	BookingID     int64
	AmountCents   int64
	Currency      string
	PaymentMethod string
	Card          CardInput
}

type BookingWithPayment struct {
	Booking *domain.Booking
	Payment *domain.Payment
}

const (
	defaultPaymentMethod = "card"
	// amountTolerance is the largest accepted difference between a payment and the booking total.
	amountTolerance = 1
)

type BookingService struct {
	bookings  repository.BookingRepository
	payments  repository.PaymentRepository
	flights   repository.FlightRepository
	seats     SeatChecker
	gateway   payment.Gateway
	refs      *reference.Generator
	publisher SeatPublisher
	notifier  Notifier
	auditor   Auditor

	currency      string
	chargeTimeout time.Duration
	notifyTimeout time.Duration
	refAttempts   int
	now           func() time.Time

	tasks sync.WaitGroup
}

type BookingServiceOption func(*BookingService)

func WithPublisher(p SeatPublisher) BookingServiceOption {
	return func(s *BookingService) {
		s.publisher = p
	}
}

func WithNotifier(n Notifier) BookingServiceOption {
	return func(s *BookingService) {
		s.notifier = n
	}
}

func WithAuditor(a Auditor) BookingServiceOption {
	return func(s *BookingService) {
		s.auditor = a
	}
}

func WithDefaultCurrency(currency string) BookingServiceOption {
	return func(s *BookingService) {
		s.currency = strings.ToUpper(currency)
	}
}

func WithChargeTimeout(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.chargeTimeout = d
	}
}

func WithNotifyTimeout(d time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.notifyTimeout = d
	}
}

func WithReferenceAttempts(n int) BookingServiceOption {
	return func(s *BookingService) {
		s.refAttempts = n
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	payments repository.PaymentRepository,
	flights repository.FlightRepository,
	seats SeatChecker,
	gateway payment.Gateway,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:      bookings,
		payments:      payments,
		flights:       flights,
		seats:         seats,
		gateway:       gateway,
		currency:      "USD",
		chargeTimeout: 30 * time.Second,
		notifyTimeout: 5 * time.Second,
		refAttempts:   reference.DefaultAttempts,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	service.refs = reference.NewGenerator(bookings.ReferenceExists, service.refAttempts)
	return service
}

// Wait blocks until post-commit tasks started so far have finished.
func (s *BookingService) Wait() {
	s.tasks.Wait()
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	caller, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(booking.UserID) {
		return nil, domain.AuthorizationDenied("Not authorized to view this booking")
	}
	return booking, nil
}

func (s *BookingService) ListMyBookings(ctx context.Context) ([]domain.Booking, error) {
	caller, err := identity(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookings.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list bookings of user %d: %w", caller.UserID, err)
	}
	return bookings, nil
}

func (s *BookingService) ListPayments(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	if _, err := s.GetBooking(ctx, bookingID); err != nil {
		return nil, err
	}
	payments, err := s.payments.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list payments of booking %d: %w", bookingID, err)
	}
	return payments, nil
}

func identity(ctx context.Context) (domain.Identity, error) {
	id, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return domain.Identity{}, domain.AuthorizationDenied("Authentication required")
	}
	return id, nil
}

func (s *BookingService) loadFlight(ctx context.Context, id int64) (*domain.Flight, error) {
	flight, err := s.flights.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFound("Flight not found")
		}
		return nil, fmt.Errorf("load flight %d: %w", id, err)
	}
	return flight, nil
}

func (s *BookingService) loadBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFound("Booking not found")
		}
		return nil, fmt.Errorf("load booking %d: %w", id, err)
	}
	return booking, nil
}

func (s *BookingService) normalizeInput(in *CreateBookingInput) error {
	in.Passenger.Name = strings.TrimSpace(in.Passenger.Name)
	in.Passenger.Email = strings.TrimSpace(in.Passenger.Email)
	if in.Passenger.Name == "" {
		return domain.InvalidInput("Passenger name is required")
	}
	if _, err := mail.ParseAddress(in.Passenger.Email); err != nil {
		return domain.InvalidInput("Passenger email is invalid")
	}
	if in.AmountCents <= 0 {
		return domain.InvalidInput("Total amount must be positive")
	}
	currency, err := s.normalizeCurrency(in.Currency)
	if err != nil {
		return err
	}
	in.Currency = currency
	return nil
}

func (s *BookingService) normalizeCurrency(currency string) (string, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return s.currency, nil
	}
	if len(currency) != 3 {
		return "", domain.InvalidInput("Currency must be a 3-letter code")
	}
	return currency, nil
}

func ticketNumber(airlineCode, ref string) string {
	return airlineCode + "-" + ref
}

var _ BookingUseCase = (*BookingService)(nil)
