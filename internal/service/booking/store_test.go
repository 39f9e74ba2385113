package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/repository"
)

// memStore mirrors the uniqueness rules of the schema: one holding booking
// per (flight, seat), unique references, one successful payment per booking.
type memStore struct {
	mu       sync.Mutex
	flights  map[int64]domain.Flight
	seatMaps map[int64]domain.SeatMap
	bookings map[int64]domain.Booking
	payments map[int64]domain.Payment
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{
		flights:  make(map[int64]domain.Flight),
		seatMaps: make(map[int64]domain.SeatMap),
		bookings: make(map[int64]domain.Booking),
		payments: make(map[int64]domain.Payment),
	}
}

func (s *memStore) addFlight(f domain.Flight, seatMap domain.SeatMap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flights[f.ID] = f
	s.seatMaps[f.ID] = seatMap
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) checkBookingLocked(b *domain.Booking) error {
	for _, existing := range s.bookings {
		if existing.Reference == b.Reference {
			return repository.ErrDuplicateReference
		}
		if b.Status.Holding() && existing.Status.Holding() &&
			existing.FlightID == b.FlightID && existing.SeatNumber == b.SeatNumber {
			return repository.ErrSeatTaken
		}
	}
	return nil
}

func (s *memStore) insertPaymentLocked(p *domain.Payment) error {
	if p.Status == domain.PaymentStatusSuccess {
		for _, existing := range s.payments {
			if existing.BookingID == p.BookingID && existing.Status == domain.PaymentStatusSuccess {
				return repository.ErrAlreadyPaid
			}
		}
	}
	p.ID = s.id()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	s.payments[p.ID] = *p
	return nil
}

func (s *memStore) bookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *memStore) paymentsWithStatus(status domain.PaymentStatus) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, p := range s.payments {
		if p.Status == status {
			n++
		}
	}
	return n
}

type memFlights struct{ *memStore }

func (r memFlights) List(context.Context) ([]domain.Flight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Flight, 0, len(r.flights))
	for _, f := range r.flights {
		out = append(out, f)
	}
	return out, nil
}

func (r memFlights) GetByID(_ context.Context, id int64) (*domain.Flight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &f, nil
}

func (r memFlights) AircraftForFlight(_ context.Context, flightID int64) (*domain.Aircraft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.flights[flightID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &domain.Aircraft{ID: f.AircraftID, SeatMap: r.seatMaps[flightID]}, nil
}

func (r memFlights) SeatMapForFlight(ctx context.Context, flightID int64) (domain.SeatMap, error) {
	ac, err := r.AircraftForFlight(ctx, flightID)
	if err != nil {
		return domain.SeatMap{}, err
	}
	return ac.SeatMap, nil
}

type memBookings struct{ *memStore }

func (r memBookings) CreateWithPayment(_ context.Context, b *domain.Booking, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkBookingLocked(b); err != nil {
		return err
	}
	b.ID = r.id()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	p.BookingID = b.ID
	r.bookings[b.ID] = *b
	if err := r.insertPaymentLocked(p); err != nil {
		delete(r.bookings, b.ID)
		return err
	}
	return nil
}

func (r memBookings) CreatePending(_ context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.Status = domain.BookingStatusPending
	if err := r.checkBookingLocked(b); err != nil {
		return err
	}
	b.ID = r.id()
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	r.bookings[b.ID] = *b
	return nil
}

func (r memBookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (r memBookings) ReferenceExists(_ context.Context, ref string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.Reference == ref {
			return true, nil
		}
	}
	return false, nil
}

func (r memBookings) BookedSeats(_ context.Context, flightID int64) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seats := make([]string, 0)
	for _, b := range r.bookings {
		if b.FlightID == flightID && b.Status.Holding() {
			seats = append(seats, b.SeatNumber)
		}
	}
	sort.Strings(seats)
	return seats, nil
}

func (r memBookings) ListByUser(_ context.Context, userID int64) ([]domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Booking, 0)
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memBookings) ConfirmWithPayment(_ context.Context, b *domain.Booking, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.bookings[b.ID]
	if !ok {
		return repository.ErrNotFound
	}
	p.BookingID = b.ID
	if err := r.insertPaymentLocked(p); err != nil {
		return err
	}
	if current.Status != domain.BookingStatusPending {
		delete(r.payments, p.ID)
		return repository.ErrStaleState
	}
	current.Status = domain.BookingStatusConfirmed
	current.TicketNumber = b.TicketNumber
	current.IssuedAt = b.IssuedAt
	current.UpdatedAt = time.Now()
	r.bookings[b.ID] = current
	*b = current
	return nil
}

func (r memBookings) RecordFailedPayment(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Status = domain.PaymentStatusFailed
	return r.insertPaymentLocked(p)
}

type memPayments struct{ *memStore }

func (r memPayments) GetByID(_ context.Context, id int64) (*domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r memPayments) ListByBooking(_ context.Context, bookingID int64) ([]domain.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Payment, 0)
	for _, p := range r.payments {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPayments) HasSuccessful(_ context.Context, bookingID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.BookingID == bookingID && p.Status == domain.PaymentStatusSuccess {
			return true, nil
		}
	}
	return false, nil
}

func (r memPayments) Refund(_ context.Context, paymentID int64, refundTxn string) (*domain.Payment, *domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[paymentID]
	if !ok || p.Status != domain.PaymentStatusSuccess {
		return nil, nil, repository.ErrStaleState
	}
	b := r.bookings[p.BookingID]
	p.Status = domain.PaymentStatusRefunded
	p.RefundTransactionID = refundTxn
	b.Status = domain.BookingStatusCancelled
	r.payments[p.ID] = p
	r.bookings[b.ID] = b
	return &p, &b, nil
}

var (
	_ repository.FlightRepository  = memFlights{}
	_ repository.BookingRepository = memBookings{}
	_ repository.PaymentRepository = memPayments{}
)
