package bookings_service_api

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/Domenick1991/seatbooking/internal/api/rpc"
	"github.com/Domenick1991/seatbooking/internal/auth"
	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/service/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBookingWithPayment(ctx context.Context, input booking.CreateBookingWithPaymentInput) (*booking.BookingWithPayment, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.BookingWithPayment), args.Error(1)
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ProcessPayment(ctx context.Context, input booking.ProcessPaymentInput) (*domain.Payment, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockBookingUseCase) RefundPayment(ctx context.Context, paymentID int64) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListMyBookings(ctx context.Context) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) ListPayments(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	args := m.Called(ctx, bookingID)
	return args.Get(0).([]domain.Payment), args.Error(1)
}

var verifier = auth.NewVerifier("grpc-secret", []string{"admin"})

func dialServer(t *testing.T, svc booking.BookingUseCase) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(rpc.AuthInterceptor(verifier)))
	Register(srv, NewServer(svc))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func withToken(t *testing.T, userID int64, role string) context.Context {
	t.Helper()
	tok, err := verifier.Issue(userID, role, time.Minute)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+tok)
}

func invoke(ctx context.Context, conn *grpc.ClientConn, method string, fields map[string]any) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	err = conn.Invoke(ctx, "/"+ServiceName+"/"+method, in, out)
	return out, err
}

func TestServer_RequiresToken(t *testing.T) {
	svc := &MockBookingUseCase{}
	conn := dialServer(t, svc)

	_, err := invoke(context.Background(), conn, "ListMyBookings", map[string]any{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	svc.AssertNotCalled(t, "ListMyBookings", mock.Anything)
}

func TestServer_CreateBookingWithPayment(t *testing.T) {
	svc := &MockBookingUseCase{}
	conn := dialServer(t, svc)

	issued := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	svc.On("CreateBookingWithPayment", mock.MatchedBy(func(ctx context.Context) bool {
		id, ok := domain.IdentityFromContext(ctx)
		return ok && id.UserID == 7
	}), mock.MatchedBy(func(in booking.CreateBookingWithPaymentInput) bool {
		return in.FlightID == 1 && in.SeatNumber == "12A" && in.AmountCents == 15000 && in.Card.CVV == "123"
	})).Return(&booking.BookingWithPayment{
		Booking: &domain.Booking{
			ID: 3, Reference: "Q7W2ER", TicketNumber: "SB-Q7W2ER", UserID: 7, FlightID: 1,
			SeatNumber: "12A", AmountCents: 15000, Currency: "USD",
			Status: domain.BookingStatusConfirmed, IssuedAt: &issued,
		},
		Payment: &domain.Payment{ID: 4, Status: domain.PaymentStatusSuccess, TransactionID: "mock_txn_9"},
	}, nil).Once()

	out, err := invoke(withToken(t, 7, "user"), conn, "CreateBookingWithPayment", map[string]any{
		"flight_id":       1,
		"seat_number":     "12A",
		"passenger_name":  "Ada",
		"passenger_email": "ada@example.com",
		"total_amount":    150.0,
		"card_number":     "4242424242424242",
		"card_expiry":     "12/30",
		"card_cvv":        "123",
	})
	require.NoError(t, err)

	m := out.AsMap()
	assert.Equal(t, "success", m["payment_status"])
	assert.Equal(t, float64(4), m["payment_id"])
	assert.Equal(t, "mock_txn_9", m["transaction_id"])
	b := m["booking"].(map[string]any)
	assert.Equal(t, "Q7W2ER", b["booking_reference"])
	assert.Equal(t, "2026-03-15T10:00:00Z", b["issued_at"])
	assert.Equal(t, 150.0, b["total_amount"])
	svc.AssertExpectations(t)
}

func TestServer_ErrorCodes(t *testing.T) {
	svc := &MockBookingUseCase{}
	conn := dialServer(t, svc)
	ctx := withToken(t, 7, "user")

	svc.On("CreateBooking", mock.Anything, mock.Anything).Return(nil, domain.Conflict("Seat 12A is already booked")).Once()
	_, err := invoke(ctx, conn, "CreateBooking", map[string]any{"flight_id": 1, "seat_number": "12A"})
	assert.Equal(t, codes.AlreadyExists, status.Code(err))

	svc.On("RefundPayment", mock.Anything, int64(5)).Return(nil, domain.InvalidStateTransition("Payment already refunded")).Once()
	_, err = invoke(ctx, conn, "RefundPayment", map[string]any{"payment_id": 5})
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Equal(t, "Payment already refunded", status.Convert(err).Message())

	_, err = invoke(ctx, conn, "GetBooking", map[string]any{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}
