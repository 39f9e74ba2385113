package bookings_service_api

import (
	"context"

	"github.com/Domenick1991/seatbooking/internal/api/rpc"
	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/service/booking"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "seatbooking.v1.BookingsService"

type BookingsServiceServer interface {
	CreateBookingWithPayment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	CreateBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	ProcessPayment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	RefundPayment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	ListMyBookings(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	ListPayments(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Method(ServiceName, "CreateBookingWithPayment", BookingsServiceServer.CreateBookingWithPayment),
		rpc.Method(ServiceName, "CreateBooking", BookingsServiceServer.CreateBooking),
		rpc.Method(ServiceName, "ProcessPayment", BookingsServiceServer.ProcessPayment),
		rpc.Method(ServiceName, "RefundPayment", BookingsServiceServer.RefundPayment),
		rpc.Method(ServiceName, "GetBooking", BookingsServiceServer.GetBooking),
		rpc.Method(ServiceName, "ListMyBookings", BookingsServiceServer.ListMyBookings),
		rpc.Method(ServiceName, "ListPayments", BookingsServiceServer.ListPayments),
	},
	Metadata: "seatbooking/v1/bookings.proto",
}

func Register(s grpc.ServiceRegistrar, srv BookingsServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// Server exposes the booking use cases over gRPC. Messages are JSON-shaped
// structs with the same field names as the REST API.
type Server struct {
	bookings booking.BookingUseCase
}

func NewServer(bookings booking.BookingUseCase) *Server {
	return &Server{bookings: bookings}
}

func (s *Server) CreateBookingWithPayment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	input, err := bookingInput(in)
	if err != nil {
		return nil, rpc.Status(ctx, err)
	}
	res, err := s.bookings.CreateBookingWithPayment(ctx, booking.CreateBookingWithPaymentInput{
		CreateBookingInput: input,
		PaymentMethod:      rpc.String(in, "payment_method"),
		Card:               cardInput(in),
	})
	if err != nil {
		return nil, rpc.Status(ctx, err)
	}
	return rpc.Struct(map[string]any{
		"booking":        bookingFields(res.Booking),
		"payment_status": string(res.Payment.Status),
		"payment_id":     res.Payment.ID,
		"transaction_id": res.Payment.TransactionID,
	})
}

func (s *Server) CreateBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	input, err := bookingInput(in)
	if err != nil {
		return nil, rpc.Status(ctx, err)
	}
	created, err := s.bookings.CreateBooking(ctx, input)
	if err != nil {
		return nil, rpc.Status(ctx, err)
	}
	return rpc.Struct(bookingFields(created))
}

func (s *Server) ProcessPayment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	bookingID, err := rpc.Int(in, "booking_id")
	if err != nil {
		return nil, rpc.Status(ctx, err)
	}
	pay, err := s.bookings.ProcessPayment(ctx, booking.ProcessPaymentInput{
		BookingID:     bookingID,
		AmountCents:   toCents(rpc.Float(in, "amount")),
		Currency:      rpc.String(in, "currency"),
		PaymentMethod: rpc.String(in, "payment_method"),
		Card:          cardInput(in),
	})
	if err != nil {
		return nil, rpc.Status(ctx, err)
	}
	return rpc.Struct(paymentFields(pay))
}

func (s *Server) RefundPayment(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	paymentID, err := rpc.Int(in, "payment_id")
	if err != nil {
		return nil, rpc.Status(ctx, err)
	}
	pay, err := s.bookings.RefundPayment(ctx, paymentID)
	if err != nil {
		return nil, rpc.Status(ctx, err)
	}
	return rpc.Struct(paymentFields(pay))
}

func (s *Server) GetBooking(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := rpc.Int(in, "id")
	if err != nil {
		return nil, rpc.Status(ctx, err)
	}
	found, err := s.bookings.GetBooking(ctx, id)
	if err != nil {
		return nil, rpc.Status(ctx, err)
	}
	return rpc.Struct(bookingFields(found))
}

func (s *Server) ListMyBookings(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	list, err := s.bookings.ListMyBookings(ctx)
	if err != nil {
		return nil, rpc.Status(ctx, err)
	}
	items := make([]any, 0, len(list))
	for i := range list {
		items = append(items, bookingFields(&list[i]))
	}
	return rpc.Struct(map[string]any{"bookings": items})
}

func (s *Server) ListPayments(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	bookingID, err := rpc.Int(in, "booking_id")
	if err != nil {
		return nil, rpc.Status(ctx, err)
	}
	list, err := s.bookings.ListPayments(ctx, bookingID)
	if err != nil {
		return nil, rpc.Status(ctx, err)
	}
	items := make([]any, 0, len(list))
	for i := range list {
		items = append(items, paymentFields(&list[i]))
	}
	return rpc.Struct(map[string]any{"payments": items})
}

func bookingInput(in *structpb.Struct) (booking.CreateBookingInput, error) {
	flightID, err := rpc.Int(in, "flight_id")
	if err != nil {
		return booking.CreateBookingInput{}, err
	}
	return booking.CreateBookingInput{
		FlightID:   flightID,
		SeatNumber: rpc.String(in, "seat_number"),
		Passenger: domain.Passenger{
			Name:     rpc.String(in, "passenger_name"),
			Email:    rpc.String(in, "passenger_email"),
			Phone:    rpc.String(in, "passenger_phone"),
			IDNumber: rpc.String(in, "passenger_id_number"),
			IDType:   rpc.String(in, "passenger_id_type"),
		},
		AmountCents: toCents(rpc.Float(in, "total_amount")),
		Currency:    rpc.String(in, "currency"),
	}, nil
}

func cardInput(in *structpb.Struct) booking.CardInput {
	return booking.CardInput{
		Number:     rpc.String(in, "card_number"),
		Expiry:     rpc.String(in, "card_expiry"),
		CVV:        rpc.String(in, "card_cvv"),
		HolderName: rpc.String(in, "cardholder_name"),
	}
}

// bookingFields is also nested inside other responses, so times are
// formatted here rather than by rpc.Struct.
func bookingFields(b *domain.Booking) map[string]any {
	fields := map[string]any{
		"id":                b.ID,
		"booking_reference": b.Reference,
		"ticket_number":     b.TicketNumber,
		"user_id":           b.UserID,
		"flight_id":         b.FlightID,
		"seat_number":       b.SeatNumber,
		"passenger_name":    b.Passenger.Name,
		"passenger_email":   b.Passenger.Email,
		"total_amount":      fromCents(b.AmountCents),
		"currency":          b.Currency,
		"status":            string(b.Status),
		"created_at":        formatTime(b.CreatedAt),
	}
	if b.IssuedAt != nil {
		fields["issued_at"] = formatTime(*b.IssuedAt)
	}
	return fields
}

func paymentFields(p *domain.Payment) map[string]any {
	return map[string]any{
		"id":                    p.ID,
		"booking_id":            p.BookingID,
		"amount":                fromCents(p.AmountCents),
		"currency":              p.Currency,
		"payment_method":        p.Method,
		"card_brand":            p.CardBrand,
		"card_last4":            p.CardLast4,
		"transaction_id":        p.TransactionID,
		"refund_transaction_id": p.RefundTransactionID,
		"status":                string(p.Status),
		"failure_reason":        p.FailureReason,
		"created_at":            formatTime(p.CreatedAt),
	}
}

var _ BookingsServiceServer = (*Server)(nil)
