package flights_service_api

import (
	"context"
	"time"

	"github.com/Domenick1991/seatbooking/internal/api/rpc"
	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/service/flights"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "seatbooking.v1.FlightsService"

// PublicMethods need no caller identity.
var PublicMethods = []string{
	"/" + ServiceName + "/ListFlights",
	"/" + ServiceName + "/GetFlight",
	"/" + ServiceName + "/GetSeatAvailability",
}

type FlightsServiceServer interface {
	ListFlights(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetFlight(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	GetSeatAvailability(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FlightsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		rpc.Method(ServiceName, "ListFlights", FlightsServiceServer.ListFlights),
		rpc.Method(ServiceName, "GetFlight", FlightsServiceServer.GetFlight),
		rpc.Method(ServiceName, "GetSeatAvailability", FlightsServiceServer.GetSeatAvailability),
	},
	Metadata: "seatbooking/v1/flights.proto",
}

func Register(s grpc.ServiceRegistrar, srv FlightsServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

type Server struct {
	flights flights.FlightUseCase
}

func NewServer(flights flights.FlightUseCase) *Server {
	return &Server{flights: flights}
}

func (s *Server) ListFlights(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	list, err := s.flights.List(ctx)
	if err != nil {
		return nil, rpc.Status(ctx, err)
	}
	items := make([]any, 0, len(list))
	for i := range list {
		items = append(items, flightFields(&list[i]))
	}
	return rpc.Struct(map[string]any{"flights": items})
}

func (s *Server) GetFlight(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := rpc.Int(in, "id")
	if err != nil {
		return nil, rpc.Status(ctx, err)
	}
	flight, err := s.flights.GetByID(ctx, id)
	if err != nil {
		return nil, rpc.Status(ctx, err)
	}
	return rpc.Struct(flightFields(flight))
}

func (s *Server) GetSeatAvailability(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	id, err := rpc.Int(in, "id")
	if err != nil {
		return nil, rpc.Status(ctx, err)
	}
	seats, err := s.flights.SeatAvailability(ctx, id)
	if err != nil {
		return nil, rpc.Status(ctx, err)
	}
	return rpc.Struct(map[string]any{
		"flight_id": seats.FlightID,
		"valid":     seats.Valid,
		"booked":    seats.Booked,
		"available": seats.Available,
	})
}

func flightFields(f *domain.Flight) map[string]any {
	return map[string]any{
		"id":             f.ID,
		"flight_number":  f.FlightNumber,
		"airline_code":   f.AirlineCode,
		"from_airport":   f.FromAirport,
		"to_airport":     f.ToAirport,
		"departure_time": f.DepartureTime.UTC().Format(time.RFC3339),
		"arrival_time":   f.ArrivalTime.UTC().Format(time.RFC3339),
		"total_seats":    f.TotalSeats,
		"base_price":     float64(f.BasePriceCents) / 100,
	}
}

var _ FlightsServiceServer = (*Server)(nil)
