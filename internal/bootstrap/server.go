package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Domenick1991/seatbooking/config"
	bookingsapi "github.com/Domenick1991/seatbooking/internal/api/bookings_service_api"
	flightsapi "github.com/Domenick1991/seatbooking/internal/api/flights_service_api"
	"github.com/Domenick1991/seatbooking/internal/api/rpc"
	"github.com/Domenick1991/seatbooking/internal/auth"
	"github.com/Domenick1991/seatbooking/internal/service/booking"
	"github.com/Domenick1991/seatbooking/internal/service/flights"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const shutdownTimeout = 5 * time.Second

// Task is a long-running job tied to the server lifetime, such as the broadcast relay.
type Task func(ctx context.Context) error

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
}

func NewServers(cfg *config.Config, router http.Handler, verifier *auth.Verifier, flightSvc flights.FlightUseCase, bookingSvc booking.BookingUseCase) *Servers {
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(rpc.AuthInterceptor(verifier, flightsapi.PublicMethods...)))
	flightsapi.Register(grpcSrv, flightsapi.NewServer(flightSvc))
	bookingsapi.Register(grpcSrv, bookingsapi.NewServer(bookingSvc))

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: &http.Server{
			Addr:              cfg.HTTP.Address,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run serves gRPC and HTTP plus any tasks until ctx is cancelled or one of
// them fails, then shuts everything down.
func (s *Servers) Run(ctx context.Context, grpcAddr string, tasks ...Task) error {
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", grpcAddr, err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logrus.WithField("addr", grpcAddr).Info("grpc server started")
		return s.grpcServer.Serve(lis)
	})
	g.Go(func() error {
		logrus.WithField("addr", s.httpServer.Addr).Info("http server started")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	for _, task := range tasks {
		task := task
		g.Go(func() error { return task(ctx) })
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logrus.Info("servers stopped")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
