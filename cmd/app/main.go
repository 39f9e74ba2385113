package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/seatbooking/api"
	"github.com/Domenick1991/seatbooking/config"
	"github.com/Domenick1991/seatbooking/internal/audit"
	"github.com/Domenick1991/seatbooking/internal/auth"
	"github.com/Domenick1991/seatbooking/internal/bootstrap"
	"github.com/Domenick1991/seatbooking/internal/broadcast"
	"github.com/Domenick1991/seatbooking/internal/cache"
	"github.com/Domenick1991/seatbooking/internal/kafka"
	"github.com/Domenick1991/seatbooking/internal/logger"
	"github.com/Domenick1991/seatbooking/internal/payment"
	"github.com/Domenick1991/seatbooking/internal/rabbitmq"
	"github.com/Domenick1991/seatbooking/internal/repository"
	"github.com/Domenick1991/seatbooking/internal/seats"
	"github.com/Domenick1991/seatbooking/internal/service/booking"
	"github.com/Domenick1991/seatbooking/internal/service/flights"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger.Init(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logrus.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()
	if cfg.Database.Migrate {
		if err := repository.Migrate(ctx, pool); err != nil {
			logrus.WithError(err).Fatal("migrate schema")
		}
	}

	redisClient := cache.NewClient(cfg.Redis)
	defer redisClient.Close()
	redisCache := cache.NewRedisCache(redisClient, cfg.Booking.FlightsTTL(), cfg.Booking.SeatMapTTL())

	gateway, err := payment.New(cfg.Payment)
	if err != nil {
		logrus.WithError(err).Fatal("payment gateway")
	}

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	inventory := seats.NewInventory(flightRepo, bookingRepo, redisCache)

	hub := broadcast.NewHub()
	var tasks []bootstrap.Task
	var publisher booking.SeatPublisher = hub
	if cfg.Broadcast.Mode == "redis" {
		relay := broadcast.NewRedisRelay(redisClient, hub, cfg.Broadcast.ChannelPrefix)
		publisher = relay
		tasks = append(tasks, relay.Run)
	}

	opts := []booking.BookingServiceOption{
		booking.WithPublisher(publisher),
		booking.WithDefaultCurrency(cfg.Payment.DefaultCurrency),
		booking.WithChargeTimeout(cfg.Payment.ChargeTimeout()),
		booking.WithNotifyTimeout(cfg.Booking.NotifyTimeout()),
		booking.WithReferenceAttempts(cfg.Booking.ReferenceAttempts),
	}

	switch cfg.Notifications.Transport {
	case "rabbitmq":
		rabbit, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.NotificationQueue)
		if err != nil {
			logrus.WithError(err).Fatal("connect rabbitmq")
		}
		defer rabbit.Close()
		opts = append(opts, booking.WithNotifier(rabbit))
	default:
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			logrus.WithError(err).Warn("kafka not reachable at startup")
		}
		opts = append(opts, booking.WithNotifier(kafka.NewNotifier(producer, cfg.Kafka.NotificationsTopic, cfg.Kafka.BookingEventsTopic)))
	}

	if cfg.Mongo.URI != "" {
		mongoClient, err := audit.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			logrus.WithError(err).Fatal("connect mongo")
		}
		defer func() { _ = mongoClient.Disconnect(context.Background()) }()
		opts = append(opts, booking.WithAuditor(audit.NewMongoRecorder(mongoClient.Database(cfg.Mongo.Database))))
	}

	bookingService := booking.NewBookingService(bookingRepo, paymentRepo, flightRepo, inventory, gateway, opts...)
	defer bookingService.Wait()
	flightService := flights.NewFlightService(flightRepo, redisCache, inventory)

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.ElevatedRoles)
	router := api.NewRouter(api.RouterDeps{
		Bookings:   bookingService,
		Flights:    flightService,
		Hub:        hub,
		Verifier:   verifier,
		SendBuffer: cfg.Broadcast.SendBuffer,
	})

	servers := bootstrap.NewServers(cfg, router, verifier, flightService, bookingService)
	if err := servers.Run(ctx, cfg.GRPC.Address, tasks...); err != nil {
		logrus.WithError(err).Error("server error")
	}
}
