package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/seatbooking/config"
	"github.com/Domenick1991/seatbooking/internal/auth"
	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/email"
	"github.com/Domenick1991/seatbooking/internal/kafka"
	"github.com/Domenick1991/seatbooking/internal/logger"
	"github.com/Domenick1991/seatbooking/internal/rabbitmq"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	logger.Init(cfg.Log.Level)
	return cfg, nil
}

// consume hands every booking notification to the email sender until the
// context is cancelled.
func consume(ctx context.Context, cfg *config.Config, transport string) error {
	sender := email.NewSender()
	handler := func(ctx context.Context, note domain.Notification) error {
		ctx, _ = logger.WithCorrelationID(ctx, note.Reference)
		if err := sender.Send(ctx, note); err != nil {
			logger.FromContext(ctx).WithError(err).WithField("kind", note.Kind).Warn("notification not delivered")
		}
		return nil
	}

	logrus.WithField("transport", transport).Info("notification worker started")
	switch transport {
	case "rabbitmq":
		consumer := rabbitmq.NewConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.NotificationQueue, cfg.Worker.ConsumerName)
		return consumer.Consume(ctx, handler)
	case "kafka":
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
		defer consumer.Close()
		err := consumer.ConsumeNotifications(ctx, handler)
		if ctx.Err() != nil {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown notification transport %q", transport)
	}
}

func main() {
	app := &cli.App{
		Name:  "seatbooking-worker",
		Usage: "Background jobs for the seat booking service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				EnvVars: []string{"CONFIG_PATH"},
				Usage:   "path to the YAML config",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "notifications",
				Usage: "deliver booking confirmation and cancellation messages",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "transport", Usage: "kafka or rabbitmq; defaults to notifications.transport"},
				},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					transport := c.String("transport")
					if transport == "" {
						transport = cfg.Notifications.Transport
					}
					ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
					defer stop()
					return consume(ctx, cfg, transport)
				},
			},
			{
				Name:      "issue-token",
				Usage:     "sign an access token for local testing",
				ArgsUsage: "<user_id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "role", Value: "user"},
					&cli.DurationFlag{Name: "ttl", Value: time.Hour},
				},
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					var userID int64
					if _, err := fmt.Sscan(c.Args().First(), &userID); err != nil || userID <= 0 {
						return fmt.Errorf("user id must be a positive integer")
					}
					tok, err := auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.ElevatedRoles).Issue(userID, c.String("role"), c.Duration("ttl"))
					if err != nil {
						return err
					}
					fmt.Println(tok)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("worker failed")
	}
}
