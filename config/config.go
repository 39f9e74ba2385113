package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	GRPC          GRPCConfig          `yaml:"grpc"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	RabbitMQ      RabbitMQConfig      `yaml:"rabbitmq"`
	Mongo         MongoConfig         `yaml:"mongo"`
	Auth          AuthConfig          `yaml:"auth"`
	Log           LogConfig           `yaml:"log"`
	Booking       BookingConfig       `yaml:"booking"`
	Payment       PaymentConfig       `yaml:"payment"`
	Broadcast     BroadcastConfig     `yaml:"broadcast"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Worker        WorkerConfig        `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	Migrate  bool   `yaml:"migrate"`
}

// DSN prefers an explicit URL and falls back to the discrete fields.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type RabbitMQConfig struct {
	URL               string `yaml:"url"`
	NotificationQueue string `yaml:"notification_queue"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type AuthConfig struct {
	JWTSecret     string   `yaml:"jwt_secret"`
	ElevatedRoles []string `yaml:"elevated_roles"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type BookingConfig struct {
	FlightsCacheTTL   int `yaml:"flights_cache_ttl_seconds"`
	SeatMapCacheTTL   int `yaml:"seat_map_cache_ttl_seconds"`
	ReferenceAttempts int `yaml:"reference_attempts"`
	NotifyTimeoutSecs int `yaml:"notify_timeout_seconds"`
}

type PaymentConfig struct {
	Gateway           string `yaml:"gateway"`
	Endpoint          string `yaml:"endpoint"`
	APIKey            string `yaml:"api_key"`
	ChargeTimeoutSecs int    `yaml:"charge_timeout_seconds"`
	DefaultCurrency   string `yaml:"default_currency"`
	MockLatencyMillis int    `yaml:"mock_latency_millis"`
}

type BroadcastConfig struct {
	Mode          string `yaml:"mode"`
	ChannelPrefix string `yaml:"channel_prefix"`
	SendBuffer    int    `yaml:"send_buffer"`
}

type NotificationsConfig struct {
	Transport string `yaml:"transport"`
}

type WorkerConfig struct {
	ConsumerName string `yaml:"consumer_name"`
}

func (c BookingConfig) FlightsTTL() time.Duration {
	return time.Duration(c.FlightsCacheTTL) * time.Second
}

func (c BookingConfig) SeatMapTTL() time.Duration {
	return time.Duration(c.SeatMapCacheTTL) * time.Second
}

func (c BookingConfig) NotifyTimeout() time.Duration {
	return time.Duration(c.NotifyTimeoutSecs) * time.Second
}

func (c PaymentConfig) ChargeTimeout() time.Duration {
	return time.Duration(c.ChargeTimeoutSecs) * time.Second
}

func (c PaymentConfig) MockLatency() time.Duration {
	return time.Duration(c.MockLatencyMillis) * time.Millisecond
}

// LoadConfig reads the YAML file at path after loading an optional .env file,
// then applies environment overrides and defaults.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"DATABASE_URL":    &c.Database.URL,
		"REDIS_ADDR":      &c.Redis.Addr,
		"JWT_SECRET":      &c.Auth.JWTSecret,
		"MONGO_URI":       &c.Mongo.URI,
		"RABBITMQ_URL":    &c.RabbitMQ.URL,
		"PAYMENT_GATEWAY": &c.Payment.Gateway,
	}
	for env, dst := range overrides {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if len(c.Auth.ElevatedRoles) == 0 {
		c.Auth.ElevatedRoles = []string{"admin"}
	}
	if c.Booking.FlightsCacheTTL == 0 {
		c.Booking.FlightsCacheTTL = 60
	}
	if c.Booking.SeatMapCacheTTL == 0 {
		c.Booking.SeatMapCacheTTL = 600
	}
	if c.Booking.ReferenceAttempts == 0 {
		c.Booking.ReferenceAttempts = 5
	}
	if c.Booking.NotifyTimeoutSecs == 0 {
		c.Booking.NotifyTimeoutSecs = 5
	}
	if c.Payment.Gateway == "" {
		c.Payment.Gateway = "mock"
	}
	if c.Payment.ChargeTimeoutSecs == 0 {
		c.Payment.ChargeTimeoutSecs = 30
	}
	if c.Payment.DefaultCurrency == "" {
		c.Payment.DefaultCurrency = "USD"
	}
	if c.Broadcast.Mode == "" {
		c.Broadcast.Mode = "local"
	}
	if c.Broadcast.ChannelPrefix == "" {
		c.Broadcast.ChannelPrefix = "seats:flight:"
	}
	if c.Broadcast.SendBuffer == 0 {
		c.Broadcast.SendBuffer = 16
	}
	if c.Notifications.Transport == "" {
		c.Notifications.Transport = "kafka"
	}
	if c.RabbitMQ.NotificationQueue == "" {
		c.RabbitMQ.NotificationQueue = "booking.notifications"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "seatbooking"
	}
	if c.Worker.ConsumerName == "" {
		c.Worker.ConsumerName = "notification-worker"
	}
}
