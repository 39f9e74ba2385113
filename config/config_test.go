package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "database:\n  host: db\n  port: 5432\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "mock", cfg.Payment.Gateway)
	assert.Equal(t, "local", cfg.Broadcast.Mode)
	assert.Equal(t, "kafka", cfg.Notifications.Transport)
	assert.Equal(t, 5, cfg.Booking.ReferenceAttempts)
	assert.Equal(t, 30*time.Second, cfg.Payment.ChargeTimeout())
	assert.Equal(t, []string{"admin"}, cfg.Auth.ElevatedRoles)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwt_secret: from-file\npayment:\n  gateway: mock\n")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("PAYMENT_GATEWAY", "http")
	t.Setenv("DATABASE_URL", "postgres://u:p@db/seatbooking")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "http", cfg.Payment.Gateway)
	assert.Equal(t, "postgres://u:p@db/seatbooking", cfg.Database.DSN())
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDatabaseConfig_DSNFromFields(t *testing.T) {
	d := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=n sslmode=disable", d.DSN())
}
