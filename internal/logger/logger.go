// Package logger configures logrus and carries a request-scoped entry and
// correlation id through context.
package logger

import (
	"context"

	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"
)

const CorrelationIDHeader = "Correlation-ID"

type ctxKey int

const (
	loggerKey ctxKey = iota
	correlationIDKey
)

// Init sets the global level and JSON output. Unknown levels fall back to info.
func Init(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.JSONFormatter{})
}

func ToContext(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey, entry)
}

// FromContext returns the entry stored in ctx, or a standard entry.
func FromContext(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(loggerKey).(*logrus.Entry); ok {
		return entry
	}
	entry := logrus.NewEntry(logrus.StandardLogger())
	if id := CorrelationIDFromContext(ctx); id != "" {
		entry = entry.WithField("correlation_id", id)
	}
	return entry
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

func NewCorrelationID() string {
	return shortuuid.New()
}

// WithCorrelationID stores id (or a fresh one when empty) and a logger entry
// tagged with it.
func WithCorrelationID(ctx context.Context, id string) (context.Context, string) {
	if id == "" {
		id = NewCorrelationID()
	}
	ctx = ContextWithCorrelationID(ctx, id)
	ctx = ToContext(ctx, logrus.WithField("correlation_id", id))
	return ctx, id
}
