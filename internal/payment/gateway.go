// Package payment defines the charge/refund capability and its interchangeable
// implementations.
package payment

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Domenick1991/seatbooking/config"
)

// ChargeRequest carries the card fields to the processor. It is never persisted.
type ChargeRequest struct {
	AmountCents    int64
	Currency       string
	CardNumber     string
	CardExpiry     string
	CardCVV        string
	CardholderName string
	Description    string
	Metadata       map[string]string
}

// Result is the processor's verdict. A non-nil error from a Gateway means the
// outcome is unknown and callers must treat it as a failed attempt.
type Result struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	ErrorMessage  string `json:"error_message,omitempty"`
	Code          string `json:"code,omitempty"`
}

const (
	CodeInsufficientFunds = "insufficient_funds"
	CodeCardDeclined      = "card_declined"
	CodeTimeout           = "timeout"
)

type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (Result, error)
	// Refund returns money for transactionID. A nil amount refunds in full.
	Refund(ctx context.Context, transactionID string, amountCents *int64) (Result, error)
}

// New builds the gateway selected by configuration.
func New(cfg config.PaymentConfig) (Gateway, error) {
	switch cfg.Gateway {
	case "mock":
		return NewMockGateway(cfg.MockLatency()), nil
	case "http":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("payment gateway %q requires an endpoint", cfg.Gateway)
		}
		return NewHTTPGateway(cfg.Endpoint, cfg.APIKey, &http.Client{Timeout: cfg.ChargeTimeout()}), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway %q", cfg.Gateway)
	}
}
