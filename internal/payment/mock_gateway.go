package payment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MockGateway is the deterministic stand-in processor. Outcomes are keyed on
// the card number's last four digits:
//
//	0000 -> declined, insufficient funds
//	1111 -> declined by issuer
//	2222 -> gateway timeout
//	else -> success with a fresh transaction id
//
// Refunds always succeed.
type MockGateway struct {
	latency time.Duration
}

func NewMockGateway(latency time.Duration) *MockGateway {
	return &MockGateway{latency: latency}
}

func (g *MockGateway) Charge(ctx context.Context, req ChargeRequest) (Result, error) {
	if err := g.wait(ctx); err != nil {
		return Result{}, err
	}

	number := strings.NewReplacer(" ", "", "-", "").Replace(req.CardNumber)
	last4 := number
	if len(number) > 4 {
		last4 = number[len(number)-4:]
	}

	switch last4 {
	case "0000":
		return Result{ErrorMessage: "Insufficient funds", Code: CodeInsufficientFunds}, nil
	case "1111":
		return Result{ErrorMessage: "Card declined by issuer", Code: CodeCardDeclined}, nil
	case "2222":
		return Result{ErrorMessage: "Gateway timeout", Code: CodeTimeout}, nil
	}

	return Result{Success: true, TransactionID: "mock_txn_" + shortID()}, nil
}

func (g *MockGateway) Refund(ctx context.Context, transactionID string, amountCents *int64) (Result, error) {
	if err := g.wait(ctx); err != nil {
		return Result{}, err
	}
	return Result{Success: true, TransactionID: "mock_refund_" + shortID()}, nil
}

func (g *MockGateway) wait(ctx context.Context) error {
	if g.latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(g.latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

var _ Gateway = (*MockGateway)(nil)
