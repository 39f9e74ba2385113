package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// HTTPGateway talks to an external processor exposing POST /charges and
// POST /refunds. Every call carries a fresh Idempotency-Key; retries are new
// attempts made by the caller.
type HTTPGateway struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPGateway(endpoint, apiKey string, client *http.Client) *HTTPGateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPGateway{endpoint: strings.TrimRight(endpoint, "/"), apiKey: apiKey, client: client}
}

type chargePayload struct {
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	CardNumber     string            `json:"card_number"`
	CardExpiry     string            `json:"card_expiry"`
	CardCVV        string            `json:"card_cvv"`
	CardholderName string            `json:"cardholder_name"`
	Description    string            `json:"description,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

type refundPayload struct {
	TransactionID string `json:"transaction_id"`
	Amount        *int64 `json:"amount,omitempty"`
}

func (g *HTTPGateway) Charge(ctx context.Context, req ChargeRequest) (Result, error) {
	return g.post(ctx, "/charges", chargePayload{
		Amount:         req.AmountCents,
		Currency:       req.Currency,
		CardNumber:     req.CardNumber,
		CardExpiry:     req.CardExpiry,
		CardCVV:        req.CardCVV,
		CardholderName: req.CardholderName,
		Description:    req.Description,
		Metadata:       req.Metadata,
	})
}

func (g *HTTPGateway) Refund(ctx context.Context, transactionID string, amountCents *int64) (Result, error) {
	return g.post(ctx, "/refunds", refundPayload{TransactionID: transactionID, Amount: amountCents})
}

func (g *HTTPGateway) post(ctx context.Context, path string, payload any) (Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", uuid.NewString())
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("payment gateway %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("read gateway response: %w", err)
	}

	var result Result
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil && resp.StatusCode < 300 {
			return Result{}, fmt.Errorf("decode gateway response: %w", err)
		}
	}

	if resp.StatusCode >= 300 {
		result.Success = false
		if result.ErrorMessage == "" {
			result.ErrorMessage = fmt.Sprintf("gateway returned status %d", resp.StatusCode)
		}
	}
	return result, nil
}

var _ Gateway = (*HTTPGateway)(nil)
