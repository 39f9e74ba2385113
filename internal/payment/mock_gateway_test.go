package payment

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGateway_Charge(t *testing.T) {
	gw := NewMockGateway(0)
	ctx := context.Background()

	testCases := []struct {
		name    string
		card    string
		success bool
		message string
		code    string
	}{
		{name: "insufficient funds", card: "4000000000020000", message: "Insufficient funds", code: CodeInsufficientFunds},
		{name: "declined", card: "4000000000061111", message: "Card declined by issuer", code: CodeCardDeclined},
		{name: "timeout", card: "4000000000002222", message: "Gateway timeout", code: CodeTimeout},
		{name: "success", card: "4242424242424242", success: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := gw.Charge(ctx, ChargeRequest{AmountCents: 19900, Currency: "USD", CardNumber: tc.card})
			require.NoError(t, err)
			assert.Equal(t, tc.success, res.Success)
			assert.Equal(t, tc.message, res.ErrorMessage)
			assert.Equal(t, tc.code, res.Code)
			if tc.success {
				assert.True(t, strings.HasPrefix(res.TransactionID, "mock_txn_"))
				assert.Len(t, res.TransactionID, len("mock_txn_")+16)
			} else {
				assert.Empty(t, res.TransactionID)
			}
		})
	}
}

func TestMockGateway_FreshTransactionIDs(t *testing.T) {
	gw := NewMockGateway(0)
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		res, err := gw.Charge(context.Background(), ChargeRequest{CardNumber: "4242424242424242"})
		require.NoError(t, err)
		require.True(t, res.Success)
		assert.True(t, strings.HasPrefix(res.TransactionID, "mock_txn_"))
		_, dup := seen[res.TransactionID]
		assert.False(t, dup)
		seen[res.TransactionID] = struct{}{}
	}
}

func TestMockGateway_Refund(t *testing.T) {
	res, err := NewMockGateway(0).Refund(context.Background(), "mock_txn_abc", nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, strings.HasPrefix(res.TransactionID, "mock_refund_"))
}

func TestMockGateway_LatencyHonoursContext(t *testing.T) {
	gw := NewMockGateway(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := gw.Charge(ctx, ChargeRequest{CardNumber: "4111111111111111"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
