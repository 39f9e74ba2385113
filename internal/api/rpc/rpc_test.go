package rpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestStatus(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		err  error
		code codes.Code
		msg  string
	}{
		{domain.NotFound("Flight not found"), codes.NotFound, "Flight not found"},
		{domain.InvalidInput("bad seat"), codes.InvalidArgument, "bad seat"},
		{domain.Conflict("Seat 1A is already booked"), codes.AlreadyExists, "Seat 1A is already booked"},
		{domain.PaymentDeclined("Gateway timeout"), codes.Aborted, "Gateway timeout"},
		{domain.AuthorizationDenied("Not authorized"), codes.PermissionDenied, "Not authorized"},
		{domain.InvalidStateTransition("Payment already refunded"), codes.FailedPrecondition, "Payment already refunded"},
		{errors.New("disk on fire"), codes.Internal, "internal error"},
	}
	for _, tc := range cases {
		st, ok := status.FromError(Status(ctx, tc.err))
		require.True(t, ok)
		assert.Equal(t, tc.code, st.Code())
		assert.Equal(t, tc.msg, st.Message())
	}
	assert.NoError(t, Status(ctx, nil))
}

func TestInt(t *testing.T) {
	in, err := structpb.NewStruct(map[string]any{"id": 12, "frac": 1.5, "name": "x"})
	require.NoError(t, err)

	n, err := Int(in, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(12), n)

	_, err = Int(in, "frac")
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	_, err = Int(in, "name")
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
	_, err = Int(in, "missing")
	assert.Equal(t, domain.KindInvalidInput, domain.KindOf(err))
}

func TestStruct(t *testing.T) {
	at := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	var none *time.Time
	out, err := Struct(map[string]any{
		"at":    at,
		"none":  none,
		"seats": []string{"1A", "1B"},
		"id":    int64(3),
	})
	require.NoError(t, err)
	m := out.AsMap()
	assert.Equal(t, "2026-03-15T10:00:00Z", m["at"])
	assert.Nil(t, m["none"])
	assert.Equal(t, []any{"1A", "1B"}, m["seats"])
	assert.Equal(t, float64(3), m["id"])
}
