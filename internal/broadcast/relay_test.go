package broadcast

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRelay_DeliverIgnoresForeignChannels(t *testing.T) {
	hub := NewHub()
	conn := &recordingConn{}
	hub.Subscribe(4, conn)
	relay := NewRedisRelay(nil, hub, "seats:flight:")

	relay.deliver(context.Background(), &redis.Message{Channel: "seats:flight:abc", Payload: `{}`})
	relay.deliver(context.Background(), &redis.Message{Channel: "seats:flight:4", Payload: `not json`})
	relay.deliver(context.Background(), &redis.Message{Channel: "seats:flight:4", Payload: `{"type":"seat_booked","seat_number":"7D","flight_id":4}`})

	assert.Equal(t, []string{"7D"}, conn.seats())
}

func TestRedisRelay_CrossProcess(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	prefix := "test:seats:" + time.Now().Format("150405.000000") + ":"
	receivingHub := NewHub()
	conn := &recordingConn{}
	receivingHub.Subscribe(21, conn)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = NewRedisRelay(client, receivingHub, prefix).Run(ctx) }()

	sender := NewRedisRelay(client, NewHub(), prefix)
	require.Eventually(t, func() bool {
		sender.Publish(ctx, 21, SeatBooked(21, "9F", at))
		return len(conn.seats()) > 0
	}, 3*time.Second, 50*time.Millisecond)
	assert.Equal(t, "9F", conn.seats()[0])
}
