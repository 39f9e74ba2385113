package broadcast

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/Domenick1991/seatbooking/internal/logger"
	"github.com/redis/go-redis/v9"
)

// RedisRelay forwards seat events through Redis pub/sub so that viewers
// connected to any process see bookings committed by any other.
type RedisRelay struct {
	client *redis.Client
	hub    *Hub
	prefix string
}

func NewRedisRelay(client *redis.Client, hub *Hub, prefix string) *RedisRelay {
	return &RedisRelay{client: client, hub: hub, prefix: prefix}
}

// Publish sends the event to the flight channel. When Redis is unreachable
// the event still reaches local viewers.
func (r *RedisRelay) Publish(ctx context.Context, flightID int64, event SeatEvent) {
	payload, err := json.Marshal(event)
	if err == nil {
		err = r.client.Publish(ctx, r.channel(flightID), payload).Err()
	}
	if err != nil {
		logger.FromContext(ctx).WithError(err).WithField("flight_id", flightID).Warn("relay publish failed, delivering locally")
		r.hub.Publish(ctx, flightID, event)
	}
}

// Run feeds events from every flight channel into the local hub until ctx is done.
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.PSubscribe(ctx, r.prefix+"*")
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.deliver(ctx, msg)
		}
	}
}

func (r *RedisRelay) deliver(ctx context.Context, msg *redis.Message) {
	flightID, err := strconv.ParseInt(strings.TrimPrefix(msg.Channel, r.prefix), 10, 64)
	if err != nil {
		logger.FromContext(ctx).WithField("channel", msg.Channel).Warn("ignoring message on unexpected channel")
		return
	}
	var event SeatEvent
	if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
		logger.FromContext(ctx).WithError(err).WithField("channel", msg.Channel).Warn("ignoring malformed seat event")
		return
	}
	r.hub.Publish(ctx, flightID, event)
}

func (r *RedisRelay) channel(flightID int64) string {
	return r.prefix + strconv.FormatInt(flightID, 10)
}
