// Package broadcast fans seat events out to the live connections watching a flight.
package broadcast

import (
	"context"
	"sync"

	"github.com/Domenick1991/seatbooking/internal/metrics"
)

// Conn is one live viewer. Send must not block; a returned error drops the
// connection from every flight it watches on that hub.
type Conn interface {
	Send(event SeatEvent) error
}

type Hub struct {
	mu      sync.Mutex
	flights map[int64]map[Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{flights: make(map[int64]map[Conn]struct{})}
}

func (h *Hub) Subscribe(flightID int64, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.flights[flightID]
	if !ok {
		conns = make(map[Conn]struct{})
		h.flights[flightID] = conns
	}
	if _, dup := conns[conn]; !dup {
		conns[conn] = struct{}{}
		metrics.BroadcastSubscribers.Inc()
	}
}

func (h *Hub) Unsubscribe(flightID int64, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(flightID, conn)
}

// Publish delivers event to the current subscribers of flightID. The lock is
// held for the whole fan-out so events for one flight reach each connection
// in publish order.
func (h *Hub) Publish(_ context.Context, flightID int64, event SeatEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.flights[flightID] {
		if err := conn.Send(event); err != nil {
			h.removeLocked(flightID, conn)
			metrics.BroadcastEvicted.Inc()
			continue
		}
		metrics.BroadcastDelivered.Inc()
	}
}

// Subscribers returns the number of connections watching flightID.
func (h *Hub) Subscribers(flightID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.flights[flightID])
}

// Flights returns how many flights have at least one subscriber.
func (h *Hub) Flights() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.flights)
}

func (h *Hub) removeLocked(flightID int64, conn Conn) {
	conns, ok := h.flights[flightID]
	if !ok {
		return
	}
	if _, ok := conns[conn]; ok {
		delete(conns, conn)
		metrics.BroadcastSubscribers.Dec()
	}
	if len(conns) == 0 {
		delete(h.flights, flightID)
	}
}
