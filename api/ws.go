package api

import (
	"net/http"

	"github.com/Domenick1991/seatbooking/internal/broadcast"
	"github.com/Domenick1991/seatbooking/internal/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// FlightChannel upgrades to a websocket that streams seat events for one flight.
type FlightChannel struct {
	hub        *broadcast.Hub
	upgrader   websocket.Upgrader
	sendBuffer int
}

func NewFlightChannel(hub *broadcast.Hub, sendBuffer int) *FlightChannel {
	return &FlightChannel{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Seat maps are public; any origin may watch them.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		sendBuffer: sendBuffer,
	}
}

func (h *FlightChannel) Register(router gin.IRoutes) {
	router.GET("/ws/flights/:flight_id", h.serve)
}

func (h *FlightChannel) serve(c *gin.Context) {
	flightID, ok := idParam(c, "flight_id")
	if !ok {
		return
	}
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.FromContext(c.Request.Context()).WithError(err).Debug("websocket upgrade failed")
		return
	}
	broadcast.NewClient(conn, h.sendBuffer).Serve(c.Request.Context(), h.hub, flightID)
}
