package api

import (
	"net/http"

	"github.com/Domenick1991/seatbooking/internal/auth"
	"github.com/Domenick1991/seatbooking/internal/broadcast"
	"github.com/Domenick1991/seatbooking/internal/service/booking"
	"github.com/Domenick1991/seatbooking/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Bookings   booking.BookingUseCase
	Flights    flights.FlightUseCase
	Hub        *broadcast.Hub
	Verifier   *auth.Verifier
	SendBuffer int
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), CorrelationID())

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	NewFlightChannel(deps.Hub, deps.SendBuffer).Register(router)

	v1 := router.Group("/api/v1")
	NewFlightHandler(deps.Flights).Register(v1.Group("/flights"))

	private := v1.Group("", Authenticate(deps.Verifier))
	NewBookingHandler(deps.Bookings).Register(private.Group("/bookings"))
	NewPaymentHandler(deps.Bookings).Register(private.Group("/payments"))

	return router
}
