package api

import (
	"net/http"

	"github.com/Domenick1991/seatbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	FlightID   int64  `json:"flight_id" binding:"required"`
	SeatNumber string `json:"seat_number" binding:"required"`
	passengerRequest
	TotalAmount float64 `json:"total_amount" binding:"required"`
	Currency    string  `json:"currency"`
}

func (r createBookingRequest) input() booking.CreateBookingInput {
	return booking.CreateBookingInput{
		FlightID:    r.FlightID,
		SeatNumber:  r.SeatNumber,
		Passenger:   r.passenger(),
		AmountCents: toCents(r.TotalAmount),
		Currency:    r.Currency,
	}
}

type createBookingWithPaymentRequest struct {
	createBookingRequest
	PaymentMethod string `json:"payment_method"`
	cardRequest
}

type bookingWithPaymentResponse struct {
	Booking       bookingResponse `json:"booking"`
	PaymentStatus string          `json:"payment_status"`
	PaymentID     int64           `json:"payment_id"`
	TransactionID string          `json:"transaction_id"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.POST("/with-payment", h.createWithPayment)
	router.GET("/", h.listMine)
	router.GET("/:id", h.get)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	created, err := h.service.CreateBooking(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(created))
}

func (h *BookingHandler) createWithPayment(c *gin.Context) {
	var req createBookingWithPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.service.CreateBookingWithPayment(c.Request.Context(), booking.CreateBookingWithPaymentInput{
		CreateBookingInput: req.input(),
		PaymentMethod:      req.PaymentMethod,
		Card: booking.CardInput{
			Number:     req.CardNumber,
			Expiry:     req.CardExpiry,
			CVV:        req.CardCVV,
			HolderName: req.CardholderName,
		},
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, bookingWithPaymentResponse{
		Booking:       toBookingResponse(res.Booking),
		PaymentStatus: string(res.Payment.Status),
		PaymentID:     res.Payment.ID,
		TransactionID: res.Payment.TransactionID,
	})
}

func (h *BookingHandler) listMine(c *gin.Context) {
	bookings, err := h.service.ListMyBookings(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	found, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(found))
}
