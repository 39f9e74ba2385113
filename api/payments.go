package api

import (
	"net/http"

	"github.com/Domenick1991/seatbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	service booking.BookingUseCase
}

type processPaymentRequest struct {
	BookingID     int64   `json:"booking_id" binding:"required"`
	Amount        float64 `json:"amount" binding:"required"`
	Currency      string  `json:"currency"`
	PaymentMethod string  `json:"payment_method"`
	cardRequest
}

func NewPaymentHandler(service booking.BookingUseCase) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.process)
	router.GET("/:booking_id", h.listForBooking)
	router.POST("/:payment_id/refund", h.refund)
}

func (h *PaymentHandler) process(c *gin.Context) {
	var req processPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	pay, err := h.service.ProcessPayment(c.Request.Context(), booking.ProcessPaymentInput{
		BookingID:     req.BookingID,
		AmountCents:   toCents(req.Amount),
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
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
	c.JSON(http.StatusOK, toPaymentResponse(pay))
}

func (h *PaymentHandler) listForBooking(c *gin.Context) {
	id, ok := idParam(c, "booking_id")
	if !ok {
		return
	}
	payments, err := h.service.ListPayments(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]paymentResponse, 0, len(payments))
	for i := range payments {
		out = append(out, toPaymentResponse(&payments[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *PaymentHandler) refund(c *gin.Context) {
	id, ok := idParam(c, "payment_id")
	if !ok {
		return
	}
	pay, err := h.service.RefundPayment(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(pay))
}
