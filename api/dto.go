package api

import (
	"math"
	"strconv"
	"time"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

type passengerRequest struct {
	PassengerName     string `json:"passenger_name" binding:"required"`
	PassengerEmail    string `json:"passenger_email" binding:"required"`
	PassengerPhone    string `json:"passenger_phone"`
	PassengerIDNumber string `json:"passenger_id_number"`
	PassengerIDType   string `json:"passenger_id_type"`
}

func (p passengerRequest) passenger() domain.Passenger {
	return domain.Passenger{
		Name:     p.PassengerName,
		Email:    p.PassengerEmail,
		Phone:    p.PassengerPhone,
		IDNumber: p.PassengerIDNumber,
		IDType:   p.PassengerIDType,
	}
}

type cardRequest struct {
	CardNumber     string `json:"card_number" binding:"required"`
	CardExpiry     string `json:"card_expiry" binding:"required"`
	CardCVV        string `json:"card_cvv" binding:"required"`
	CardholderName string `json:"cardholder_name"`
}

type bookingResponse struct {
	ID           int64            `json:"id"`
	Reference    string           `json:"booking_reference"`
	TicketNumber string           `json:"ticket_number,omitempty"`
	UserID       int64            `json:"user_id"`
	FlightID     int64            `json:"flight_id"`
	SeatNumber   string           `json:"seat_number"`
	Passenger    domain.Passenger `json:"passenger"`
	TotalAmount  float64          `json:"total_amount"`
	Currency     string           `json:"currency"`
	Status       string           `json:"status"`
	IssuedAt     *time.Time       `json:"issued_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:           b.ID,
		Reference:    b.Reference,
		TicketNumber: b.TicketNumber,
		UserID:       b.UserID,
		FlightID:     b.FlightID,
		SeatNumber:   b.SeatNumber,
		Passenger:    b.Passenger,
		TotalAmount:  fromCents(b.AmountCents),
		Currency:     b.Currency,
		Status:       string(b.Status),
		IssuedAt:     b.IssuedAt,
		CreatedAt:    b.CreatedAt,
	}
}

type paymentResponse struct {
	ID                  int64     `json:"id"`
	BookingID           int64     `json:"booking_id"`
	Amount              float64   `json:"amount"`
	Currency            string    `json:"currency"`
	PaymentMethod       string    `json:"payment_method"`
	CardBrand           string    `json:"card_brand,omitempty"`
	CardLast4           string    `json:"card_last4,omitempty"`
	TransactionID       string    `json:"transaction_id,omitempty"`
	RefundTransactionID string    `json:"refund_transaction_id,omitempty"`
	Status              string    `json:"status"`
	FailureReason       string    `json:"failure_reason,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

func toPaymentResponse(p *domain.Payment) paymentResponse {
	return paymentResponse{
		ID:                  p.ID,
		BookingID:           p.BookingID,
		Amount:              fromCents(p.AmountCents),
		Currency:            p.Currency,
		PaymentMethod:       p.Method,
		CardBrand:           p.CardBrand,
		CardLast4:           p.CardLast4,
		TransactionID:       p.TransactionID,
		RefundTransactionID: p.RefundTransactionID,
		Status:              string(p.Status),
		FailureReason:       p.FailureReason,
		CreatedAt:           p.CreatedAt,
	}
}

// toCents converts a decimal currency amount to minor units.
func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromCents(cents int64) float64 {
	return float64(cents) / 100
}

func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}
