package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/seatbooking/internal/domain"
	"github.com/Domenick1991/seatbooking/internal/logger"
)

// Sender records a delivery per notification. Rendering and SMTP transport
// live outside this service.
type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func Subject(note domain.Notification) string {
	switch note.Kind {
	case domain.NotificationBookingCancelled:
		return fmt.Sprintf("Booking Cancelled - %s", note.Reference)
	default:
		return fmt.Sprintf("Booking Confirmed - %s", note.Reference)
	}
}

func (s *Sender) Send(ctx context.Context, note domain.Notification) error {
	if note.Email == "" {
		return fmt.Errorf("notification %s for booking %d has no recipient", note.Kind, note.BookingID)
	}
	logger.FromContext(ctx).WithFields(map[string]interface{}{
		"to":        note.Email,
		"subject":   Subject(note),
		"reference": note.Reference,
		"flight_id": note.FlightID,
		"seat":      note.SeatNumber,
	}).Info("email sent")
	return nil
}
