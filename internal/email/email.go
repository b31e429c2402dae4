package email

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Domenick1991/flightwizard/internal/domain"
)

// Sender delivers booking confirmations. Delivery is simulated by writing
// the message to out.
type Sender struct {
	out io.Writer
}

func NewSender() *Sender {
	return &Sender{out: os.Stdout}
}

func NewSenderTo(out io.Writer) *Sender {
	return &Sender{out: out}
}

func (s *Sender) Send(ctx context.Context, event domain.WizardEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if event.Type != domain.EventBookingConfirmed || event.Booking == nil {
		return nil
	}
	if event.Email == "" {
		return fmt.Errorf("event for wizard %s has no recipient", event.WizardID)
	}
	_, err := fmt.Fprintf(s.out, "To: %s\nSubject: %s\n\n%s\n", event.Email, Subject(event.Booking), Body(event))
	return err
}

func Subject(b *domain.BookingResult) string {
	return fmt.Sprintf("Booking %s confirmed", b.Reference)
}

func Body(event domain.WizardEvent) string {
	b := event.Booking
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dear %s,\n\n", event.PassengerName)
	fmt.Fprintf(&sb, "Your booking %s is %s.\n", b.Reference, b.Status)
	fmt.Fprintf(&sb, "Flight %s from %s to %s departs %s.\n", b.FlightNumber, b.DepartureCity, b.ArrivalCity, b.DepartureTime)
	fmt.Fprintf(&sb, "Seats: %d, total paid: %s\n", b.SeatsBooked, domain.FormatPrice(b.TotalPriceCents))
	return sb.String()
}
