package notifications

import (
	"context"
	"fmt"
	"strings"

	"staybook/pkg/logger"
)

// Message is a rendered notification ready for delivery.
type Message struct {
	To      string
	Name    string
	Phone   string
	Subject string
	Body    string
	Event   *BookingEvent
}

// Sender delivers rendered messages. Real email and SMS gateways plug in here.
type Sender interface {
	Send(ctx context.Context, msg *Message) error
}

// LogSender writes messages to the structured log instead of delivering them.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	if log == nil {
		log = logger.GetDefault()
	}
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg *Message) error {
	if msg.To == "" {
		return fmt.Errorf("message for booking %s has no recipient", msg.Event.BookingNumber)
	}
	s.log.InfoWithContext(ctx, "Notification Sent", map[string]interface{}{
		"to":             msg.To,
		"subject":        msg.Subject,
		"event_type":     string(msg.Event.Type),
		"booking_number": msg.Event.BookingNumber,
	})
	return nil
}

// Render turns a booking event into the guest-facing message.
func Render(event *BookingEvent) *Message {
	msg := &Message{
		To:    event.Recipient.Email,
		Name:  event.Recipient.Name,
		Phone: event.Recipient.Phone,
		Event: event,
	}

	var body strings.Builder
	fmt.Fprintf(&body, "Hello %s,\n\n", displayName(event.Recipient.Name))

	switch event.Type {
	case EventBookingCreated:
		msg.Subject = fmt.Sprintf("Booking %s received", event.BookingNumber)
		fmt.Fprintf(&body, "We received your booking for %s to %s (%d room(s)). Total: %.2f %s.\n",
			event.CheckIn, event.CheckOut, event.Rooms, event.FinalPrice, event.Currency)
	case EventBookingConfirmed:
		msg.Subject = fmt.Sprintf("Booking %s confirmed", event.BookingNumber)
		fmt.Fprintf(&body, "Your stay from %s to %s is confirmed.\n", event.CheckIn, event.CheckOut)
	case EventBookingCancelled:
		msg.Subject = fmt.Sprintf("Booking %s cancelled", event.BookingNumber)
		fmt.Fprintf(&body, "Your booking for %s to %s was cancelled", event.CheckIn, event.CheckOut)
		if event.Reason != "" {
			fmt.Fprintf(&body, " (%s)", event.Reason)
		}
		body.WriteString(".\n")
		if event.Fee != nil {
			fmt.Fprintf(&body, "Cancellation fee: %.2f %s.\n", *event.Fee, event.Currency)
		}
		if event.Refund != nil {
			fmt.Fprintf(&body, "Refund: %.2f %s.\n", *event.Refund, event.Currency)
		}
	case EventBookingCompleted:
		msg.Subject = fmt.Sprintf("Thank you for staying with us (%s)", event.BookingNumber)
		body.WriteString("We hope you enjoyed your stay.\n")
	case EventBookingNoShow:
		msg.Subject = fmt.Sprintf("Missed check-in for booking %s", event.BookingNumber)
		fmt.Fprintf(&body, "You did not check in on %s.\n", event.CheckIn)
	default:
		msg.Subject = fmt.Sprintf("Update on booking %s", event.BookingNumber)
	}

	msg.Body = body.String()
	return msg
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "guest"
	}
	return name
}
