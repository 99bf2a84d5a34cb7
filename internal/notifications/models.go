package notifications

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventBookingCreated   EventType = "booking.created"
	EventBookingConfirmed EventType = "booking.confirmed"
	EventBookingCancelled EventType = "booking.cancelled"
	EventBookingCompleted EventType = "booking.completed"
	EventBookingNoShow    EventType = "booking.no_show"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Recipient is the guest contact a booking event is addressed to.
type Recipient struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Phone  string    `json:"phone,omitempty"`
}

// BookingEvent is published after a booking change commits.
type BookingEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       EventType `json:"type"`
	Priority   Priority  `json:"priority"`
	OccurredAt time.Time `json:"occurred_at"`

	BookingID     uuid.UUID `json:"booking_id"`
	BookingNumber string    `json:"booking_number"`
	HotelID       uuid.UUID `json:"hotel_id"`
	RoomID        uuid.UUID `json:"room_id"`
	CheckIn       string    `json:"check_in"`
	CheckOut      string    `json:"check_out"`
	Rooms         int       `json:"rooms"`

	Status        string   `json:"status"`
	PaymentStatus string   `json:"payment_status"`
	FinalPrice    float64  `json:"final_price"`
	Currency      string   `json:"currency"`
	Reason        string   `json:"reason,omitempty"`
	Fee           *float64 `json:"cancellation_fee,omitempty"`
	Refund        *float64 `json:"refund_amount,omitempty"`

	Recipient Recipient `json:"recipient"`
}

// EventBuilder assembles a BookingEvent.
type EventBuilder struct {
	event *BookingEvent
}

func NewEventBuilder(eventType EventType) *EventBuilder {
	return &EventBuilder{
		event: &BookingEvent{
			ID:         uuid.New(),
			Type:       eventType,
			Priority:   DefaultPriority(eventType),
			OccurredAt: time.Now().UTC(),
		},
	}
}

func (b *EventBuilder) WithBooking(id uuid.UUID, number string, hotelID, roomID uuid.UUID) *EventBuilder {
	b.event.BookingID = id
	b.event.BookingNumber = number
	b.event.HotelID = hotelID
	b.event.RoomID = roomID
	return b
}

func (b *EventBuilder) WithStay(checkIn, checkOut string, rooms int) *EventBuilder {
	b.event.CheckIn = checkIn
	b.event.CheckOut = checkOut
	b.event.Rooms = rooms
	return b
}

func (b *EventBuilder) WithState(status, paymentStatus string) *EventBuilder {
	b.event.Status = status
	b.event.PaymentStatus = paymentStatus
	return b
}

func (b *EventBuilder) WithPrice(finalPrice float64, currency string) *EventBuilder {
	b.event.FinalPrice = finalPrice
	b.event.Currency = currency
	return b
}

func (b *EventBuilder) WithCancellation(reason string, fee, refund *float64) *EventBuilder {
	b.event.Reason = reason
	b.event.Fee = fee
	b.event.Refund = refund
	return b
}

func (b *EventBuilder) WithRecipient(recipient Recipient) *EventBuilder {
	b.event.Recipient = recipient
	return b
}

func (b *EventBuilder) At(t time.Time) *EventBuilder {
	b.event.OccurredAt = t.UTC()
	return b
}

func (b *EventBuilder) Build() *BookingEvent {
	return b.event
}

func DefaultPriority(eventType EventType) Priority {
	switch eventType {
	case EventBookingCancelled:
		return PriorityHigh
	case EventBookingCompleted:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// PartitionKey keeps every event of one booking on the same partition.
func (e *BookingEvent) PartitionKey() string {
	return e.BookingID.String()
}

func (e *BookingEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ParseBookingEvent(data []byte) (*BookingEvent, error) {
	var event BookingEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal booking event: %w", err)
	}
	if event.Type == "" || event.BookingID == uuid.Nil {
		return nil, fmt.Errorf("booking event is missing type or booking id")
	}
	return &event, nil
}
