package bookings

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"staybook/internal/inventory"
)

// Guests is the party staying in the booked rooms.
type Guests struct {
	Adults   int `gorm:"not null;default:1" json:"adults"`
	Children int `gorm:"not null;default:0" json:"children"`
	Infants  int `gorm:"not null;default:0" json:"infants"`
}

func (g Guests) Total() int {
	return g.Adults + g.Children + g.Infants
}

// GuestContact is what notifications are addressed to.
type GuestContact struct {
	FirstName string `gorm:"type:varchar(100)" json:"first_name"`
	LastName  string `gorm:"type:varchar(100)" json:"last_name"`
	Email     string `gorm:"type:varchar(255)" json:"email"`
	Phone     string `gorm:"type:varchar(30)" json:"phone,omitempty"`
}

// Pricing is derived from the nightly rate and the stay, see CalculatePricing.
type Pricing struct {
	PricePerNight float64 `gorm:"type:numeric(12,2);not null" json:"price_per_night"`
	Taxes         float64 `gorm:"type:numeric(12,2);not null;default:0" json:"taxes"`
	Fees          float64 `gorm:"type:numeric(12,2);not null;default:0" json:"fees"`
	Discount      float64 `gorm:"type:numeric(12,2);not null;default:0" json:"discount"`
	TotalPrice    float64 `gorm:"type:numeric(12,2);not null" json:"total_price"`
	FinalPrice    float64 `gorm:"type:numeric(12,2);not null" json:"final_price"`
	Currency      string  `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
}

type Booking struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookingNumber string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"booking_number"`
	UserID        uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	HotelID       uuid.UUID `gorm:"type:uuid;index;not null" json:"hotel_id"`
	RoomID        uuid.UUID `gorm:"type:uuid;index;not null" json:"room_id"`

	CheckIn        time.Time `gorm:"type:date;index;not null" json:"check_in"`
	CheckOut       time.Time `gorm:"type:date;index;not null" json:"check_out"`
	NumberOfNights int       `gorm:"not null" json:"number_of_nights"`
	Rooms          int       `gorm:"not null;default:1" json:"rooms"`

	Guests       Guests       `gorm:"embedded;embeddedPrefix:guests_" json:"guests"`
	GuestContact GuestContact `gorm:"embedded;embeddedPrefix:contact_" json:"guest_contact"`
	Pricing      Pricing      `gorm:"embedded" json:"pricing"`

	Status             Status             `gorm:"type:varchar(20);index;not null;default:'pending'" json:"status"`
	PaymentStatus      PaymentStatus      `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`
	CancellationPolicy CancellationPolicy `gorm:"type:varchar(30);not null" json:"cancellation_policy"`
	SpecialRequests    string             `gorm:"type:text" json:"special_requests,omitempty"`

	CancellationReason string   `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CancellationFee    *float64 `gorm:"type:numeric(12,2)" json:"cancellation_fee,omitempty"`
	RefundAmount       *float64 `gorm:"type:numeric(12,2)" json:"refund_amount,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	NoShowAt    *time.Time `json:"no_show_at,omitempty"`
}

// TableName sets the table name for Booking
func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Nights lists the ledger dates the booking occupies; checkout is exclusive.
func (b *Booking) Nights() []time.Time {
	return inventory.DatesInRange(b.CheckIn, b.CheckOut)
}

// Apply records a status change and stamps the matching timestamp once.
func (b *Booking) Apply(change StatusChange) {
	b.Status = change.To
	b.UpdatedAt = change.At
	at := change.At
	switch change.To {
	case StatusConfirmed:
		if b.ConfirmedAt == nil {
			b.ConfirmedAt = &at
		}
	case StatusCancelled:
		if b.CancelledAt == nil {
			b.CancelledAt = &at
		}
		b.CancellationReason = change.Reason
		b.CancellationFee = change.Fee
		b.RefundAmount = change.Refund
		if change.PaymentStatus != "" {
			b.PaymentStatus = change.PaymentStatus
		}
	case StatusCompleted:
		if b.CompletedAt == nil {
			b.CompletedAt = &at
		}
	case StatusNoShow:
		if b.NoShowAt == nil {
			b.NoShowAt = &at
		}
	}
}

// StatusChange is one guarded transition written by the repository.
type StatusChange struct {
	From          Status
	To            Status
	At            time.Time
	Reason        string
	Fee           *float64
	Refund        *float64
	PaymentStatus PaymentStatus
}

// Columns is the update set persisted for the change.
func (c StatusChange) Columns() map[string]interface{} {
	columns := map[string]interface{}{
		"status":     c.To,
		"updated_at": c.At,
	}
	switch c.To {
	case StatusConfirmed:
		columns["confirmed_at"] = c.At
	case StatusCancelled:
		columns["cancelled_at"] = c.At
		columns["cancellation_reason"] = c.Reason
		columns["cancellation_fee"] = c.Fee
		columns["refund_amount"] = c.Refund
		if c.PaymentStatus != "" {
			columns["payment_status"] = c.PaymentStatus
		}
	case StatusCompleted:
		columns["completed_at"] = c.At
	case StatusNoShow:
		columns["no_show_at"] = c.At
	}
	return columns
}
