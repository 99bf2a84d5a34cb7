package inventory

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DateLayout = "2006-01-02"

// InventoryDay is the per hotel/room/date ledger row. AvailableQuantity and
// IsAvailable are stored for querying but always recomputed on write.
type InventoryDay struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	HotelID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_day_key,priority:1" json:"hotel_id"`
	RoomID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_day_key,priority:2" json:"room_id"`
	Date              time.Time `gorm:"type:date;not null;uniqueIndex:idx_inventory_day_key,priority:3" json:"date"`
	TotalQuantity     int       `gorm:"not null;default:0" json:"total_quantity"`
	BookedQuantity    int       `gorm:"not null;default:0" json:"booked_quantity"`
	AvailableQuantity int       `gorm:"not null;default:0" json:"available_quantity"`
	Price             float64   `gorm:"type:decimal(12,2);not null" json:"price"`
	SpecialPrice      *float64  `gorm:"type:decimal(12,2)" json:"special_price,omitempty"`
	IsSpecialPrice    bool      `gorm:"not null;default:false" json:"is_special_price"`
	Status            Status    `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	IsAvailable       bool      `gorm:"not null;default:true" json:"is_available"`
	Version           int       `gorm:"not null;default:1" json:"-"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (InventoryDay) TableName() string {
	return "inventory_days"
}

func (d *InventoryDay) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// DayKey identifies a ledger day.
type DayKey struct {
	HotelID uuid.UUID
	RoomID  uuid.UUID
	Date    time.Time
}

func NewDayKey(hotelID, roomID uuid.UUID, date time.Time) DayKey {
	return DayKey{HotelID: hotelID, RoomID: roomID, Date: NormalizeDate(date)}
}

func (k DayKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.HotelID, k.RoomID, k.Date.Format(DateLayout))
}

// RoomDefaults seeds a day created lazily for a room.
type RoomDefaults struct {
	TotalQuantity int
	Price         float64
}

// DayUpdate carries the optional fields of an upsert.
type DayUpdate struct {
	TotalQuantity  *int
	Price          *float64
	SpecialPrice   *float64
	IsSpecialPrice *bool
}

// NormalizeDate truncates t to midnight UTC of its calendar date.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

// DatesInRange lists the nights in [from, to), ascending.
func DatesInRange(from, to time.Time) []time.Time {
	from, to = NormalizeDate(from), NormalizeDate(to)
	var dates []time.Time
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// NewDay builds an unsaved day from room defaults.
func NewDay(key DayKey, defaults RoomDefaults) *InventoryDay {
	day := &InventoryDay{
		HotelID:       key.HotelID,
		RoomID:        key.RoomID,
		Date:          NormalizeDate(key.Date),
		TotalQuantity: defaults.TotalQuantity,
		Price:         defaults.Price,
		Status:        StatusAvailable,
		Version:       1,
	}
	day.Recompute()
	return day
}

func (d *InventoryDay) Key() DayKey {
	return DayKey{HotelID: d.HotelID, RoomID: d.RoomID, Date: NormalizeDate(d.Date)}
}

// Recompute refreshes the derived fields. Operator holds are left in place.
func (d *InventoryDay) Recompute() {
	d.AvailableQuantity = d.TotalQuantity - d.BookedQuantity
	d.IsAvailable = d.AvailableQuantity > 0

	if d.Status.IsHold() {
		return
	}
	if d.AvailableQuantity == 0 {
		d.Status = StatusFullyBooked
	} else {
		d.Status = StatusAvailable
	}
}

// Sellable reports whether quantity room-nights can be sold on this day.
func (d *InventoryDay) Sellable(quantity int) bool {
	return !d.Status.IsHold() && d.AvailableQuantity >= quantity
}

// Reserve commits quantity rooms for the day. On error the day is unchanged.
func (d *InventoryDay) Reserve(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if d.Status.IsHold() {
		return fmt.Errorf("%w: %s", ErrDayOnHold, d.Status)
	}
	if d.TotalQuantity-d.BookedQuantity < quantity {
		return ErrInsufficientInventory
	}
	d.BookedQuantity += quantity
	d.Recompute()
	return nil
}

// Release returns quantity rooms to the day. Over-release is rejected.
func (d *InventoryDay) Release(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if d.BookedQuantity < quantity {
		return ErrInvalidRelease
	}
	d.BookedQuantity -= quantity
	d.Recompute()
	return nil
}

// ApplyUpdate sets the given fields. Total quantity may not drop below what
// is already booked.
func (d *InventoryDay) ApplyUpdate(u DayUpdate) error {
	if u.TotalQuantity != nil {
		if *u.TotalQuantity < 0 {
			return fmt.Errorf("%w: total quantity must be >= 0", ErrInvalidUpdate)
		}
		if *u.TotalQuantity < d.BookedQuantity {
			return fmt.Errorf("%w: total quantity %d below booked quantity %d", ErrInvalidUpdate, *u.TotalQuantity, d.BookedQuantity)
		}
	}
	if u.Price != nil && *u.Price < 0 {
		return fmt.Errorf("%w: price must be >= 0", ErrInvalidUpdate)
	}
	if u.SpecialPrice != nil && *u.SpecialPrice < 0 {
		return fmt.Errorf("%w: special price must be >= 0", ErrInvalidUpdate)
	}

	if u.TotalQuantity != nil {
		d.TotalQuantity = *u.TotalQuantity
	}
	if u.Price != nil {
		d.Price = *u.Price
	}
	if u.SpecialPrice != nil {
		special := *u.SpecialPrice
		d.SpecialPrice = &special
		if u.IsSpecialPrice == nil {
			d.IsSpecialPrice = true
		}
	}
	if u.IsSpecialPrice != nil {
		d.IsSpecialPrice = *u.IsSpecialPrice && d.SpecialPrice != nil
	}
	d.Recompute()
	return nil
}

// SetStatus applies an operator status. Setting available clears a hold and
// re-derives the status from quantities.
func (d *InventoryDay) SetStatus(status Status) error {
	switch status {
	case StatusMaintenance, StatusBlocked:
		d.Status = status
	case StatusAvailable:
		d.Status = StatusAvailable
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	d.Recompute()
	return nil
}

// EffectivePrice is the nightly price that applies on this day.
func (d *InventoryDay) EffectivePrice() float64 {
	if d.IsSpecialPrice && d.SpecialPrice != nil {
		return *d.SpecialPrice
	}
	return d.Price
}

func (d *InventoryDay) Clone() *InventoryDay {
	c := *d
	if d.SpecialPrice != nil {
		sp := *d.SpecialPrice
		c.SpecialPrice = &sp
	}
	return &c
}
