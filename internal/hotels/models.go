package hotels

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrHotelNotFound = errors.New("hotel not found")
	ErrRoomNotFound  = errors.New("room not found")
)

type Hotel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Slug        string    `gorm:"uniqueIndex;not null" json:"slug"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Address     string    `json:"address"`
	City        string    `gorm:"index;not null" json:"city"`
	Country     string    `gorm:"index;not null" json:"country"`
	StarRating  int       `gorm:"not null;default:0" json:"star_rating"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	Rooms       []Room    `gorm:"foreignKey:HotelID" json:"rooms,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Hotel) TableName() string {
	return "hotels"
}

func (h *Hotel) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

type Room struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	HotelID       uuid.UUID `gorm:"type:uuid;not null;index" json:"hotel_id"`
	Name          string    `gorm:"not null" json:"name"`
	RoomType      string    `gorm:"type:varchar(30);not null" json:"room_type"`
	Description   string    `gorm:"type:text" json:"description,omitempty"`
	MaxGuests     int       `gorm:"not null" json:"max_guests"`
	PricePerNight float64   `gorm:"type:decimal(12,2);not null" json:"price_per_night"`
	Quantity      int       `gorm:"not null" json:"quantity"`
	IsActive      bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Room) TableName() string {
	return "rooms"
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RoomSnapshot is the catalog view the booking engine works from.
type RoomSnapshot struct {
	HotelID       uuid.UUID `json:"hotel_id"`
	RoomID        uuid.UUID `json:"room_id"`
	Name          string    `json:"name"`
	MaxGuests     int       `json:"max_guests"`
	PricePerNight float64   `json:"price_per_night"`
	Quantity      int       `json:"quantity"`
	IsActive      bool      `json:"is_active"`
}

func (r *Room) Snapshot() *RoomSnapshot {
	return &RoomSnapshot{
		HotelID:       r.HotelID,
		RoomID:        r.ID,
		Name:          r.Name,
		MaxGuests:     r.MaxGuests,
		PricePerNight: r.PricePerNight,
		Quantity:      r.Quantity,
		IsActive:      r.IsActive,
	}
}

var RoomTypes = []string{"SINGLE", "DOUBLE", "TWIN", "SUITE", "FAMILY", "DORM"}
