package hotels

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"staybook/internal/shared/transaction"
)

type Repository interface {
	CreateHotel(ctx context.Context, hotel *Hotel) error
	GetHotelByID(ctx context.Context, id uuid.UUID, withRooms bool) (*Hotel, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListHotels(ctx context.Context, query HotelListQuery) ([]Hotel, int64, error)
	UpdateHotel(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteHotelCascade(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)

	CreateRoom(ctx context.Context, room *Room) error
	GetRoomByID(ctx context.Context, id uuid.UUID) (*Room, error)
	ListRooms(ctx context.Context, hotelID uuid.UUID) ([]Room, error)
	UpdateRoom(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateHotel(ctx context.Context, hotel *Hotel) error {
	return transaction.Conn(ctx, r.db).Create(hotel).Error
}

func (r *repository) GetHotelByID(ctx context.Context, id uuid.UUID, withRooms bool) (*Hotel, error) {
	query := transaction.Conn(ctx, r.db)
	if withRooms {
		query = query.Preload("Rooms", func(db *gorm.DB) *gorm.DB {
			return db.Order("price_per_night ASC")
		})
	}

	var hotel Hotel
	if err := query.First(&hotel, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHotelNotFound
		}
		return nil, fmt.Errorf("failed to get hotel: %w", err)
	}
	return &hotel, nil
}

func (r *repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := transaction.Conn(ctx, r.db).Model(&Hotel{}).Where("slug = ?", slug).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return count > 0, nil
}

func (r *repository) ListHotels(ctx context.Context, q HotelListQuery) ([]Hotel, int64, error) {
	query := transaction.Conn(ctx, r.db).Model(&Hotel{}).Where("is_active = ?", true)

	if q.City != "" {
		query = query.Where("LOWER(city) = LOWER(?)", q.City)
	}
	if q.Country != "" {
		query = query.Where("LOWER(country) = LOWER(?)", q.Country)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}
	if q.MinStars > 0 {
		query = query.Where("star_rating >= ?", q.MinStars)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count hotels: %w", err)
	}

	var hotels []Hotel
	offset := (q.Page - 1) * q.Limit
	if err := query.Order("name ASC").Offset(offset).Limit(q.Limit).Find(&hotels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list hotels: %w", err)
	}
	return hotels, total, nil
}

func (r *repository) UpdateHotel(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := transaction.Conn(ctx, r.db).Model(&Hotel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update hotel: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrHotelNotFound
	}
	return nil
}

// DeleteHotelCascade removes the hotel and its rooms, returning the removed room ids.
// Ledger rows are kept for history.
func (r *repository) DeleteHotelCascade(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	db := transaction.Conn(ctx, r.db)

	var roomIDs []uuid.UUID
	if err := db.Model(&Room{}).Where("hotel_id = ?", id).Pluck("id", &roomIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to list hotel rooms: %w", err)
	}
	if err := db.Where("hotel_id = ?", id).Delete(&Room{}).Error; err != nil {
		return nil, fmt.Errorf("failed to delete hotel rooms: %w", err)
	}

	result := db.Where("id = ?", id).Delete(&Hotel{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to delete hotel: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrHotelNotFound
	}
	return roomIDs, nil
}

func (r *repository) CreateRoom(ctx context.Context, room *Room) error {
	return transaction.Conn(ctx, r.db).Create(room).Error
}

func (r *repository) GetRoomByID(ctx context.Context, id uuid.UUID) (*Room, error) {
	var room Room
	if err := transaction.Conn(ctx, r.db).First(&room, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return &room, nil
}

func (r *repository) ListRooms(ctx context.Context, hotelID uuid.UUID) ([]Room, error) {
	var rooms []Room
	err := transaction.Conn(ctx, r.db).
		Where("hotel_id = ?", hotelID).
		Order("price_per_night ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (r *repository) UpdateRoom(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := transaction.Conn(ctx, r.db).Model(&Room{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update room: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRoomNotFound
	}
	return nil
}
