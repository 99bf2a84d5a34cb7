package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"staybook/internal/shared/transaction"
)

// Repository persists ledger days. Writes go through CompareAndSwap so a
// concurrent writer is detected by the version column.
type Repository interface {
	// Insert stores day unless a row for its key exists. Reports whether a row was created.
	Insert(ctx context.Context, day *InventoryDay) (bool, error)
	// Get loads a day; forUpdate locks the row when called inside a transaction.
	Get(ctx context.Context, key DayKey, forUpdate bool) (*InventoryDay, error)
	// ListRange returns stored days in [from, to) ordered by date.
	ListRange(ctx context.Context, hotelID, roomID uuid.UUID, from, to time.Time) ([]InventoryDay, error)
	// CompareAndSwap persists day if the stored version still equals day.Version,
	// then advances day.Version.
	CompareAndSwap(ctx context.Context, day *InventoryDay) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, day *InventoryDay) (bool, error) {
	if day.Version == 0 {
		day.Version = 1
	}
	result := transaction.Conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hotel_id"}, {Name: "room_id"}, {Name: "date"}},
			DoNothing: true,
		}).
		Create(day)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert inventory day: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) Get(ctx context.Context, key DayKey, forUpdate bool) (*InventoryDay, error) {
	query := transaction.Conn(ctx, r.db)
	if forUpdate && transaction.InTransaction(ctx) {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var day InventoryDay
	err := query.
		Where("hotel_id = ? AND room_id = ? AND date = ?", key.HotelID, key.RoomID, NormalizeDate(key.Date)).
		First(&day).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDayNotFound
		}
		return nil, fmt.Errorf("failed to get inventory day: %w", err)
	}
	return &day, nil
}

func (r *repository) ListRange(ctx context.Context, hotelID, roomID uuid.UUID, from, to time.Time) ([]InventoryDay, error) {
	var days []InventoryDay
	err := transaction.Conn(ctx, r.db).
		Where("hotel_id = ? AND room_id = ? AND date >= ? AND date < ?",
			hotelID, roomID, NormalizeDate(from), NormalizeDate(to)).
		Order("date ASC").
		Find(&days).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory days: %w", err)
	}
	return days, nil
}

func (r *repository) CompareAndSwap(ctx context.Context, day *InventoryDay) (bool, error) {
	expected := day.Version
	now := time.Now().UTC()

	result := transaction.Conn(ctx, r.db).
		Model(&InventoryDay{}).
		Where("id = ? AND version = ?", day.ID, expected).
		Updates(map[string]interface{}{
			"total_quantity":     day.TotalQuantity,
			"booked_quantity":    day.BookedQuantity,
			"available_quantity": day.AvailableQuantity,
			"price":              day.Price,
			"special_price":      day.SpecialPrice,
			"is_special_price":   day.IsSpecialPrice,
			"status":             day.Status,
			"is_available":       day.IsAvailable,
			"version":            expected + 1,
			"updated_at":         now,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to update inventory day: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	day.Version = expected + 1
	day.UpdatedAt = now
	return true, nil
}
