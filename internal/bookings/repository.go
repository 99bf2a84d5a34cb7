package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"staybook/internal/inventory"
	"staybook/internal/shared/transaction"
)

type Repository interface {
	// Core booking operations
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	// Delete removes the booking only while its stored status still equals
	// status; a concurrent transition yields ErrStatusChanged.
	Delete(ctx context.Context, id uuid.UUID, status Status) error

	// TransitionStatus writes change only while the stored status still equals
	// change.From; otherwise it returns ErrStatusChanged.
	TransitionStatus(ctx context.Context, id uuid.UUID, change StatusChange) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus, at time.Time) error

	// Listing
	List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error)
	ListActiveByHotel(ctx context.Context, hotelID uuid.UUID) ([]Booking, error)
	ListFinishedStays(ctx context.Context, now time.Time, limit int) ([]Booking, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, booking *Booking) error {
	if err := transaction.Conn(ctx, r.db).Create(booking).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrBookingNumberTaken
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	err := transaction.Conn(ctx, r.db).Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *repository) NumberExists(ctx context.Context, number string) (bool, error) {
	var count int64
	err := transaction.Conn(ctx, r.db).
		Model(&Booking{}).
		Where("booking_number = ?", number).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check booking number: %w", err)
	}
	return count > 0, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID, status Status) error {
	result := transaction.Conn(ctx, r.db).Where("id = ? AND status = ?", id, status).Delete(&Booking{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, change StatusChange) error {
	result := transaction.Conn(ctx, r.db).
		Model(&Booking{}).
		Where("id = ? AND status = ?", id, change.From).
		Updates(change.Columns())
	if result.Error != nil {
		return fmt.Errorf("failed to update booking status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus, at time.Time) error {
	result := transaction.Conn(ctx, r.db).
		Model(&Booking{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_status": status,
			"updated_at":     at,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update payment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *repository) List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	var bookings []Booking
	var totalCount int64

	// Set defaults
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	baseQuery := r.applyFilters(transaction.Conn(ctx, r.db).Model(&Booking{}), query)

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Order("created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, totalCount, nil
}

func (r *repository) ListActiveByHotel(ctx context.Context, hotelID uuid.UUID) ([]Booking, error) {
	var bookings []Booking
	err := transaction.Conn(ctx, r.db).
		Where("hotel_id = ? AND status IN ?", hotelID, []Status{StatusPending, StatusConfirmed}).
		Order("check_in ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list hotel bookings: %w", err)
	}
	return bookings, nil
}

func (r *repository) ListFinishedStays(ctx context.Context, now time.Time, limit int) ([]Booking, error) {
	var bookings []Booking
	err := transaction.Conn(ctx, r.db).
		Where("status = ? AND check_out <= ?", StatusConfirmed, inventory.NormalizeDate(now)).
		Order("check_out ASC").
		Limit(limit).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list finished stays: %w", err)
	}
	return bookings, nil
}

// applyFilters applies query filters to the GORM query
func (r *repository) applyFilters(query *gorm.DB, filters BookingListQuery) *gorm.DB {
	if filters.UserID != "" {
		query = query.Where("user_id = ?", filters.UserID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.HotelID != "" {
		if hotelID, err := uuid.Parse(filters.HotelID); err == nil {
			query = query.Where("hotel_id = ?", hotelID)
		}
	}
	if filters.RoomID != "" {
		if roomID, err := uuid.Parse(filters.RoomID); err == nil {
			query = query.Where("room_id = ?", roomID)
		}
	}

	// Stays overlapping [DateFrom, DateTo]
	if filters.DateFrom != "" {
		if dateFrom, err := inventory.ParseDate(filters.DateFrom); err == nil {
			query = query.Where("check_out > ?", dateFrom)
		}
	}
	if filters.DateTo != "" {
		if dateTo, err := inventory.ParseDate(filters.DateTo); err == nil {
			query = query.Where("check_in <= ?", dateTo)
		}
	}

	return query
}
