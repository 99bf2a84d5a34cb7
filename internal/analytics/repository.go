package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository runs the reporting queries. Date ranges are inclusive.
type Repository interface {
	DailyOccupancy(ctx context.Context, hotelID uuid.UUID, from, to time.Time) ([]DailyOccupancy, error)
	CountByStatus(ctx context.Context, from, to time.Time) ([]StatusCount, error)
	RevenueTotals(ctx context.Context, from, to time.Time) (*RevenueTotals, error)
	CancellationTotals(ctx context.Context, from, to time.Time) (*CancellationTotals, error)
	DailyBookings(ctx context.Context, from, to time.Time) ([]DailyBookingStats, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// DailyOccupancy sums every active room of the hotel per day. Days without
// a ledger row count the room's default quantity as unbooked.
func (r *repository) DailyOccupancy(ctx context.Context, hotelID uuid.UUID, from, to time.Time) ([]DailyOccupancy, error) {
	var days []DailyOccupancy

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			TO_CHAR(d.day, 'YYYY-MM-DD') AS date,
			COALESCE(SUM(COALESCE(i.total_quantity, r.quantity)), 0) AS total_rooms,
			COALESCE(SUM(COALESCE(i.booked_quantity, 0)), 0) AS booked_rooms
		FROM generate_series(?::date, ?::date, interval '1 day') AS d(day)
		CROSS JOIN rooms r
		LEFT JOIN inventory_days i
			ON i.room_id = r.id AND i.hotel_id = r.hotel_id AND i.date = d.day::date
		WHERE r.hotel_id = ? AND r.is_active = true
		GROUP BY d.day
		ORDER BY d.day ASC
	`, from, to, hotelID).Scan(&days).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get daily occupancy: %w", err)
	}

	return days, nil
}

func (r *repository) CountByStatus(ctx context.Context, from, to time.Time) ([]StatusCount, error) {
	var counts []StatusCount

	err := r.bookingsCreatedBetween(ctx, from, to).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings by status: %w", err)
	}

	return counts, nil
}

// RevenueTotals covers confirmed and completed stays; no-shows keep their
// charge but are not counted as sold nights.
func (r *repository) RevenueTotals(ctx context.Context, from, to time.Time) (*RevenueTotals, error) {
	var totals RevenueTotals

	err := r.bookingsCreatedBetween(ctx, from, to).
		Where("status IN ?", []string{"confirmed", "completed"}).
		Select(`COALESCE(SUM(final_price), 0) AS revenue,
			COALESCE(AVG(final_price), 0) AS average_value,
			COALESCE(AVG(number_of_nights), 0) AS average_nights,
			COALESCE(SUM(number_of_nights * rooms), 0) AS room_nights_sold`).
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to calculate revenue: %w", err)
	}

	return &totals, nil
}

func (r *repository) CancellationTotals(ctx context.Context, from, to time.Time) (*CancellationTotals, error) {
	var totals CancellationTotals

	err := r.bookingsCreatedBetween(ctx, from, to).
		Where("status = ?", "cancelled").
		Select("COALESCE(SUM(cancellation_fee), 0) AS fees, COALESCE(SUM(refund_amount), 0) AS refunds").
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to calculate cancellation totals: %w", err)
	}

	return &totals, nil
}

func (r *repository) DailyBookings(ctx context.Context, from, to time.Time) ([]DailyBookingStats, error) {
	var stats []DailyBookingStats

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			TO_CHAR(DATE(created_at), 'YYYY-MM-DD') AS date,
			COUNT(*) AS bookings,
			SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END) AS cancelled,
			COALESCE(SUM(CASE WHEN status IN ('confirmed', 'completed') THEN final_price ELSE 0 END), 0) AS revenue
		FROM bookings
		WHERE created_at >= ? AND created_at < ?
		GROUP BY DATE(created_at)
		ORDER BY DATE(created_at) ASC
	`, from, to.AddDate(0, 0, 1)).Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get daily booking stats: %w", err)
	}

	return stats, nil
}

func (r *repository) bookingsCreatedBetween(ctx context.Context, from, to time.Time) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("bookings").
		Where("created_at >= ? AND created_at < ?", from, to.AddDate(0, 0, 1))
}
