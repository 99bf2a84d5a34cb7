package analytics

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"staybook/internal/inventory"
	"staybook/internal/shared/apperror"
	"staybook/internal/shared/constants"
	"staybook/pkg/cache"
	"staybook/pkg/logger"
)

const (
	maxReportDays     = 366
	defaultReportDays = 30
)

// Service defines the analytics service interface
type Service interface {
	GetOccupancyReport(ctx context.Context, hotelID uuid.UUID, from, to time.Time) (*OccupancyReport, error)
	GetBookingReport(ctx context.Context, from, to *time.Time) (*BookingReport, error)
	InvalidateReports(ctx context.Context) (int, error)

	SetCacheService(cacheService cache.Service)
	SetClock(now func() time.Time)
}

type service struct {
	repo         Repository
	cacheService cache.Service
	now          func() time.Time
	log          *logger.Logger
}

// NewService creates a new analytics service instance
func NewService(repo Repository, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{repo: repo, now: time.Now, log: log}
}

// SetCacheService injects the cache service dependency
func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *service) GetOccupancyReport(ctx context.Context, hotelID uuid.UUID, from, to time.Time) (*OccupancyReport, error) {
	from, to = inventory.NormalizeDate(from), inventory.NormalizeDate(to)
	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}

	cacheKey := constants.BuildOccupancyReportKey(hotelID.String(), label(from), label(to))
	var cached OccupancyReport
	if s.fromCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	days, err := s.repo.DailyOccupancy(ctx, hotelID, from, to)
	if err != nil {
		return nil, apperror.Internal("failed to build occupancy report", err)
	}

	report := summarizeOccupancy(days)
	report.HotelID = hotelID
	report.From, report.To = label(from), label(to)
	report.GeneratedAt = s.now().UTC()

	s.toCache(ctx, cacheKey, report)
	return report, nil
}

// GetBookingReport defaults to the last 30 days ending today.
func (s *service) GetBookingReport(ctx context.Context, from, to *time.Time) (*BookingReport, error) {
	end := inventory.NormalizeDate(s.now().UTC())
	if to != nil {
		end = inventory.NormalizeDate(*to)
	}
	start := end.AddDate(0, 0, -(defaultReportDays - 1))
	if from != nil {
		start = inventory.NormalizeDate(*from)
	}
	if err := validatePeriod(start, end); err != nil {
		return nil, err
	}

	cacheKey := constants.BuildBookingReportKey(label(start), label(end))
	var cached BookingReport
	if s.fromCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	counts, err := s.repo.CountByStatus(ctx, start, end)
	if err != nil {
		return nil, apperror.Internal("failed to build booking report", err)
	}
	revenue, err := s.repo.RevenueTotals(ctx, start, end)
	if err != nil {
		return nil, apperror.Internal("failed to build booking report", err)
	}
	cancellations, err := s.repo.CancellationTotals(ctx, start, end)
	if err != nil {
		return nil, apperror.Internal("failed to build booking report", err)
	}
	daily, err := s.repo.DailyBookings(ctx, start, end)
	if err != nil {
		return nil, apperror.Internal("failed to build booking report", err)
	}

	report := summarizeBookings(counts)
	report.From, report.To = label(start), label(end)
	report.Revenue = roundTotals(*revenue)
	report.Cancellations = CancellationTotals{Fees: round2(cancellations.Fees), Refunds: round2(cancellations.Refunds)}
	report.Daily = daily
	if report.Daily == nil {
		report.Daily = []DailyBookingStats{}
	}
	report.GeneratedAt = s.now().UTC()

	s.toCache(ctx, cacheKey, report)
	return report, nil
}

func summarizeOccupancy(days []DailyOccupancy) *OccupancyReport {
	report := &OccupancyReport{Days: make([]DailyOccupancy, 0, len(days))}
	peak := -1.0

	for _, day := range days {
		if day.TotalRooms > 0 {
			day.OccupancyRate = round2(float64(day.BookedRooms) / float64(day.TotalRooms) * 100)
		}
		report.RoomNights += day.TotalRooms
		report.BookedNights += day.BookedRooms
		if day.OccupancyRate > peak {
			peak = day.OccupancyRate
			report.PeakDate = day.Date
		}
		report.Days = append(report.Days, day)
	}

	if report.RoomNights > 0 {
		report.AverageOccupancy = round2(float64(report.BookedNights) / float64(report.RoomNights) * 100)
	}
	return report
}

func summarizeBookings(counts []StatusCount) *BookingReport {
	report := &BookingReport{ByStatus: map[string]int64{
		"pending":   0,
		"confirmed": 0,
		"cancelled": 0,
		"completed": 0,
		"no_show":   0,
	}}

	for _, c := range counts {
		report.ByStatus[c.Status] += c.Count
		report.TotalBookings += c.Count
	}
	if report.TotalBookings > 0 {
		report.CancellationRate = round2(float64(report.ByStatus["cancelled"]) / float64(report.TotalBookings) * 100)
	}
	return report
}

func validatePeriod(from, to time.Time) error {
	if to.Before(from) {
		return apperror.Validation("to must not be before from")
	}
	if int(to.Sub(from).Hours()/24)+1 > maxReportDays {
		return apperror.Validation("report period cannot exceed 366 days")
	}
	return nil
}

// InvalidateReports drops every cached report so the next request recomputes it.
func (s *service) InvalidateReports(ctx context.Context) (int, error) {
	if s.cacheService == nil {
		return 0, nil
	}
	deleted, err := s.cacheService.DeletePattern(ctx, constants.CACHE_PATTERN_REPORTS)
	if err != nil {
		return deleted, apperror.Internal("failed to invalidate cached reports", err)
	}
	s.log.InfoContext(ctx, "Cached reports invalidated", "deleted", deleted)
	return deleted, nil
}

func (s *service) fromCache(ctx context.Context, key string, dest interface{}) bool {
	if s.cacheService == nil {
		return false
	}
	return s.cacheService.Get(ctx, key, dest) == nil
}

func (s *service) toCache(ctx context.Context, key string, value interface{}) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Set(ctx, key, value, constants.TTL_REPORT); err != nil {
		s.log.WarnContext(ctx, "Failed to cache report", "key", key, "error", err)
	}
}

func roundTotals(t RevenueTotals) RevenueTotals {
	t.Revenue = round2(t.Revenue)
	t.AverageValue = round2(t.AverageValue)
	t.AverageNights = round2(t.AverageNights)
	return t
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func label(t time.Time) string {
	return t.Format(inventory.DateLayout)
}
