package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/shared/apperror"
	"staybook/pkg/cache"
)

type fakeRepository struct {
	occupancy     []DailyOccupancy
	counts        []StatusCount
	revenue       RevenueTotals
	cancellations CancellationTotals
	calls         int
	err           error
	lastFrom      time.Time
	lastTo        time.Time
}

func (f *fakeRepository) DailyOccupancy(ctx context.Context, hotelID uuid.UUID, from, to time.Time) ([]DailyOccupancy, error) {
	f.calls++
	f.lastFrom, f.lastTo = from, to
	return f.occupancy, f.err
}

func (f *fakeRepository) CountByStatus(ctx context.Context, from, to time.Time) ([]StatusCount, error) {
	f.calls++
	f.lastFrom, f.lastTo = from, to
	return f.counts, f.err
}

func (f *fakeRepository) RevenueTotals(ctx context.Context, from, to time.Time) (*RevenueTotals, error) {
	return &f.revenue, f.err
}

func (f *fakeRepository) CancellationTotals(ctx context.Context, from, to time.Time) (*CancellationTotals, error) {
	return &f.cancellations, f.err
}

func (f *fakeRepository) DailyBookings(ctx context.Context, from, to time.Time) ([]DailyBookingStats, error) {
	return nil, f.err
}

// memoryCache keeps JSON like the Redis-backed cache does.
type memoryCache struct {
	cache.Service
	items map[string][]byte
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.items[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCache) DeletePattern(ctx context.Context, pattern string) (int, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	deleted := 0
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
			deleted++
		}
	}
	return deleted, nil
}

func day(d int) time.Time {
	return time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
}

func TestOccupancyReport(t *testing.T) {
	repo := &fakeRepository{occupancy: []DailyOccupancy{
		{Date: "2025-06-01", TotalRooms: 4, BookedRooms: 1},
		{Date: "2025-06-02", TotalRooms: 4, BookedRooms: 3},
		{Date: "2025-06-03", TotalRooms: 0, BookedRooms: 0},
	}}
	svc := NewService(repo, nil)

	report, err := svc.GetOccupancyReport(context.Background(), uuid.New(), day(1), day(3))

	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", report.From)
	assert.Equal(t, "2025-06-03", report.To)
	require.Len(t, report.Days, 3)
	assert.Equal(t, 25.0, report.Days[0].OccupancyRate)
	assert.Equal(t, 75.0, report.Days[1].OccupancyRate)
	assert.Zero(t, report.Days[2].OccupancyRate)
	assert.Equal(t, 8, report.RoomNights)
	assert.Equal(t, 4, report.BookedNights)
	assert.Equal(t, 50.0, report.AverageOccupancy)
	assert.Equal(t, "2025-06-02", report.PeakDate)
}

func TestOccupancyReportIsCached(t *testing.T) {
	repo := &fakeRepository{occupancy: []DailyOccupancy{{Date: "2025-06-01", TotalRooms: 2, BookedRooms: 2}}}
	svc := NewService(repo, nil)
	svc.SetCacheService(&memoryCache{items: map[string][]byte{}})
	hotelID := uuid.New()

	first, err := svc.GetOccupancyReport(context.Background(), hotelID, day(1), day(1))
	require.NoError(t, err)
	second, err := svc.GetOccupancyReport(context.Background(), hotelID, day(1), day(1))
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, first.AverageOccupancy, second.AverageOccupancy)
	assert.Equal(t, 100.0, second.Days[0].OccupancyRate)
}

func TestInvalidateReportsForcesRecompute(t *testing.T) {
	repo := &fakeRepository{occupancy: []DailyOccupancy{{Date: "2025-06-01", TotalRooms: 4, BookedRooms: 2}}}
	svc := NewService(repo, nil)
	store := &memoryCache{items: map[string][]byte{"staybook:rooms:snapshot:uuid:x": []byte(`{}`)}}
	svc.SetCacheService(store)
	hotelID := uuid.New()

	_, err := svc.GetOccupancyReport(context.Background(), hotelID, day(1), day(1))
	require.NoError(t, err)

	deleted, err := svc.InvalidateReports(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.Contains(t, store.items, "staybook:rooms:snapshot:uuid:x")

	_, err = svc.GetOccupancyReport(context.Background(), hotelID, day(1), day(1))
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestOccupancyReportRejectsBadPeriod(t *testing.T) {
	svc := NewService(&fakeRepository{}, nil)

	_, err := svc.GetOccupancyReport(context.Background(), uuid.New(), day(5), day(1))
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.GetOccupancyReport(context.Background(), uuid.New(), day(1), day(1).AddDate(1, 0, 1))
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestBookingReport(t *testing.T) {
	repo := &fakeRepository{
		counts: []StatusCount{
			{Status: "confirmed", Count: 5},
			{Status: "completed", Count: 3},
			{Status: "cancelled", Count: 2},
		},
		revenue:       RevenueTotals{Revenue: 2520.456, AverageValue: 315.0570, AverageNights: 2.6667, RoomNightsSold: 21},
		cancellations: CancellationTotals{Fees: 78.75, Refunds: 551.25},
	}
	svc := NewService(repo, nil)
	svc.SetClock(func() time.Time { return time.Date(2025, 6, 30, 15, 0, 0, 0, time.UTC) })

	report, err := svc.GetBookingReport(context.Background(), nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", report.From)
	assert.Equal(t, "2025-06-30", report.To)
	assert.Equal(t, day(1), repo.lastFrom)
	assert.Equal(t, day(30), repo.lastTo)
	assert.Equal(t, int64(10), report.TotalBookings)
	assert.Equal(t, int64(0), report.ByStatus["no_show"])
	assert.Equal(t, 20.0, report.CancellationRate)
	assert.Equal(t, 2520.46, report.Revenue.Revenue)
	assert.Equal(t, 2.67, report.Revenue.AverageNights)
	assert.Equal(t, 78.75, report.Cancellations.Fees)
	assert.NotNil(t, report.Daily)
}

func TestBookingReportSurfacesStoreFailure(t *testing.T) {
	svc := NewService(&fakeRepository{err: errors.New("connection refused")}, nil)

	_, err := svc.GetBookingReport(context.Background(), nil, nil)

	assert.True(t, apperror.Is(err, apperror.KindInternal))
}
