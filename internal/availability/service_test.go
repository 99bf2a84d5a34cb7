package availability

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"staybook/internal/hotels"
	"staybook/internal/inventory"
	"staybook/internal/inventory/inventorytest"
	"staybook/internal/shared/apperror"
)

type fakeCatalog struct {
	rooms map[uuid.UUID]*hotels.RoomSnapshot
}

func (f *fakeCatalog) GetRoomSnapshot(ctx context.Context, roomID uuid.UUID) (*hotels.RoomSnapshot, error) {
	room, ok := f.rooms[roomID]
	if !ok {
		return nil, hotels.ErrRoomNotFound
	}
	snapshot := *room
	return &snapshot, nil
}

// failingRepository fails writes for one date.
type failingRepository struct {
	*inventorytest.MemoryRepository
	failOn string
}

func (r *failingRepository) CompareAndSwap(ctx context.Context, day *inventory.InventoryDay) (bool, error) {
	if day.Date.Format(inventory.DateLayout) == r.failOn {
		return false, errors.New("disk on fire")
	}
	return r.MemoryRepository.CompareAndSwap(ctx, day)
}

// mutexLocker serialises reservations per room in-process.
type mutexLocker struct {
	mu sync.Mutex
}

func (l *mutexLocker) Lock(ctx context.Context, hotelID, roomID uuid.UUID) (func(), error) {
	l.mu.Lock()
	return l.mu.Unlock, nil
}

// countingLocker wraps a locker and records acquisitions and releases.
type countingLocker struct {
	inner   RoomLocker
	locks   int32
	unlocks int32
}

func (l *countingLocker) Lock(ctx context.Context, hotelID, roomID uuid.UUID) (func(), error) {
	unlock, err := l.inner.Lock(ctx, hotelID, roomID)
	if err != nil {
		return nil, err
	}
	atomic.AddInt32(&l.locks, 1)
	return func() {
		atomic.AddInt32(&l.unlocks, 1)
		unlock()
	}, nil
}

type staticLocker struct {
	err error
}

func (l staticLocker) Lock(ctx context.Context, hotelID, roomID uuid.UUID) (func(), error) {
	return nil, l.err
}

func date(day int) time.Time {
	return time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC)
}

type ServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	repo    *inventorytest.MemoryRepository
	ledger  *inventory.Ledger
	service *Service
	room    *hotels.RoomSnapshot
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = inventorytest.NewMemoryRepository()
	s.ledger = inventory.NewLedger(s.repo, 1000, nil)
	s.room = &hotels.RoomSnapshot{
		HotelID:       uuid.New(),
		RoomID:        uuid.New(),
		Name:          "Deluxe Double",
		MaxGuests:     2,
		PricePerNight: 100,
		Quantity:      5,
		IsActive:      true,
	}
	catalog := &fakeCatalog{rooms: map[uuid.UUID]*hotels.RoomSnapshot{s.room.RoomID: s.room}}
	s.service = NewService(catalog, s.ledger, nil)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) day(d int) *inventory.InventoryDay {
	day, err := s.repo.Get(s.ctx, inventory.NewDayKey(s.room.HotelID, s.room.RoomID, date(d)), false)
	s.Require().NoError(err)
	return day
}

func (s *ServiceTestSuite) TestCheckRangeWithoutRowsUsesRoomDefaults() {
	result, err := s.service.CheckRange(s.ctx, s.room.HotelID, s.room.RoomID, date(1), date(4), 2)
	s.Require().NoError(err)

	s.True(result.Available)
	s.Nil(result.FailingDate)
	s.Len(result.Nights, 3)
	s.Equal(5, result.Nights[0].AvailableQuantity)
	s.Equal(600.0, result.QuotedTotal)
}

func (s *ServiceTestSuite) TestCheckRangeReportsEarliestFailingDate() {
	_, err := s.service.SetDayStatus(s.ctx, s.room.HotelID, s.room.RoomID, date(3), inventory.StatusMaintenance)
	s.Require().NoError(err)
	total := 1
	_, err = s.service.UpsertDay(s.ctx, s.room.HotelID, s.room.RoomID, date(2), inventory.DayUpdate{TotalQuantity: &total})
	s.Require().NoError(err)

	result, err := s.service.CheckRange(s.ctx, s.room.HotelID, s.room.RoomID, date(1), date(4), 2)
	s.Require().NoError(err)

	s.False(result.Available)
	s.Require().NotNil(result.FailingDate)
	s.Equal(date(2), *result.FailingDate)
	s.Contains(result.Reason, "2025-06-02")
}

func (s *ServiceTestSuite) TestCheckRangeRejectsHeldDayRegardlessOfQuantity() {
	_, err := s.service.SetDayStatus(s.ctx, s.room.HotelID, s.room.RoomID, date(2), inventory.StatusBlocked)
	s.Require().NoError(err)

	result, err := s.service.CheckRange(s.ctx, s.room.HotelID, s.room.RoomID, date(1), date(3), 1)
	s.Require().NoError(err)

	s.False(result.Available)
	s.Equal("room is blocked on 2025-06-02", result.Reason)
}

func (s *ServiceTestSuite) TestCheckRangeValidation() {
	_, err := s.service.CheckRange(s.ctx, s.room.HotelID, s.room.RoomID, date(4), date(4), 1)
	s.True(apperror.Is(err, apperror.KindValidation))

	_, err = s.service.CheckRange(s.ctx, s.room.HotelID, s.room.RoomID, date(1), date(2), 0)
	s.True(apperror.Is(err, apperror.KindValidation))

	_, err = s.service.CheckRange(s.ctx, s.room.HotelID, s.room.RoomID, date(1), date(1).AddDate(0, 0, MaxStayNights+1), 1)
	s.True(apperror.Is(err, apperror.KindValidation))
}

func (s *ServiceTestSuite) TestRoomMustBelongToHotel() {
	_, err := s.service.CheckRange(s.ctx, uuid.New(), s.room.RoomID, date(1), date(2), 1)
	s.True(apperror.Is(err, apperror.KindNotFound))

	_, err = s.service.CheckRange(s.ctx, s.room.HotelID, uuid.New(), date(1), date(2), 1)
	s.True(apperror.Is(err, apperror.KindNotFound))
}

func (s *ServiceTestSuite) TestReserveAndReleaseRange() {
	s.Require().NoError(s.service.ReserveRange(s.ctx, s.room.HotelID, s.room.RoomID, date(1), date(4), 2))

	for d := 1; d <= 3; d++ {
		s.Equal(2, s.day(d).BookedQuantity)
		s.Equal(3, s.day(d).AvailableQuantity)
	}
	_, err := s.repo.Get(s.ctx, inventory.NewDayKey(s.room.HotelID, s.room.RoomID, date(4)), false)
	s.ErrorIs(err, inventory.ErrDayNotFound)

	s.Require().NoError(s.service.ReleaseRange(s.ctx, s.room.HotelID, s.room.RoomID, date(1), date(4), 2))
	for d := 1; d <= 3; d++ {
		s.Equal(0, s.day(d).BookedQuantity)
		s.Equal(inventory.StatusAvailable, s.day(d).Status)
	}
}

func (s *ServiceTestSuite) TestReserveRangeFailsWithoutPartialReservation() {
	total := 1
	_, err := s.service.UpsertDay(s.ctx, s.room.HotelID, s.room.RoomID, date(3), inventory.DayUpdate{TotalQuantity: &total})
	s.Require().NoError(err)

	err = s.service.ReserveRange(s.ctx, s.room.HotelID, s.room.RoomID, date(1), date(4), 2)
	s.Require().Error(err)

	appErr, ok := apperror.As(err)
	s.Require().True(ok)
	s.Equal(apperror.KindInsufficientInventory, appErr.Kind)
	s.Equal("2025-06-03", appErr.Details["failing_date"])

	_, err = s.repo.Get(s.ctx, inventory.NewDayKey(s.room.HotelID, s.room.RoomID, date(1)), false)
	s.ErrorIs(err, inventory.ErrDayNotFound)
}

func (s *ServiceTestSuite) TestReleaseRangeSkipsMissingDays() {
	s.NoError(s.service.ReleaseRange(s.ctx, s.room.HotelID, s.room.RoomID, date(10), date(12), 1))
}

func (s *ServiceTestSuite) TestReleaseRangeRejectsOverRelease() {
	s.Require().NoError(s.service.ReserveRange(s.ctx, s.room.HotelID, s.room.RoomID, date(1), date(2), 1))

	err := s.service.ReleaseRange(s.ctx, s.room.HotelID, s.room.RoomID, date(1), date(2), 2)
	s.True(apperror.Is(err, apperror.KindInternal))
	s.Equal(1, s.day(1).BookedQuantity)
}

func (s *ServiceTestSuite) TestLockContentionIsConcurrencyConflict() {
	s.service.SetLocker(staticLocker{err: ErrLockNotAcquired})

	err := s.service.ReserveRange(s.ctx, s.room.HotelID, s.room.RoomID, date(1), date(2), 1)
	s.True(apperror.Is(err, apperror.KindConcurrencyConflict))
}

func (s *ServiceTestSuite) TestLockRoomSpansCallerWork() {
	locker := &countingLocker{inner: &mutexLocker{}}
	s.service.SetLocker(locker)

	ctx, unlock, err := s.service.LockRoom(s.ctx, s.room.HotelID, s.room.RoomID)
	s.Require().NoError(err)

	s.Require().NoError(s.service.ReserveRange(ctx, s.room.HotelID, s.room.RoomID, date(1), date(3), 1))
	s.Equal(int32(1), atomic.LoadInt32(&locker.locks))
	s.Zero(atomic.LoadInt32(&locker.unlocks))

	unlock()
	s.Equal(int32(1), atomic.LoadInt32(&locker.unlocks))

	s.Require().NoError(s.service.ReserveRange(s.ctx, s.room.HotelID, s.room.RoomID, date(1), date(3), 1))
	s.Equal(int32(2), atomic.LoadInt32(&locker.locks))
	s.Equal(int32(2), atomic.LoadInt32(&locker.unlocks))
}

func (s *ServiceTestSuite) TestLockBackendFailureFallsBackToLedger() {
	s.service.SetLocker(staticLocker{err: errors.New("connection refused")})

	s.Require().NoError(s.service.ReserveRange(s.ctx, s.room.HotelID, s.room.RoomID, date(1), date(2), 1))
	s.Equal(1, s.day(1).BookedQuantity)
}

func (s *ServiceTestSuite) TestCalendarAndOperatorUpdates() {
	price := 80.0
	_, err := s.service.UpsertDay(s.ctx, s.room.HotelID, s.room.RoomID, date(2), inventory.DayUpdate{SpecialPrice: &price})
	s.Require().NoError(err)

	nights, err := s.service.Calendar(s.ctx, s.room.HotelID, s.room.RoomID, date(1), date(3))
	s.Require().NoError(err)
	s.Require().Len(nights, 2)
	s.Equal(100.0, nights[0].Price)
	s.Equal(80.0, nights[1].Price)

	_, err = s.service.SetDayStatus(s.ctx, s.room.HotelID, s.room.RoomID, date(2), inventory.StatusFullyBooked)
	s.True(apperror.Is(err, apperror.KindValidation))

	s.Require().NoError(s.service.ReserveRange(s.ctx, s.room.HotelID, s.room.RoomID, date(2), date(3), 3))
	total := 2
	_, err = s.service.UpsertDay(s.ctx, s.room.HotelID, s.room.RoomID, date(2), inventory.DayUpdate{TotalQuantity: &total})
	s.True(apperror.Is(err, apperror.KindValidation))
}

func TestReserveRangeCompensatesOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepository{MemoryRepository: inventorytest.NewMemoryRepository(), failOn: "2025-06-03"}
	room := &hotels.RoomSnapshot{HotelID: uuid.New(), RoomID: uuid.New(), Quantity: 3, PricePerNight: 50, IsActive: true}
	service := NewService(&fakeCatalog{rooms: map[uuid.UUID]*hotels.RoomSnapshot{room.RoomID: room}}, inventory.NewLedger(repo, 3, nil), nil)

	err := service.ReserveRange(ctx, room.HotelID, room.RoomID, date(1), date(5), 1)
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInternal))

	for _, d := range []int{1, 2} {
		day, err := repo.Get(ctx, inventory.NewDayKey(room.HotelID, room.RoomID, date(d)), false)
		require.NoError(t, err)
		assert.Equal(t, 0, day.BookedQuantity, "night %d should be released", d)
	}
}

func TestConcurrentSingleNightReservationsNeverOversell(t *testing.T) {
	ctx := context.Background()
	repo := inventorytest.NewMemoryRepository()
	room := &hotels.RoomSnapshot{HotelID: uuid.New(), RoomID: uuid.New(), Quantity: 5, PricePerNight: 50, IsActive: true}
	service := NewService(&fakeCatalog{rooms: map[uuid.UUID]*hotels.RoomSnapshot{room.RoomID: room}}, inventory.NewLedger(repo, 1000, nil), nil)

	var successes int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := service.ReserveRange(ctx, room.HotelID, room.RoomID, date(1), date(2), 1); err == nil {
				atomic.AddInt32(&successes, 1)
			} else {
				assert.True(t, apperror.Is(err, apperror.KindInsufficientInventory))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), successes)
	day, err := repo.Get(ctx, inventory.NewDayKey(room.HotelID, room.RoomID, date(1)), false)
	require.NoError(t, err)
	assert.Equal(t, 5, day.BookedQuantity)
	assert.Equal(t, inventory.StatusFullyBooked, day.Status)
}

func TestConcurrentMultiNightReservationsWithLock(t *testing.T) {
	ctx := context.Background()
	repo := inventorytest.NewMemoryRepository()
	room := &hotels.RoomSnapshot{HotelID: uuid.New(), RoomID: uuid.New(), Quantity: 5, PricePerNight: 50, IsActive: true}
	service := NewService(&fakeCatalog{rooms: map[uuid.UUID]*hotels.RoomSnapshot{room.RoomID: room}}, inventory.NewLedger(repo, 1000, nil), nil)
	service.SetLocker(&mutexLocker{})

	var successes int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := service.ReserveRange(ctx, room.HotelID, room.RoomID, date(1), date(4), 2); err == nil {
				atomic.AddInt32(&successes, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(2), successes)
	for d := 1; d <= 3; d++ {
		day, err := repo.Get(ctx, inventory.NewDayKey(room.HotelID, room.RoomID, date(d)), false)
		require.NoError(t, err)
		assert.Equal(t, 4, day.BookedQuantity)
		assert.Equal(t, 1, day.AvailableQuantity)
	}
}
