package bookings

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"staybook/internal/availability"
	"staybook/internal/hotels"
	"staybook/internal/inventory"
	"staybook/internal/inventory/inventorytest"
	"staybook/internal/notifications"
	"staybook/internal/shared/apperror"
	"staybook/internal/shared/config"
	"staybook/internal/shared/transaction"
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

// memoryRepository is a Repository backed by a map.
type memoryRepository struct {
	mu         sync.Mutex
	bookings   map[uuid.UUID]Booking
	failCreate error
	onCreate   func()
	// afterGet runs once after the next GetByID, outside the lock.
	afterGet func(Booking)
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{bookings: make(map[uuid.UUID]Booking)}
}

func (m *memoryRepository) Create(ctx context.Context, booking *Booking) error {
	if m.onCreate != nil {
		m.onCreate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	for _, existing := range m.bookings {
		if existing.BookingNumber == booking.BookingNumber {
			return ErrBookingNumberTaken
		}
	}
	m.bookings[booking.ID] = *booking
	return nil
}

func (m *memoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	m.mu.Lock()
	booking, ok := m.bookings[id]
	hook := m.afterGet
	m.afterGet = nil
	m.mu.Unlock()
	if !ok {
		return nil, ErrBookingNotFound
	}
	if hook != nil {
		hook(booking)
	}
	return &booking, nil
}

func (m *memoryRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.bookings {
		if existing.BookingNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepository) Delete(ctx context.Context, id uuid.UUID, status Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok || booking.Status != status {
		return ErrStatusChanged
	}
	delete(m.bookings, id)
	return nil
}

func (m *memoryRepository) TransitionStatus(ctx context.Context, id uuid.UUID, change StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok || booking.Status != change.From {
		return ErrStatusChanged
	}
	booking.Apply(change)
	m.bookings[id] = booking
	return nil
}

func (m *memoryRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return ErrBookingNotFound
	}
	booking.PaymentStatus = status
	booking.UpdatedAt = at
	m.bookings[id] = booking
	return nil
}

func (m *memoryRepository) List(ctx context.Context, query BookingListQuery) ([]Booking, int64, error) {
	return m.filter(func(b Booking) bool {
		return (query.UserID == "" || b.UserID.String() == query.UserID) &&
			(query.Status == "" || string(b.Status) == query.Status)
	}), 0, nil
}

func (m *memoryRepository) ListActiveByHotel(ctx context.Context, hotelID uuid.UUID) ([]Booking, error) {
	return m.filter(func(b Booking) bool {
		return b.HotelID == hotelID && b.Status.HoldsInventory()
	}), nil
}

func (m *memoryRepository) ListFinishedStays(ctx context.Context, now time.Time, limit int) ([]Booking, error) {
	today := inventory.NormalizeDate(now)
	return m.filter(func(b Booking) bool {
		return b.Status == StatusConfirmed && !b.CheckOut.After(today)
	}), nil
}

func (m *memoryRepository) filter(match func(Booking) bool) []Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Booking
	for _, b := range m.bookings {
		if match(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookingNumber < out[j].BookingNumber })
	return out
}

// flagLocker records whether the room lock is currently held.
type flagLocker struct {
	held atomic.Bool
}

func (l *flagLocker) Lock(ctx context.Context, hotelID, roomID uuid.UUID) (func(), error) {
	l.held.Store(true)
	return func() { l.held.Store(false) }, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*notifications.BookingEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event *notifications.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []notifications.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []notifications.EventType
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func countOf(types []notifications.EventType, want notifications.EventType) int {
	n := 0
	for _, t := range types {
		if t == want {
			n++
		}
	}
	return n
}

func date(day int) time.Time {
	return time.Date(2025, 6, day, 0, 0, 0, 0, time.UTC)
}

// sequentialNumbers makes booking numbers deterministic.
func sequentialNumbers() func(int) (string, error) {
	var seq int64
	return func(digits int) (string, error) {
		return fmt.Sprintf("%0*d", digits, atomic.AddInt64(&seq, 1)), nil
	}
}

type ServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	now       time.Time
	ledger    *inventory.Ledger
	repo      *memoryRepository
	publisher *recordingPublisher
	room      *hotels.RoomSnapshot
	guest     Actor
	service   Service
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)
	s.room = &hotels.RoomSnapshot{
		HotelID:       uuid.New(),
		RoomID:        uuid.New(),
		Name:          "Garden Suite",
		MaxGuests:     2,
		PricePerNight: 100,
		Quantity:      1,
		IsActive:      true,
	}
	s.guest = Actor{UserID: uuid.New()}
	s.service = s.newService(config.BookingConfig{Currency: "USD"})
}

func (s *ServiceTestSuite) newService(cfg config.BookingConfig) Service {
	catalog := &fakeCatalog{rooms: map[uuid.UUID]*hotels.RoomSnapshot{s.room.RoomID: s.room}}
	s.ledger = inventory.NewLedger(inventorytest.NewMemoryRepository(), 1000, nil)
	s.repo = newMemoryRepository()
	s.publisher = &recordingPublisher{}

	svc := NewService(s.repo, availability.NewService(catalog, s.ledger, nil), transaction.Passthrough(), s.publisher, cfg, nil)
	svc.SetClock(func() time.Time { return s.now })
	svc.(*service).numbers.random = sequentialNumbers()
	return svc
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) input(checkIn, checkOut time.Time) CreateBookingInput {
	return CreateBookingInput{
		UserID:   s.guest.UserID,
		HotelID:  s.room.HotelID,
		RoomID:   s.room.RoomID,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Guests:   Guests{Adults: 2},
		Contact:  GuestContact{FirstName: "Ada", LastName: "Byron", Email: "ada@example.com"},
	}
}

func (s *ServiceTestSuite) booked(d int) int {
	day, err := s.ledger.Get(s.ctx, inventory.NewDayKey(s.room.HotelID, s.room.RoomID, date(d)))
	if err == inventory.ErrDayNotFound {
		return 0
	}
	s.Require().NoError(err)
	return day.BookedQuantity
}

func (s *ServiceTestSuite) TestStayLifecycle() {
	in := s.input(date(1), date(4))
	in.Taxes, in.Fees = ptr(10), ptr(5)

	booking, err := s.service.CreateBooking(s.ctx, in)
	s.Require().NoError(err)

	s.Equal(StatusPending, booking.Status)
	s.Equal(PaymentPending, booking.PaymentStatus)
	s.Equal(3, booking.NumberOfNights)
	s.Equal(315.0, booking.Pricing.TotalPrice)
	s.Equal(315.0, booking.Pricing.FinalPrice)
	s.Equal("BK2505200001", booking.BookingNumber)
	for d := 1; d <= 3; d++ {
		s.Equal(1, s.booked(d), "2025-06-0%d", d)
	}

	_, err = s.service.CreateBooking(s.ctx, s.input(date(2), date(6)))
	s.Require().Error(err)
	appErr, ok := apperror.As(err)
	s.Require().True(ok)
	s.Equal(apperror.KindInsufficientInventory, appErr.Kind)
	s.Equal("2025-06-02", appErr.Details["failing_date"])

	result, err := s.service.CancelBooking(s.ctx, booking.ID, s.guest, "change of plans")
	s.Require().NoError(err)
	s.Equal(StatusCancelled, result.Booking.Status)
	s.Equal("change of plans", result.Booking.CancellationReason)
	s.NotNil(result.Booking.CancelledAt)
	s.True(result.Cancellation.CanCancel)
	for d := 1; d <= 3; d++ {
		s.Zero(s.booked(d))
	}
	_, err = s.ledger.Get(s.ctx, inventory.NewDayKey(s.room.HotelID, s.room.RoomID, date(4)))
	s.ErrorIs(err, inventory.ErrDayNotFound)

	s.Equal([]notifications.EventType{notifications.EventBookingCreated, notifications.EventBookingCancelled}, s.publisher.types())
}

func (s *ServiceTestSuite) TestConfiguredTaxesAndFees() {
	svc := s.newService(config.BookingConfig{Currency: "EUR", TaxRate: 0.1, ServiceFee: 5})

	booking, err := svc.CreateBooking(s.ctx, s.input(date(1), date(4)))
	s.Require().NoError(err)

	s.Equal(30.0, booking.Pricing.Taxes)
	s.Equal(5.0, booking.Pricing.Fees)
	s.Equal(335.0, booking.Pricing.FinalPrice)
	s.Equal("EUR", booking.Pricing.Currency)
}

func (s *ServiceTestSuite) TestSpecialPriceIsAveraged() {
	price := 130.0
	_, err := s.ledger.UpsertDay(s.ctx, inventory.NewDayKey(s.room.HotelID, s.room.RoomID, date(2)),
		inventory.RoomDefaults{TotalQuantity: 1, Price: 100}, inventory.DayUpdate{SpecialPrice: &price})
	s.Require().NoError(err)

	booking, err := s.service.CreateBooking(s.ctx, s.input(date(1), date(3)))
	s.Require().NoError(err)

	s.Equal(115.0, booking.Pricing.PricePerNight)
	s.Equal(230.0, booking.Pricing.TotalPrice)
}

func (s *ServiceTestSuite) TestCreateValidation() {
	tests := []struct {
		name   string
		mutate func(*CreateBookingInput)
	}{
		{"check-out before check-in", func(in *CreateBookingInput) { in.CheckOut = date(1); in.CheckIn = date(3) }},
		{"zero nights", func(in *CreateBookingInput) { in.CheckOut = in.CheckIn }},
		{"check-in in the past", func(in *CreateBookingInput) {
			in.CheckIn = s.now.AddDate(0, 0, -1)
			in.CheckOut = s.now.AddDate(0, 0, 2)
		}},
		{"too many guests", func(in *CreateBookingInput) { in.Guests = Guests{Adults: 2, Children: 1} }},
		{"no adult", func(in *CreateBookingInput) { in.Guests = Guests{Children: 1} }},
		{"unknown policy", func(in *CreateBookingInput) { in.Policy = "flexible" }},
		{"discount above total", func(in *CreateBookingInput) { in.Discount = ptr(1000) }},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			in := s.input(date(1), date(4))
			tt.mutate(&in)

			_, err := s.service.CreateBooking(s.ctx, in)

			s.True(apperror.Is(err, apperror.KindValidation), "got %v", err)
			s.Zero(s.booked(1))
		})
	}
}

func (s *ServiceTestSuite) TestCapacityScalesWithRooms() {
	s.room.Quantity = 2
	in := s.input(date(1), date(2))
	in.Rooms = 2
	in.Guests = Guests{Adults: 3, Children: 1}

	booking, err := s.service.CreateBooking(s.ctx, in)
	s.Require().NoError(err)

	s.Equal(2, booking.Rooms)
	s.Equal(2, s.booked(1))
}

func (s *ServiceTestSuite) TestInactiveRoomRejected() {
	s.room.IsActive = false

	_, err := s.service.CreateBooking(s.ctx, s.input(date(1), date(2)))

	s.True(apperror.Is(err, apperror.KindValidation))
}

func (s *ServiceTestSuite) TestUnknownRoomIsNotFound() {
	in := s.input(date(1), date(2))
	in.RoomID = uuid.New()

	_, err := s.service.CreateBooking(s.ctx, in)

	s.True(apperror.Is(err, apperror.KindNotFound))
}

func (s *ServiceTestSuite) TestFailedInsertReleasesNights() {
	s.repo.failCreate = fmt.Errorf("insert failed")

	_, err := s.service.CreateBooking(s.ctx, s.input(date(1), date(4)))

	s.True(apperror.Is(err, apperror.KindInternal))
	for d := 1; d <= 3; d++ {
		s.Zero(s.booked(d))
	}
	s.Empty(s.publisher.types())
}

func (s *ServiceTestSuite) TestCancelTwiceIsDenied() {
	booking, err := s.service.CreateBooking(s.ctx, s.input(date(1), date(4)))
	s.Require().NoError(err)
	_, err = s.service.CancelBooking(s.ctx, booking.ID, s.guest, "")
	s.Require().NoError(err)

	_, err = s.service.CancelBooking(s.ctx, booking.ID, s.guest, "")

	appErr, ok := apperror.As(err)
	s.Require().True(ok)
	s.Equal(apperror.KindCancellationDenied, appErr.Kind)
	s.Equal("already cancelled", appErr.Reason)
	s.Zero(s.booked(1))
}

func (s *ServiceTestSuite) TestCancelDeniedByPolicyKeepsNights() {
	in := s.input(date(1), date(4))
	in.Policy = PolicyNoRefund
	booking, err := s.service.CreateBooking(s.ctx, in)
	s.Require().NoError(err)

	s.now = time.Date(2025, 5, 30, 9, 0, 0, 0, time.UTC)
	_, err = s.service.CancelBooking(s.ctx, booking.ID, s.guest, "")

	appErr, ok := apperror.As(err)
	s.Require().True(ok)
	s.Equal(apperror.KindCancellationDenied, appErr.Kind)
	s.Contains(appErr.Details, "deadline")
	s.Equal(1, s.booked(1))
}

func (s *ServiceTestSuite) TestCancelPaidBookingSettlesRefund() {
	in := s.input(date(1), date(4))
	in.Policy = PolicyPartialRefund
	in.Taxes, in.Fees = ptr(10), ptr(5)
	booking, err := s.service.CreateBooking(s.ctx, in)
	s.Require().NoError(err)
	_, err = s.service.UpdatePaymentStatus(s.ctx, booking.ID, PaymentPaid)
	s.Require().NoError(err)

	s.now = time.Date(2025, 5, 31, 12, 0, 0, 0, time.UTC)
	result, err := s.service.CancelBooking(s.ctx, booking.ID, s.guest, "flight cancelled")
	s.Require().NoError(err)

	s.Require().NotNil(result.Booking.CancellationFee)
	s.Equal(157.5, *result.Booking.CancellationFee)
	s.Require().NotNil(result.Booking.RefundAmount)
	s.Equal(157.5, *result.Booking.RefundAmount)
	s.Equal(PaymentPartiallyRefunded, result.Booking.PaymentStatus)

	stored, err := s.repo.GetByID(s.ctx, booking.ID)
	s.Require().NoError(err)
	s.Equal(PaymentPartiallyRefunded, stored.PaymentStatus)
}

func (s *ServiceTestSuite) TestCancelAfterNoShowIsInvalidTransition() {
	booking, err := s.service.CreateBooking(s.ctx, s.input(date(1), date(4)))
	s.Require().NoError(err)
	_, err = s.service.ConfirmBooking(s.ctx, booking.ID)
	s.Require().NoError(err)
	_, err = s.service.MarkNoShow(s.ctx, booking.ID)
	s.Require().NoError(err)

	_, err = s.service.CancelBooking(s.ctx, booking.ID, s.guest, "")

	s.True(apperror.Is(err, apperror.KindInvalidTransition))
	s.Equal(1, s.booked(1))
}

func (s *ServiceTestSuite) TestCancelSomeoneElsesBooking() {
	booking, err := s.service.CreateBooking(s.ctx, s.input(date(1), date(4)))
	s.Require().NoError(err)

	_, err = s.service.CancelBooking(s.ctx, booking.ID, Actor{UserID: uuid.New()}, "")
	s.True(apperror.Is(err, apperror.KindForbidden))

	_, err = s.service.CancelBooking(s.ctx, booking.ID, Actor{UserID: uuid.New(), Staff: true}, "overbooked")
	s.NoError(err)
}

func (s *ServiceTestSuite) TestStatusMachine() {
	booking, err := s.service.CreateBooking(s.ctx, s.input(date(1), date(4)))
	s.Require().NoError(err)

	_, err = s.service.CompleteBooking(s.ctx, booking.ID)
	s.True(apperror.Is(err, apperror.KindInvalidTransition))

	confirmed, err := s.service.ConfirmBooking(s.ctx, booking.ID)
	s.Require().NoError(err)
	s.Equal(StatusConfirmed, confirmed.Status)
	s.NotNil(confirmed.ConfirmedAt)

	completed, err := s.service.CompleteBooking(s.ctx, booking.ID)
	s.Require().NoError(err)
	s.Equal(StatusCompleted, completed.Status)
	s.NotNil(completed.CompletedAt)

	_, err = s.service.ConfirmBooking(s.ctx, booking.ID)
	s.True(apperror.Is(err, apperror.KindInvalidTransition))
	_, err = s.service.CancelBooking(s.ctx, booking.ID, s.guest, "")
	s.True(apperror.Is(err, apperror.KindCancellationDenied))
	s.Equal(1, s.booked(1))
}

func (s *ServiceTestSuite) TestMissingBookingIsNotFound() {
	_, err := s.service.GetBooking(s.ctx, uuid.New(), s.guest)
	s.True(apperror.Is(err, apperror.KindNotFound))

	_, err = s.service.ConfirmBooking(s.ctx, uuid.New())
	s.True(apperror.Is(err, apperror.KindNotFound))
}

func (s *ServiceTestSuite) TestTimelineAndCancellationTerms() {
	in := s.input(date(1), date(4))
	in.Policy = PolicyNoRefund
	booking, err := s.service.CreateBooking(s.ctx, in)
	s.Require().NoError(err)

	timeline, err := s.service.GetTimeline(s.ctx, booking.ID, s.guest)
	s.Require().NoError(err)
	s.True(timeline.IsUpcoming)
	s.Equal(12, timeline.DaysUntilCheckIn)

	terms, err := s.service.GetCancellationTerms(s.ctx, booking.ID, s.guest)
	s.Require().NoError(err)
	s.True(terms.CanCancel)
	s.Require().NotNil(terms.Fee)
	s.Equal(30.0, *terms.Fee)
}

func (s *ServiceTestSuite) TestCheckAvailability() {
	result, err := s.service.CheckAvailability(s.ctx, s.room.HotelID, s.room.RoomID, date(1), date(4), Guests{Adults: 2}, 1)
	s.Require().NoError(err)
	s.True(result.Available)
	s.Equal(3, result.NumberOfNights)
	s.Require().NotNil(result.Estimate)
	s.Equal(300.0, result.Estimate.TotalPrice)

	result, err = s.service.CheckAvailability(s.ctx, s.room.HotelID, s.room.RoomID, date(1), date(4), Guests{Adults: 3}, 1)
	s.Require().NoError(err)
	s.False(result.Available)
	s.Contains(result.Reason, "at most 2 guest(s)")
	s.Nil(result.Estimate)
}

func (s *ServiceTestSuite) TestForceDeleteReleasesHeldNights() {
	booking, err := s.service.CreateBooking(s.ctx, s.input(date(1), date(4)))
	s.Require().NoError(err)

	s.Require().NoError(s.service.ForceDelete(s.ctx, booking.ID))

	s.Zero(s.booked(1))
	_, err = s.repo.GetByID(s.ctx, booking.ID)
	s.ErrorIs(err, ErrBookingNotFound)
}

func (s *ServiceTestSuite) TestCreateHoldsRoomLockUntilBookingIsStored() {
	catalog := &fakeCatalog{rooms: map[uuid.UUID]*hotels.RoomSnapshot{s.room.RoomID: s.room}}
	inventorySvc := availability.NewService(catalog, s.ledger, nil)
	locker := &flagLocker{}
	inventorySvc.SetLocker(locker)
	svc := NewService(s.repo, inventorySvc, transaction.Passthrough(), s.publisher, config.BookingConfig{Currency: "USD"}, nil)
	svc.SetClock(func() time.Time { return s.now })

	var heldOnInsert bool
	s.repo.onCreate = func() { heldOnInsert = locker.held.Load() }

	_, err := svc.CreateBooking(s.ctx, s.input(date(1), date(3)))
	s.Require().NoError(err)

	s.True(heldOnInsert)
	s.False(locker.held.Load())
}

func (s *ServiceTestSuite) TestForceDeleteLosesToConcurrentCancel() {
	s.room.Quantity = 2
	first, err := s.service.CreateBooking(s.ctx, s.input(date(1), date(4)))
	s.Require().NoError(err)
	_, err = s.service.CreateBooking(s.ctx, s.input(date(1), date(4)))
	s.Require().NoError(err)

	s.repo.afterGet = func(b Booking) {
		_, err := s.service.CancelBooking(s.ctx, b.ID, s.guest, "changed plans")
		s.Require().NoError(err)
	}

	err = s.service.ForceDelete(s.ctx, first.ID)

	s.True(apperror.Is(err, apperror.KindConcurrencyConflict))
	for d := 1; d <= 3; d++ {
		s.Equal(1, s.booked(d), "second booking still holds day %d", d)
	}
	stored, err := s.repo.GetByID(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(StatusCancelled, stored.Status)
}

func (s *ServiceTestSuite) TestCancelActiveBookingsForHotel() {
	s.room.Quantity = 3
	first, err := s.service.CreateBooking(s.ctx, s.input(date(1), date(3)))
	s.Require().NoError(err)
	second, err := s.service.CreateBooking(s.ctx, s.input(date(2), date(4)))
	s.Require().NoError(err)
	_, err = s.service.UpdatePaymentStatus(s.ctx, second.ID, PaymentPaid)
	s.Require().NoError(err)

	cancelled, err := s.service.CancelActiveBookingsForHotel(s.ctx, s.room.HotelID, "hotel removed")
	s.Require().NoError(err)
	s.Equal(2, cancelled.Count)
	s.NotContains(s.publisher.types(), notifications.EventBookingCancelled)

	cancelled.Notify(s.ctx)
	s.Equal(2, countOf(s.publisher.types(), notifications.EventBookingCancelled))

	stored, err := s.repo.GetByID(s.ctx, second.ID)
	s.Require().NoError(err)
	s.Equal(StatusCancelled, stored.Status)
	s.Equal(PaymentRefunded, stored.PaymentStatus)
	s.Require().NotNil(stored.RefundAmount)
	s.Equal(second.Pricing.FinalPrice, *stored.RefundAmount)

	stored, err = s.repo.GetByID(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Nil(stored.CancellationFee)
	for d := 1; d <= 3; d++ {
		s.Zero(s.booked(d))
	}
}

func (s *ServiceTestSuite) TestCompleteFinishedStays() {
	booking, err := s.service.CreateBooking(s.ctx, s.input(date(1), date(4)))
	s.Require().NoError(err)
	_, err = s.service.ConfirmBooking(s.ctx, booking.ID)
	s.Require().NoError(err)

	completed, err := s.service.CompleteFinishedStays(s.ctx, 10)
	s.Require().NoError(err)
	s.Zero(completed)

	s.now = time.Date(2025, 6, 4, 11, 0, 0, 0, time.UTC)
	completed, err = s.service.CompleteFinishedStays(s.ctx, 10)
	s.Require().NoError(err)
	s.Equal(1, completed)

	stored, err := s.repo.GetByID(s.ctx, booking.ID)
	s.Require().NoError(err)
	s.Equal(StatusCompleted, stored.Status)
}

func (s *ServiceTestSuite) TestListBookingsScopesToUser() {
	s.room.Quantity = 2
	_, err := s.service.CreateBooking(s.ctx, s.input(date(1), date(2)))
	s.Require().NoError(err)
	other := s.input(date(1), date(2))
	other.UserID = uuid.New()
	_, err = s.service.CreateBooking(s.ctx, other)
	s.Require().NoError(err)

	result, err := s.service.ListBookings(s.ctx, BookingListQuery{UserID: s.guest.UserID.String()})
	s.Require().NoError(err)

	s.Len(result.Bookings, 1)
	s.Equal(1, result.Page)
	s.Equal(10, result.Limit)
}

func TestConcurrentBookingsNeverOversell(t *testing.T) {
	ctx := context.Background()
	room := &hotels.RoomSnapshot{
		HotelID:       uuid.New(),
		RoomID:        uuid.New(),
		MaxGuests:     2,
		PricePerNight: 80,
		Quantity:      5,
		IsActive:      true,
	}
	catalog := &fakeCatalog{rooms: map[uuid.UUID]*hotels.RoomSnapshot{room.RoomID: room}}
	ledger := inventory.NewLedger(inventorytest.NewMemoryRepository(), 1000, nil)
	repo := newMemoryRepository()
	svc := NewService(repo, availability.NewService(catalog, ledger, nil), transaction.Passthrough(), &recordingPublisher{}, config.BookingConfig{}, nil)
	svc.SetClock(func() time.Time { return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC) })
	svc.(*service).numbers.random = sequentialNumbers()

	const requests = 20
	var wg sync.WaitGroup
	var succeeded, rejected int64
	for i := 0; i < requests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateBooking(ctx, CreateBookingInput{
				UserID:   uuid.New(),
				HotelID:  room.HotelID,
				RoomID:   room.RoomID,
				CheckIn:  date(1),
				CheckOut: date(2),
				Rooms:    2,
				Guests:   Guests{Adults: 1},
			})
			switch {
			case err == nil:
				atomic.AddInt64(&succeeded, 1)
			case apperror.Is(err, apperror.KindInsufficientInventory):
				atomic.AddInt64(&rejected, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(2), succeeded)
	assert.Equal(t, int64(requests-2), rejected)

	day, err := ledger.Get(ctx, inventory.NewDayKey(room.HotelID, room.RoomID, date(1)))
	require.NoError(t, err)
	assert.Equal(t, 4, day.BookedQuantity)
	assert.Equal(t, 1, day.AvailableQuantity)
}
