package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"staybook/internal/hotels"
	"staybook/internal/inventory"
	"staybook/internal/shared/apperror"
	"staybook/pkg/logger"
)

const (
	MaxStayNights    = 90
	MaxCalendarDays  = 366
	failingDateField = "failing_date"
)

// RoomCatalog resolves the room a range operation works on.
type RoomCatalog interface {
	GetRoomSnapshot(ctx context.Context, roomID uuid.UUID) (*hotels.RoomSnapshot, error)
}

// NightAvailability describes one night of a range, stored or defaulted.
type NightAvailability struct {
	Date              string           `json:"date"`
	TotalQuantity     int              `json:"total_quantity"`
	AvailableQuantity int              `json:"available_quantity"`
	Status            inventory.Status `json:"status"`
	Price             float64          `json:"price"`
	Sellable          bool             `json:"sellable"`
}

// Result is the outcome of a range check. FailingDate is the earliest night
// that cannot be sold.
type Result struct {
	Available   bool                `json:"available"`
	HotelID     uuid.UUID           `json:"hotel_id"`
	RoomID      uuid.UUID           `json:"room_id"`
	CheckIn     string              `json:"check_in"`
	CheckOut    string              `json:"check_out"`
	Quantity    int                 `json:"quantity"`
	FailingDate *time.Time          `json:"failing_date,omitempty"`
	Reason      string              `json:"reason,omitempty"`
	Nights      []NightAvailability `json:"nights"`
	QuotedTotal float64             `json:"quoted_total"`
}

type Service struct {
	catalog RoomCatalog
	ledger  *inventory.Ledger
	locker  RoomLocker
	log     *logger.Logger
}

func NewService(catalog RoomCatalog, ledger *inventory.Ledger, log *logger.Logger) *Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Service{catalog: catalog, ledger: ledger, log: log}
}

// SetLocker enables cross-instance serialisation of ReserveRange per room.
func (s *Service) SetLocker(locker RoomLocker) {
	s.locker = locker
}

// Room returns the catalog entry for roomID, checking it belongs to hotelID.
func (s *Service) Room(ctx context.Context, hotelID, roomID uuid.UUID) (*hotels.RoomSnapshot, error) {
	room, err := s.catalog.GetRoomSnapshot(ctx, roomID)
	if err != nil {
		if _, ok := apperror.As(err); ok {
			return nil, err
		}
		if errors.Is(err, hotels.ErrRoomNotFound) {
			return nil, apperror.NotFound("room not found")
		}
		return nil, apperror.Internal("failed to load room", err)
	}
	if room.HotelID != hotelID {
		return nil, apperror.NotFound("room not found in hotel")
	}
	return room, nil
}

// CheckRange reports whether quantity rooms can be sold for every night in
// [checkIn, checkOut). Nights without a ledger row count as fully available
// from the room's capacity.
func (s *Service) CheckRange(ctx context.Context, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time, quantity int) (*Result, error) {
	if err := validateRange(checkIn, checkOut, quantity); err != nil {
		return nil, err
	}
	room, err := s.Room(ctx, hotelID, roomID)
	if err != nil {
		return nil, err
	}
	return s.checkRange(ctx, room, checkIn, checkOut, quantity)
}

// ReserveRange commits quantity rooms on every night of the range or on none.
// A failure part-way releases the nights already taken before returning.
func (s *Service) ReserveRange(ctx context.Context, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time, quantity int) error {
	if err := validateRange(checkIn, checkOut, quantity); err != nil {
		return err
	}
	room, err := s.Room(ctx, hotelID, roomID)
	if err != nil {
		return err
	}

	ctx, unlock, err := s.LockRoom(ctx, hotelID, roomID)
	if err != nil {
		return err
	}
	defer unlock()

	check, err := s.checkRange(ctx, room, checkIn, checkOut, quantity)
	if err != nil {
		return err
	}
	if !check.Available {
		return insufficient(check.Reason, *check.FailingDate)
	}

	defaults := roomDefaults(room)
	var applied []time.Time
	for _, date := range inventory.DatesInRange(checkIn, checkOut) {
		key := inventory.NewDayKey(hotelID, roomID, date)
		if _, err := s.ledger.Reserve(ctx, key, defaults, quantity); err != nil {
			s.compensate(ctx, hotelID, roomID, applied, quantity, err)
			return reserveError(date, quantity, err)
		}
		applied = append(applied, date)
	}
	return nil
}

// ReleaseRange returns quantity rooms on every night of the range. Nights
// with no ledger row have nothing to release and are skipped.
func (s *Service) ReleaseRange(ctx context.Context, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time, quantity int) error {
	if err := validateRange(checkIn, checkOut, quantity); err != nil {
		return err
	}

	var errs []error
	for _, date := range inventory.DatesInRange(checkIn, checkOut) {
		key := inventory.NewDayKey(hotelID, roomID, date)
		_, err := s.ledger.Release(ctx, key, quantity)
		switch {
		case err == nil, errors.Is(err, inventory.ErrDayNotFound):
		case errors.Is(err, inventory.ErrInvalidRelease):
			s.log.ErrorWithContext(ctx, "Ledger Over-Release", err, map[string]interface{}{
				"room_id":  roomID.String(),
				"date":     date.Format(inventory.DateLayout),
				"quantity": quantity,
			})
			errs = append(errs, fmt.Errorf("%s: %w", date.Format(inventory.DateLayout), err))
		default:
			errs = append(errs, fmt.Errorf("%s: %w", date.Format(inventory.DateLayout), err))
		}
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		if errors.Is(err, inventory.ErrConcurrencyConflict) {
			return apperror.Wrap(apperror.KindConcurrencyConflict, "inventory busy, retry the request", err)
		}
		return apperror.Internal("failed to release inventory", err)
	}
	return nil
}

// Calendar lists every night in [from, to) with stored or default values.
func (s *Service) Calendar(ctx context.Context, hotelID, roomID uuid.UUID, from, to time.Time) ([]NightAvailability, error) {
	from, to = inventory.NormalizeDate(from), inventory.NormalizeDate(to)
	if !to.After(from) {
		return nil, apperror.Validation("to must be after from")
	}
	if nightsBetween(from, to) > MaxCalendarDays {
		return nil, apperror.Validation(fmt.Sprintf("calendar may span at most %d days", MaxCalendarDays))
	}

	room, err := s.Room(ctx, hotelID, roomID)
	if err != nil {
		return nil, err
	}
	result, err := s.checkRange(ctx, room, from, to, 1)
	if err != nil {
		return nil, err
	}
	return result.Nights, nil
}

// UpsertDay sets quantity and price fields of one ledger day.
func (s *Service) UpsertDay(ctx context.Context, hotelID, roomID uuid.UUID, date time.Time, update inventory.DayUpdate) (*inventory.InventoryDay, error) {
	room, err := s.Room(ctx, hotelID, roomID)
	if err != nil {
		return nil, err
	}
	day, err := s.ledger.UpsertDay(ctx, inventory.NewDayKey(hotelID, roomID, date), roomDefaults(room), update)
	if err != nil {
		return nil, ledgerError(err, "failed to update inventory")
	}
	return day, nil
}

// SetDayStatus places or clears an operator hold on one ledger day.
func (s *Service) SetDayStatus(ctx context.Context, hotelID, roomID uuid.UUID, date time.Time, status inventory.Status) (*inventory.InventoryDay, error) {
	room, err := s.Room(ctx, hotelID, roomID)
	if err != nil {
		return nil, err
	}
	day, err := s.ledger.SetStatus(ctx, inventory.NewDayKey(hotelID, roomID, date), roomDefaults(room), status)
	if err != nil {
		return nil, ledgerError(err, "failed to update inventory status")
	}
	return day, nil
}

func (s *Service) checkRange(ctx context.Context, room *hotels.RoomSnapshot, checkIn, checkOut time.Time, quantity int) (*Result, error) {
	checkIn, checkOut = inventory.NormalizeDate(checkIn), inventory.NormalizeDate(checkOut)

	stored, err := s.ledger.Range(ctx, room.HotelID, room.RoomID, checkIn, checkOut)
	if err != nil {
		return nil, apperror.Internal("failed to load inventory", err)
	}
	byDate := make(map[string]*inventory.InventoryDay, len(stored))
	for i := range stored {
		byDate[stored[i].Date.Format(inventory.DateLayout)] = &stored[i]
	}

	result := &Result{
		Available: true,
		HotelID:   room.HotelID,
		RoomID:    room.RoomID,
		CheckIn:   checkIn.Format(inventory.DateLayout),
		CheckOut:  checkOut.Format(inventory.DateLayout),
		Quantity:  quantity,
	}
	defaults := roomDefaults(room)

	for _, date := range inventory.DatesInRange(checkIn, checkOut) {
		label := date.Format(inventory.DateLayout)
		day, ok := byDate[label]
		if !ok {
			day = inventory.NewDay(inventory.NewDayKey(room.HotelID, room.RoomID, date), defaults)
		}

		sellable := day.Sellable(quantity)
		result.Nights = append(result.Nights, NightAvailability{
			Date:              label,
			TotalQuantity:     day.TotalQuantity,
			AvailableQuantity: day.AvailableQuantity,
			Status:            day.Status,
			Price:             day.EffectivePrice(),
			Sellable:          sellable,
		})
		result.QuotedTotal += day.EffectivePrice() * float64(quantity)

		if result.Available && !sellable {
			failing := date
			result.Available = false
			result.FailingDate = &failing
			result.Reason = unavailableReason(day, quantity)
		}
	}

	return result, nil
}

type heldRoomLock struct {
	hotelID, roomID uuid.UUID
}

// LockRoom takes the room lock until unlock is called. Callers that reserve
// and then write more rows in one transaction hold it until after commit,
// passing the returned context so ReserveRange does not lock again.
func (s *Service) LockRoom(ctx context.Context, hotelID, roomID uuid.UUID) (context.Context, func(), error) {
	held := heldRoomLock{hotelID: hotelID, roomID: roomID}
	if ctx.Value(held) != nil {
		return ctx, func() {}, nil
	}
	unlock, err := s.lock(ctx, hotelID, roomID)
	if err != nil {
		return ctx, nil, err
	}
	return context.WithValue(ctx, held, true), unlock, nil
}

func (s *Service) lock(ctx context.Context, hotelID, roomID uuid.UUID) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}

	unlock, err := s.locker.Lock(ctx, hotelID, roomID)
	switch {
	case err == nil:
		return unlock, nil
	case errors.Is(err, ErrLockNotAcquired):
		return nil, apperror.Wrap(apperror.KindConcurrencyConflict, "room is being booked by another request, retry", err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err
	default:
		// The ledger's version check still guards correctness without the lock.
		s.log.WarnContext(ctx, "room lock unavailable, continuing without it", "room_id", roomID.String(), "error", err.Error())
		return func() {}, nil
	}
}

func (s *Service) compensate(ctx context.Context, hotelID, roomID uuid.UUID, applied []time.Time, quantity int, cause error) {
	if len(applied) == 0 {
		return
	}
	for i := len(applied) - 1; i >= 0; i-- {
		key := inventory.NewDayKey(hotelID, roomID, applied[i])
		if _, err := s.ledger.Release(ctx, key, quantity); err != nil {
			s.log.ErrorWithContext(ctx, "Compensating Release Failed", err, map[string]interface{}{
				"room_id": roomID.String(),
				"date":    applied[i].Format(inventory.DateLayout),
			})
		}
	}
	s.log.LogReservationCompensated(ctx, roomID.String(), len(applied), cause)
}

func validateRange(checkIn, checkOut time.Time, quantity int) error {
	checkIn, checkOut = inventory.NormalizeDate(checkIn), inventory.NormalizeDate(checkOut)
	if !checkOut.After(checkIn) {
		return apperror.Validation("check-out must be after check-in")
	}
	if nightsBetween(checkIn, checkOut) > MaxStayNights {
		return apperror.Validation(fmt.Sprintf("stay may not exceed %d nights", MaxStayNights))
	}
	if quantity < 1 {
		return apperror.Validation("at least one room must be requested")
	}
	return nil
}

func nightsBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func roomDefaults(room *hotels.RoomSnapshot) inventory.RoomDefaults {
	return inventory.RoomDefaults{TotalQuantity: room.Quantity, Price: room.PricePerNight}
}

func unavailableReason(day *inventory.InventoryDay, quantity int) string {
	date := day.Date.Format(inventory.DateLayout)
	switch day.Status {
	case inventory.StatusMaintenance:
		return fmt.Sprintf("room is under maintenance on %s", date)
	case inventory.StatusBlocked:
		return fmt.Sprintf("room is blocked on %s", date)
	}
	if day.AvailableQuantity <= 0 {
		return fmt.Sprintf("room is fully booked on %s", date)
	}
	return fmt.Sprintf("only %d room(s) available on %s, %d requested", day.AvailableQuantity, date, quantity)
}

func insufficient(reason string, date time.Time) *apperror.Error {
	return apperror.New(apperror.KindInsufficientInventory, reason).
		With(failingDateField, date.Format(inventory.DateLayout))
}

func reserveError(date time.Time, quantity int, err error) error {
	label := date.Format(inventory.DateLayout)
	switch {
	case errors.Is(err, inventory.ErrInsufficientInventory):
		return insufficient(fmt.Sprintf("fewer than %d room(s) left on %s", quantity, label), date)
	case errors.Is(err, inventory.ErrDayOnHold):
		return insufficient(fmt.Sprintf("room is not sellable on %s", label), date)
	case errors.Is(err, inventory.ErrConcurrencyConflict):
		return apperror.Wrap(apperror.KindConcurrencyConflict, "inventory busy, retry the request", err)
	default:
		return apperror.Internal("failed to reserve inventory", err)
	}
}

func ledgerError(err error, reason string) error {
	switch {
	case errors.Is(err, inventory.ErrInvalidUpdate), errors.Is(err, inventory.ErrInvalidStatus):
		return apperror.Wrap(apperror.KindValidation, err.Error(), err)
	case errors.Is(err, inventory.ErrConcurrencyConflict):
		return apperror.Wrap(apperror.KindConcurrencyConflict, "inventory busy, retry the request", err)
	default:
		return apperror.Internal(reason, err)
	}
}
