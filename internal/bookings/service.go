package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"staybook/internal/availability"
	"staybook/internal/hotels"
	"staybook/internal/inventory"
	"staybook/internal/notifications"
	"staybook/internal/shared/apperror"
	"staybook/internal/shared/config"
	"staybook/internal/shared/transaction"
	"staybook/pkg/logger"
)

// Inventory is the availability engine the booking lifecycle reserves through.
type Inventory interface {
	Room(ctx context.Context, hotelID, roomID uuid.UUID) (*hotels.RoomSnapshot, error)
	CheckRange(ctx context.Context, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time, quantity int) (*availability.Result, error)
	ReserveRange(ctx context.Context, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time, quantity int) error
	LockRoom(ctx context.Context, hotelID, roomID uuid.UUID) (context.Context, func(), error)
	ReleaseRange(ctx context.Context, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time, quantity int) error
}

// Actor is the caller of a booking operation. Staff may act on any booking.
type Actor struct {
	UserID uuid.UUID
	Staff  bool
}

// CreateBookingInput is a validated booking request.
type CreateBookingInput struct {
	UserID          uuid.UUID
	HotelID         uuid.UUID
	RoomID          uuid.UUID
	CheckIn         time.Time
	CheckOut        time.Time
	Rooms           int
	Guests          Guests
	Contact         GuestContact
	Policy          CancellationPolicy
	SpecialRequests string

	// Nil means the configured default.
	Taxes    *float64
	Fees     *float64
	Discount *float64
}

const DefaultPolicy = PolicyFreeCancellation

type Service interface {
	CheckAvailability(ctx context.Context, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time, guests Guests, rooms int) (*AvailabilityResponse, error)
	CreateBooking(ctx context.Context, input CreateBookingInput) (*Booking, error)
	CancelBooking(ctx context.Context, id uuid.UUID, actor Actor, reason string) (*CancelBookingResponse, error)

	GetBooking(ctx context.Context, id uuid.UUID, actor Actor) (*Booking, error)
	GetTimeline(ctx context.Context, id uuid.UUID, actor Actor) (*Timeline, error)
	GetCancellationTerms(ctx context.Context, id uuid.UUID, actor Actor) (*CancellationCheck, error)
	ListBookings(ctx context.Context, query BookingListQuery) (*BookingListResponse, error)

	// Staff operations
	ConfirmBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	CompleteBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	MarkNoShow(ctx context.Context, id uuid.UUID) (*Booking, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) (*Booking, error)
	ForceDelete(ctx context.Context, id uuid.UUID) error

	// CancelActiveBookingsForHotel is used when a hotel is removed. Events for
	// the cancelled bookings are published by the returned Notify.
	CancelActiveBookingsForHotel(ctx context.Context, hotelID uuid.UUID, reason string) (*hotels.CancelledBookings, error)
	// CompleteFinishedStays completes confirmed bookings whose check-out has passed.
	CompleteFinishedStays(ctx context.Context, limit int) (int, error)

	SetClock(now func() time.Time)
}

type service struct {
	repo      Repository
	inventory Inventory
	tx        transaction.Transactor
	numbers   *NumberGenerator
	publisher notifications.Publisher
	cfg       config.BookingConfig
	now       func() time.Time
	log       *logger.Logger
}

func NewService(repo Repository, inventory Inventory, tx transaction.Transactor, publisher notifications.Publisher, cfg config.BookingConfig, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	if publisher == nil {
		publisher = notifications.NewLogPublisher(log)
	}
	if cfg.Currency == "" {
		cfg.Currency = "USD"
	}
	return &service{
		repo:      repo,
		inventory: inventory,
		tx:        tx,
		numbers:   NewNumberGenerator(repo.NumberExists, cfg.NumberAttempts),
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
		log:       log,
	}
}

func (s *service) SetClock(now func() time.Time) {
	s.now = now
	s.numbers.now = now
}

func (s *service) CheckAvailability(ctx context.Context, hotelID, roomID uuid.UUID, checkIn, checkOut time.Time, guests Guests, rooms int) (*AvailabilityResponse, error) {
	if rooms <= 0 {
		rooms = 1
	}
	checkIn, checkOut = inventory.NormalizeDate(checkIn), inventory.NormalizeDate(checkOut)
	if err := s.validateStay(checkIn, checkOut, guests); err != nil {
		return nil, err
	}

	room, err := s.inventory.Room(ctx, hotelID, roomID)
	if err != nil {
		return nil, err
	}
	result, err := s.inventory.CheckRange(ctx, hotelID, roomID, checkIn, checkOut, rooms)
	if err != nil {
		return nil, err
	}

	resp := &AvailabilityResponse{
		Result:         result,
		Guests:         guests.Total(),
		MaxGuests:      room.MaxGuests * rooms,
		NumberOfNights: len(inventory.DatesInRange(checkIn, checkOut)),
	}
	switch {
	case !room.IsActive:
		result.Available = false
		result.Reason = "room is not open for booking"
	case guests.Total() > room.MaxGuests*rooms:
		result.Available = false
		result.Reason = capacityReason(room.MaxGuests, rooms)
	}

	if result.Available {
		pricing, err := s.price(result, resp.NumberOfNights, rooms, nil, nil, nil)
		if err == nil {
			resp.Estimate = &pricing
		}
	}
	return resp, nil
}

// CreateBooking reserves every night of the stay and stores the booking in
// one unit of work. If the insert fails the nights are released again.
func (s *service) CreateBooking(ctx context.Context, input CreateBookingInput) (*Booking, error) {
	if input.Rooms <= 0 {
		input.Rooms = 1
	}
	if input.Policy == "" {
		input.Policy = DefaultPolicy
	}
	if !input.Policy.IsValid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown cancellation policy %q", input.Policy))
	}
	checkIn, checkOut := inventory.NormalizeDate(input.CheckIn), inventory.NormalizeDate(input.CheckOut)
	if err := s.validateStay(checkIn, checkOut, input.Guests); err != nil {
		return nil, err
	}

	room, err := s.inventory.Room(ctx, input.HotelID, input.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, apperror.Validation("room is not open for booking")
	}
	if input.Guests.Total() > room.MaxGuests*input.Rooms {
		return nil, apperror.Validation(capacityReason(room.MaxGuests, input.Rooms)).
			With("max_guests", room.MaxGuests*input.Rooms)
	}

	check, err := s.inventory.CheckRange(ctx, input.HotelID, input.RoomID, checkIn, checkOut, input.Rooms)
	if err != nil {
		return nil, err
	}
	if !check.Available {
		unavailable := apperror.New(apperror.KindInsufficientInventory, check.Reason)
		if check.FailingDate != nil {
			unavailable.With("failing_date", check.FailingDate.Format(inventory.DateLayout))
		}
		return nil, unavailable
	}

	nights := len(inventory.DatesInRange(checkIn, checkOut))
	pricing, err := s.price(check, nights, input.Rooms, input.Taxes, input.Fees, input.Discount)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	number, err := s.numbers.Generate(ctx)
	if err != nil {
		return nil, s.mapError(err, "failed to generate booking number")
	}

	now := s.now().UTC()
	booking := &Booking{
		ID:                 uuid.New(),
		BookingNumber:      number,
		UserID:             input.UserID,
		HotelID:            input.HotelID,
		RoomID:             input.RoomID,
		CheckIn:            checkIn,
		CheckOut:           checkOut,
		NumberOfNights:     nights,
		Rooms:              input.Rooms,
		Guests:             input.Guests,
		GuestContact:       input.Contact,
		Pricing:            pricing,
		Status:             StatusPending,
		PaymentStatus:      PaymentPending,
		CancellationPolicy: input.Policy,
		SpecialRequests:    strings.TrimSpace(input.SpecialRequests),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	// Held until the booking row is committed, not just the ledger writes.
	lockedCtx, unlock, err := s.inventory.LockRoom(ctx, booking.HotelID, booking.RoomID)
	if err != nil {
		return nil, s.mapError(err, "failed to lock room")
	}
	defer unlock()

	err = s.tx.WithinTransaction(lockedCtx, func(ctx context.Context) error {
		if err := s.inventory.ReserveRange(ctx, booking.HotelID, booking.RoomID, checkIn, checkOut, booking.Rooms); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, booking); err != nil {
			if releaseErr := s.inventory.ReleaseRange(ctx, booking.HotelID, booking.RoomID, checkIn, checkOut, booking.Rooms); releaseErr != nil {
				s.log.ErrorWithContext(ctx, "Booking Compensation Failed", releaseErr, map[string]interface{}{
					"booking_number": booking.BookingNumber,
				})
			}
			s.log.LogReservationCompensated(ctx, booking.RoomID.String(), nights, err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, s.mapError(err, "failed to create booking")
	}

	s.log.LogBookingCreated(ctx, booking.ID.String(), booking.BookingNumber, booking.RoomID.String(), booking.UserID.String())
	s.publish(ctx, notifications.EventBookingCreated, booking)
	return booking, nil
}

// CancelBooking applies the cancellation policy, records the settlement and
// returns the booking's nights to the ledger.
func (s *service) CancelBooking(ctx context.Context, id uuid.UUID, actor Actor, reason string) (*CancelBookingResponse, error) {
	var booking *Booking
	var check CancellationCheck

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		booking, err = s.load(ctx, id, actor)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		check = CanBeCancelled(booking, now)
		if !check.CanCancel {
			denied := apperror.New(apperror.KindCancellationDenied, check.Reason)
			if check.Deadline != nil {
				denied.With("deadline", check.Deadline.Format(time.RFC3339))
			}
			return denied
		}
		if !booking.Status.CanTransitionTo(StatusCancelled) {
			return invalidTransition(booking.Status, StatusCancelled)
		}

		settlement := Settle(booking, check)
		change := StatusChange{
			From:          booking.Status,
			To:            StatusCancelled,
			At:            now,
			Reason:        strings.TrimSpace(reason),
			Fee:           settlement.Fee,
			Refund:        settlement.Refund,
			PaymentStatus: settlement.PaymentStatus,
		}
		return s.cancel(ctx, booking, change)
	})
	if err != nil {
		return nil, s.mapError(err, "failed to cancel booking")
	}

	s.afterCancel(ctx, booking)
	return &CancelBookingResponse{Booking: booking, Cancellation: check}, nil
}

func (s *service) GetBooking(ctx context.Context, id uuid.UUID, actor Actor) (*Booking, error) {
	booking, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, s.mapError(err, "failed to get booking")
	}
	return booking, nil
}

func (s *service) GetTimeline(ctx context.Context, id uuid.UUID, actor Actor) (*Timeline, error) {
	booking, err := s.GetBooking(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	timeline := BuildTimeline(booking, s.now().UTC())
	return &timeline, nil
}

func (s *service) GetCancellationTerms(ctx context.Context, id uuid.UUID, actor Actor) (*CancellationCheck, error) {
	booking, err := s.GetBooking(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	check := CanBeCancelled(booking, s.now().UTC())
	return &check, nil
}

func (s *service) ListBookings(ctx context.Context, query BookingListQuery) (*BookingListResponse, error) {
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	bookings, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, s.mapError(err, "failed to list bookings")
	}
	if bookings == nil {
		bookings = []Booking{}
	}

	return &BookingListResponse{
		Bookings:   bookings,
		Total:      total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: CalculateTotalPages(total, query.Limit),
	}, nil
}

func (s *service) ConfirmBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.transition(ctx, id, StatusConfirmed, notifications.EventBookingConfirmed)
}

func (s *service) CompleteBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.transition(ctx, id, StatusCompleted, notifications.EventBookingCompleted)
}

// MarkNoShow keeps the nights committed; the room was held for the guest.
func (s *service) MarkNoShow(ctx context.Context, id uuid.UUID) (*Booking, error) {
	return s.transition(ctx, id, StatusNoShow, notifications.EventBookingNoShow)
}

func (s *service) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) (*Booking, error) {
	if !status.IsValid() {
		return nil, apperror.Validation(fmt.Sprintf("unknown payment status %q", status))
	}

	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "failed to update payment status")
	}
	now := s.now().UTC()
	if err := s.repo.UpdatePaymentStatus(ctx, id, status, now); err != nil {
		return nil, s.mapError(err, "failed to update payment status")
	}

	booking.PaymentStatus = status
	booking.UpdatedAt = now
	s.log.InfoWithContext(ctx, "Payment Status Updated", map[string]interface{}{
		"booking_id":     id.String(),
		"payment_status": string(status),
	})
	return booking, nil
}

// ForceDelete removes a booking outright, releasing nights it still holds.
func (s *service) ForceDelete(ctx context.Context, id uuid.UUID) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		booking, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		// The delete is guarded on the status read above, so a cancel that
		// lands in between makes this fail instead of releasing twice.
		if err := s.repo.Delete(ctx, id, booking.Status); err != nil {
			return err
		}
		if !booking.Status.HoldsInventory() {
			return nil
		}
		return s.inventory.ReleaseRange(ctx, booking.HotelID, booking.RoomID, booking.CheckIn, booking.CheckOut, booking.Rooms)
	})
	if err != nil {
		return s.mapError(err, "failed to delete booking")
	}

	s.log.InfoWithContext(ctx, "Booking Force Deleted", map[string]interface{}{"booking_id": id.String()})
	return nil
}

// CancelActiveBookingsForHotel joins the caller's transaction when there is
// one, so cancellation events wait for Notify instead of going out here.
func (s *service) CancelActiveBookingsForHotel(ctx context.Context, hotelID uuid.UUID, reason string) (*hotels.CancelledBookings, error) {
	var cancelled []*Booking

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		active, err := s.repo.ListActiveByHotel(ctx, hotelID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		for i := range active {
			booking := &active[i]
			// Forced by the property, so the guest is never charged a fee.
			settlement := Settle(booking, CancellationCheck{CanCancel: true})
			change := StatusChange{
				From:          booking.Status,
				To:            StatusCancelled,
				At:            now,
				Reason:        reason,
				Refund:        settlement.Refund,
				PaymentStatus: settlement.PaymentStatus,
			}
			if err := s.cancel(ctx, booking, change); err != nil {
				return fmt.Errorf("booking %s: %w", booking.BookingNumber, err)
			}
			cancelled = append(cancelled, booking)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &hotels.CancelledBookings{
		Count: len(cancelled),
		Notify: func(ctx context.Context) {
			for _, booking := range cancelled {
				s.afterCancel(ctx, booking)
			}
		},
	}, nil
}

func (s *service) CompleteFinishedStays(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	finished, err := s.repo.ListFinishedStays(ctx, s.now().UTC(), limit)
	if err != nil {
		return 0, err
	}

	completed := 0
	for i := range finished {
		if _, err := s.transition(ctx, finished[i].ID, StatusCompleted, notifications.EventBookingCompleted); err != nil {
			if apperror.Is(err, apperror.KindConcurrencyConflict) || apperror.Is(err, apperror.KindInvalidTransition) {
				continue
			}
			return completed, err
		}
		completed++
	}
	return completed, nil
}

func (s *service) transition(ctx context.Context, id uuid.UUID, to Status, eventType notifications.EventType) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, "failed to update booking")
	}
	if !booking.Status.CanTransitionTo(to) {
		return nil, invalidTransition(booking.Status, to)
	}

	change := StatusChange{From: booking.Status, To: to, At: s.now().UTC()}
	if err := s.repo.TransitionStatus(ctx, id, change); err != nil {
		return nil, s.mapError(err, "failed to update booking")
	}
	booking.Apply(change)

	s.log.LogBookingTransition(ctx, id.String(), string(change.From), string(to))
	s.publish(ctx, eventType, booking)
	return booking, nil
}

// cancel writes the guarded transition and releases held nights. The guard
// makes a racing second cancel fail instead of releasing twice.
func (s *service) cancel(ctx context.Context, booking *Booking, change StatusChange) error {
	if err := s.repo.TransitionStatus(ctx, booking.ID, change); err != nil {
		return err
	}
	if change.From.HoldsInventory() {
		if err := s.inventory.ReleaseRange(ctx, booking.HotelID, booking.RoomID, booking.CheckIn, booking.CheckOut, booking.Rooms); err != nil {
			return err
		}
	}
	booking.Apply(change)
	return nil
}

func (s *service) afterCancel(ctx context.Context, booking *Booking) {
	fee := 0.0
	if booking.CancellationFee != nil {
		fee = *booking.CancellationFee
	}
	s.log.LogBookingCancelled(ctx, booking.ID.String(), booking.BookingNumber, booking.CancellationReason, fee)
	s.publish(ctx, notifications.EventBookingCancelled, booking)
}

func (s *service) load(ctx context.Context, id uuid.UUID, actor Actor) (*Booking, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Staff && booking.UserID != actor.UserID {
		return nil, apperror.Forbidden("booking belongs to another user")
	}
	return booking, nil
}

func (s *service) validateStay(checkIn, checkOut time.Time, guests Guests) error {
	if !checkOut.After(checkIn) {
		return apperror.Validation("check-out date must be after check-in date")
	}
	if checkIn.Before(inventory.NormalizeDate(s.now().UTC())) {
		return apperror.Validation("check-in date cannot be in the past")
	}
	if guests.Adults < 1 {
		return apperror.Validation("at least one adult is required")
	}
	if guests.Children < 0 || guests.Infants < 0 {
		return apperror.Validation("guest counts must not be negative")
	}
	return nil
}

// price charges the average nightly rate of the stay, which honours special
// prices on individual nights.
func (s *service) price(check *availability.Result, nights, rooms int, taxes, fees, discount *float64) (Pricing, error) {
	perNight := roundMoney(check.QuotedTotal / float64(nights*rooms))

	in := PricingInput{
		PricePerNight: perNight,
		Nights:        nights,
		Rooms:         rooms,
		Taxes:         TaxFor(s.cfg.TaxRate, perNight, nights, rooms),
		Fees:          s.cfg.ServiceFee,
		Currency:      s.cfg.Currency,
	}
	if taxes != nil {
		in.Taxes = *taxes
	}
	if fees != nil {
		in.Fees = *fees
	}
	if discount != nil {
		in.Discount = *discount
	}
	return CalculatePricing(in)
}

func (s *service) publish(ctx context.Context, eventType notifications.EventType, b *Booking) {
	event := notifications.NewEventBuilder(eventType).
		At(s.now()).
		WithBooking(b.ID, b.BookingNumber, b.HotelID, b.RoomID).
		WithStay(b.CheckIn.Format(inventory.DateLayout), b.CheckOut.Format(inventory.DateLayout), b.Rooms).
		WithState(string(b.Status), string(b.PaymentStatus)).
		WithPrice(b.Pricing.FinalPrice, b.Pricing.Currency).
		WithCancellation(b.CancellationReason, b.CancellationFee, b.RefundAmount).
		WithRecipient(notifications.Recipient{
			UserID: b.UserID,
			Name:   strings.TrimSpace(b.GuestContact.FirstName + " " + b.GuestContact.LastName),
			Email:  b.GuestContact.Email,
			Phone:  b.GuestContact.Phone,
		}).
		Build()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.ErrorWithContext(ctx, "Booking Event Publish Failed", err, map[string]interface{}{
			"event_type":     string(eventType),
			"booking_number": b.BookingNumber,
		})
	}
}

func (s *service) mapError(err error, reason string) error {
	if _, ok := apperror.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrBookingNotFound):
		return apperror.NotFound("booking not found")
	case errors.Is(err, ErrStatusChanged):
		return apperror.Wrap(apperror.KindConcurrencyConflict, "booking was modified concurrently, retry the request", err)
	case errors.Is(err, ErrBookingNumberTaken), errors.Is(err, ErrBookingNumberExhausted):
		return apperror.Wrap(apperror.KindConcurrencyConflict, "could not allocate a booking number, retry the request", err)
	default:
		return apperror.Internal(reason, err)
	}
}

func invalidTransition(from, to Status) *apperror.Error {
	return apperror.New(apperror.KindInvalidTransition, fmt.Sprintf("cannot move booking from %s to %s", from, to)).
		With("from", string(from)).
		With("to", string(to))
}

func capacityReason(maxGuests, rooms int) string {
	return fmt.Sprintf("room accommodates at most %d guest(s) across %d room(s)", maxGuests*rooms, rooms)
}
