package hotels

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"staybook/internal/shared/apperror"
	"staybook/internal/shared/constants"
	"staybook/internal/shared/transaction"
	"staybook/pkg/cache"
	"staybook/pkg/logger"
)

// BookingCanceller force-cancels the live bookings of a hotel being removed.
type BookingCanceller interface {
	CancelActiveBookingsForHotel(ctx context.Context, hotelID uuid.UUID, reason string) (*CancelledBookings, error)
}

// CancelledBookings is the outcome of a cascade cancel made inside the
// caller's unit of work. Notify must only run once that unit has committed.
type CancelledBookings struct {
	Count  int
	Notify func(ctx context.Context)
}

const hotelRemovedReason = "hotel removed"

type Service interface {
	CreateHotel(ctx context.Context, req CreateHotelRequest) (*Hotel, error)
	GetHotel(ctx context.Context, id uuid.UUID) (*Hotel, error)
	ListHotels(ctx context.Context, query HotelListQuery) (*HotelListResponse, error)
	UpdateHotel(ctx context.Context, id uuid.UUID, req UpdateHotelRequest) (*Hotel, error)
	DeleteHotel(ctx context.Context, id uuid.UUID) (*DeleteHotelResult, error)

	CreateRoom(ctx context.Context, hotelID uuid.UUID, req CreateRoomRequest) (*Room, error)
	GetRoom(ctx context.Context, hotelID, roomID uuid.UUID) (*Room, error)
	ListRooms(ctx context.Context, hotelID uuid.UUID) ([]Room, error)
	UpdateRoom(ctx context.Context, hotelID, roomID uuid.UUID, req UpdateRoomRequest) (*Room, error)

	// GetRoomSnapshot is the room catalog lookup used by the booking engine.
	GetRoomSnapshot(ctx context.Context, roomID uuid.UUID) (*RoomSnapshot, error)

	SetBookingCanceller(canceller BookingCanceller)
	SetCacheService(cacheService cache.Service)
}

type service struct {
	repo         Repository
	tx           transaction.Transactor
	canceller    BookingCanceller
	cacheService cache.Service
	log          *logger.Logger
}

func NewService(repo Repository, tx transaction.Transactor, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{repo: repo, tx: tx, log: log}
}

func (s *service) SetBookingCanceller(canceller BookingCanceller) {
	s.canceller = canceller
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) CreateHotel(ctx context.Context, req CreateHotelRequest) (*Hotel, error) {
	hotelSlug, err := s.uniqueSlug(ctx, req.Name)
	if err != nil {
		return nil, apperror.Internal("failed to create hotel", err)
	}

	hotel := &Hotel{
		Name:        strings.TrimSpace(req.Name),
		Slug:        hotelSlug,
		Description: req.Description,
		Address:     req.Address,
		City:        req.City,
		Country:     req.Country,
		StarRating:  req.StarRating,
		IsActive:    true,
	}
	if err := s.repo.CreateHotel(ctx, hotel); err != nil {
		return nil, apperror.Internal("failed to create hotel", err)
	}
	return hotel, nil
}

func (s *service) GetHotel(ctx context.Context, id uuid.UUID) (*Hotel, error) {
	hotel, err := s.repo.GetHotelByID(ctx, id, true)
	if err != nil {
		return nil, s.mapError(err, "failed to get hotel")
	}
	return hotel, nil
}

func (s *service) ListHotels(ctx context.Context, query HotelListQuery) (*HotelListResponse, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 20
	}

	hotels, total, err := s.repo.ListHotels(ctx, query)
	if err != nil {
		return nil, apperror.Internal("failed to list hotels", err)
	}
	return &HotelListResponse{
		Hotels:     hotels,
		Total:      total,
		Page:       query.Page,
		Limit:      query.Limit,
		TotalPages: CalculateTotalPages(total, query.Limit),
	}, nil
}

func (s *service) UpdateHotel(ctx context.Context, id uuid.UUID, req UpdateHotelRequest) (*Hotel, error) {
	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.StarRating != nil {
		updates["star_rating"] = *req.StarRating
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return nil, apperror.Validation("no fields to update")
	}

	if err := s.repo.UpdateHotel(ctx, id, updates); err != nil {
		return nil, s.mapError(err, "failed to update hotel")
	}
	return s.GetHotel(ctx, id)
}

// DeleteHotel cancels the hotel's live bookings, releasing their inventory,
// then removes its rooms and the hotel in the same unit of work.
func (s *service) DeleteHotel(ctx context.Context, id uuid.UUID) (*DeleteHotelResult, error) {
	result := &DeleteHotelResult{HotelID: id.String()}
	var removedRooms []uuid.UUID
	var cancelled *CancelledBookings

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetHotelByID(ctx, id, false); err != nil {
			return err
		}

		if s.canceller != nil {
			var err error
			cancelled, err = s.canceller.CancelActiveBookingsForHotel(ctx, id, hotelRemovedReason)
			if err != nil {
				return fmt.Errorf("failed to cancel hotel bookings: %w", err)
			}
			result.CancelledBookings = cancelled.Count
		}

		roomIDs, err := s.repo.DeleteHotelCascade(ctx, id)
		if err != nil {
			return err
		}
		removedRooms = roomIDs
		return nil
	})
	if err != nil {
		return nil, s.mapError(err, "failed to delete hotel")
	}

	if cancelled != nil && cancelled.Notify != nil {
		cancelled.Notify(ctx)
	}
	for _, roomID := range removedRooms {
		s.invalidateRoom(ctx, roomID)
	}
	s.log.InfoWithContext(ctx, "Hotel Deleted", map[string]interface{}{
		"hotel_id":           id.String(),
		"cancelled_bookings": result.CancelledBookings,
		"rooms_removed":      len(removedRooms),
	})
	return result, nil
}

func (s *service) CreateRoom(ctx context.Context, hotelID uuid.UUID, req CreateRoomRequest) (*Room, error) {
	if _, err := s.repo.GetHotelByID(ctx, hotelID, false); err != nil {
		return nil, s.mapError(err, "failed to create room")
	}

	room := &Room{
		HotelID:       hotelID,
		Name:          strings.TrimSpace(req.Name),
		RoomType:      req.RoomType,
		Description:   req.Description,
		MaxGuests:     req.MaxGuests,
		PricePerNight: req.PricePerNight,
		Quantity:      req.Quantity,
		IsActive:      true,
	}
	if err := s.repo.CreateRoom(ctx, room); err != nil {
		return nil, apperror.Internal("failed to create room", err)
	}
	return room, nil
}

func (s *service) GetRoom(ctx context.Context, hotelID, roomID uuid.UUID) (*Room, error) {
	room, err := s.repo.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, s.mapError(err, "failed to get room")
	}
	if room.HotelID != hotelID {
		return nil, apperror.NotFound("room not found in hotel")
	}
	return room, nil
}

func (s *service) ListRooms(ctx context.Context, hotelID uuid.UUID) ([]Room, error) {
	if _, err := s.repo.GetHotelByID(ctx, hotelID, false); err != nil {
		return nil, s.mapError(err, "failed to list rooms")
	}
	rooms, err := s.repo.ListRooms(ctx, hotelID)
	if err != nil {
		return nil, apperror.Internal("failed to list rooms", err)
	}
	return rooms, nil
}

func (s *service) UpdateRoom(ctx context.Context, hotelID, roomID uuid.UUID, req UpdateRoomRequest) (*Room, error) {
	if _, err := s.GetRoom(ctx, hotelID, roomID); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.RoomType != nil {
		updates["room_type"] = *req.RoomType
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.MaxGuests != nil {
		updates["max_guests"] = *req.MaxGuests
	}
	if req.PricePerNight != nil {
		updates["price_per_night"] = *req.PricePerNight
	}
	if req.Quantity != nil {
		updates["quantity"] = *req.Quantity
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return nil, apperror.Validation("no fields to update")
	}

	if err := s.repo.UpdateRoom(ctx, roomID, updates); err != nil {
		return nil, s.mapError(err, "failed to update room")
	}
	s.invalidateRoom(ctx, roomID)

	return s.GetRoom(ctx, hotelID, roomID)
}

func (s *service) GetRoomSnapshot(ctx context.Context, roomID uuid.UUID) (*RoomSnapshot, error) {
	fetch := func() (interface{}, error) {
		room, err := s.repo.GetRoomByID(ctx, roomID)
		if err != nil {
			return nil, err
		}
		return room.Snapshot(), nil
	}

	if s.cacheService == nil {
		data, err := fetch()
		if err != nil {
			return nil, s.mapError(err, "failed to get room")
		}
		return data.(*RoomSnapshot), nil
	}

	var snapshot RoomSnapshot
	key := constants.BuildRoomSnapshotKey(roomID.String())
	if err := s.cacheService.GetOrSet(ctx, key, constants.TTL_ROOM_SNAPSHOT, fetch, &snapshot); err != nil {
		return nil, s.mapError(err, "failed to get room")
	}
	return &snapshot, nil
}

func (s *service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "hotel"
	}

	candidate := base
	for i := 0; i < 5; i++ {
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%s", base, uuid.NewString()[:6])
	}
	return fmt.Sprintf("%s-%s", base, uuid.NewString()), nil
}

func (s *service) invalidateRoom(ctx context.Context, roomID uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Delete(ctx, constants.BuildRoomSnapshotKey(roomID.String())); err != nil {
		s.log.WarnContext(ctx, "failed to invalidate room snapshot", "room_id", roomID.String(), "error", err.Error())
	}
}

func (s *service) mapError(err error, reason string) error {
	if _, ok := apperror.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrHotelNotFound):
		return apperror.NotFound("hotel not found")
	case errors.Is(err, ErrRoomNotFound):
		return apperror.NotFound("room not found")
	default:
		return apperror.Internal(reason, err)
	}
}
