package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"staybook/pkg/logger"
)

const DefaultCASAttempts = 8

// Ledger is the only writer of ledger days. Each mutation loads the day,
// applies a single-day operation and persists it with a version check,
// retrying a bounded number of times when another writer got there first.
type Ledger struct {
	repo        Repository
	maxAttempts int
	log         *logger.Logger
}

func NewLedger(repo Repository, maxAttempts int, log *logger.Logger) *Ledger {
	if maxAttempts <= 0 {
		maxAttempts = DefaultCASAttempts
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &Ledger{repo: repo, maxAttempts: maxAttempts, log: log}
}

// Get returns the stored day or ErrDayNotFound.
func (l *Ledger) Get(ctx context.Context, key DayKey) (*InventoryDay, error) {
	return l.repo.Get(ctx, NewDayKey(key.HotelID, key.RoomID, key.Date), false)
}

// Range returns stored days in [from, to).
func (l *Ledger) Range(ctx context.Context, hotelID, roomID uuid.UUID, from, to time.Time) ([]InventoryDay, error) {
	return l.repo.ListRange(ctx, hotelID, roomID, from, to)
}

// UpsertDay creates the day from defaults when absent, then applies update.
// Repeating the same call leaves the stored row untouched.
func (l *Ledger) UpsertDay(ctx context.Context, key DayKey, defaults RoomDefaults, update DayUpdate) (*InventoryDay, error) {
	return l.mutate(ctx, key, &defaults, func(day *InventoryDay) error {
		return day.ApplyUpdate(update)
	})
}

// Reserve commits quantity rooms on the day, creating it from defaults first.
func (l *Ledger) Reserve(ctx context.Context, key DayKey, defaults RoomDefaults, quantity int) (*InventoryDay, error) {
	return l.mutate(ctx, key, &defaults, func(day *InventoryDay) error {
		return day.Reserve(quantity)
	})
}

// Release returns quantity rooms. A missing day yields ErrDayNotFound.
func (l *Ledger) Release(ctx context.Context, key DayKey, quantity int) (*InventoryDay, error) {
	return l.mutate(ctx, key, nil, func(day *InventoryDay) error {
		return day.Release(quantity)
	})
}

// SetStatus applies an operator status, creating the day first if needed.
func (l *Ledger) SetStatus(ctx context.Context, key DayKey, defaults RoomDefaults, status Status) (*InventoryDay, error) {
	return l.mutate(ctx, key, &defaults, func(day *InventoryDay) error {
		return day.SetStatus(status)
	})
}

func (l *Ledger) mutate(ctx context.Context, key DayKey, defaults *RoomDefaults, apply func(*InventoryDay) error) (*InventoryDay, error) {
	key = NewDayKey(key.HotelID, key.RoomID, key.Date)

	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		day, err := l.load(ctx, key, defaults)
		if err != nil {
			return nil, err
		}

		before := *day
		if err := apply(day); err != nil {
			return nil, err
		}
		if sameState(&before, day) {
			return day, nil
		}

		swapped, err := l.repo.CompareAndSwap(ctx, day)
		if err != nil {
			return nil, err
		}
		if swapped {
			return day, nil
		}

		l.log.LogInventoryConflict(ctx, key.RoomID.String(), key.Date.Format(DateLayout), attempt)
	}

	return nil, fmt.Errorf("%w: %s after %d attempts", ErrConcurrencyConflict, key, l.maxAttempts)
}

func (l *Ledger) load(ctx context.Context, key DayKey, defaults *RoomDefaults) (*InventoryDay, error) {
	day, err := l.repo.Get(ctx, key, true)
	if err == nil {
		return day, nil
	}
	if !errors.Is(err, ErrDayNotFound) || defaults == nil {
		return nil, err
	}

	if _, err := l.repo.Insert(ctx, NewDay(key, *defaults)); err != nil {
		return nil, err
	}
	return l.repo.Get(ctx, key, true)
}

func sameState(a, b *InventoryDay) bool {
	if a.TotalQuantity != b.TotalQuantity ||
		a.BookedQuantity != b.BookedQuantity ||
		a.AvailableQuantity != b.AvailableQuantity ||
		a.Price != b.Price ||
		a.IsSpecialPrice != b.IsSpecialPrice ||
		a.Status != b.Status ||
		a.IsAvailable != b.IsAvailable {
		return false
	}
	if (a.SpecialPrice == nil) != (b.SpecialPrice == nil) {
		return false
	}
	return a.SpecialPrice == nil || *a.SpecialPrice == *b.SpecialPrice
}
