// Package inventorytest provides an in-memory ledger store for tests.
package inventorytest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"staybook/internal/inventory"
)

// MemoryRepository is an inventory.Repository that keeps ledger days in
// process memory. Every call is atomic, matching the row-level guarantees
// of the SQL repository.
type MemoryRepository struct {
	mu   sync.Mutex
	days map[string]*inventory.InventoryDay
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{days: make(map[string]*inventory.InventoryDay)}
}

func (m *MemoryRepository) Insert(ctx context.Context, day *inventory.InventoryDay) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := day.Key().String()
	if _, ok := m.days[key]; ok {
		return false, nil
	}
	if day.ID == uuid.Nil {
		day.ID = uuid.New()
	}
	if day.Version == 0 {
		day.Version = 1
	}
	now := time.Now().UTC()
	day.CreatedAt, day.UpdatedAt = now, now
	m.days[key] = day.Clone()
	return true, nil
}

func (m *MemoryRepository) Get(ctx context.Context, key inventory.DayKey, forUpdate bool) (*inventory.InventoryDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	day, ok := m.days[inventory.NewDayKey(key.HotelID, key.RoomID, key.Date).String()]
	if !ok {
		return nil, inventory.ErrDayNotFound
	}
	return day.Clone(), nil
}

func (m *MemoryRepository) ListRange(ctx context.Context, hotelID, roomID uuid.UUID, from, to time.Time) ([]inventory.InventoryDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from, to = inventory.NormalizeDate(from), inventory.NormalizeDate(to)
	var days []inventory.InventoryDay
	for _, day := range m.days {
		if day.HotelID != hotelID || day.RoomID != roomID {
			continue
		}
		if day.Date.Before(from) || !day.Date.Before(to) {
			continue
		}
		days = append(days, *day.Clone())
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	return days, nil
}

func (m *MemoryRepository) CompareAndSwap(ctx context.Context, day *inventory.InventoryDay) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := day.Key().String()
	stored, ok := m.days[key]
	if !ok || stored.Version != day.Version {
		return false, nil
	}
	day.Version++
	day.UpdatedAt = time.Now().UTC()
	m.days[key] = day.Clone()
	return true, nil
}
