package database

import (
	"fmt"

	"gorm.io/gorm"
)

// ledgerConstraints keep the inventory ledger consistent even if a writer
// bypasses the version check.
var ledgerConstraints = []struct {
	name string
	sql  string
}{
	{
		name: "chk_inventory_days_booked_range",
		sql: `ALTER TABLE inventory_days ADD CONSTRAINT chk_inventory_days_booked_range
			CHECK (booked_quantity >= 0 AND booked_quantity <= total_quantity)`,
	},
	{
		name: "chk_inventory_days_available",
		sql: `ALTER TABLE inventory_days ADD CONSTRAINT chk_inventory_days_available
			CHECK (available_quantity = total_quantity - booked_quantity)`,
	},
	{
		name: "chk_bookings_stay",
		sql: `ALTER TABLE bookings ADD CONSTRAINT chk_bookings_stay
			CHECK (check_out > check_in AND rooms >= 1)`,
	},
	{
		name: "chk_rooms_quantity",
		sql: `ALTER TABLE rooms ADD CONSTRAINT chk_rooms_quantity
			CHECK (quantity >= 0 AND max_guests >= 1)`,
	},
}

var ledgerIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_inventory_days_room_date ON inventory_days (room_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_room_stay ON bookings (room_id, check_in, check_out)`,
	`CREATE INDEX IF NOT EXISTS idx_bookings_status_check_out ON bookings (status, check_out)`,
}

// MigrateConstraints adds the check constraints and lookup indexes the
// booking engine relies on. Postgres has no ADD CONSTRAINT IF NOT EXISTS,
// so existing constraints are detected through pg_constraint.
func MigrateConstraints(db *gorm.DB) error {
	for _, c := range ledgerConstraints {
		var count int64
		if err := db.Raw(`SELECT count(*) FROM pg_constraint WHERE conname = ?`, c.name).Scan(&count).Error; err != nil {
			return fmt.Errorf("lookup constraint %s: %w", c.name, err)
		}
		if count > 0 {
			continue
		}
		if err := db.Exec(c.sql).Error; err != nil {
			return fmt.Errorf("add constraint %s: %w", c.name, err)
		}
	}

	for _, stmt := range ledgerIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	return nil
}
