package database

import (
	"staybook/internal/bookings"
	"staybook/internal/hotels"
	"staybook/internal/inventory"
	"staybook/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&users.User{},
		&hotels.Hotel{},
		&hotels.Room{},
		&inventory.InventoryDay{},
		&bookings.Booking{},
	); err != nil {
		return err
	}
	return MigrateConstraints(db)
}
