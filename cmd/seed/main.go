package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"staybook/internal/hotels"
	"staybook/internal/inventory"
	"staybook/internal/shared/config"
	"staybook/internal/shared/database"
	"staybook/internal/shared/transaction"
	"staybook/internal/users"
	"staybook/pkg/logger"
)

const (
	seedPassword  = "qwerty"
	ledgerDays    = 60
	weekendMarkup = 1.25
)

type Seeder struct {
	db     *database.DB
	hotels hotels.Service
	ledger *inventory.Ledger
}

func main() {
	_ = godotenv.Load()
	fmt.Println("🌱 Starting Staybook Database Seeder...")

	cfg := config.Load()
	appLogger := logger.NewWithLevel("warn")
	ctx := context.Background()

	db, err := database.InitDB(ctx, cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	pg := db.GetPostgreSQL()
	seeder := &Seeder{
		db:     db,
		hotels: hotels.NewService(hotels.NewRepository(pg), transaction.NewGormTransactor(pg), appLogger),
		ledger: inventory.NewLedger(inventory.NewRepository(pg), cfg.Booking.CASAttempts, appLogger),
	}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(ctx); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(ctx); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Printf("\n🎉 Seeding completed! Log in with any seeded email and password %q.\n", seedPassword)
}

// CleanDatabase truncates all tables, dependents first.
func (s *Seeder) CleanDatabase(ctx context.Context) error {
	tables := []string{
		"bookings",
		"inventory_days",
		"rooms",
		"hotels",
		"users",
	}

	return s.db.PostgreSQL.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedAll seeds users, the hotel catalog and the inventory ledger.
func (s *Seeder) SeedAll(ctx context.Context) error {
	if err := s.SeedUsers(ctx); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	rooms, err := s.SeedHotels(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed hotels: %w", err)
	}

	if err := s.SeedLedger(ctx, rooms, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to seed inventory: %w", err)
	}

	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}

// SeedUsers creates one account per role.
func (s *Seeder) SeedUsers(ctx context.Context) error {
	fmt.Println("  👤 Seeding users...")

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		firstName string
		lastName  string
		email     string
		role      users.Role
	}{
		{"Admin", "User", "admin@staybook.local", users.RoleAdmin},
		{"Front", "Desk", "manager@staybook.local", users.RoleManager},
		{"Guest", "One", "guest1@staybook.local", users.RoleUser},
		{"Guest", "Two", "guest2@staybook.local", users.RoleUser},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:        uuid.New(),
			FirstName: userData.firstName,
			LastName:  userData.lastName,
			Email:     userData.email,
			Password:  string(hashedPassword),
			Role:      userData.role,
		}

		if err := s.db.PostgreSQL.WithContext(ctx).Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return nil
}

// SeedHotels creates the catalog through the hotel service so slugs and
// validation match what the API would produce.
func (s *Seeder) SeedHotels(ctx context.Context) ([]hotels.Room, error) {
	fmt.Println("  🏨 Seeding hotels and rooms...")

	catalog := []struct {
		hotel hotels.CreateHotelRequest
		rooms []hotels.CreateRoomRequest
	}{
		{
			hotel: hotels.CreateHotelRequest{
				Name:       "Harbour View Hotel",
				Address:    "1 Quay Street",
				City:       "Lisbon",
				Country:    "Portugal",
				StarRating: 4,
			},
			rooms: []hotels.CreateRoomRequest{
				{Name: "Standard Double", RoomType: "DOUBLE", MaxGuests: 2, PricePerNight: 120, Quantity: 20},
				{Name: "Twin Room", RoomType: "TWIN", MaxGuests: 2, PricePerNight: 110, Quantity: 10},
				{Name: "Harbour Suite", RoomType: "SUITE", MaxGuests: 4, PricePerNight: 320, Quantity: 3},
			},
		},
		{
			hotel: hotels.CreateHotelRequest{
				Name:       "Alpine Lodge",
				Address:    "Bahnhofstrasse 12",
				City:       "Zermatt",
				Country:    "Switzerland",
				StarRating: 3,
			},
			rooms: []hotels.CreateRoomRequest{
				{Name: "Single Room", RoomType: "SINGLE", MaxGuests: 1, PricePerNight: 90, Quantity: 8},
				{Name: "Family Room", RoomType: "FAMILY", MaxGuests: 5, PricePerNight: 260, Quantity: 4},
			},
		},
		{
			hotel: hotels.CreateHotelRequest{
				Name:       "City Hostel",
				Address:    "44 Market Lane",
				City:       "Berlin",
				Country:    "Germany",
				StarRating: 1,
			},
			rooms: []hotels.CreateRoomRequest{
				{Name: "Eight Bed Dorm", RoomType: "DORM", MaxGuests: 1, PricePerNight: 28, Quantity: 32},
			},
		},
	}

	var created []hotels.Room
	for _, entry := range catalog {
		hotel, err := s.hotels.CreateHotel(ctx, entry.hotel)
		if err != nil {
			return nil, fmt.Errorf("create hotel %s: %w", entry.hotel.Name, err)
		}
		fmt.Printf("    ✅ Created hotel: %s (%s)\n", hotel.Name, hotel.Slug)

		for _, req := range entry.rooms {
			room, err := s.hotels.CreateRoom(ctx, hotel.ID, req)
			if err != nil {
				return nil, fmt.Errorf("create room %s: %w", req.Name, err)
			}
			created = append(created, *room)
			fmt.Printf("      🛏  %s x%d at %.2f\n", room.Name, room.Quantity, room.PricePerNight)
		}
	}

	return created, nil
}

// SeedLedger materialises the next ledgerDays nights for every room, with
// weekend special prices.
func (s *Seeder) SeedLedger(ctx context.Context, rooms []hotels.Room, from time.Time) error {
	fmt.Printf("  📅 Seeding %d days of inventory for %d rooms...\n", ledgerDays, len(rooms))

	start := inventory.NormalizeDate(from)
	for _, room := range rooms {
		defaults := inventory.RoomDefaults{TotalQuantity: room.Quantity, Price: room.PricePerNight}
		for i := 0; i < ledgerDays; i++ {
			date := start.AddDate(0, 0, i)

			var update inventory.DayUpdate
			if weekday := date.Weekday(); weekday == time.Friday || weekday == time.Saturday {
				special := math.Round(room.PricePerNight*weekendMarkup*100) / 100
				update.SpecialPrice = &special
			}

			if _, err := s.ledger.UpsertDay(ctx, inventory.NewDayKey(room.HotelID, room.ID, date), defaults, update); err != nil {
				return fmt.Errorf("room %s on %s: %w", room.ID, date.Format(inventory.DateLayout), err)
			}
		}
	}

	return nil
}
