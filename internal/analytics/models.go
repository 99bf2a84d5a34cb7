package analytics

import (
	"time"

	"github.com/google/uuid"
)

// Occupancy Report Models

type DailyOccupancy struct {
	Date          string  `json:"date"`
	TotalRooms    int     `json:"total_rooms"`
	BookedRooms   int     `json:"booked_rooms"`
	OccupancyRate float64 `json:"occupancy_rate"`
}

type OccupancyReport struct {
	HotelID          uuid.UUID        `json:"hotel_id"`
	From             string           `json:"from"`
	To               string           `json:"to"`
	Days             []DailyOccupancy `json:"days"`
	RoomNights       int              `json:"room_nights"`
	BookedNights     int              `json:"booked_nights"`
	AverageOccupancy float64          `json:"average_occupancy"`
	PeakDate         string           `json:"peak_date,omitempty"`
	GeneratedAt      time.Time        `json:"generated_at"`
}

// Booking Report Models

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type RevenueTotals struct {
	Revenue        float64 `json:"revenue"`
	AverageValue   float64 `json:"average_value"`
	AverageNights  float64 `json:"average_nights"`
	RoomNightsSold int64   `json:"room_nights_sold"`
}

type CancellationTotals struct {
	Fees    float64 `json:"fees"`
	Refunds float64 `json:"refunds"`
}

type DailyBookingStats struct {
	Date      string  `json:"date"`
	Bookings  int64   `json:"bookings"`
	Cancelled int64   `json:"cancelled"`
	Revenue   float64 `json:"revenue"`
}

type BookingReport struct {
	From             string              `json:"from"`
	To               string              `json:"to"`
	TotalBookings    int64               `json:"total_bookings"`
	ByStatus         map[string]int64    `json:"by_status"`
	Revenue          RevenueTotals       `json:"revenue"`
	Cancellations    CancellationTotals  `json:"cancellations"`
	CancellationRate float64             `json:"cancellation_rate"`
	Daily            []DailyBookingStats `json:"daily"`
	GeneratedAt      time.Time           `json:"generated_at"`
}

// Query DTOs

type OccupancyQuery struct {
	HotelID string `form:"hotel_id" binding:"required,uuid"`
	From    string `form:"from" binding:"required,datetime=2006-01-02"`
	To      string `form:"to" binding:"required,datetime=2006-01-02"`
}

type BookingReportQuery struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}
