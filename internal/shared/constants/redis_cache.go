package constants

import (
	"fmt"
	"time"
)

// Redis Cache Configuration
// Pattern: staybook:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Semi-Static Data (Medium TTL: changes occasionally)
const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour    // 2 hours - for hotel details
	TTL_SEMI_STATIC_SHORT  = 1 * time.Hour    // 1 hour - for room catalog entries
	TTL_SEMI_STATIC_QUICK  = 15 * time.Minute // 15 minutes - for hotel listings
)

// Dynamic Data (Short TTL: changes frequently)
const (
	TTL_DYNAMIC_MEDIUM = 10 * time.Minute // 10 minutes - for reports
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "staybook"
)

// ================== HOTELS MODULE ==================

const (
	CACHE_KEY_HOTEL_DETAIL  = CACHE_PREFIX + ":hotels:detail:uuid:"  // + hotel-id
	CACHE_KEY_ROOM_SNAPSHOT = CACHE_PREFIX + ":rooms:snapshot:uuid:" // + room-id
)

const (
	TTL_HOTEL_DETAIL  = TTL_SEMI_STATIC_MEDIUM
	TTL_ROOM_SNAPSHOT = TTL_SEMI_STATIC_SHORT
)

// ================== AVAILABILITY MODULE ==================

const (
	LOCK_KEY_ROOM_RESERVATION = CACHE_PREFIX + ":locks:reservation" // + :hotel:X:room:Y
)

// ================== REPORTS MODULE ==================

const (
	CACHE_KEY_REPORT_OCCUPANCY = CACHE_PREFIX + ":reports:occupancy" // + :hotel:X:from:Y:to:Z
	CACHE_KEY_REPORT_BOOKINGS  = CACHE_PREFIX + ":reports:bookings"  // + :from:X:to:Y
	CACHE_PATTERN_REPORTS      = CACHE_PREFIX + ":reports:*"
)

const (
	TTL_REPORT = TTL_DYNAMIC_MEDIUM
)

// ================== RATE LIMIT MODULE ==================

const (
	RATE_LIMIT_PREFIX = CACHE_PREFIX + ":ratelimit" // + :type:X:client:Y
)

// ================== KEY BUILDERS ==================

func BuildHotelDetailKey(hotelID string) string {
	return CACHE_KEY_HOTEL_DETAIL + hotelID
}

func BuildRoomSnapshotKey(roomID string) string {
	return CACHE_KEY_ROOM_SNAPSHOT + roomID
}

func BuildRoomLockKey(hotelID, roomID string) string {
	return fmt.Sprintf("%s:hotel:%s:room:%s", LOCK_KEY_ROOM_RESERVATION, hotelID, roomID)
}

func BuildOccupancyReportKey(hotelID, from, to string) string {
	return fmt.Sprintf("%s:hotel:%s:from:%s:to:%s", CACHE_KEY_REPORT_OCCUPANCY, hotelID, from, to)
}

func BuildBookingReportKey(from, to string) string {
	return fmt.Sprintf("%s:from:%s:to:%s", CACHE_KEY_REPORT_BOOKINGS, from, to)
}

func BuildRateLimitKey(limitType, clientID string) string {
	return fmt.Sprintf("%s:type:%s:client:%s", RATE_LIMIT_PREFIX, limitType, clientID)
}
