package hotels

type HotelListResponse struct {
	Hotels     []Hotel `json:"hotels"`
	Total      int64   `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"total_pages"`
}

type DeleteHotelResult struct {
	HotelID           string `json:"hotel_id"`
	CancelledBookings int    `json:"cancelled_bookings"`
}

func CalculateTotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
