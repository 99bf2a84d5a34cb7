package hotels

type CreateHotelRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=255"`
	Description string `json:"description" binding:"max=2000"`
	Address     string `json:"address" binding:"max=500"`
	City        string `json:"city" binding:"required,max=100"`
	Country     string `json:"country" binding:"required,max=100"`
	StarRating  int    `json:"star_rating" binding:"min=0,max=5"`
}

type UpdateHotelRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=255"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Address     *string `json:"address" binding:"omitempty,max=500"`
	City        *string `json:"city" binding:"omitempty,max=100"`
	Country     *string `json:"country" binding:"omitempty,max=100"`
	StarRating  *int    `json:"star_rating" binding:"omitempty,min=0,max=5"`
	IsActive    *bool   `json:"is_active"`
}

type CreateRoomRequest struct {
	Name          string  `json:"name" binding:"required,min=1,max=255"`
	RoomType      string  `json:"room_type" binding:"required,oneof=SINGLE DOUBLE TWIN SUITE FAMILY DORM"`
	Description   string  `json:"description" binding:"max=2000"`
	MaxGuests     int     `json:"max_guests" binding:"required,min=1,max=20"`
	PricePerNight float64 `json:"price_per_night" binding:"required,gt=0"`
	Quantity      int     `json:"quantity" binding:"required,min=1,max=1000"`
}

type UpdateRoomRequest struct {
	Name          *string  `json:"name" binding:"omitempty,min=1,max=255"`
	RoomType      *string  `json:"room_type" binding:"omitempty,oneof=SINGLE DOUBLE TWIN SUITE FAMILY DORM"`
	Description   *string  `json:"description" binding:"omitempty,max=2000"`
	MaxGuests     *int     `json:"max_guests" binding:"omitempty,min=1,max=20"`
	PricePerNight *float64 `json:"price_per_night" binding:"omitempty,gt=0"`
	Quantity      *int     `json:"quantity" binding:"omitempty,min=1,max=1000"`
	IsActive      *bool    `json:"is_active"`
}

type HotelListQuery struct {
	City     string `form:"city"`
	Country  string `form:"country"`
	Search   string `form:"search"`
	MinStars int    `form:"min_stars" binding:"omitempty,min=0,max=5"`
	Page     int    `form:"page,default=1" binding:"min=1"`
	Limit    int    `form:"limit,default=20" binding:"min=1,max=100"`
}
