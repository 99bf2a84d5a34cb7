package bookings

type GuestsRequest struct {
	Adults   int `json:"adults" binding:"required,min=1,max=50"`
	Children int `json:"children" binding:"min=0,max=50"`
	Infants  int `json:"infants" binding:"min=0,max=50"`
}

type GuestContactRequest struct {
	FirstName string `json:"first_name" binding:"required,max=100"`
	LastName  string `json:"last_name" binding:"required,max=100"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone" binding:"omitempty,max=30"`
}

type CreateBookingRequest struct {
	HotelID            string              `json:"hotel_id" binding:"required,uuid"`
	RoomID             string              `json:"room_id" binding:"required,uuid"`
	CheckIn            string              `json:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut           string              `json:"check_out" binding:"required,datetime=2006-01-02"`
	Rooms              int                 `json:"rooms" binding:"omitempty,min=1,max=20"`
	Guests             GuestsRequest       `json:"guests" binding:"required"`
	GuestContact       GuestContactRequest `json:"guest_contact" binding:"required"`
	CancellationPolicy string              `json:"cancellation_policy" binding:"omitempty,oneof=free_cancellation partial_refund no_refund"`
	SpecialRequests    string              `json:"special_requests" binding:"max=1000"`

	// Staff-only overrides; ignored for guests.
	Taxes    *float64 `json:"taxes" binding:"omitempty,gte=0"`
	Fees     *float64 `json:"fees" binding:"omitempty,gte=0"`
	Discount *float64 `json:"discount" binding:"omitempty,gte=0"`
}

type AvailabilityQuery struct {
	CheckIn  string `form:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut string `form:"check_out" binding:"required,datetime=2006-01-02"`
	Adults   int    `form:"adults,default=1" binding:"min=1,max=50"`
	Children int    `form:"children" binding:"min=0,max=50"`
	Infants  int    `form:"infants" binding:"min=0,max=50"`
	Rooms    int    `form:"rooms,default=1" binding:"min=1,max=20"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required,oneof=pending paid failed refunded partially_refunded"`
}

type BookingListQuery struct {
	Page     int    `form:"page,default=1" binding:"min=1"`
	Limit    int    `form:"limit,default=10" binding:"min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled completed no_show"`
	HotelID  string `form:"hotel_id" binding:"omitempty,uuid"`
	RoomID   string `form:"room_id" binding:"omitempty,uuid"`
	DateFrom string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`

	// UserID scopes the listing to one guest; set by the controller.
	UserID string `form:"-"`
}
