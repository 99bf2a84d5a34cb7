package availability

type CalendarQuery struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}

type UpsertDayRequest struct {
	TotalQuantity  *int     `json:"total_quantity" binding:"omitempty,min=0"`
	Price          *float64 `json:"price" binding:"omitempty,gte=0"`
	SpecialPrice   *float64 `json:"special_price" binding:"omitempty,gte=0"`
	IsSpecialPrice *bool    `json:"is_special_price"`
}

type SetDayStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=available maintenance blocked"`
}
