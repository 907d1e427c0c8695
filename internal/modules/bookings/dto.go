package bookings

type CreateBookingRequest struct {
	EventID int64 `json:"event_id" binding:"required"`
	Seats   int   `json:"seats" binding:"required,gt=0"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
