package orders

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
