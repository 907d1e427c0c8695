package catalog

import "time"

type CreateProductRequest struct {
	Name          string  `json:"name" validate:"required,min=2"`
	Description   string  `json:"description"`
	Category      string  `json:"category"`
	Price         float64 `json:"price" validate:"gte=0"`
	TotalCapacity int     `json:"total_capacity" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Name        string  `json:"name" validate:"required,min=2"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Price       float64 `json:"price" validate:"gte=0"`
}

type CreateEventRequest struct {
	Name          string    `json:"name" validate:"required,min=2"`
	Description   string    `json:"description"`
	Venue         string    `json:"venue"`
	StartsAt      time.Time `json:"starts_at" validate:"required"`
	Price         float64   `json:"price" validate:"gte=0"`
	TotalCapacity int       `json:"total_capacity" validate:"gte=0"`
}

type UpdateEventRequest struct {
	Name        string    `json:"name" validate:"required,min=2"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	Price       float64   `json:"price" validate:"gte=0"`
}

// NewTotal is a pointer so an explicit zero survives binding.
type AdjustCapacityRequest struct {
	NewTotal *int `json:"new_total" binding:"required"`
}
