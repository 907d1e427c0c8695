package domain

import "time"

// ProductsTable is the capacity holder table for the shop domain.
const ProductsTable = "products"

type Product struct {
	ID                int64     `json:"id" gorm:"primaryKey"`
	Name              string    `json:"name" gorm:"not null" validate:"required"`
	Description       string    `json:"description,omitempty" gorm:"type:text"`
	Category          string    `json:"category,omitempty" gorm:"index"`
	Price             float64   `json:"price" gorm:"not null" validate:"gte=0"`
	TotalCapacity     int       `json:"total_capacity" gorm:"column:total_capacity;not null"`
	AvailableCapacity int       `json:"available_capacity" gorm:"column:available_capacity;not null"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (Product) TableName() string { return ProductsTable }
