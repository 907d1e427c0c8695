package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID          uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey"`
	Number      string        `json:"number" gorm:"uniqueIndex;not null"`
	UserID      int64         `json:"user_id" gorm:"not null;index"`
	EventID     int64         `json:"event_id" gorm:"not null;index"`
	Seats       int           `json:"seats" gorm:"not null"`
	UnitPrice   float64       `json:"unit_price" gorm:"column:unit_price;not null"`
	TotalAmount float64       `json:"total_amount" gorm:"not null"`
	Status      BookingStatus `json:"status" gorm:"type:varchar(16);not null"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"`
}

func (Booking) TableName() string { return "bookings" }

func (b *Booking) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
