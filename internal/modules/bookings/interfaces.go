package bookings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"orderdesk/internal/domain"
)

type BookingRepository interface {
	CreateTx(tx *gorm.DB, b *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	GetByIDTx(tx *gorm.DB, id uuid.UUID) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to domain.BookingStatus) error
}
