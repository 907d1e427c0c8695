package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"orderdesk/internal/domain"
)

type OrderRepository interface {
	CreateTx(tx *gorm.DB, o *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByIDTx(tx *gorm.DB, id uuid.UUID) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to domain.OrderStatus) error
}

// CartStore is the pending-items collection consumed at checkout.
type CartStore interface {
	ListByUserTx(tx *gorm.DB, userID int64) ([]domain.CartItem, error)
	ClearTx(tx *gorm.DB, userID int64) error
}
