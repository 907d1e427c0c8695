package cart

import (
	"context"

	"orderdesk/internal/domain"
)

type CartRepository interface {
	Upsert(ctx context.Context, userID, productID int64, qty int) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, itemID int64, qty int) (*domain.CartItem, error)
	Remove(ctx context.Context, userID, itemID int64) error
	ListByUser(ctx context.Context, userID int64) ([]domain.CartItem, error)
	Clear(ctx context.Context, userID int64) error
}

type ProductReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}
