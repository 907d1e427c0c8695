package cart

import (
	"context"
	"errors"
	"math"

	"gorm.io/gorm"

	"orderdesk/internal/domain"
)

type Service struct {
	items    CartRepository
	products ProductReader
}

func NewService(items CartRepository, products ProductReader) *Service {
	return &Service{items: items, products: products}
}

// AddItem does not reserve capacity; the ledger is only touched at checkout.
func (s *Service) AddItem(ctx context.Context, userID int64, req AddItemRequest) (*domain.CartItem, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	if _, err := s.products.GetByID(ctx, req.ProductID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	return s.items.Upsert(ctx, userID, req.ProductID, req.Quantity)
}

func (s *Service) UpdateItem(ctx context.Context, userID, itemID int64, req UpdateItemRequest) (*domain.CartItem, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.items.UpdateQuantity(ctx, userID, itemID, req.Quantity)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return item, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID, itemID int64) error {
	err := s.items.Remove(ctx, userID, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrItemNotFound
	}
	return err
}

// Get returns the cart with a subtotal computed from current prices. The
// subtotal is informational; the binding price snapshot is taken at checkout.
func (s *Service) Get(ctx context.Context, userID int64) (*CartView, error) {
	items, err := s.items.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var subtotal float64
	for _, it := range items {
		if it.Product != nil {
			subtotal += float64(it.Quantity) * it.Product.Price
		}
	}
	subtotal = math.Round(subtotal*100) / 100

	return &CartView{Items: items, Subtotal: subtotal}, nil
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	return s.items.Clear(ctx, userID)
}
