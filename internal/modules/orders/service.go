package orders

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"orderdesk/internal/domain"
	"orderdesk/internal/ledger"
	"orderdesk/internal/pkg/refgen"
	"orderdesk/internal/repository"
)

const numberPrefix = "ORD"

// transitions is the order state machine. Cancellation is only possible
// while the order is still pending; delivered and cancelled are terminal.
var transitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderPending:   {domain.OrderConfirmed, domain.OrderCancelled},
	domain.OrderConfirmed: {domain.OrderPreparing},
	domain.OrderPreparing: {domain.OrderReady},
	domain.OrderReady:     {domain.OrderDelivered},
}

func canTransition(from, to domain.OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func parseStatus(s string) (domain.OrderStatus, error) {
	switch status := domain.OrderStatus(s); status {
	case domain.OrderPending, domain.OrderConfirmed, domain.OrderPreparing,
		domain.OrderReady, domain.OrderDelivered, domain.OrderCancelled:
		return status, nil
	default:
		return "", ErrUnknownStatus
	}
}

type Service struct {
	db     *gorm.DB
	orders OrderRepository
	cart   CartStore
}

func NewService(db *gorm.DB, orders OrderRepository, cart CartStore) *Service {
	return &Service{db: db, orders: orders, cart: cart}
}

// Checkout commits the user's cart as one order. The whole flow runs in a
// single transaction: per line item a price snapshot is read and stock is
// reserved, items are persisted, and the cart is cleared. Any failed
// reservation rolls everything back, so a partial commit is never observed.
func (s *Service) Checkout(ctx context.Context, userID int64) (*domain.Order, error) {
	var order *domain.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items, err := s.cart.ListByUserTx(tx, userID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		var total float64
		lines := make([]domain.OrderItem, 0, len(items))
		for _, it := range items {
			snap, err := ledger.Read(tx, domain.ProductsTable, it.ProductID)
			if err != nil {
				return fmt.Errorf("product %d: %w", it.ProductID, err)
			}
			if err := ledger.Reserve(tx, domain.ProductsTable, it.ProductID, it.Quantity); err != nil {
				return fmt.Errorf("product %d: %w", it.ProductID, err)
			}

			total += float64(it.Quantity) * snap.Price
			lines = append(lines, domain.OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				UnitPrice: snap.Price,
			})
		}

		o := &domain.Order{
			Number:      refgen.New(numberPrefix),
			UserID:      userID,
			Status:      domain.OrderPending,
			TotalAmount: math.Round(total*100) / 100,
			Items:       lines,
		}
		if err := s.orders.CreateTx(tx, o); err != nil {
			return err
		}
		order = o

		return s.cart.ClearTx(tx, userID)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// GetByID enforces ownership: only the order's owner or an admin may read
// it. Requester identity is passed explicitly.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, requesterID int64, requesterRole string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if o.UserID != requesterID && requesterRole != string(domain.RoleAdmin) {
		return nil, ErrForbidden
	}
	return o, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// UpdateStatus applies one state-machine step. Cancelling a pending order
// releases its reserved stock in the same transaction; no other transition
// touches capacity.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, newStatusRaw string) (*domain.Order, error) {
	newStatus, err := parseStatus(newStatusRaw)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		o, err := s.orders.GetByIDTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if !canTransition(o.Status, newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, o.Status, newStatus)
		}

		// The write is conditional on the status just read; a concurrent
		// transition makes it a no-op and the stock stays untouched, so two
		// racing cancellations can never both release.
		if err := s.orders.UpdateStatusTx(tx, id, o.Status, newStatus); err != nil {
			if errors.Is(err, repository.ErrStaleStatus) {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, o.Status, newStatus)
			}
			return err
		}

		if newStatus == domain.OrderCancelled {
			for _, it := range o.Items {
				if err := ledger.Release(tx, domain.ProductsTable, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.orders.GetByID(ctx, id)
}
