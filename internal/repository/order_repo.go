package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"orderdesk/internal/domain"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) DB() *gorm.DB { return r.db }

// CreateTx persists the order and its items inside the caller's checkout
// transaction.
func (r *OrderRepository) CreateTx(tx *gorm.DB, o *domain.Order) error {
	return tx.Create(o).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return r.getByID(r.db.WithContext(ctx), id)
}

func (r *OrderRepository) GetByIDTx(tx *gorm.DB, id uuid.UUID) (*domain.Order, error) {
	return r.getByID(tx, id)
}

func (r *OrderRepository) getByID(db *gorm.DB, id uuid.UUID) (*domain.Order, error) {
	var o domain.Order
	err := db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.created_at asc")
	}).First(&o, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatusTx writes the new status only if the row still carries the
// status the caller validated against; a concurrent transition makes the
// update match nothing and surfaces as ErrStaleStatus.
func (r *OrderRepository) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to domain.OrderStatus) error {
	res := tx.Model(&domain.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}
