package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orderdesk/internal/domain"
)

type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// Upsert adds qty to an existing line for the same product or inserts a new
// one. The insert carries an ON CONFLICT increment on the (user_id,
// product_id) unique index, so a double-submit of the same line merges
// instead of tripping the index.
func (r *CartRepository) Upsert(ctx context.Context, userID, productID int64, qty int) (*domain.CartItem, error) {
	item := domain.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity": gorm.Expr("quantity + ?", qty),
			}),
		}).
		Create(&item).Error
	if err != nil {
		return nil, err
	}

	// re-read: on the conflict path the struct does not carry the merged row
	var out domain.CartItem
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&out).Error
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, itemID int64, qty int) (*domain.CartItem, error) {
	var item domain.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		return nil, err
	}

	item.Quantity = qty
	if err := r.db.WithContext(ctx).Model(&item).Update("quantity", qty).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CartRepository) Remove(ctx context.Context, userID, itemID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&domain.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CartRepository) ListByUser(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ListByUserTx reads the cart inside the checkout transaction, in insertion
// order, so the committed lines match exactly what gets cleared below.
func (r *CartRepository) ListByUserTx(tx *gorm.DB, userID int64) ([]domain.CartItem, error) {
	var items []domain.CartItem
	err := tx.Where("user_id = ?", userID).Order("id asc").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CartRepository) ClearTx(tx *gorm.DB, userID int64) error {
	return tx.Where("user_id = ?", userID).Delete(&domain.CartItem{}).Error
}

func (r *CartRepository) Clear(ctx context.Context, userID int64) error {
	return r.ClearTx(r.db.WithContext(ctx), userID)
}
