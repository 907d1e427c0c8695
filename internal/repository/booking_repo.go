package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"orderdesk/internal/domain"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) DB() *gorm.DB { return r.db }

func (r *BookingRepository) CreateTx(tx *gorm.DB, b *domain.Booking) error {
	return tx.Create(b).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	return r.getByID(r.db.WithContext(ctx), id)
}

func (r *BookingRepository) GetByIDTx(tx *gorm.DB, id uuid.UUID) (*domain.Booking, error) {
	return r.getByID(tx, id)
}

func (r *BookingRepository) getByID(db *gorm.DB, id uuid.UUID) (*domain.Booking, error) {
	var b domain.Booking
	if err := db.First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatusTx writes the new status conditionally on the status the
// caller read, so a concurrent transition cannot be overwritten; zero rows
// affected surfaces as ErrStaleStatus.
func (r *BookingRepository) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, from, to domain.BookingStatus) error {
	updates := map[string]any{"status": to}
	if to == domain.BookingCancelled {
		now := time.Now()
		updates["cancelled_at"] = &now
	}

	res := tx.Model(&domain.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}
