package repository

import (
	"context"

	"gorm.io/gorm"

	"orderdesk/internal/domain"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	var e domain.Event
	if err := r.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepository) List(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	q := r.db.WithContext(ctx).Model(&domain.Event{}).Order("starts_at asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}

	var out []domain.Event
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateDetails leaves the capacity counters to the ledger.
func (r *EventRepository) UpdateDetails(ctx context.Context, e *domain.Event) error {
	return r.db.WithContext(ctx).Model(&domain.Event{}).
		Where("id = ?", e.ID).
		Updates(map[string]any{
			"name":        e.Name,
			"description": e.Description,
			"venue":       e.Venue,
			"starts_at":   e.StartsAt,
			"price":       e.Price,
		}).Error
}
