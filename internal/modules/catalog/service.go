package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"orderdesk/internal/domain"
	"orderdesk/internal/ledger"
	"orderdesk/internal/repository"
)

type Service struct {
	db       *gorm.DB
	products *repository.ProductRepository
	events   *repository.EventRepository
}

func NewService(db *gorm.DB, products *repository.ProductRepository, events *repository.EventRepository) *Service {
	return &Service{db: db, products: products, events: events}
}

/* ---------- PRODUCTS ---------- */

func (s *Service) ListProducts(ctx context.Context, category string, limit, offset int) ([]domain.Product, error) {
	return s.products.List(ctx, category, limit, offset)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (*domain.Product, error) {
	p := &domain.Product{
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		Price:             req.Price,
		TotalCapacity:     req.TotalCapacity,
		AvailableCapacity: req.TotalCapacity,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, req UpdateProductRequest) (*domain.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = req.Name
	p.Description = req.Description
	p.Category = req.Category
	p.Price = req.Price
	if err := s.products.UpdateDetails(ctx, p); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

func (s *Service) AdjustProductCapacity(ctx context.Context, id int64, newTotal int) (*domain.Product, error) {
	err := ledger.AdjustTotal(s.db.WithContext(ctx), domain.ProductsTable, id, newTotal)
	if err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, id)
}

/* ---------- EVENTS ---------- */

func (s *Service) ListEvents(ctx context.Context, limit, offset int) ([]domain.Event, error) {
	return s.events.List(ctx, limit, offset)
}

func (s *Service) GetEvent(ctx context.Context, id int64) (*domain.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *Service) CreateEvent(ctx context.Context, req CreateEventRequest) (*domain.Event, error) {
	e := &domain.Event{
		Name:              req.Name,
		Description:       req.Description,
		Venue:             req.Venue,
		StartsAt:          req.StartsAt,
		Price:             req.Price,
		TotalCapacity:     req.TotalCapacity,
		AvailableCapacity: req.TotalCapacity,
	}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) UpdateEvent(ctx context.Context, id int64, req UpdateEventRequest) (*domain.Event, error) {
	e, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	e.Name = req.Name
	e.Description = req.Description
	e.Venue = req.Venue
	e.StartsAt = req.StartsAt
	e.Price = req.Price
	if err := s.events.UpdateDetails(ctx, e); err != nil {
		return nil, err
	}
	return s.GetEvent(ctx, id)
}

func (s *Service) AdjustEventCapacity(ctx context.Context, id int64, newTotal int) (*domain.Event, error) {
	err := ledger.AdjustTotal(s.db.WithContext(ctx), domain.EventsTable, id, newTotal)
	if err != nil {
		return nil, err
	}
	return s.GetEvent(ctx, id)
}
