package bookings

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

const numberPrefix = "BKG"

// Bookings may be cancelled even after confirmation; cancellation returns
// the seats to the event.
var transitions = map[domain.BookingStatus][]domain.BookingStatus{
	domain.BookingPending:   {domain.BookingConfirmed, domain.BookingCancelled},
	domain.BookingConfirmed: {domain.BookingCancelled},
}

func canTransition(from, to domain.BookingStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func parseStatus(s string) (domain.BookingStatus, error) {
	switch status := domain.BookingStatus(s); status {
	case domain.BookingPending, domain.BookingConfirmed, domain.BookingCancelled:
		return status, nil
	default:
		return "", ErrUnknownStatus
	}
}

type Service struct {
	db       *gorm.DB
	bookings BookingRepository
}

func NewService(db *gorm.DB, bookings BookingRepository) *Service {
	return &Service{db: db, bookings: bookings}
}

// Create books seats on an event: price snapshot, seat reservation and the
// booking row are committed atomically.
func (s *Service) Create(ctx context.Context, userID int64, req CreateBookingRequest) (*domain.Booking, error) {
	var booking *domain.Booking

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snap, err := ledger.Read(tx, domain.EventsTable, req.EventID)
		if err != nil {
			return err
		}
		if err := ledger.Reserve(tx, domain.EventsTable, req.EventID, req.Seats); err != nil {
			return err
		}

		b := &domain.Booking{
			Number:      refgen.New(numberPrefix),
			UserID:      userID,
			EventID:     req.EventID,
			Seats:       req.Seats,
			UnitPrice:   snap.Price,
			TotalAmount: math.Round(float64(req.Seats)*snap.Price*100) / 100,
			Status:      domain.BookingPending,
		}
		if err := s.bookings.CreateTx(tx, b); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNotFound):
			return nil, ErrEventNotFound
		case errors.Is(err, ledger.ErrInsufficientCapacity):
			return nil, fmt.Errorf("event %d: %w", req.EventID, ErrSoldOut)
		}
		return nil, err
	}
	return booking, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID, requesterID int64, requesterRole string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if b.UserID != requesterID && requesterRole != string(domain.RoleAdmin) {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// UpdateStatus applies one state-machine step; cancellation releases the
// booked seats in the same transaction.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, newStatusRaw string) (*domain.Booking, error) {
	newStatus, err := parseStatus(newStatusRaw)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := s.bookings.GetByIDTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if !canTransition(b.Status, newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, b.Status, newStatus)
		}

		// Conditional on the status just read, so racing cancellations
		// cannot both pass the check and release the seats twice.
		if err := s.bookings.UpdateStatusTx(tx, id, b.Status, newStatus); err != nil {
			if errors.Is(err, repository.ErrStaleStatus) {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, b.Status, newStatus)
			}
			return err
		}

		if newStatus == domain.BookingCancelled {
			if err := ledger.Release(tx, domain.EventsTable, b.EventID, b.Seats); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.bookings.GetByID(ctx, id)
}

// Cancel lets the owner cancel their own booking.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, requesterID int64, requesterRole string) (*domain.Booking, error) {
	if _, err := s.GetByID(ctx, id, requesterID, requesterRole); err != nil {
		return nil, err
	}
	return s.UpdateStatus(ctx, id, string(domain.BookingCancelled))
}
