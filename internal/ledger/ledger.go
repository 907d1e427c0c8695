// Package ledger mutates the capacity counter of any holder table carrying
// (id, total_capacity, available_capacity, price) columns. All mutations are
// single conditional UPDATE statements, so the check and the decrement can
// never see different row states even under concurrent requests.
package ledger

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound             = errors.New("capacity holder not found")
	ErrInsufficientCapacity = errors.New("insufficient capacity")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidCapacity      = errors.New("total capacity below booked amount")
	ErrInvalidRelease       = errors.New("release exceeds booked amount")
)

// Snapshot is a point-in-time view of a holder row, read inside the caller's
// transaction. Price feeds the unit-price snapshot on reservations.
type Snapshot struct {
	TotalCapacity     int     `gorm:"column:total_capacity"`
	AvailableCapacity int     `gorm:"column:available_capacity"`
	Price             float64 `gorm:"column:price"`
}

// Booked reports how much of the holder's capacity is committed.
func (s Snapshot) Booked() int { return s.TotalCapacity - s.AvailableCapacity }

// Read fetches the holder's current counters. Call inside the same
// transaction as Reserve so the price snapshot and the decrement agree.
func Read(tx *gorm.DB, table string, holderID int64) (Snapshot, error) {
	var s Snapshot
	err := tx.Table(table).
		Select("total_capacity, available_capacity, price").
		Where("id = ?", holderID).
		Take(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, err
	}
	return s, nil
}

// Reserve decrements available capacity by qty, failing with
// ErrInsufficientCapacity when fewer than qty units remain. The guard lives
// in the WHERE clause, so two concurrent reservations can never both pass
// validation against the same stale counter.
func Reserve(tx *gorm.DB, table string, holderID int64, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	res := tx.Table(table).
		Where("id = ? AND available_capacity >= ?", holderID, qty).
		Update("available_capacity", gorm.Expr("available_capacity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return classifyMiss(tx, table, holderID, ErrInsufficientCapacity)
	}
	return nil
}

// Release returns qty units to the holder, e.g. on cancellation. It refuses
// to push available capacity above total capacity.
func Release(tx *gorm.DB, table string, holderID int64, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}

	res := tx.Table(table).
		Where("id = ? AND available_capacity + ? <= total_capacity", holderID, qty).
		Update("available_capacity", gorm.Expr("available_capacity + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return classifyMiss(tx, table, holderID, ErrInvalidRelease)
	}
	return nil
}

// AdjustTotal sets a new total capacity, keeping the booked amount intact:
// available becomes newTotal - booked. Rejected with ErrInvalidCapacity when
// newTotal would drop below what is already committed.
func AdjustTotal(tx *gorm.DB, table string, holderID int64, newTotal int) error {
	if newTotal < 0 {
		return ErrInvalidCapacity
	}

	// SET expressions see the pre-update row, so available is derived from
	// the old total regardless of assignment order.
	res := tx.Table(table).
		Where("id = ? AND total_capacity - available_capacity <= ?", holderID, newTotal).
		Updates(map[string]any{
			"available_capacity": gorm.Expr("available_capacity + (? - total_capacity)", newTotal),
			"total_capacity":     newTotal,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return classifyMiss(tx, table, holderID, ErrInvalidCapacity)
	}
	return nil
}

// classifyMiss tells a missing row apart from a failed capacity guard.
func classifyMiss(tx *gorm.DB, table string, holderID int64, guardErr error) error {
	var n int64
	if err := tx.Table(table).Where("id = ?", holderID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return guardErr
}
