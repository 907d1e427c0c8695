package ledger

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"orderdesk/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	// sqlite allows a single writer
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&domain.Product{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, total int, price float64) int64 {
	t.Helper()
	p := domain.Product{
		Name:              "widget",
		Price:             price,
		TotalCapacity:     total,
		AvailableCapacity: total,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return p.ID
}

func readBack(t *testing.T, db *gorm.DB, id int64) Snapshot {
	t.Helper()
	s, err := Read(db, domain.ProductsTable, id)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	return s
}

func TestReserveDecrementsAvailable(t *testing.T) {
	db := setupTestDB(t)
	id := seedProduct(t, db, 10, 25.50)

	if err := Reserve(db, domain.ProductsTable, id, 3); err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}

	s := readBack(t, db, id)
	if s.AvailableCapacity != 7 {
		t.Fatalf("expected available 7, got %d", s.AvailableCapacity)
	}
	if s.TotalCapacity != 10 {
		t.Fatalf("expected total 10, got %d", s.TotalCapacity)
	}
	if s.Booked() != 3 {
		t.Fatalf("expected booked 3, got %d", s.Booked())
	}
}

func TestReserveInsufficientLeavesCounterAlone(t *testing.T) {
	db := setupTestDB(t)
	id := seedProduct(t, db, 10, 10)

	if err := Reserve(db, domain.ProductsTable, id, 3); err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	err := Reserve(db, domain.ProductsTable, id, 8)
	if !errors.Is(err, ErrInsufficientCapacity) {
		t.Fatalf("expected ErrInsufficientCapacity, got %v", err)
	}

	if s := readBack(t, db, id); s.AvailableCapacity != 7 {
		t.Fatalf("expected available still 7, got %d", s.AvailableCapacity)
	}
}

func TestReserveUnknownHolder(t *testing.T) {
	db := setupTestDB(t)

	if err := Reserve(db, domain.ProductsTable, 4242, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := Read(db, domain.ProductsTable, 4242); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Read, got %v", err)
	}
}

func TestReserveRejectsNonPositiveQuantity(t *testing.T) {
	db := setupTestDB(t)
	id := seedProduct(t, db, 5, 1)

	for _, qty := range []int{0, -2} {
		if err := Reserve(db, domain.ProductsTable, id, qty); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("qty %d: expected ErrInvalidQuantity, got %v", qty, err)
		}
	}
}

func TestReleaseRestoresCapacity(t *testing.T) {
	db := setupTestDB(t)
	id := seedProduct(t, db, 10, 1)

	if err := Reserve(db, domain.ProductsTable, id, 6); err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	if err := Release(db, domain.ProductsTable, id, 4); err != nil {
		t.Fatalf("Release returned error: %v", err)
	}

	if s := readBack(t, db, id); s.AvailableCapacity != 8 {
		t.Fatalf("expected available 8, got %d", s.AvailableCapacity)
	}
}

func TestReleaseCannotExceedTotal(t *testing.T) {
	db := setupTestDB(t)
	id := seedProduct(t, db, 10, 1)

	if err := Reserve(db, domain.ProductsTable, id, 2); err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}
	if err := Release(db, domain.ProductsTable, id, 3); !errors.Is(err, ErrInvalidRelease) {
		t.Fatalf("expected ErrInvalidRelease, got %v", err)
	}
	if s := readBack(t, db, id); s.AvailableCapacity != 8 {
		t.Fatalf("expected available still 8, got %d", s.AvailableCapacity)
	}
}

func TestAdjustTotal(t *testing.T) {
	db := setupTestDB(t)
	id := seedProduct(t, db, 10, 1)

	// 6 booked
	if err := Reserve(db, domain.ProductsTable, id, 6); err != nil {
		t.Fatalf("Reserve returned error: %v", err)
	}

	// below booked amount is rejected (scenario: newTotal=3 < booked=6)
	if err := AdjustTotal(db, domain.ProductsTable, id, 3); !errors.Is(err, ErrInvalidCapacity) {
		t.Fatalf("expected ErrInvalidCapacity, got %v", err)
	}

	if err := AdjustTotal(db, domain.ProductsTable, id, 20); err != nil {
		t.Fatalf("AdjustTotal returned error: %v", err)
	}
	s := readBack(t, db, id)
	if s.TotalCapacity != 20 || s.AvailableCapacity != 14 {
		t.Fatalf("expected total 20 / available 14, got %d / %d", s.TotalCapacity, s.AvailableCapacity)
	}
	if s.Booked() != 6 {
		t.Fatalf("expected booked amount preserved at 6, got %d", s.Booked())
	}

	// shrinking exactly to the booked amount is allowed
	if err := AdjustTotal(db, domain.ProductsTable, id, 6); err != nil {
		t.Fatalf("AdjustTotal to booked amount returned error: %v", err)
	}
	s = readBack(t, db, id)
	if s.TotalCapacity != 6 || s.AvailableCapacity != 0 {
		t.Fatalf("expected total 6 / available 0, got %d / %d", s.TotalCapacity, s.AvailableCapacity)
	}

	if err := AdjustTotal(db, domain.ProductsTable, 999, 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := AdjustTotal(db, domain.ProductsTable, id, -1); !errors.Is(err, ErrInvalidCapacity) {
		t.Fatalf("expected ErrInvalidCapacity for negative total, got %v", err)
	}
}

// Given available capacity N and K concurrent reservations of q each,
// exactly floor(N/q) must succeed regardless of arrival order.
func TestConcurrentReservationsNeverOvercommit(t *testing.T) {
	db := setupTestDB(t)

	const (
		total   = 25
		qty     = 4
		workers = 20
	)
	id := seedProduct(t, db, total, 1)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Transaction(func(tx *gorm.DB) error {
				return Reserve(tx, domain.ProductsTable, id, qty)
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, ErrInsufficientCapacity) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	want := total / qty
	if succeeded != want {
		t.Fatalf("expected exactly %d successful reservations, got %d", want, succeeded)
	}
	s := readBack(t, db, id)
	if s.AvailableCapacity != total-want*qty {
		t.Fatalf("expected available %d, got %d", total-want*qty, s.AvailableCapacity)
	}
	if s.AvailableCapacity < 0 || s.AvailableCapacity > s.TotalCapacity {
		t.Fatalf("capacity bounds violated: %d/%d", s.AvailableCapacity, s.TotalCapacity)
	}
}
