package orders

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"orderdesk/internal/domain"
	"orderdesk/internal/ledger"
	"orderdesk/internal/repository"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:orders_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Product{}, &domain.CartItem{}, &domain.Order{}, &domain.OrderItem{},
	))

	svc := NewService(db, repository.NewOrderRepository(db), repository.NewCartRepository(db))
	return svc, db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int) int64 {
	t.Helper()
	p := domain.Product{Name: name, Price: price, TotalCapacity: stock, AvailableCapacity: stock}
	require.NoError(t, db.Create(&p).Error)
	return p.ID
}

func addToCart(t *testing.T, db *gorm.DB, userID, productID int64, qty int) {
	t.Helper()
	require.NoError(t, db.Create(&domain.CartItem{UserID: userID, ProductID: productID, Quantity: qty}).Error)
}

func available(t *testing.T, db *gorm.DB, productID int64) int {
	t.Helper()
	snap, err := ledger.Read(db, domain.ProductsTable, productID)
	require.NoError(t, err)
	return snap.AvailableCapacity
}

func TestCheckoutSuccess(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	beans := seedProduct(t, db, "Beans", 12.50, 10)
	mugs := seedProduct(t, db, "Mug", 8.00, 5)
	addToCart(t, db, 1, beans, 3)
	addToCart(t, db, 1, mugs, 2)

	order, err := svc.Checkout(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderPending, order.Status)
	assert.Equal(t, 53.50, order.TotalAmount) // 3*12.50 + 2*8.00
	assert.Contains(t, order.Number, "ORD-")
	require.Len(t, order.Items, 2)
	assert.Equal(t, 12.50, order.Items[0].UnitPrice)
	assert.Equal(t, 3, order.Items[0].Quantity)

	// stock was decremented
	assert.Equal(t, 7, available(t, db, beans))
	assert.Equal(t, 3, available(t, db, mugs))

	// cart was consumed in the same transaction
	var left int64
	require.NoError(t, db.Model(&domain.CartItem{}).Where("user_id = ?", 1).Count(&left).Error)
	assert.Zero(t, left)
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.Checkout(context.Background(), 1)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckoutAllOrNothing(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	a := seedProduct(t, db, "A", 5, 10)
	b := seedProduct(t, db, "B", 5, 5)
	addToCart(t, db, 1, a, 2)
	addToCart(t, db, 1, b, 999)

	_, err := svc.Checkout(ctx, 1)
	assert.ErrorIs(t, err, ledger.ErrInsufficientCapacity)

	// the commit rolled back completely: A's reservation was undone and the
	// cart survived
	assert.Equal(t, 10, available(t, db, a))
	assert.Equal(t, 5, available(t, db, b))
	var left int64
	require.NoError(t, db.Model(&domain.CartItem{}).Where("user_id = ?", 1).Count(&left).Error)
	assert.Equal(t, int64(2), left)

	var orders int64
	require.NoError(t, db.Model(&domain.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestCheckoutUnknownProduct(t *testing.T) {
	svc, db := setupTestService(t)
	addToCart(t, db, 1, 4242, 1)

	_, err := svc.Checkout(context.Background(), 1)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestPriceSnapshotStability(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	p := seedProduct(t, db, "Lamp", 20.00, 10)
	addToCart(t, db, 1, p, 2)

	order, err := svc.Checkout(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 40.00, order.TotalAmount)

	// raising the price afterwards must not rewrite history
	require.NoError(t, db.Model(&domain.Product{}).Where("id = ?", p).Update("price", 99.0).Error)

	got, err := svc.GetByID(ctx, order.ID, 1, string(domain.RoleCustomer))
	require.NoError(t, err)
	assert.Equal(t, 40.00, got.TotalAmount)
	assert.Equal(t, 20.00, got.Items[0].UnitPrice)
}

func TestGetByIDOwnership(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	p := seedProduct(t, db, "Book", 15, 10)
	addToCart(t, db, 1, p, 1)
	order, err := svc.Checkout(ctx, 1)
	require.NoError(t, err)

	// owner reads are idempotent
	first, err := svc.GetByID(ctx, order.ID, 1, string(domain.RoleCustomer))
	require.NoError(t, err)
	second, err := svc.GetByID(ctx, order.ID, 1, string(domain.RoleCustomer))
	require.NoError(t, err)
	assert.Equal(t, first.TotalAmount, second.TotalAmount)
	assert.Equal(t, first.Number, second.Number)

	// a stranger is rejected without leaking contents
	_, err = svc.GetByID(ctx, order.ID, 2, string(domain.RoleCustomer))
	assert.ErrorIs(t, err, ErrForbidden)

	// admins may read any order
	_, err = svc.GetByID(ctx, order.ID, 2, string(domain.RoleAdmin))
	assert.NoError(t, err)

	_, err = svc.GetByID(ctx, uuid.New(), 1, string(domain.RoleCustomer))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusStateMachine(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	p := seedProduct(t, db, "Pizza", 9, 10)
	addToCart(t, db, 1, p, 1)
	order, err := svc.Checkout(ctx, 1)
	require.NoError(t, err)

	// skipping a step is rejected
	_, err = svc.UpdateStatus(ctx, order.ID, "ready")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	for _, next := range []string{"confirmed", "preparing", "ready", "delivered"} {
		o, err := svc.UpdateStatus(ctx, order.ID, next)
		require.NoError(t, err, "transition to %s", next)
		assert.Equal(t, domain.OrderStatus(next), o.Status)
	}

	// delivered is terminal
	_, err = svc.UpdateStatus(ctx, order.ID, "cancelled")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = svc.UpdateStatus(ctx, order.ID, "teleported")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestCancelPendingOrderReleasesStock(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	p := seedProduct(t, db, "Desk", 100, 10)
	addToCart(t, db, 1, p, 4)
	order, err := svc.Checkout(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 6, available(t, db, p))

	cancelled, err := svc.UpdateStatus(ctx, order.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, cancelled.Status)
	assert.Equal(t, 10, available(t, db, p))

	// cancelled is terminal; stock is released exactly once
	_, err = svc.UpdateStatus(ctx, order.ID, "cancelled")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Equal(t, 10, available(t, db, p))
}

func TestConfirmedOrderCannotBeCancelled(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	p := seedProduct(t, db, "Sofa", 300, 5)
	addToCart(t, db, 1, p, 1)
	order, err := svc.Checkout(ctx, 1)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, "confirmed")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, "cancelled")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Equal(t, 4, available(t, db, p))
}

// staleOrderRepo serves reads from a snapshot taken before a concurrent
// transition, reproducing a second canceller that validated against a row
// another transaction has already moved on.
type staleOrderRepo struct {
	*repository.OrderRepository
	stale *domain.Order
}

func (r *staleOrderRepo) GetByIDTx(tx *gorm.DB, id uuid.UUID) (*domain.Order, error) {
	snapshot := *r.stale
	return &snapshot, nil
}

func TestCancelOnStaleStatusReadReleasesNothing(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	p := seedProduct(t, db, "Lamp", 40, 10)
	addToCart(t, db, 1, p, 4)
	order, err := svc.Checkout(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 6, available(t, db, p))

	// capture the pending row, then cancel it for real
	stale := *order
	_, err = svc.UpdateStatus(ctx, order.ID, "cancelled")
	require.NoError(t, err)
	require.Equal(t, 10, available(t, db, p))

	// a canceller still holding the pending snapshot passes the transition
	// check but must lose on the conditional write
	staleSvc := NewService(db,
		&staleOrderRepo{OrderRepository: repository.NewOrderRepository(db), stale: &stale},
		repository.NewCartRepository(db),
	)
	_, err = staleSvc.UpdateStatus(ctx, order.ID, "cancelled")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Equal(t, 10, available(t, db, p))
}

func TestParallelCancelReleasesOnce(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	p := seedProduct(t, db, "Chair", 25, 10)
	addToCart(t, db, 1, p, 4)
	order, err := svc.Checkout(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 6, available(t, db, p))

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.UpdateStatus(ctx, order.ID, "cancelled")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded int
	for err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrInvalidStatusTransition)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 10, available(t, db, p))
}
