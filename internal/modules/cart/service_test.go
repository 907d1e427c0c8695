package cart

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"orderdesk/internal/domain"
	"orderdesk/internal/repository"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_test_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Product{}, &domain.CartItem{}))

	return NewService(repository.NewCartRepository(db), repository.NewProductRepository(db)), db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64) int64 {
	t.Helper()
	p := domain.Product{Name: name, Price: price, TotalCapacity: 100, AvailableCapacity: 100}
	require.NoError(t, db.Create(&p).Error)
	return p.ID
}

func TestAddItemMergesSameProduct(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	productID := seedProduct(t, db, "Tea", 4.50)

	first, err := svc.AddItem(ctx, 1, AddItemRequest{ProductID: productID, Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, first.Quantity)

	second, err := svc.AddItem(ctx, 1, AddItemRequest{ProductID: productID, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 5, second.Quantity)

	view, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
	assert.Equal(t, 22.50, view.Subtotal)
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.AddItem(context.Background(), 1, AddItemRequest{ProductID: 404, Quantity: 1})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestUpdateAndRemoveItem(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()
	productID := seedProduct(t, db, "Coffee", 10)

	item, err := svc.AddItem(ctx, 1, AddItemRequest{ProductID: productID, Quantity: 1})
	require.NoError(t, err)

	updated, err := svc.UpdateItem(ctx, 1, item.ID, UpdateItemRequest{Quantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	// another user cannot touch the item
	_, err = svc.UpdateItem(ctx, 2, item.ID, UpdateItemRequest{Quantity: 1})
	assert.ErrorIs(t, err, ErrItemNotFound)
	err = svc.RemoveItem(ctx, 2, item.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)

	require.NoError(t, svc.RemoveItem(ctx, 1, item.ID))
	view, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestClear(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 1, AddItemRequest{ProductID: seedProduct(t, db, "A", 1), Quantity: 1})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 1, AddItemRequest{ProductID: seedProduct(t, db, "B", 2), Quantity: 2})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, 1))
	view, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.Subtotal)
}

func TestConcurrentAddItemMergesIntoOneLine(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	productID := seedProduct(t, db, "Filter Pack", 6.00)

	// a double-submit of the same line must merge, never trip the
	// (user_id, product_id) unique index
	const submits = 10
	errs := make(chan error, submits)
	var wg sync.WaitGroup
	for i := 0; i < submits; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, 1, AddItemRequest{ProductID: productID, Quantity: 1})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	view, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, submits, view.Items[0].Quantity)
}
