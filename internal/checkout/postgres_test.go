package checkout

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
)

const envPostgresTestDSN = "STOREFRONT_TEST_POSTGRES_DSN"

func openPostgresForTest(t *testing.T) *db.Client {
	t.Helper()
	dsn := os.Getenv(envPostgresTestDSN)
	if dsn == "" {
		t.Skipf("%s not set", envPostgresTestDSN)
	}
	ctx := context.Background()
	client, err := db.New(ctx, config.DBConfig{DSN: dsn, Driver: config.DriverPostgres, MaxOpenConns: 8}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, migrate.AutoMigrateModels(ctx, client.DB()))
	return client
}

// Two shoppers race for the last unit. Row locks must let exactly one win.
func TestCheckoutConcurrentShoppersPostgres(t *testing.T) {
	client := openPostgresForTest(t)
	ctx := context.Background()
	conn := client.DB()
	last := &models.Product{Name: "Last Bottle " + uuid.NewString(), Price: decimal.RequireFromString("15.00"), Stock: 1}
	require.NoError(t, conn.Create(last).Error)

	shoppers := make([]uuid.UUID, 2)
	for i := range shoppers {
		u := &models.User{Email: uuid.NewString() + "@example.com", PasswordHash: "h", Name: "Racer"}
		require.NoError(t, conn.Create(u).Error)
		require.NoError(t, conn.Create(&models.CartItem{UserID: u.ID, ProductID: last.ID, Quantity: 1}).Error)
		shoppers[i] = u.ID
	}
	t.Cleanup(func() {
		conn.Where("product_id = ?", last.ID).Delete(&models.OrderItem{})
		conn.Where("user_id IN ?", shoppers).Delete(&models.Order{})
		conn.Where("user_id IN ?", shoppers).Delete(&models.CartItem{})
		conn.Where("id IN ?", shoppers).Delete(&models.User{})
		conn.Where("id = ?", last.ID).Delete(&models.Product{})
	})

	svc, err := NewService(ServiceParams{
		Tx:     client,
		Stores: NewRepositoryStores(cart.NewRepository(conn), product.NewRepository(conn), orders.NewRepository(conn)),
	})
	require.NoError(t, err)

	errs := make([]error, len(shoppers))
	var wg sync.WaitGroup
	for i, userID := range shoppers {
		wg.Add(1)
		go func(i int, userID uuid.UUID) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(ctx, userID, shipTo)
		}(i, userID)
	}
	wg.Wait()

	succeeded, short := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case pkgerrors.Is(err, pkgerrors.CodeInsufficientStock):
			short++
		default:
			t.Fatalf("unexpected checkout error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, short)

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", last.ID).Error)
	assert.Equal(t, 0, reloaded.Stock)
}

// One shopper fires the same checkout twice at once. The cart lines are
// locked, so the second attempt finds them gone and reports an empty cart.
func TestCheckoutConcurrentSameShopperPostgres(t *testing.T) {
	client := openPostgresForTest(t)
	ctx := context.Background()
	conn := client.DB()

	p := &models.Product{Name: "Double Tap " + uuid.NewString(), Price: decimal.RequireFromString("8.00"), Stock: 5}
	require.NoError(t, conn.Create(p).Error)
	u := &models.User{Email: uuid.NewString() + "@example.com", PasswordHash: "h", Name: "Twice"}
	require.NoError(t, conn.Create(u).Error)
	require.NoError(t, conn.Create(&models.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 2}).Error)
	t.Cleanup(func() {
		conn.Where("product_id = ?", p.ID).Delete(&models.OrderItem{})
		conn.Where("user_id = ?", u.ID).Delete(&models.Order{})
		conn.Where("user_id = ?", u.ID).Delete(&models.CartItem{})
		conn.Where("id = ?", u.ID).Delete(&models.User{})
		conn.Where("id = ?", p.ID).Delete(&models.Product{})
	})

	svc, err := NewService(ServiceParams{
		Tx:     client,
		Stores: NewRepositoryStores(cart.NewRepository(conn), product.NewRepository(conn), orders.NewRepository(conn)),
	})
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Checkout(ctx, u.ID, shipTo)
		}(i)
	}
	wg.Wait()

	succeeded, empty := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case pkgerrors.Is(err, pkgerrors.CodeEmptyCart):
			empty++
		default:
			t.Fatalf("unexpected checkout error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, empty)

	var orderCount int64
	require.NoError(t, conn.Model(&models.Order{}).Where("user_id = ?", u.ID).Count(&orderCount).Error)
	assert.Equal(t, int64(1), orderCount)

	var reloaded models.Product
	require.NoError(t, conn.First(&reloaded, "id = ?", p.ID).Error)
	assert.Equal(t, 3, reloaded.Stock)
}
