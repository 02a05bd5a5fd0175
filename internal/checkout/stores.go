package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// CartStore is the slice of the cart repository checkout locks and clears.
type CartStore interface {
	LockLines(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	ClearLocked(ctx context.Context, userID uuid.UUID, expected int) error
}

// CatalogStore reads product snapshots and applies guarded stock decrements.
type CatalogStore interface {
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
	DecrementStock(ctx context.Context, id uuid.UUID, amount int) error
}

// OrderStore writes the order header and its items.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	AddItems(ctx context.Context, items []models.OrderItem) error
}

// Stores groups the collaborators bound to one transaction.
type Stores struct {
	Cart    CartStore
	Catalog CatalogStore
	Orders  OrderStore
}

// StoresFactory binds the collaborators to tx.
type StoresFactory func(tx *gorm.DB) Stores

// NewRepositoryStores returns a factory over the gorm repositories.
func NewRepositoryStores(cartRepo cart.CartRepository, productRepo *product.Repository, orderRepo *orders.Repository) StoresFactory {
	return func(tx *gorm.DB) Stores {
		return Stores{
			Cart:    cartRepo.WithTx(tx),
			Catalog: productRepo.WithTx(tx),
			Orders:  orderRepo.WithTx(tx),
		}
	}
}
