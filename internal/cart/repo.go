package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// ErrCartChanged means lines were added or removed by another request
// between a locked read and the clear that follows it.
var ErrCartChanged = errors.New("cart changed concurrently")

// CartLineRecord is a cart line joined with the product fields the cart view shows.
type CartLineRecord struct {
	ID        uuid.UUID       `gorm:"column:id"`
	ProductID uuid.UUID       `gorm:"column:product_id"`
	Quantity  int             `gorm:"column:quantity"`
	Name      string          `gorm:"column:name"`
	Price     decimal.Decimal `gorm:"column:price"`
	ImageURL  string          `gorm:"column:image_url"`
	Stock     int             `gorm:"column:stock"`
	CreatedAt time.Time       `gorm:"column:created_at"`
}

// Repository persists cart lines.
type Repository struct {
	repo.Base
}

// NewRepository returns a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	return NewRepository(tx)
}

// ListLines returns the user's cart lines in insertion order.
func (r *Repository) ListLines(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	return findLines(r.DB(ctx), userID)
}

// LockLines is ListLines with the rows held FOR UPDATE until the surrounding
// transaction ends. A second locker for the same user waits, then sees only
// the rows the first one left behind.
func (r *Repository) LockLines(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	return findLines(r.Locked(ctx), userID)
}

func findLines(conn *gorm.DB, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := conn.
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Repository) ListDetailed(ctx context.Context, userID uuid.UUID) ([]CartLineRecord, error) {
	var rows []CartLineRecord
	if err := r.DB(ctx).
		Table("cart_items AS c").
		Select("c.id, c.product_id, c.quantity, c.created_at, p.name, p.price, p.image_url, p.stock").
		Joins("JOIN products p ON p.id = c.product_id").
		Where("c.user_id = ?", userID).
		Order("c.created_at ASC").
		Order("c.id ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Find(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.DB(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) Create(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if err := r.DB(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *Repository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.DB(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		Updates(map[string]any{"quantity": quantity, "updated_at": time.Now().UTC()}).Error
}

func (r *Repository) Delete(ctx context.Context, userID, productID uuid.UUID) error {
	return r.DB(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{}).Error
}

// Clear removes every line of the user's cart.
func (r *Repository) Clear(ctx context.Context, userID uuid.UUID) error {
	return r.DB(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

// ClearLocked deletes the user's cart after a LockLines read of expected
// lines. Any other row count returns ErrCartChanged.
func (r *Repository) ClearLocked(ctx context.Context, userID uuid.UUID, expected int) error {
	res := r.DB(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(expected) {
		return ErrCartChanged
	}
	return nil
}

// FindProduct loads the product a line refers to, on the same connection as the cart write.
func (r *Repository) FindProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var p models.Product
	if err := r.DB(ctx).First(&p, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
