package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/repo"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// ErrInvalidCursor wraps a malformed pagination cursor.
var ErrInvalidCursor = errors.New("invalid cursor")

// Repository persists orders and their items. Nothing here deletes rows.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Create inserts the order header.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.DB(ctx).Omit("Items").Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// AddItems inserts the order lines in one batch.
func (r *Repository) AddItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.DB(ctx).Create(&items).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindForUser loads an order owned by userID; another user's order is not found.
func (r *Repository) FindForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.DB(ctx).
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	res := r.DB(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "updated_at": time.Now().UTC()})
	return repo.Affected(res, gorm.ErrRecordNotFound)
}

type orderItemRecord struct {
	OrderID     uuid.UUID       `gorm:"column:order_id"`
	ProductID   uuid.UUID       `gorm:"column:product_id"`
	ProductName string          `gorm:"column:product_name"`
	ImageURL    string          `gorm:"column:image_url"`
	Quantity    int             `gorm:"column:quantity"`
	Price       decimal.Decimal `gorm:"column:price"`
}

// ListItems returns the lines of the given orders with product names.
func (r *Repository) ListItems(ctx context.Context, orderIDs []uuid.UUID) ([]OrderItemDTO, map[uuid.UUID][]OrderItemDTO, error) {
	if len(orderIDs) == 0 {
		return nil, map[uuid.UUID][]OrderItemDTO{}, nil
	}
	var records []orderItemRecord
	if err := r.DB(ctx).
		Table("order_items AS oi").
		Select("oi.order_id, oi.product_id, p.name AS product_name, p.image_url, oi.quantity, oi.price").
		Joins("JOIN products p ON p.id = oi.product_id").
		Where("oi.order_id IN ?", orderIDs).
		Order("oi.order_id").
		Order("p.name").
		Scan(&records).Error; err != nil {
		return nil, nil, err
	}

	all := make([]OrderItemDTO, 0, len(records))
	byOrder := make(map[uuid.UUID][]OrderItemDTO, len(orderIDs))
	for _, rec := range records {
		item := OrderItemDTO{
			ProductID:   rec.ProductID,
			ProductName: rec.ProductName,
			ImageURL:    rec.ImageURL,
			Quantity:    rec.Quantity,
			Price:       rec.Price,
			LineTotal:   rec.Price.Mul(decimal.NewFromInt(int64(rec.Quantity))),
		}
		all = append(all, item)
		byOrder[rec.OrderID] = append(byOrder[rec.OrderID], item)
	}
	return all, byOrder, nil
}

// ListByUser pages through a user's orders newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	var rows []models.Order
	if err := r.DB(ctx).
		Model(&models.Order{}).
		Where("user_id = ?", userID).
		Scopes(pagination.Newest("", cursor, params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	rows, nextCursor := pagination.TrimPage(rows, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	_, itemsByOrder, err := r.ListItems(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]OrderSummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, OrderSummary{
			ID:              row.ID,
			TotalAmount:     row.TotalAmount,
			Status:          row.Status,
			ShippingAddress: row.ShippingAddress,
			Phone:           row.Phone,
			ItemsSummary:    itemsSummary(itemsByOrder[row.ID]),
			CreatedAt:       row.CreatedAt,
		})
	}
	return &OrderList{Orders: summaries, NextCursor: nextCursor}, nil
}

type adminOrderRecord struct {
	ID              uuid.UUID         `gorm:"column:id"`
	UserID          uuid.UUID         `gorm:"column:user_id"`
	UserName        string            `gorm:"column:user_name"`
	Email           string            `gorm:"column:email"`
	TotalAmount     decimal.Decimal   `gorm:"column:total_amount"`
	Status          enums.OrderStatus `gorm:"column:status"`
	ShippingAddress string            `gorm:"column:shipping_address"`
	Phone           string            `gorm:"column:phone"`
	CreatedAt       time.Time         `gorm:"column:created_at"`
}

// ListAll pages through every order newest first, joined with the purchaser.
func (r *Repository) ListAll(ctx context.Context, params pagination.Params, filters AdminOrderFilters) (*AdminOrderList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	query := r.DB(ctx).
		Table("orders AS o").
		Select("o.id, o.user_id, u.name AS user_name, u.email, o.total_amount, o.status, o.shipping_address, o.phone, o.created_at").
		Joins("JOIN users u ON u.id = o.user_id")
	if filters.Status != nil {
		query = query.Where("o.status = ?", *filters.Status)
	}

	var records []adminOrderRecord
	if err := query.Scopes(pagination.Newest("o.", cursor, params.Limit)).Scan(&records).Error; err != nil {
		return nil, err
	}
	records, nextCursor := pagination.TrimPage(records, params.Limit, func(rec adminOrderRecord) pagination.Cursor {
		return pagination.Cursor{CreatedAt: rec.CreatedAt, ID: rec.ID}
	})

	out := make([]AdminOrderSummary, 0, len(records))
	for _, rec := range records {
		out = append(out, AdminOrderSummary(rec))
	}
	return &AdminOrderList{Orders: out, NextCursor: nextCursor}, nil
}

func itemsSummary(items []OrderItemDTO) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s (x%d)", item.ProductName, item.Quantity))
	}
	return strings.Join(parts, ",")
}
