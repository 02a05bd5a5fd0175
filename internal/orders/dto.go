package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// OrderSummary is one row of a shopper's order history.
type OrderSummary struct {
	ID              uuid.UUID         `json:"id"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	Status          enums.OrderStatus `json:"status"`
	ShippingAddress string            `json:"shipping_address"`
	Phone           string            `json:"phone"`
	ItemsSummary    string            `json:"items_summary"`
	CreatedAt       time.Time         `json:"created_at"`
}

// OrderList is a cursor page of order summaries.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// OrderItemDTO is an order line with its snapshot price.
type OrderItemDTO struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ImageURL    string          `json:"image_url"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderDetail is an order header plus its items.
type OrderDetail struct {
	ID              uuid.UUID         `json:"id"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	Status          enums.OrderStatus `json:"status"`
	ShippingAddress string            `json:"shipping_address"`
	Phone           string            `json:"phone"`
	CreatedAt       time.Time         `json:"created_at"`
	Items           []OrderItemDTO    `json:"items"`
}

// AdminOrderSummary adds the purchaser to an order row.
type AdminOrderSummary struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"user_id"`
	UserName        string            `json:"user_name"`
	Email           string            `json:"email"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	Status          enums.OrderStatus `json:"status"`
	ShippingAddress string            `json:"shipping_address"`
	Phone           string            `json:"phone"`
	CreatedAt       time.Time         `json:"created_at"`
}

type AdminOrderList struct {
	Orders     []AdminOrderSummary `json:"orders"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

// AdminOrderFilters narrows the admin order list.
type AdminOrderFilters struct {
	Status *enums.OrderStatus
}

// UpdateStatusRequest is the admin status change payload.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
