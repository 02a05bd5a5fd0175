package helpers

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// PricedLine is a cart line bound to the product snapshot read for checkout.
type PricedLine struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	Price       decimal.Decimal
}

// LineTotal returns price x quantity.
func (l PricedLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PriceLines walks lines in cart order and binds each to its product.
// The first line whose quantity exceeds stock stops the walk with an
// insufficient stock error. Lines whose product no longer exists are dropped.
func PriceLines(lines []models.CartItem, products map[uuid.UUID]models.Product) ([]PricedLine, error) {
	priced := make([]PricedLine, 0, len(lines))
	for _, line := range lines {
		p, ok := products[line.ProductID]
		if !ok {
			continue
		}
		if err := product.EnsureStock(&p, line.Quantity); err != nil {
			return nil, err
		}
		priced = append(priced, PricedLine{
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			Price:       p.Price,
		})
	}
	return priced, nil
}

// ComputeTotal sums price x quantity over lines.
func ComputeTotal(lines []PricedLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal())
	}
	return total
}

// BuildOrderItems turns priced lines into order items carrying the snapshot price.
func BuildOrderItems(orderID uuid.UUID, lines []PricedLine) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			OrderID:   orderID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}
	return items
}

// ProductIDs returns the distinct product ids of lines in cart order.
func ProductIDs(lines []models.CartItem) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}
