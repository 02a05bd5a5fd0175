package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddItemInput is the add-to-cart payload. Quantity defaults to one.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  *int      `json:"quantity,omitempty"`
}

// UpdateItemInput sets a line's quantity; zero or less removes the line.
type UpdateItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"`
}

type CartLineDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image_url"`
	Stock     int             `json:"stock"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type CartDTO struct {
	Items []CartLineDTO   `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func newCartDTO(rows []CartLineRecord) *CartDTO {
	out := &CartDTO{Items: make([]CartLineDTO, 0, len(rows)), Total: decimal.Zero}
	for _, row := range rows {
		lineTotal := row.Price.Mul(decimal.NewFromInt(int64(row.Quantity)))
		out.Items = append(out.Items, CartLineDTO{
			ID:        row.ID,
			ProductID: row.ProductID,
			Name:      row.Name,
			Price:     row.Price,
			ImageURL:  row.ImageURL,
			Stock:     row.Stock,
			Quantity:  row.Quantity,
			LineTotal: lineTotal,
		})
		out.Total = out.Total.Add(lineTotal)
	}
	return out
}
