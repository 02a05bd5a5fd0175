package product

import (
	"fmt"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

// InsufficientStockError reports that product cannot cover requested units.
// The message names the product so it can be shown to the shopper as is.
func InsufficientStockError(p *models.Product, requested int) *pkgerrors.Error {
	return pkgerrors.New(
		pkgerrors.CodeInsufficientStock,
		fmt.Sprintf("insufficient stock for %s", p.Name),
	).WithDetails(map[string]any{
		"product_id":   p.ID,
		"product_name": p.Name,
		"requested":    requested,
		"available":    p.Stock,
	})
}

// EnsureStock returns InsufficientStockError when p.Stock < requested.
func EnsureStock(p *models.Product, requested int) error {
	if p.Stock >= requested {
		return nil
	}
	return InsufficientStockError(p, requested)
}
