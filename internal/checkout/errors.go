package checkout

import (
	"errors"

	"github.com/angelmondragon/storefront-backend/internal/cart"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const (
	OutcomeSuccess            = "success"
	OutcomeInvalidInput       = "invalid_input"
	OutcomeEmptyCart          = "empty_cart"
	OutcomeInsufficientStock  = "insufficient_stock"
	OutcomePersistenceFailure = "persistence_failure"
)

func emptyCartError() error {
	return pkgerrors.New(pkgerrors.CodeEmptyCart, "cart is empty")
}

func persistenceFailure(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "failed to place order")
}

// isConflict reports whether err means a concurrent request won the race
// for the same stock or cart and the whole sequence can be replayed.
func isConflict(err error) bool {
	return errors.Is(err, product.ErrStockConflict) ||
		errors.Is(err, cart.ErrCartChanged) ||
		db.IsSerializationFailure(err)
}

// outcomeFor maps a checkout result onto its metrics label.
func outcomeFor(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	switch pkgerrors.As(err).Code() {
	case pkgerrors.CodeValidation:
		return OutcomeInvalidInput
	case pkgerrors.CodeEmptyCart:
		return OutcomeEmptyCart
	case pkgerrors.CodeInsufficientStock:
		return OutcomeInsufficientStock
	default:
		return OutcomePersistenceFailure
	}
}
