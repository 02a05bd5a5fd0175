package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

var errLineRaced = errors.New("cart line inserted concurrently")

// Service exposes the shopper's cart operations.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error)
	UpdateItem(ctx context.Context, userID uuid.UUID, input UpdateItemInput) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo CartRepository
	tx   txRunner
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	rows, err := s.repo.ListDetailed(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return newCartDTO(rows), nil
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error) {
	quantity := 1
	if input.Quantity != nil {
		quantity = *input.Quantity
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	// A racing first add of the same product loses on UNIQUE(user_id,
	// product_id), the only unique key a new line can hit besides its id; the
	// rerun finds the winner's line and merges into it.
	err := s.addOrMerge(ctx, userID, input.ProductID, quantity)
	if errors.Is(err, errLineRaced) {
		err = s.addOrMerge(ctx, userID, input.ProductID, quantity)
	}
	if errors.Is(err, errLineRaced) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart item changed concurrently, retry")
	}
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *service) addOrMerge(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		p, err := loadProduct(ctx, txRepo, productID)
		if err != nil {
			return err
		}

		existing, err := txRepo.Find(ctx, userID, productID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := product.EnsureStock(p, quantity); err != nil {
				return err
			}
			_, err := txRepo.Create(ctx, &models.CartItem{
				UserID:    userID,
				ProductID: productID,
				Quantity:  quantity,
			})
			if db.IsUniqueViolation(err, "") {
				return fmt.Errorf("%w: %v", errLineRaced, err)
			}
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert cart item")
			}
			return nil
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart item")
		}

		merged := existing.Quantity + quantity
		if err := product.EnsureStock(p, merged); err != nil {
			return err
		}
		if err := txRepo.UpdateQuantity(ctx, existing.ID, merged); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart item")
		}
		return nil
	})
}

func (s *service) UpdateItem(ctx context.Context, userID uuid.UUID, input UpdateItemInput) (*CartDTO, error) {
	if input.Quantity <= 0 {
		return s.RemoveItem(ctx, userID, input.ProductID)
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		p, err := loadProduct(ctx, txRepo, input.ProductID)
		if err != nil {
			return err
		}
		if err := product.EnsureStock(p, input.Quantity); err != nil {
			return err
		}

		existing, err := txRepo.Find(ctx, userID, input.ProductID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// nothing to update
			return nil
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart item")
		}
		if err := txRepo.UpdateQuantity(ctx, existing.ID, input.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error) {
	if err := s.repo.Delete(ctx, userID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete cart item")
	}
	return s.GetCart(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
	}
	return nil
}

func loadProduct(ctx context.Context, txRepo CartRepository, id uuid.UUID) (*models.Product, error) {
	p, err := txRepo.FindProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return p, nil
}
