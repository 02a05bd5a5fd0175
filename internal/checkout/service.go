package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/internal/checkout/helpers"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// DefaultMaxAttempts allows one replay after a stock conflict.
const DefaultMaxAttempts = 2

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type recorder interface {
	Observe(outcome string, elapsed time.Duration)
	IncRetry()
}

// Service turns a user's cart into a pending order.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*CheckoutResult, error)
}

// CheckoutInput carries the delivery details of a checkout request.
type CheckoutInput struct {
	ShippingAddress string `json:"shipping_address"`
	Phone           string `json:"phone"`
}

// CheckoutResult identifies the order created by a checkout.
type CheckoutResult struct {
	OrderID uuid.UUID `json:"order_id"`
}

// ServiceParams wires the checkout service.
type ServiceParams struct {
	Tx          txRunner
	Stores      StoresFactory
	Metrics     recorder
	Logger      *logger.Logger
	MaxAttempts int
}

type service struct {
	tx          txRunner
	stores      StoresFactory
	metrics     recorder
	logg        *logger.Logger
	maxAttempts int
	now         func() time.Time
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if params.Stores == nil {
		return nil, fmt.Errorf("stores factory required")
	}
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &service{
		tx:          params.Tx,
		stores:      params.Stores,
		metrics:     params.Metrics,
		logg:        params.Logger,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}, nil
}

type placedOrder struct {
	id    uuid.UUID
	lines int
	total decimal.Decimal
}

func (s *service) Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*CheckoutResult, error) {
	start := s.now()
	placed, err := s.checkout(ctx, userID, input)
	if s.metrics != nil {
		s.metrics.Observe(outcomeFor(err), s.now().Sub(start))
	}
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":   placed.id.String(),
			"user_id":    userID.String(),
			"line_count": placed.lines,
			"total":      placed.total.StringFixed(2),
		})
		s.logg.Info(logCtx, "checkout.completed")
	}
	return &CheckoutResult{OrderID: placed.id}, nil
}

func (s *service) checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*placedOrder, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	shipping, err := helpers.ValidateShipping(input.ShippingAddress, input.Phone)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		placed, err := s.attempt(ctx, userID, shipping)
		if err == nil {
			return placed, nil
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		if !isConflict(err) || attempt >= s.maxAttempts {
			return nil, persistenceFailure(err)
		}
		if s.metrics != nil {
			s.metrics.IncRetry()
		}
		if s.logg != nil {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"user_id": userID.String(),
				"attempt": attempt,
				"reason":  err.Error(),
			})
			s.logg.Warn(logCtx, "checkout.retry")
		}
	}
}

// attempt runs one validate-and-commit sequence in a single transaction.
// Validation failures come back typed; storage failures come back raw so the
// caller can tell conflicts apart from everything else.
func (s *service) attempt(ctx context.Context, userID uuid.UUID, shipping helpers.ShippingDetails) (*placedOrder, error) {
	var placed *placedOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		stores := s.stores(tx)

		lines, err := stores.Cart.LockLines(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return emptyCartError()
		}

		products, err := stores.Catalog.GetMany(ctx, helpers.ProductIDs(lines))
		if err != nil {
			return err
		}
		priced, err := helpers.PriceLines(lines, products)
		if err != nil {
			return err
		}
		if len(priced) == 0 {
			return emptyCartError()
		}
		total := helpers.ComputeTotal(priced)

		order, err := stores.Orders.Create(ctx, &models.Order{
			UserID:          userID,
			TotalAmount:     total,
			Status:          enums.OrderStatusPending,
			ShippingAddress: shipping.Address,
			Phone:           shipping.Phone,
		})
		if err != nil {
			return err
		}
		if err := stores.Orders.AddItems(ctx, helpers.BuildOrderItems(order.ID, priced)); err != nil {
			return err
		}
		for _, line := range priced {
			if err := stores.Catalog.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		if err := stores.Cart.ClearLocked(ctx, userID, len(lines)); err != nil {
			return err
		}

		placed = &placedOrder{id: order.ID, lines: len(priced), total: total}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}
