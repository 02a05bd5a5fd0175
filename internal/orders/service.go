package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

// Service exposes order history for shoppers and order management for admins.
type Service interface {
	ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderDetail, error)
	ListAllOrders(ctx context.Context, params pagination.Params, filters AdminOrderFilters) (*AdminOrderList, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo *Repository
	tx   txRunner
}

func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) ListUserOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	list, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, mapListError(err)
	}
	return list, nil
}

func (s *service) GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.repo.FindForUser(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	items, _, err := s.repo.ListItems(ctx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
	}
	return &OrderDetail{
		ID:              order.ID,
		TotalAmount:     order.TotalAmount,
		Status:          order.Status,
		ShippingAddress: order.ShippingAddress,
		Phone:           order.Phone,
		CreatedAt:       order.CreatedAt,
		Items:           items,
	}, nil
}

func (s *service) ListAllOrders(ctx context.Context, params pagination.Params, filters AdminOrderFilters) (*AdminOrderList, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status")
	}
	list, err := s.repo.ListAll(ctx, params, filters)
	if err != nil {
		return nil, mapListError(err)
	}
	return list, nil
}

// UpdateStatus moves an order to status through TransitionStatus.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) error {
	next, err := enums.ParseOrderStatus(strings.TrimSpace(status))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		order, err := txRepo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if err := TransitionStatus(order.Status, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, err.Error())
		}
		if err := txRepo.UpdateStatus(ctx, orderID, next); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		return nil
	})
}

func mapListError(err error) error {
	if errors.Is(err, ErrInvalidCursor) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
}
