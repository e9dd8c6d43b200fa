package repository

import (
	"context"

	"github.com/mizanur-rahman/homemeal/internal/domain/model"
)

// OrderRepository describes persistence operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	ListByBuyer(ctx context.Context, buyerID int64) ([]model.Order, error)
	ListByChef(ctx context.Context, chefID int64) ([]model.Order, error)
	// UpdateStatusGuard moves the fulfillment status from one value to
	// another with a conditional write. A concurrent transition that
	// already moved the order off the expected status yields
	// ErrInvalidTransition, never a silent overwrite.
	UpdateStatusGuard(ctx context.Context, id int64, from, to model.OrderStatus) error
	SetCheckoutSession(ctx context.Context, id int64, sessionID string) error
	// SelectBatchForSettlement returns unpaid orders that already have a
	// checkout session, for the reconciler to re-confirm.
	SelectBatchForSettlement(ctx context.Context, limit int) ([]model.Order, error)
}
