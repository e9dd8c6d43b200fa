package usecase

import (
	"context"

	"github.com/google/uuid"

	domainErrors "github.com/mizanur-rahman/homemeal/internal/domain/errors"
	"github.com/mizanur-rahman/homemeal/internal/domain/model"
	"github.com/mizanur-rahman/homemeal/internal/domain/repository"
)

// OrderUseCase encapsulates order lifecycle logic for the fulfillment
// axis. The payment axis is written only by PaymentUseCase.
type OrderUseCase struct {
	orders repository.OrderRepository
	meals  repository.MealRepository
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, meals repository.MealRepository) *OrderUseCase {
	return &OrderUseCase{orders: orders, meals: meals}
}

// Place creates an order for the buyer in status placed/unpaid. Price
// and meal name are captured from the listing at order time.
func (u *OrderUseCase) Place(ctx context.Context, buyer *model.User, mealID int64, quantity int) (*model.Order, error) {
	if quantity <= 0 {
		return nil, domainErrors.ErrInvalidQuantity
	}

	meal, err := u.meals.GetByID(ctx, mealID)
	if err != nil {
		return nil, err
	}

	return u.orders.Create(ctx, &model.Order{
		Reference:  uuid.NewString(),
		BuyerID:    buyer.ID,
		BuyerEmail: buyer.Email,
		ChefID:     meal.ChefID,
		MealID:     meal.ID,
		MealName:   meal.Name,
		Quantity:   quantity,
		UnitPrice:  meal.Price,
	})
}

// ListForBuyer returns the buyer's orders, newest first.
func (u *OrderUseCase) ListForBuyer(ctx context.Context, buyerID int64) ([]model.Order, error) {
	return u.orders.ListByBuyer(ctx, buyerID)
}

// ListForChef returns orders addressed to the chef, newest first.
func (u *OrderUseCase) ListForChef(ctx context.Context, chefID int64) ([]model.Order, error) {
	return u.orders.ListByChef(ctx, chefID)
}

// Transition moves the fulfillment status of an order. Unknown target
// statuses and out-of-order transitions are rejected; the conditional
// write in storage catches transitions lost to a concurrent actor.
func (u *OrderUseCase) Transition(ctx context.Context, actorID int64, role model.Role, orderID int64, to model.OrderStatus) error {
	if !model.ValidOrderStatus(to) {
		return domainErrors.ErrUnknownStatus
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if role != model.RoleAdmin && (role != model.RoleChef || order.ChefID != actorID) {
		return domainErrors.ErrForbidden
	}
	if !model.CanTransition(order.Status, to) {
		return domainErrors.ErrInvalidTransition
	}

	return u.orders.UpdateStatusGuard(ctx, orderID, order.Status, to)
}

// SelectBatchForSettlement exposes pending-settlement orders to the reconciler.
func (u *OrderUseCase) SelectBatchForSettlement(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.SelectBatchForSettlement(ctx, limit)
}
