package app

import (
	"context"

	"github.com/mizanur-rahman/homemeal/internal/domain/model"
	"github.com/mizanur-rahman/homemeal/internal/domain/repository"
	"github.com/mizanur-rahman/homemeal/internal/usecase"
)

// MarketFacade aggregates the application use cases behind a single
// surface consumed by HTTP handlers, middleware and the reconciler.
type MarketFacade struct {
	auth     *usecase.AuthUseCase
	meals    *usecase.MealUseCase
	reviews  *usecase.ReviewUseCase
	orders   *usecase.OrderUseCase
	payments *usecase.PaymentUseCase
	requests *usecase.RoleRequestUseCase
}

func NewMarketFacade(
	auth *usecase.AuthUseCase,
	meals *usecase.MealUseCase,
	reviews *usecase.ReviewUseCase,
	orders *usecase.OrderUseCase,
	payments *usecase.PaymentUseCase,
	requests *usecase.RoleRequestUseCase,
) *MarketFacade {
	return &MarketFacade{
		auth:     auth,
		meals:    meals,
		reviews:  reviews,
		orders:   orders,
		payments: payments,
		requests: requests,
	}
}

// --- auth ---

func (f *MarketFacade) Register(ctx context.Context, email, name, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, email, name, password)
	return token, err
}

func (f *MarketFacade) Authenticate(ctx context.Context, email, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, email, password)
	return token, err
}

func (f *MarketFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *MarketFacade) User(ctx context.Context, id int64) (*model.User, error) {
	return f.auth.GetByID(ctx, id)
}

// --- meals ---

func (f *MarketFacade) CreateMeal(ctx context.Context, chefID int64, name, description string, price float64, imageURL string) (*model.Meal, error) {
	return f.meals.Create(ctx, chefID, name, description, price, imageURL)
}

func (f *MarketFacade) Meal(ctx context.Context, id int64) (*model.Meal, error) {
	return f.meals.Get(ctx, id)
}

func (f *MarketFacade) Meals(ctx context.Context) ([]model.Meal, error) {
	return f.meals.List(ctx)
}

func (f *MarketFacade) UpdateMeal(ctx context.Context, actorID int64, role model.Role, mealID int64, patch repository.MealPatch) error {
	return f.meals.Update(ctx, actorID, role, mealID, patch)
}

func (f *MarketFacade) DeleteMeal(ctx context.Context, actorID int64, role model.Role, mealID int64) error {
	return f.meals.Delete(ctx, actorID, role, mealID)
}

// --- reviews ---

func (f *MarketFacade) CreateReview(ctx context.Context, authorID int64, authorEmail string, mealID int64, rating int, body string) (*model.Review, error) {
	return f.reviews.Create(ctx, authorID, authorEmail, mealID, rating, body)
}

func (f *MarketFacade) MealReviews(ctx context.Context, mealID int64) ([]model.Review, error) {
	return f.reviews.ListByMeal(ctx, mealID)
}

func (f *MarketFacade) UpdateReview(ctx context.Context, actorID int64, reviewID int64, patch repository.ReviewPatch) error {
	return f.reviews.Update(ctx, actorID, reviewID, patch)
}

func (f *MarketFacade) DeleteReview(ctx context.Context, actorID int64, role model.Role, reviewID int64) error {
	return f.reviews.Delete(ctx, actorID, role, reviewID)
}

// --- orders ---

func (f *MarketFacade) PlaceOrder(ctx context.Context, buyer *model.User, mealID int64, quantity int) (*model.Order, error) {
	return f.orders.Place(ctx, buyer, mealID, quantity)
}

func (f *MarketFacade) BuyerOrders(ctx context.Context, buyerID int64) ([]model.Order, error) {
	return f.orders.ListForBuyer(ctx, buyerID)
}

func (f *MarketFacade) ChefOrders(ctx context.Context, chefID int64) ([]model.Order, error) {
	return f.orders.ListForChef(ctx, chefID)
}

func (f *MarketFacade) TransitionOrder(ctx context.Context, actorID int64, role model.Role, orderID int64, to model.OrderStatus) error {
	return f.orders.Transition(ctx, actorID, role, orderID, to)
}

// --- payments ---

func (f *MarketFacade) CreateCheckoutSession(ctx context.Context, buyerID, orderID int64) (string, error) {
	return f.payments.CreateSession(ctx, buyerID, orderID)
}

func (f *MarketFacade) ConfirmSettlement(ctx context.Context, sessionID string) (*usecase.SettlementResult, error) {
	return f.payments.ConfirmSettlement(ctx, sessionID)
}

func (f *MarketFacade) PaymentHistory(ctx context.Context, buyerEmail string) ([]model.PaymentRecord, error) {
	return f.payments.History(ctx, buyerEmail)
}

func (f *MarketFacade) OrdersForSettlement(ctx context.Context, limit int) ([]model.Order, error) {
	return f.orders.SelectBatchForSettlement(ctx, limit)
}

// --- role requests ---

func (f *MarketFacade) SubmitRoleRequest(ctx context.Context, userID int64, role model.Role) (*model.RoleRequest, error) {
	return f.requests.Submit(ctx, userID, role)
}

func (f *MarketFacade) PendingRoleRequests(ctx context.Context) ([]model.RoleRequest, error) {
	return f.requests.Pending(ctx)
}

func (f *MarketFacade) DecideRoleRequest(ctx context.Context, requestID int64, approve bool) (*model.RoleRequest, error) {
	return f.requests.Decide(ctx, requestID, approve)
}
