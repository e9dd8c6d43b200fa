package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mizanur-rahman/homemeal/internal/domain/model"
	"github.com/mizanur-rahman/homemeal/internal/domain/repository"
	"github.com/mizanur-rahman/homemeal/internal/usecase"
)

// AuthFacadeStub simulates authentication facade interactions.
type AuthFacadeStub struct {
	RegisterFn     func(context.Context, string, string, string) (string, error)
	AuthenticateFn func(context.Context, string, string) (string, error)
	ParseFn        func(string) (int64, error)
	UserFn         func(context.Context, int64) (*model.User, error)
}

// Register returns token for successful registration scenarios.
func (s AuthFacadeStub) Register(ctx context.Context, email, name, password string) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, email, name, password)
	}
	return "token", nil
}

// Authenticate returns token for successful authentication scenarios.
func (s AuthFacadeStub) Authenticate(ctx context.Context, email, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, email, password)
	}
	return "token", nil
}

// ParseToken returns stored identifier for authenticated user.
func (s AuthFacadeStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return 1, nil
}

// User returns the caller identity for the parsed id.
func (s AuthFacadeStub) User(ctx context.Context, id int64) (*model.User, error) {
	if s.UserFn != nil {
		return s.UserFn(ctx, id)
	}
	return &model.User{ID: id, Email: "user@example.com", Role: model.RoleUser}, nil
}

// MealFacadeStub provides controllable behaviour for meal endpoints.
type MealFacadeStub struct {
	CreateFn func(context.Context, int64, string, string, float64, string) (*model.Meal, error)
	GetFn    func(context.Context, int64) (*model.Meal, error)
	ListFn   func(context.Context) ([]model.Meal, error)
	UpdateFn func(context.Context, int64, model.Role, int64, repository.MealPatch) error
	DeleteFn func(context.Context, int64, model.Role, int64) error
}

// CreateMeal delegates to provided function or returns default meal.
func (s MealFacadeStub) CreateMeal(ctx context.Context, chefID int64, name, description string, price float64, imageURL string) (*model.Meal, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, chefID, name, description, price, imageURL)
	}
	return &model.Meal{ID: 1, ChefID: chefID, Name: name, Description: description, Price: price, ImageURL: imageURL}, nil
}

// Meal returns a configured meal by identifier.
func (s MealFacadeStub) Meal(ctx context.Context, id int64) (*model.Meal, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id)
	}
	return &model.Meal{ID: id, Name: "beef curry", Price: 12.5}, nil
}

// Meals returns predefined listing.
func (s MealFacadeStub) Meals(ctx context.Context) ([]model.Meal, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx)
	}
	return []model.Meal{{ID: 1, Name: "beef curry", Price: 12.5}}, nil
}

// UpdateMeal executes configured update handler.
func (s MealFacadeStub) UpdateMeal(ctx context.Context, actorID int64, role model.Role, mealID int64, patch repository.MealPatch) error {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, actorID, role, mealID, patch)
	}
	return nil
}

// DeleteMeal executes configured delete handler.
func (s MealFacadeStub) DeleteMeal(ctx context.Context, actorID int64, role model.Role, mealID int64) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, actorID, role, mealID)
	}
	return nil
}

// ReviewFacadeStub provides controllable behaviour for review endpoints.
type ReviewFacadeStub struct {
	CreateFn func(context.Context, int64, string, int64, int, string) (*model.Review, error)
	ListFn   func(context.Context, int64) ([]model.Review, error)
	UpdateFn func(context.Context, int64, int64, repository.ReviewPatch) error
	DeleteFn func(context.Context, int64, model.Role, int64) error
}

// CreateReview delegates to provided function or returns default review.
func (s ReviewFacadeStub) CreateReview(ctx context.Context, authorID int64, authorEmail string, mealID int64, rating int, body string) (*model.Review, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, authorID, authorEmail, mealID, rating, body)
	}
	return &model.Review{ID: 1, MealID: mealID, UserID: authorID, UserEmail: authorEmail, Rating: rating, Body: body}, nil
}

// MealReviews returns predefined reviews for given meal.
func (s ReviewFacadeStub) MealReviews(ctx context.Context, mealID int64) ([]model.Review, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, mealID)
	}
	return []model.Review{{ID: 1, MealID: mealID, Rating: 5}}, nil
}

// UpdateReview executes configured update handler.
func (s ReviewFacadeStub) UpdateReview(ctx context.Context, actorID int64, reviewID int64, patch repository.ReviewPatch) error {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, actorID, reviewID, patch)
	}
	return nil
}

// DeleteReview executes configured delete handler.
func (s ReviewFacadeStub) DeleteReview(ctx context.Context, actorID int64, role model.Role, reviewID int64) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, actorID, role, reviewID)
	}
	return nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	PlaceFn      func(context.Context, *model.User, int64, int) (*model.Order, error)
	BuyerFn      func(context.Context, int64) ([]model.Order, error)
	ChefFn       func(context.Context, int64) ([]model.Order, error)
	TransitionFn func(context.Context, int64, model.Role, int64, model.OrderStatus) error
}

// PlaceOrder delegates to provided function or returns default order.
func (s OrderFacadeStub) PlaceOrder(ctx context.Context, buyer *model.User, mealID int64, quantity int) (*model.Order, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, buyer, mealID, quantity)
	}
	return &model.Order{ID: 1, BuyerID: buyer.ID, MealID: mealID, Quantity: quantity, Status: model.OrderStatusPlaced, PaymentStatus: model.PaymentStatusUnpaid}, nil
}

// BuyerOrders returns predefined orders for given buyer.
func (s OrderFacadeStub) BuyerOrders(ctx context.Context, buyerID int64) ([]model.Order, error) {
	if s.BuyerFn != nil {
		return s.BuyerFn(ctx, buyerID)
	}
	return []model.Order{{ID: 1, BuyerID: buyerID}}, nil
}

// ChefOrders returns predefined orders for given chef.
func (s OrderFacadeStub) ChefOrders(ctx context.Context, chefID int64) ([]model.Order, error) {
	if s.ChefFn != nil {
		return s.ChefFn(ctx, chefID)
	}
	return []model.Order{{ID: 1, ChefID: chefID}}, nil
}

// TransitionOrder executes configured transition handler.
func (s OrderFacadeStub) TransitionOrder(ctx context.Context, actorID int64, role model.Role, orderID int64, to model.OrderStatus) error {
	if s.TransitionFn != nil {
		return s.TransitionFn(ctx, actorID, role, orderID, to)
	}
	return nil
}

// PaymentFacadeStub simulates settlement operations.
type PaymentFacadeStub struct {
	SessionFn func(context.Context, int64, int64) (string, error)
	ConfirmFn func(context.Context, string) (*usecase.SettlementResult, error)
	HistoryFn func(context.Context, string) ([]model.PaymentRecord, error)
}

// CreateCheckoutSession returns configured redirect URL.
func (s PaymentFacadeStub) CreateCheckoutSession(ctx context.Context, buyerID, orderID int64) (string, error) {
	if s.SessionFn != nil {
		return s.SessionFn(ctx, buyerID, orderID)
	}
	return "https://checkout.example.com/s/abc", nil
}

// ConfirmSettlement executes configured confirmation handler.
func (s PaymentFacadeStub) ConfirmSettlement(ctx context.Context, sessionID string) (*usecase.SettlementResult, error) {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, sessionID)
	}
	return &usecase.SettlementResult{Record: &model.PaymentRecord{ID: 1, TransactionID: "txn-1"}}, nil
}

// PaymentHistory returns preconfigured history.
func (s PaymentFacadeStub) PaymentHistory(ctx context.Context, buyerEmail string) ([]model.PaymentRecord, error) {
	if s.HistoryFn != nil {
		return s.HistoryFn(ctx, buyerEmail)
	}
	return []model.PaymentRecord{{ID: 1, TransactionID: "txn-1", BuyerEmail: buyerEmail, AmountMinor: 100, PaidAt: time.Unix(0, 0)}}, nil
}

// RoleRequestFacadeStub simulates the promotion workflow.
type RoleRequestFacadeStub struct {
	SubmitFn  func(context.Context, int64, model.Role) (*model.RoleRequest, error)
	PendingFn func(context.Context) ([]model.RoleRequest, error)
	DecideFn  func(context.Context, int64, bool) (*model.RoleRequest, error)
}

// SubmitRoleRequest returns the stored pending request.
func (s RoleRequestFacadeStub) SubmitRoleRequest(ctx context.Context, userID int64, role model.Role) (*model.RoleRequest, error) {
	if s.SubmitFn != nil {
		return s.SubmitFn(ctx, userID, role)
	}
	return &model.RoleRequest{ID: 1, UserID: userID, RequestedRole: role, Status: model.RoleRequestPending}, nil
}

// PendingRoleRequests returns preconfigured pending requests.
func (s RoleRequestFacadeStub) PendingRoleRequests(ctx context.Context) ([]model.RoleRequest, error) {
	if s.PendingFn != nil {
		return s.PendingFn(ctx)
	}
	return []model.RoleRequest{{ID: 1, UserID: 2, RequestedRole: model.RoleChef, Status: model.RoleRequestPending}}, nil
}

// DecideRoleRequest executes configured decision handler.
func (s RoleRequestFacadeStub) DecideRoleRequest(ctx context.Context, requestID int64, approve bool) (*model.RoleRequest, error) {
	if s.DecideFn != nil {
		return s.DecideFn(ctx, requestID, approve)
	}
	status := model.RoleRequestRejected
	if approve {
		status = model.RoleRequestApproved
	}
	return &model.RoleRequest{ID: requestID, Status: status}, nil
}

// MarketFacadeStub aggregates facade dependencies for HTTP layer tests.
type MarketFacadeStub struct {
	AuthFacadeStub
	MealFacadeStub
	ReviewFacadeStub
	OrderFacadeStub
	PaymentFacadeStub
	RoleRequestFacadeStub
}

// WorkerFacadeStub mimics reconciler interactions with the market facade.
type WorkerFacadeStub struct {
	Batches   [][]model.Order
	OrdersFn  func(context.Context, int) ([]model.Order, error)
	ConfirmFn func(context.Context, string) (*usecase.SettlementResult, error)

	mu             sync.Mutex
	Confirmed      []string
	batchCallCount int32
}

// Lock exposes internal mutex for external synchronization.
func (s *WorkerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *WorkerFacadeStub) Unlock() { s.mu.Unlock() }

// OrdersForSettlement returns batches from configured queue.
func (s *WorkerFacadeStub) OrdersForSettlement(ctx context.Context, limit int) ([]model.Order, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, limit)
	}
	call := atomic.AddInt32(&s.batchCallCount, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// ConfirmSettlement records the confirmed session ids.
func (s *WorkerFacadeStub) ConfirmSettlement(ctx context.Context, sessionID string) (*usecase.SettlementResult, error) {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, sessionID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Confirmed = append(s.Confirmed, sessionID)
	return &usecase.SettlementResult{Record: &model.PaymentRecord{TransactionID: "txn-" + sessionID}}, nil
}
