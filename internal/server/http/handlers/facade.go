package handlers

import (
	"context"

	"github.com/mizanur-rahman/homemeal/internal/domain/model"
	"github.com/mizanur-rahman/homemeal/internal/domain/repository"
	"github.com/mizanur-rahman/homemeal/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers
// and the auth middleware.
type AuthFacade interface {
	Register(ctx context.Context, email, name, password string) (string, error)
	Authenticate(ctx context.Context, email, password string) (string, error)
	ParseToken(token string) (int64, error)
	User(ctx context.Context, id int64) (*model.User, error)
}

// MealFacade encapsulates meal listing operations exposed via HTTP.
type MealFacade interface {
	CreateMeal(ctx context.Context, chefID int64, name, description string, price float64, imageURL string) (*model.Meal, error)
	Meal(ctx context.Context, id int64) (*model.Meal, error)
	Meals(ctx context.Context) ([]model.Meal, error)
	UpdateMeal(ctx context.Context, actorID int64, role model.Role, mealID int64, patch repository.MealPatch) error
	DeleteMeal(ctx context.Context, actorID int64, role model.Role, mealID int64) error
}

// ReviewFacade encapsulates review operations exposed via HTTP.
type ReviewFacade interface {
	CreateReview(ctx context.Context, authorID int64, authorEmail string, mealID int64, rating int, body string) (*model.Review, error)
	MealReviews(ctx context.Context, mealID int64) ([]model.Review, error)
	UpdateReview(ctx context.Context, actorID int64, reviewID int64, patch repository.ReviewPatch) error
	DeleteReview(ctx context.Context, actorID int64, role model.Role, reviewID int64) error
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, buyer *model.User, mealID int64, quantity int) (*model.Order, error)
	BuyerOrders(ctx context.Context, buyerID int64) ([]model.Order, error)
	ChefOrders(ctx context.Context, chefID int64) ([]model.Order, error)
	TransitionOrder(ctx context.Context, actorID int64, role model.Role, orderID int64, to model.OrderStatus) error
}

// PaymentFacade encapsulates settlement operations exposed via HTTP.
type PaymentFacade interface {
	CreateCheckoutSession(ctx context.Context, buyerID, orderID int64) (string, error)
	ConfirmSettlement(ctx context.Context, sessionID string) (*usecase.SettlementResult, error)
	PaymentHistory(ctx context.Context, buyerEmail string) ([]model.PaymentRecord, error)
}

// RoleRequestFacade encapsulates the promotion workflow.
type RoleRequestFacade interface {
	SubmitRoleRequest(ctx context.Context, userID int64, role model.Role) (*model.RoleRequest, error)
	PendingRoleRequests(ctx context.Context) ([]model.RoleRequest, error)
	DecideRoleRequest(ctx context.Context, requestID int64, approve bool) (*model.RoleRequest, error)
}

// MarketFacade aggregates the full set of operations used across handlers.
type MarketFacade interface {
	AuthFacade
	MealFacade
	ReviewFacade
	OrderFacade
	PaymentFacade
	RoleRequestFacade
}
