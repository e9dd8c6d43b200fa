package repository

import (
	"context"

	"github.com/mizanur-rahman/homemeal/internal/domain/model"
)

// ReviewPatch carries optional field updates for a review.
type ReviewPatch struct {
	Rating *int
	Body   *string
}

// ReviewRepository describes persistence operations for reviews.
// Create, Update and Delete adjust the meal's aggregate fields in the
// same transaction as the review row mutation, so a review is never
// persisted without its rating contribution (and vice versa).
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) (*model.Review, error)
	GetByID(ctx context.Context, id int64) (*model.Review, error)
	ListByMeal(ctx context.Context, mealID int64) ([]model.Review, error)
	Update(ctx context.Context, id int64, patch ReviewPatch) error
	Delete(ctx context.Context, id int64) error
}
