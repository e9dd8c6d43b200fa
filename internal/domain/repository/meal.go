package repository

import (
	"context"

	"github.com/mizanur-rahman/homemeal/internal/domain/model"
)

// MealPatch carries optional field updates for a meal listing.
type MealPatch struct {
	Name        *string
	Description *string
	Price       *float64
	ImageURL    *string
}

// MealRepository describes persistence operations for meal listings.
type MealRepository interface {
	Create(ctx context.Context, meal *model.Meal) (*model.Meal, error)
	GetByID(ctx context.Context, id int64) (*model.Meal, error)
	List(ctx context.Context) ([]model.Meal, error)
	Update(ctx context.Context, id int64, patch MealPatch) error
	Delete(ctx context.Context, id int64) error
}
