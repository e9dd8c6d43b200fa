package usecase

import (
	"context"
	"strings"

	domainErrors "github.com/mizanur-rahman/homemeal/internal/domain/errors"
	"github.com/mizanur-rahman/homemeal/internal/domain/model"
	"github.com/mizanur-rahman/homemeal/internal/domain/repository"
)

// MealUseCase encapsulates meal listing logic.
type MealUseCase struct {
	meals repository.MealRepository
}

// NewMealUseCase constructs MealUseCase.
func NewMealUseCase(meals repository.MealRepository) *MealUseCase {
	return &MealUseCase{meals: meals}
}

// Create lists a new meal owned by the chef.
func (u *MealUseCase) Create(ctx context.Context, chefID int64, name, description string, price float64, imageURL string) (*model.Meal, error) {
	name = strings.TrimSpace(name)
	if name == "" || price <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}
	return u.meals.Create(ctx, &model.Meal{
		ChefID:      chefID,
		Name:        name,
		Description: description,
		Price:       price,
		ImageURL:    imageURL,
	})
}

// Get returns a meal by id.
func (u *MealUseCase) Get(ctx context.Context, id int64) (*model.Meal, error) {
	return u.meals.GetByID(ctx, id)
}

// List returns all meal listings, newest first.
func (u *MealUseCase) List(ctx context.Context) ([]model.Meal, error) {
	return u.meals.List(ctx)
}

// Update edits a meal's descriptive fields. Only the owning chef or an
// admin may edit; aggregate fields are never writable here.
func (u *MealUseCase) Update(ctx context.Context, actorID int64, role model.Role, mealID int64, patch repository.MealPatch) error {
	meal, err := u.meals.GetByID(ctx, mealID)
	if err != nil {
		return err
	}
	if meal.ChefID != actorID && role != model.RoleAdmin {
		return domainErrors.ErrForbidden
	}
	if patch.Price != nil && *patch.Price <= 0 {
		return domainErrors.ErrInvalidAmount
	}
	return u.meals.Update(ctx, mealID, patch)
}

// Delete removes a meal listing.
func (u *MealUseCase) Delete(ctx context.Context, actorID int64, role model.Role, mealID int64) error {
	meal, err := u.meals.GetByID(ctx, mealID)
	if err != nil {
		return err
	}
	if meal.ChefID != actorID && role != model.RoleAdmin {
		return domainErrors.ErrForbidden
	}
	return u.meals.Delete(ctx, mealID)
}
