package usecase

import (
	"context"

	domainErrors "github.com/mizanur-rahman/homemeal/internal/domain/errors"
	"github.com/mizanur-rahman/homemeal/internal/domain/model"
	"github.com/mizanur-rahman/homemeal/internal/domain/repository"
)

// ReviewUseCase encapsulates review authoring and the rating aggregate
// maintenance that rides along with it. The repository performs the
// review write and the meal aggregate delta in one transaction; this
// layer owns validation and ownership rules.
type ReviewUseCase struct {
	reviews repository.ReviewRepository
}

// NewReviewUseCase constructs ReviewUseCase.
func NewReviewUseCase(reviews repository.ReviewRepository) *ReviewUseCase {
	return &ReviewUseCase{reviews: reviews}
}

// Create authors a review and applies its rating to the meal aggregate.
// A missing meal fails with ErrNotFound and nothing is persisted.
func (u *ReviewUseCase) Create(ctx context.Context, authorID int64, authorEmail string, mealID int64, rating int, body string) (*model.Review, error) {
	if !ValidateRating(rating) {
		return nil, domainErrors.ErrInvalidRating
	}
	return u.reviews.Create(ctx, &model.Review{
		MealID:    mealID,
		UserID:    authorID,
		UserEmail: authorEmail,
		Rating:    rating,
		Body:      body,
	})
}

// ListByMeal returns reviews of a meal, newest first.
func (u *ReviewUseCase) ListByMeal(ctx context.Context, mealID int64) ([]model.Review, error) {
	return u.reviews.ListByMeal(ctx, mealID)
}

// Update edits a review. A rating change retracts the old contribution
// and applies the new one as one unit. Only the author may edit.
func (u *ReviewUseCase) Update(ctx context.Context, actorID int64, reviewID int64, patch repository.ReviewPatch) error {
	if patch.Rating != nil && !ValidateRating(*patch.Rating) {
		return domainErrors.ErrInvalidRating
	}

	review, err := u.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != actorID {
		return domainErrors.ErrForbidden
	}
	return u.reviews.Update(ctx, reviewID, patch)
}

// Delete removes a review and retracts its rating contribution. The
// author or an admin may delete.
func (u *ReviewUseCase) Delete(ctx context.Context, actorID int64, role model.Role, reviewID int64) error {
	review, err := u.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != actorID && role != model.RoleAdmin {
		return domainErrors.ErrForbidden
	}
	return u.reviews.Delete(ctx, reviewID)
}
