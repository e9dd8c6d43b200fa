package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/mizanur-rahman/homemeal/internal/domain/errors"
	"github.com/mizanur-rahman/homemeal/internal/domain/model"
	"github.com/mizanur-rahman/homemeal/internal/domain/repository"
	"github.com/mizanur-rahman/homemeal/internal/server/http/dto"
)

// ReviewHandler manages review endpoints.
type ReviewHandler struct {
	facade ReviewFacade
}

// NewReviewHandler constructs ReviewHandler.
func NewReviewHandler(facade ReviewFacade) *ReviewHandler {
	return &ReviewHandler{facade: facade}
}

// ListByMeal handles GET /api/meals/:id/reviews.
func (h *ReviewHandler) ListByMeal(c *gin.Context) {
	mealID, ok := parseIDParam(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	reviews, err := h.facade.MealReviews(c.Request.Context(), mealID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	response := make([]dto.ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		response = append(response, toReviewResponse(r))
	}
	c.JSON(http.StatusOK, response)
}

// Create handles POST /api/reviews.
func (h *ReviewHandler) Create(c *gin.Context) {
	identity := CurrentIdentity(c)

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	review, err := h.facade.CreateReview(c.Request.Context(), identity.UserID, identity.Email, req.MealID, req.Rating, req.Body)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidRating):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusCreated, toReviewResponse(*review))
}

// Update handles PATCH /api/reviews/:id.
func (h *ReviewHandler) Update(c *gin.Context) {
	identity := CurrentIdentity(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.ReviewPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	err := h.facade.UpdateReview(c.Request.Context(), identity.UserID, id, repository.ReviewPatch{Rating: req.Rating, Body: req.Body})
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidRating):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrForbidden):
			c.Status(http.StatusForbidden)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.Status(http.StatusOK)
}

// Delete handles DELETE /api/reviews/:id.
func (h *ReviewHandler) Delete(c *gin.Context) {
	identity := CurrentIdentity(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	err := h.facade.DeleteReview(c.Request.Context(), identity.UserID, identity.Role, id)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrForbidden):
			c.Status(http.StatusForbidden)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func toReviewResponse(r model.Review) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:        r.ID,
		MealID:    r.MealID,
		UserEmail: r.UserEmail,
		Rating:    r.Rating,
		Body:      r.Body,
		CreatedAt: r.CreatedAt,
	}
}
