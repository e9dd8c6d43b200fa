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

// MealHandler manages meal listing endpoints.
type MealHandler struct {
	facade MealFacade
}

// NewMealHandler constructs MealHandler.
func NewMealHandler(facade MealFacade) *MealHandler {
	return &MealHandler{facade: facade}
}

// List handles GET /api/meals.
func (h *MealHandler) List(c *gin.Context) {
	meals, err := h.facade.Meals(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	response := make([]dto.MealResponse, 0, len(meals))
	for _, m := range meals {
		response = append(response, toMealResponse(m))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/meals/:id.
func (h *MealHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	meal, err := h.facade.Meal(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, toMealResponse(*meal))
}

// Create handles POST /api/meals.
func (h *MealHandler) Create(c *gin.Context) {
	identity := CurrentIdentity(c)

	var req dto.MealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	meal, err := h.facade.CreateMeal(c.Request.Context(), identity.UserID, req.Name, req.Description, req.Price, req.ImageURL)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidAmount):
			c.Status(http.StatusUnprocessableEntity)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusCreated, toMealResponse(*meal))
}

// Update handles PATCH /api/meals/:id.
func (h *MealHandler) Update(c *gin.Context) {
	identity := CurrentIdentity(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.MealPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	patch := repository.MealPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	}
	err := h.facade.UpdateMeal(c.Request.Context(), identity.UserID, identity.Role, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrForbidden):
			c.Status(http.StatusForbidden)
		case errors.Is(err, domainErrors.ErrInvalidAmount):
			c.Status(http.StatusUnprocessableEntity)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.Status(http.StatusOK)
}

// Delete handles DELETE /api/meals/:id.
func (h *MealHandler) Delete(c *gin.Context) {
	identity := CurrentIdentity(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	err := h.facade.DeleteMeal(c.Request.Context(), identity.UserID, identity.Role, id)
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

func toMealResponse(m model.Meal) dto.MealResponse {
	return dto.MealResponse{
		ID:          m.ID,
		ChefID:      m.ChefID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		ImageURL:    m.ImageURL,
		ReviewCount: m.ReviewCount,
		Rating:      m.Rating,
		CreatedAt:   m.CreatedAt,
	}
}
