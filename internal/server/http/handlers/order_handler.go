package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/mizanur-rahman/homemeal/internal/domain/errors"
	"github.com/mizanur-rahman/homemeal/internal/domain/model"
	"github.com/mizanur-rahman/homemeal/internal/server/http/dto"
)

// OrderHandler manages order endpoints.
type OrderHandler struct {
	facade MarketFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade MarketFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Place handles POST /api/orders.
func (h *OrderHandler) Place(c *gin.Context) {
	identity := CurrentIdentity(c)

	var req dto.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	buyer, err := h.facade.User(c.Request.Context(), identity.UserID)
	if err != nil {
		c.Status(http.StatusUnauthorized)
		return
	}

	order, err := h.facade.PlaceOrder(c.Request.Context(), buyer, req.MealID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidQuantity):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// ListMine handles GET /api/orders.
func (h *OrderHandler) ListMine(c *gin.Context) {
	identity := CurrentIdentity(c)
	orders, err := h.facade.BuyerOrders(c.Request.Context(), identity.UserID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// ListForChef handles GET /api/chef/orders.
func (h *OrderHandler) ListForChef(c *gin.Context) {
	identity := CurrentIdentity(c)
	orders, err := h.facade.ChefOrders(c.Request.Context(), identity.UserID)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

// UpdateStatus handles PATCH /api/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	identity := CurrentIdentity(c)

	id, ok := parseIDParam(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	err := h.facade.TransitionOrder(c.Request.Context(), identity.UserID, identity.Role, id, model.OrderStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrUnknownStatus):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrInvalidTransition):
			c.Status(http.StatusConflict)
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

func toOrderResponse(o model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:            o.ID,
		Reference:     o.Reference,
		BuyerEmail:    o.BuyerEmail,
		MealID:        o.MealID,
		MealName:      o.MealName,
		Quantity:      o.Quantity,
		UnitPrice:     o.UnitPrice,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		CreatedAt:     o.CreatedAt,
	}
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	return response
}
