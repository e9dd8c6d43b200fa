package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mizanur-rahman/homemeal/internal/adapter/checkout"
	domainErrors "github.com/mizanur-rahman/homemeal/internal/domain/errors"
	"github.com/mizanur-rahman/homemeal/internal/server/http/dto"
)

// PaymentHandler manages checkout and settlement endpoints.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// CreateSession handles POST /api/payments/checkout-session.
func (h *PaymentHandler) CreateSession(c *gin.Context) {
	identity := CurrentIdentity(c)

	var req dto.CheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	url, err := h.facade.CreateCheckoutSession(c.Request.Context(), identity.UserID, req.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrForbidden):
			c.Status(http.StatusForbidden)
		case errors.Is(err, domainErrors.ErrOrderAlreadyPaid):
			c.Status(http.StatusConflict)
		case errors.Is(err, domainErrors.ErrInvalidAmount):
			c.Status(http.StatusUnprocessableEntity)
		default:
			c.Status(http.StatusBadGateway)
		}
		return
	}
	c.JSON(http.StatusOK, dto.CheckoutSessionResponse{URL: url})
}

// Success handles PATCH /api/payments/success?session_id=...
// The redirect callback behind it is delivered at least once; replays
// answer success without re-applying side effects.
func (h *PaymentHandler) Success(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	result, err := h.facade.ConfirmSettlement(c.Request.Context(), sessionID)
	if err != nil {
		var rateLimited checkout.TooManyRequestsError
		switch {
		case errors.Is(err, domainErrors.ErrPaymentPending):
			c.JSON(http.StatusPaymentRequired, dto.SettlementResponse{Status: "pending"})
		case errors.Is(err, domainErrors.ErrNotFound), errors.Is(err, checkout.ErrSessionNotFound):
			c.Status(http.StatusNotFound)
		case errors.As(err, &rateLimited):
			c.Status(http.StatusServiceUnavailable)
		default:
			// Provider failure: nothing was settled, safe to retry.
			c.Status(http.StatusBadGateway)
		}
		return
	}

	c.JSON(http.StatusOK, dto.SettlementResponse{
		Status:        "settled",
		TransactionID: result.Record.TransactionID,
		Replayed:      result.Replayed,
	})
}

// History handles GET /api/payments.
func (h *PaymentHandler) History(c *gin.Context) {
	identity := CurrentIdentity(c)

	payments, err := h.facade.PaymentHistory(c.Request.Context(), identity.Email)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	response := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		response = append(response, dto.PaymentResponse{
			TransactionID: p.TransactionID,
			OrderID:       p.OrderID,
			MealName:      p.MealName,
			AmountMinor:   p.AmountMinor,
			PaidAt:        p.PaidAt,
		})
	}
	c.JSON(http.StatusOK, response)
}
