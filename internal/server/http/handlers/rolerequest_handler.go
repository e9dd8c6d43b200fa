package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/mizanur-rahman/homemeal/internal/domain/errors"
	"github.com/mizanur-rahman/homemeal/internal/domain/model"
	"github.com/mizanur-rahman/homemeal/internal/server/http/dto"
)

// RoleRequestHandler manages the promotion workflow endpoints.
type RoleRequestHandler struct {
	facade RoleRequestFacade
}

// NewRoleRequestHandler constructs RoleRequestHandler.
func NewRoleRequestHandler(facade RoleRequestFacade) *RoleRequestHandler {
	return &RoleRequestHandler{facade: facade}
}

// Submit handles POST /api/role-requests.
func (h *RoleRequestHandler) Submit(c *gin.Context) {
	identity := CurrentIdentity(c)

	var req dto.RoleRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	request, err := h.facade.SubmitRoleRequest(c.Request.Context(), identity.UserID, model.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidRole):
			c.Status(http.StatusUnprocessableEntity)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusCreated, toRoleRequestResponse(*request))
}

// ListPending handles GET /api/admin/role-requests.
func (h *RoleRequestHandler) ListPending(c *gin.Context) {
	requests, err := h.facade.PendingRoleRequests(c.Request.Context())
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	response := make([]dto.RoleRequestResponse, 0, len(requests))
	for _, r := range requests {
		response = append(response, toRoleRequestResponse(r))
	}
	c.JSON(http.StatusOK, response)
}

// Decide handles PATCH /api/admin/role-requests/:id.
func (h *RoleRequestHandler) Decide(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		c.Status(http.StatusBadRequest)
		return
	}

	var req dto.RoleRequestDecision
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	request, err := h.facade.DecideRoleRequest(c.Request.Context(), id, req.Approve)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrInvalidTransition):
			c.Status(http.StatusConflict)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusOK, toRoleRequestResponse(*request))
}

func toRoleRequestResponse(r model.RoleRequest) dto.RoleRequestResponse {
	return dto.RoleRequestResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		RequestedRole: string(r.RequestedRole),
		Status:        string(r.Status),
		CreatedAt:     r.CreatedAt,
		DecidedAt:     r.DecidedAt,
	}
}
