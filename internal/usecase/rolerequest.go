package usecase

import (
	"context"

	domainErrors "github.com/mizanur-rahman/homemeal/internal/domain/errors"
	"github.com/mizanur-rahman/homemeal/internal/domain/model"
	"github.com/mizanur-rahman/homemeal/internal/domain/repository"
)

// RoleRequestUseCase manages the chef/admin promotion workflow.
type RoleRequestUseCase struct {
	requests repository.RoleRequestRepository
}

// NewRoleRequestUseCase constructs RoleRequestUseCase.
func NewRoleRequestUseCase(requests repository.RoleRequestRepository) *RoleRequestUseCase {
	return &RoleRequestUseCase{requests: requests}
}

// Submit files a promotion request for the user.
func (u *RoleRequestUseCase) Submit(ctx context.Context, userID int64, role model.Role) (*model.RoleRequest, error) {
	if role != model.RoleChef && role != model.RoleAdmin {
		return nil, domainErrors.ErrInvalidRole
	}
	return u.requests.Create(ctx, userID, role)
}

// Pending lists undecided requests for admin review.
func (u *RoleRequestUseCase) Pending(ctx context.Context) ([]model.RoleRequest, error) {
	return u.requests.ListPending(ctx)
}

// Decide approves or rejects a pending request; approval promotes the
// user in the same transaction. Deciding twice fails with
// ErrInvalidTransition.
func (u *RoleRequestUseCase) Decide(ctx context.Context, requestID int64, approve bool) (*model.RoleRequest, error) {
	return u.requests.Decide(ctx, requestID, approve)
}
