package repository

import (
	"context"

	"github.com/mizanur-rahman/homemeal/internal/domain/model"
)

// RoleRequestRepository describes persistence for promotion requests.
type RoleRequestRepository interface {
	Create(ctx context.Context, userID int64, role model.Role) (*model.RoleRequest, error)
	ListPending(ctx context.Context) ([]model.RoleRequest, error)
	// Decide resolves a pending request. Approval also flips the user's
	// role, in the same transaction as the request status write.
	Decide(ctx context.Context, id int64, approve bool) (*model.RoleRequest, error)
}
