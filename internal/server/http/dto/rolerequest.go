package dto

import "time"

// RoleRequestRequest asks for a promotion to the given role.
type RoleRequestRequest struct {
	Role string `json:"role"`
}

// RoleRequestDecision resolves a pending promotion request.
type RoleRequestDecision struct {
	Approve bool `json:"approve"`
}

// RoleRequestResponse describes a promotion request.
type RoleRequestResponse struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"userId"`
	RequestedRole string     `json:"requestedRole"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	DecidedAt     *time.Time `json:"decidedAt,omitempty"`
}
