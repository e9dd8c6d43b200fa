package model

import "time"

// RoleRequestStatus describes the approval state of a promotion request.
type RoleRequestStatus string

const (
	RoleRequestPending  RoleRequestStatus = "pending"
	RoleRequestApproved RoleRequestStatus = "approved"
	RoleRequestRejected RoleRequestStatus = "rejected"
)

// RoleRequest is a user's request to be promoted to chef or admin.
type RoleRequest struct {
	ID            int64
	UserID        int64
	RequestedRole Role
	Status        RoleRequestStatus
	CreatedAt     time.Time
	DecidedAt     *time.Time
}
