package dto

import "time"

// ReviewRequest describes a new review payload.
type ReviewRequest struct {
	MealID int64  `json:"mealId"`
	Rating int    `json:"rating"`
	Body   string `json:"body"`
}

// ReviewPatchRequest carries optional review field updates.
type ReviewPatchRequest struct {
	Rating *int    `json:"rating"`
	Body   *string `json:"body"`
}

// ReviewResponse describes a stored review.
type ReviewResponse struct {
	ID        int64     `json:"id"`
	MealID    int64     `json:"mealId"`
	UserEmail string    `json:"userEmail"`
	Rating    int       `json:"rating"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}
