package model

import "time"

// Rating bounds accepted for a single review.
const (
	MinRating = 1
	MaxRating = 5
)

// Meal is a dish listed by a chef. ReviewCount, ReviewSum and Rating
// are denormalized aggregates maintained by the review storage layer;
// Rating is always derived from the other two, never set on its own.
type Meal struct {
	ID          int64
	ChefID      int64
	Name        string
	Description string
	Price       float64
	ImageURL    string
	ReviewCount int64
	ReviewSum   float64
	Rating      float64
	CreatedAt   time.Time
}
