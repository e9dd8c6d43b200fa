package model

import "time"

// Review is an authored rating of a meal.
type Review struct {
	ID        int64
	MealID    int64
	UserID    int64
	UserEmail string
	Rating    int
	Body      string
	CreatedAt time.Time
}
