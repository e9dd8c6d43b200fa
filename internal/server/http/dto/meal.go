package dto

import "time"

// MealRequest describes a new meal listing payload.
type MealRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
}

// MealPatchRequest carries optional meal field updates.
type MealPatchRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	ImageURL    *string  `json:"imageUrl"`
}

// MealResponse describes a meal listing with its rating aggregate.
type MealResponse struct {
	ID          int64     `json:"id"`
	ChefID      int64     `json:"chefId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"imageUrl"`
	ReviewCount int64     `json:"reviewCount"`
	Rating      float64   `json:"rating"`
	CreatedAt   time.Time `json:"createdAt"`
}
