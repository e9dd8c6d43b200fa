package dto

import "time"

// OrderRequest describes a new order payload.
type OrderRequest struct {
	MealID   int64 `json:"mealId"`
	Quantity int   `json:"quantity"`
}

// OrderStatusRequest carries a fulfillment transition target.
type OrderStatusRequest struct {
	Status string `json:"status"`
}

// OrderResponse describes a stored order with both status axes.
type OrderResponse struct {
	ID            int64     `json:"id"`
	Reference     string    `json:"reference"`
	BuyerEmail    string    `json:"buyerEmail"`
	MealID        int64     `json:"mealId"`
	MealName      string    `json:"mealName"`
	Quantity      int       `json:"quantity"`
	UnitPrice     float64   `json:"unitPrice"`
	Status        string    `json:"orderStatus"`
	PaymentStatus string    `json:"paymentStatus"`
	CreatedAt     time.Time `json:"createdAt"`
}
