package dto

import "time"

// CheckoutSessionRequest asks for a hosted checkout session.
type CheckoutSessionRequest struct {
	OrderID int64 `json:"orderId"`
}

// CheckoutSessionResponse returns the provider redirect URL.
type CheckoutSessionResponse struct {
	URL string `json:"url"`
}

// SettlementResponse reports a settlement confirmation outcome.
type SettlementResponse struct {
	Status        string `json:"status"`
	TransactionID string `json:"transactionId,omitempty"`
	Replayed      bool   `json:"replayed,omitempty"`
}

// PaymentResponse describes a settled payment record.
type PaymentResponse struct {
	TransactionID string    `json:"transactionId"`
	OrderID       int64     `json:"orderId"`
	MealName      string    `json:"mealName"`
	AmountMinor   int64     `json:"amountMinor"`
	PaidAt        time.Time `json:"paidAt"`
}
