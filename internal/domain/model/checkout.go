package model

// CheckoutSessionStatus mirrors the payment state reported by the
// external checkout provider.
type CheckoutSessionStatus string

const (
	CheckoutSessionUnpaid CheckoutSessionStatus = "unpaid"
	CheckoutSessionPaid   CheckoutSessionStatus = "paid"
)

// CheckoutSession describes a hosted checkout session at the provider.
type CheckoutSession struct {
	ID            string
	URL           string
	Status        CheckoutSessionStatus
	TransactionID string
	AmountMinor   int64
}
