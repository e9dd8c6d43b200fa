package model

import "time"

// PaymentRecord is the durable proof of a settled payment. The
// provider transaction id is unique; the record is immutable once
// written and its existence is what makes settlement replays no-ops.
type PaymentRecord struct {
	ID            int64
	TransactionID string
	OrderID       int64
	BuyerEmail    string
	MealName      string
	AmountMinor   int64
	PaidAt        time.Time
}
