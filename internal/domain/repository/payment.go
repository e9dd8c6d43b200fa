package repository

import (
	"context"

	"github.com/mizanur-rahman/homemeal/internal/domain/model"
)

// PaymentRepository describes persistence operations for settled payments.
type PaymentRepository interface {
	// Settle durably records a confirmed payment for the order that owns
	// the checkout session and marks that order paid, all in one
	// transaction. The transaction id uniqueness constraint is the
	// idempotency guard: a replay returns the existing record with
	// created=false and changes nothing.
	Settle(ctx context.Context, sessionID, transactionID string, amountMinor int64) (rec *model.PaymentRecord, created bool, err error)
	ListByBuyer(ctx context.Context, buyerEmail string) ([]model.PaymentRecord, error)
}
