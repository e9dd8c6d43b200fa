package usecase

import (
	"context"

	"github.com/mizanur-rahman/homemeal/internal/adapter/checkout"
	domainErrors "github.com/mizanur-rahman/homemeal/internal/domain/errors"
	"github.com/mizanur-rahman/homemeal/internal/domain/model"
	"github.com/mizanur-rahman/homemeal/internal/domain/repository"
)

// SettlementResult reports the outcome of a settlement confirmation.
type SettlementResult struct {
	Record   *model.PaymentRecord
	Replayed bool
}

// PaymentUseCase is the settlement engine: it creates checkout
// sessions with the external provider and idempotently records
// confirmed payments.
type PaymentUseCase struct {
	orders   repository.OrderRepository
	payments repository.PaymentRepository
	sessions checkout.Client
	currency string
}

// NewPaymentUseCase constructs PaymentUseCase.
func NewPaymentUseCase(orders repository.OrderRepository, payments repository.PaymentRepository, sessions checkout.Client, currency string) *PaymentUseCase {
	return &PaymentUseCase{orders: orders, payments: payments, sessions: sessions, currency: currency}
}

// CreateSession requests a hosted checkout session for the order and
// returns the provider redirect URL. No durable payment state is
// written here; the session id is remembered on the order so the
// confirmation callback and the reconciler can find it.
func (u *PaymentUseCase) CreateSession(ctx context.Context, buyerID, orderID int64) (string, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.BuyerID != buyerID {
		return "", domainErrors.ErrForbidden
	}
	if order.PaymentStatus == model.PaymentStatusPaid {
		return "", domainErrors.ErrOrderAlreadyPaid
	}

	amount := order.AmountMinorUnits()
	if amount <= 0 {
		return "", domainErrors.ErrInvalidAmount
	}

	session, err := u.sessions.CreateSession(ctx, checkout.SessionRequest{
		AmountMinor:    amount,
		Currency:       u.currency,
		ProductName:    order.MealName,
		CustomerEmail:  order.BuyerEmail,
		OrderReference: order.Reference,
	})
	if err != nil {
		return "", err
	}

	if err := u.orders.SetCheckoutSession(ctx, order.ID, session.ID); err != nil {
		return "", err
	}
	return session.URL, nil
}

// ConfirmSettlement resolves a checkout session with the provider and,
// if paid, durably records the payment and marks the order paid. The
// callback that drives it is delivered at least once; replays with the
// same transaction id succeed without new side effects. A provider
// failure surfaces as-is and the call is safe to retry.
func (u *PaymentUseCase) ConfirmSettlement(ctx context.Context, sessionID string) (*SettlementResult, error) {
	if sessionID == "" {
		return nil, domainErrors.ErrNotFound
	}

	session, err := u.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.CheckoutSessionPaid {
		return nil, domainErrors.ErrPaymentPending
	}

	rec, created, err := u.payments.Settle(ctx, sessionID, session.TransactionID, session.AmountMinor)
	if err != nil {
		return nil, err
	}
	return &SettlementResult{Record: rec, Replayed: !created}, nil
}

// History returns the caller's settled payments, newest first.
func (u *PaymentUseCase) History(ctx context.Context, buyerEmail string) ([]model.PaymentRecord, error) {
	return u.payments.ListByBuyer(ctx, buyerEmail)
}
