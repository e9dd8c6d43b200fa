package test

import (
	"context"

	"github.com/mizanur-rahman/homemeal/internal/adapter/checkout"
	"github.com/mizanur-rahman/homemeal/internal/domain/model"
)

// CheckoutClientStub simulates the checkout provider for tests.
type CheckoutClientStub struct {
	CreateFn func(context.Context, checkout.SessionRequest) (*model.CheckoutSession, error)
	GetFn    func(context.Context, string) (*model.CheckoutSession, error)
	Session  *model.CheckoutSession
	Err      error

	Created []checkout.SessionRequest
}

// CreateSession returns configured session or default hosted session.
func (s *CheckoutClientStub) CreateSession(ctx context.Context, req checkout.SessionRequest) (*model.CheckoutSession, error) {
	s.Created = append(s.Created, req)
	if s.CreateFn != nil {
		return s.CreateFn(ctx, req)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Session != nil {
		return s.Session, nil
	}
	return &model.CheckoutSession{
		ID:          "cs_test",
		URL:         "https://checkout.example.com/s/cs_test",
		Status:      model.CheckoutSessionUnpaid,
		AmountMinor: req.AmountMinor,
	}, nil
}

// GetSession returns configured session state.
func (s *CheckoutClientStub) GetSession(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, sessionID)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Session != nil {
		return s.Session, nil
	}
	return nil, checkout.ErrSessionNotFound
}

var _ checkout.Client = (*CheckoutClientStub)(nil)
