package usecase

import (
	"go.uber.org/fx"

	"github.com/mizanur-rahman/homemeal/internal/adapter/checkout"
	"github.com/mizanur-rahman/homemeal/internal/config"
	"github.com/mizanur-rahman/homemeal/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	NewMealUseCase,
	NewReviewUseCase,
	NewOrderUseCase,
	NewRoleRequestUseCase,
	newPaymentUseCase,
)

func newPaymentUseCase(orders repository.OrderRepository, payments repository.PaymentRepository, sessions checkout.Client, cfg *config.Config) *PaymentUseCase {
	return NewPaymentUseCase(orders, payments, sessions, cfg.Currency)
}
