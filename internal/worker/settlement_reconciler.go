package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mizanur-rahman/homemeal/internal/adapter/checkout"
	domainErrors "github.com/mizanur-rahman/homemeal/internal/domain/errors"
	"github.com/mizanur-rahman/homemeal/internal/domain/model"
	"github.com/mizanur-rahman/homemeal/internal/usecase"
)

// MarketFacade exposes the subset of application functionality required by the worker.
type MarketFacade interface {
	OrdersForSettlement(ctx context.Context, limit int) ([]model.Order, error)
	ConfirmSettlement(ctx context.Context, sessionID string) (*usecase.SettlementResult, error)
}

// SettlementReconciler periodically re-confirms unpaid orders that
// already have a checkout session, covering confirmation callbacks the
// client never delivered. Confirmation is idempotent, so re-running it
// here can never double-settle.
type SettlementReconciler struct {
	facade       MarketFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewSettlementReconciler constructs the reconciler worker pool.
func NewSettlementReconciler(facade MarketFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *SettlementReconciler {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &SettlementReconciler{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize*workers),
	}
}

// Start launches background processing.
func (p *SettlementReconciler) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *SettlementReconciler) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *SettlementReconciler) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *SettlementReconciler) fetchAndDispatch(ctx context.Context) {
	orders, err := p.facade.OrdersForSettlement(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("fetch orders for settlement failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- order:
		}
	}
}

func (p *SettlementReconciler) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handleOrder(ctx, order)
		}
	}
}

func (p *SettlementReconciler) handleOrder(ctx context.Context, order model.Order) {
	result, err := p.facade.ConfirmSettlement(ctx, order.CheckoutSessionID)
	if err != nil {
		var rateLimited checkout.TooManyRequestsError
		switch {
		case errors.As(err, &rateLimited):
			p.logger.Warn("checkout rate limited", slog.Duration("retry_after", rateLimited.RetryAfter))
			time.Sleep(rateLimited.RetryAfter)
		case errors.Is(err, domainErrors.ErrPaymentPending):
			// Buyer hasn't completed checkout; next poll will retry.
		case errors.Is(err, checkout.ErrSessionNotFound):
			p.logger.Warn("checkout session vanished", slog.String("order", order.Reference))
		default:
			p.logger.Error("settlement confirmation failed",
				slog.String("order", order.Reference), slog.String("error", err.Error()))
		}
		return
	}

	p.logger.Info("order settled",
		slog.String("order", order.Reference),
		slog.String("transaction", result.Record.TransactionID),
		slog.Bool("replayed", result.Replayed),
	)
}
