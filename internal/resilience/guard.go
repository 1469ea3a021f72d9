package resilience

import (
	"context"
	"time"

	"polymarket-copytrader/internal/executor"
	"polymarket-copytrader/internal/feed"
	"polymarket-copytrader/internal/models"
)

// GuardedSource wraps a trade source with a circuit breaker. When the
// upstream data service fails repeatedly the breaker opens and polls fail
// fast until the timeout elapses.
type GuardedSource struct {
	source  feed.TradeSource
	breaker *CircuitBreaker
}

// NewGuardedSource wraps source with the given breaker.
func NewGuardedSource(source feed.TradeSource, breaker *CircuitBreaker) *GuardedSource {
	return &GuardedSource{source: source, breaker: breaker}
}

// GetTrades fetches trades through the circuit breaker.
func (g *GuardedSource) GetTrades(ctx context.Context, wallet models.Wallet, since time.Time) ([]models.Trade, error) {
	var trades []models.Trade
	err := g.breaker.Execute(ctx, func() error {
		var err error
		trades, err = g.source.GetTrades(ctx, wallet, since)
		return err
	})
	if err != nil {
		return nil, err
	}
	return trades, nil
}

// GetPositions fetches positions through the circuit breaker.
func (g *GuardedSource) GetPositions(ctx context.Context, wallet models.Wallet) ([]models.Position, error) {
	var positions []models.Position
	err := g.breaker.Execute(ctx, func() error {
		var err error
		positions, err = g.source.GetPositions(ctx, wallet)
		return err
	})
	if err != nil {
		return nil, err
	}
	return positions, nil
}

// GuardedExecutor wraps an order executor with a circuit breaker. Rejected
// submissions surface as errors, not silent drops, so each copy attempt is
// recorded as failed exactly like any other execution error.
type GuardedExecutor struct {
	executor executor.OrderExecutor
	breaker  *CircuitBreaker
}

// NewGuardedExecutor wraps exec with the given breaker.
func NewGuardedExecutor(exec executor.OrderExecutor, breaker *CircuitBreaker) *GuardedExecutor {
	return &GuardedExecutor{executor: exec, breaker: breaker}
}

// SubmitOrder submits an order through the circuit breaker.
func (g *GuardedExecutor) SubmitOrder(ctx context.Context, req executor.OrderRequest) (*executor.OrderResult, error) {
	var result *executor.OrderResult
	err := g.breaker.Execute(ctx, func() error {
		var err error
		result, err = g.executor.SubmitOrder(ctx, req)
		if err != nil {
			return err
		}
		if !result.Success {
			return executor.ErrOrderRejected
		}
		return nil
	})
	if err != nil && result != nil && !result.Success {
		// Rejection already carried by the result, let the dispatcher
		// interpret it.
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
