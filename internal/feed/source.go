// Package feed polls the trade history source and turns it into an ordered
// stream of new-trade events, one independent poller per active follow.
package feed

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"polymarket-copytrader/internal/models"
)

// TradeSource is the read-only boundary to the external trade history
// provider. Implementations are assumed eventually consistent and may
// duplicate recent entries across calls.
type TradeSource interface {
	GetTrades(ctx context.Context, wallet models.Wallet, since time.Time) ([]models.Trade, error)
	GetPositions(ctx context.Context, wallet models.Wallet) ([]models.Position, error)
}

// RateLimitedSource wraps a TradeSource with a token-bucket limiter so that
// concurrent pollers collectively respect the provider's rate limits.
type RateLimitedSource struct {
	source  TradeSource
	limiter *rate.Limiter
}

// NewRateLimitedSource creates a rate-limited wrapper allowing rps requests
// per second with the given burst.
func NewRateLimitedSource(source TradeSource, rps float64, burst int) *RateLimitedSource {
	return &RateLimitedSource{
		source:  source,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// GetTrades waits for a rate token, then delegates.
func (s *RateLimitedSource) GetTrades(ctx context.Context, wallet models.Wallet, since time.Time) ([]models.Trade, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.source.GetTrades(ctx, wallet, since)
}

// GetPositions waits for a rate token, then delegates.
func (s *RateLimitedSource) GetPositions(ctx context.Context, wallet models.Wallet) ([]models.Position, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.source.GetPositions(ctx, wallet)
}
