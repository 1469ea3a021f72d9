// Package executor defines the boundary to the order execution service and
// provides a simulated implementation for paper trading and tests.
package executor

import (
	"context"
	"errors"

	"polymarket-copytrader/internal/models"
)

// ErrOrderRejected indicates the execution service accepted the request but
// declined to fill the order.
var ErrOrderRejected = errors.New("order rejected by execution service")

// OrderRequest is a single order submission. Signing and balance checks
// happen entirely on the execution service's side of this boundary.
type OrderRequest struct {
	MarketID string
	Outcome  string
	Side     models.TradeSide
	Size     float64
	Price    float64
}

// OrderResult is the execution service's response to a submission.
type OrderResult struct {
	Success bool
	OrderID string
	Message string
}

// OrderExecutor submits orders to the execution service. Submissions are
// treated as exactly-once-attempted: a failed submission is never retried
// by the caller.
type OrderExecutor interface {
	SubmitOrder(ctx context.Context, req OrderRequest) (*OrderResult, error)
}
