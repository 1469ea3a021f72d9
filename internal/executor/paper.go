package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "polymarket-copytrader/internal/errors"
)

// PaperExecutor simulates the order execution service with in-memory fills.
// Useful for dry runs and tests; no signing, no balance checks.
type PaperExecutor struct {
	mu           sync.Mutex
	orderCounter int
	orders       []PaperOrder

	// failNext, when positive, fails that many submissions before
	// resuming normal fills.
	failNext int
}

// PaperOrder is a filled simulated order.
type PaperOrder struct {
	OrderID  string
	MarketID string
	Outcome  string
	Side     string
	Size     float64
	Price    float64
	PlacedAt time.Time
}

// NewPaperExecutor creates a simulated executor.
func NewPaperExecutor() *PaperExecutor {
	return &PaperExecutor{}
}

// SubmitOrder simulates an immediate fill.
func (p *PaperExecutor) SubmitOrder(ctx context.Context, req OrderRequest) (*OrderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Size <= 0 {
		return nil, apperrors.NewExecutionError("", "", "non-positive order size", nil)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failNext > 0 {
		p.failNext--
		return &OrderResult{
			Success: false,
			Message: "simulated execution failure",
		}, nil
	}

	p.orderCounter++
	orderID := fmt.Sprintf("PAPER_%d_%d", time.Now().Unix(), p.orderCounter)

	p.orders = append(p.orders, PaperOrder{
		OrderID:  orderID,
		MarketID: req.MarketID,
		Outcome:  req.Outcome,
		Side:     string(req.Side),
		Size:     req.Size,
		Price:    req.Price,
		PlacedAt: time.Now(),
	})

	return &OrderResult{
		Success: true,
		OrderID: orderID,
	}, nil
}

// FailNext makes the next n submissions fail. Test hook.
func (p *PaperExecutor) FailNext(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failNext = n
}

// Orders returns a copy of the filled orders.
func (p *PaperExecutor) Orders() []PaperOrder {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PaperOrder, len(p.orders))
	copy(out, p.orders)
	return out
}
