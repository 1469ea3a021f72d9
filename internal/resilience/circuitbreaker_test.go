package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testBreaker(timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 2,
		Timeout:          timeout,
	})
}

var errUpstream = errors.New("upstream failure")

func fail() error    { return errUpstream }
func succeed() error { return nil }

func TestBreakerOpensAfterThreshold(t *testing.T) {
	cb := testBreaker(time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := cb.Execute(ctx, fail); !errors.Is(err, errUpstream) {
			t.Fatalf("attempt %d: err = %v, want upstream error", i, err)
		}
	}
	if cb.State() != CircuitOpen {
		t.Fatalf("state = %s, want OPEN", cb.State())
	}

	if err := cb.Execute(ctx, succeed); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen while open", err)
	}
}

func TestBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := testBreaker(10 * time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cb.Execute(ctx, fail)
	}
	time.Sleep(15 * time.Millisecond)

	// First request after the timeout probes in half-open state.
	if err := cb.Execute(ctx, succeed); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if cb.State() != CircuitHalfOpen {
		t.Fatalf("state = %s, want HALF_OPEN after one success", cb.State())
	}
	if err := cb.Execute(ctx, succeed); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if cb.State() != CircuitClosed {
		t.Errorf("state = %s, want CLOSED after success threshold", cb.State())
	}
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	cb := testBreaker(10 * time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cb.Execute(ctx, fail)
	}
	time.Sleep(15 * time.Millisecond)

	cb.Execute(ctx, fail)
	if cb.State() != CircuitOpen {
		t.Errorf("state = %s, want OPEN after half-open failure", cb.State())
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	cb := testBreaker(time.Minute)
	ctx := context.Background()

	cb.Execute(ctx, fail)
	cb.Execute(ctx, fail)
	cb.Execute(ctx, succeed)
	cb.Execute(ctx, fail)
	cb.Execute(ctx, fail)

	if cb.State() != CircuitClosed {
		t.Errorf("state = %s, want CLOSED with interleaved successes", cb.State())
	}
}

func TestBreakerStats(t *testing.T) {
	cb := testBreaker(time.Minute)
	ctx := context.Background()

	cb.Execute(ctx, succeed)
	cb.Execute(ctx, fail)

	stats := cb.Stats()
	if stats.Requests != 2 || stats.Successes != 1 || stats.Failures != 1 {
		t.Errorf("stats = %+v, want 2 requests, 1/1 split", stats)
	}
}
