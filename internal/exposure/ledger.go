// Package exposure tracks per-follow notional exposure and enforces the
// exposure cap through an atomic reserve/commit/release protocol.
package exposure

import (
	"sync"

	"polymarket-copytrader/internal/models"
)

// account holds one follow's exposure state behind its own lock so that
// follows never contend with each other.
type account struct {
	mu        sync.Mutex
	cap       float64
	reserved  float64
	committed float64
}

// Ledger tracks cumulative open notional exposure per follow relationship.
// The central safety invariant: for every follow, at every instant,
// committed + reserved <= cap.
type Ledger struct {
	mu       sync.RWMutex
	accounts map[string]*account
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		accounts: make(map[string]*account),
	}
}

// Register creates the exposure account for a follow with the given cap.
// Registering an existing follow updates its cap and keeps its balances.
func (l *Ledger) Register(followID string, maxExposure float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if acct, ok := l.accounts[followID]; ok {
		acct.mu.Lock()
		acct.cap = maxExposure
		acct.mu.Unlock()
		return
	}
	l.accounts[followID] = &account{cap: maxExposure}
}

// Remove drops a follow's account. Any outstanding reservation is released
// with it.
func (l *Ledger) Remove(followID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.accounts, followID)
}

// Reserve attempts to reserve amount against the follow's cap. It reserves
// nothing and returns false when committed + reserved + amount would exceed
// the cap, or when the follow is unknown.
func (l *Ledger) Reserve(followID string, amount float64) bool {
	acct := l.account(followID)
	if acct == nil || amount < 0 {
		return false
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()

	if acct.committed+acct.reserved+amount > acct.cap {
		return false
	}
	acct.reserved += amount
	return true
}

// Commit converts a reservation into committed exposure after a successful
// order execution.
func (l *Ledger) Commit(followID string, amount float64) {
	acct := l.account(followID)
	if acct == nil {
		return
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()

	acct.reserved -= amount
	if acct.reserved < 0 {
		acct.reserved = 0
	}
	acct.committed += amount
}

// Release returns a reservation to available exposure after an execution
// failure or explicit cancellation.
func (l *Ledger) Release(followID string, amount float64) {
	acct := l.account(followID)
	if acct == nil {
		return
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()

	acct.reserved -= amount
	if acct.reserved < 0 {
		acct.reserved = 0
	}
}

// ReleaseCommitted frees committed exposure when a mirrored position is
// closed.
func (l *Ledger) ReleaseCommitted(followID string, amount float64) {
	acct := l.account(followID)
	if acct == nil {
		return
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()

	acct.committed -= amount
	if acct.committed < 0 {
		acct.committed = 0
	}
}

// State returns the follow's exposure snapshot.
func (l *Ledger) State(followID string) (models.ExposureState, bool) {
	acct := l.account(followID)
	if acct == nil {
		return models.ExposureState{}, false
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()

	return models.ExposureState{
		Reserved:  acct.reserved,
		Committed: acct.committed,
	}, true
}

// Available returns the headroom left under the follow's cap.
func (l *Ledger) Available(followID string) float64 {
	acct := l.account(followID)
	if acct == nil {
		return 0
	}

	acct.mu.Lock()
	defer acct.mu.Unlock()

	avail := acct.cap - acct.committed - acct.reserved
	if avail < 0 {
		return 0
	}
	return avail
}

func (l *Ledger) account(followID string) *account {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.accounts[followID]
}
