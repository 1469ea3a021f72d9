// Package tracker accumulates per-follow performance statistics derived
// purely from CopyRecords. It never originates decisions.
package tracker

import (
	"sync"
	"time"

	"polymarket-copytrader/internal/models"
)

// followStats holds the running counters for one follow.
type followStats struct {
	startedAt    time.Time
	copiedTrades int
	volumeCopied float64
	failures     int
	skips        map[models.SkipReason]int
	realizedPnL  float64
}

// PerformanceSnapshot is the read-only view handed to status consumers.
type PerformanceSnapshot struct {
	FollowID          string
	FollowingSince    time.Time
	DurationDays      float64
	CopiedTrades      int
	VolumeCopied      float64
	AvgVolumePerTrade float64
	TradesPerDay      float64
	Failures          int
	Skips             map[models.SkipReason]int
	RealizedPnL       float64
}

// Tracker maintains lifetime counters per follow relationship.
type Tracker struct {
	mu      sync.RWMutex
	follows map[string]*followStats
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		follows: make(map[string]*followStats),
	}
}

// Track starts accounting for a follow.
func (t *Tracker) Track(followID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.follows[followID]; ok {
		return
	}
	t.follows[followID] = &followStats{
		startedAt: time.Now(),
		skips:     make(map[models.SkipReason]int),
	}
}

// Forget drops a follow's counters.
func (t *Tracker) Forget(followID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.follows, followID)
}

// Observe folds one CopyRecord into the follow's counters.
func (t *Tracker) Observe(record *models.CopyRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats, ok := t.follows[record.FollowID]
	if !ok {
		stats = &followStats{
			startedAt: time.Now(),
			skips:     make(map[models.SkipReason]int),
		}
		t.follows[record.FollowID] = stats
	}

	switch record.Decision {
	case models.DecisionCopied:
		stats.copiedTrades++
		stats.volumeCopied += record.CopiedValue
		stats.realizedPnL += record.RealizedPnL
	case models.DecisionFailed:
		stats.failures++
	case models.DecisionSkipped:
		stats.skips[models.SkipReason(record.Reason)]++
	}
}

// Snapshot returns the follow's performance view, or false when unknown.
func (t *Tracker) Snapshot(followID string) (PerformanceSnapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	stats, ok := t.follows[followID]
	if !ok {
		return PerformanceSnapshot{}, false
	}

	snap := PerformanceSnapshot{
		FollowID:       followID,
		FollowingSince: stats.startedAt,
		CopiedTrades:   stats.copiedTrades,
		VolumeCopied:   stats.volumeCopied,
		Failures:       stats.failures,
		RealizedPnL:    stats.realizedPnL,
		Skips:          make(map[models.SkipReason]int, len(stats.skips)),
	}
	for reason, n := range stats.skips {
		snap.Skips[reason] = n
	}

	snap.DurationDays = time.Since(stats.startedAt).Hours() / 24
	if stats.copiedTrades > 0 {
		snap.AvgVolumePerTrade = stats.volumeCopied / float64(stats.copiedTrades)
	}
	if snap.DurationDays > 0 {
		snap.TradesPerDay = float64(stats.copiedTrades) / snap.DurationDays
	}
	return snap, true
}
