package models

import "time"

// CopyDecision is the outcome class of a copy evaluation.
type CopyDecision string

const (
	DecisionCopied  CopyDecision = "COPIED"
	DecisionSkipped CopyDecision = "SKIPPED"
	DecisionFailed  CopyDecision = "FAILED"
)

// SkipReason identifies why a trade was not copied.
type SkipReason string

const (
	SkipMarketFiltered     SkipReason = "market_filtered"
	SkipBelowConfidence    SkipReason = "below_confidence"
	SkipExposureExceeded   SkipReason = "exposure_exceeded"
	SkipNoMirroredPosition SkipReason = "no_mirrored_position"
	SkipAutoExitDisabled   SkipReason = "auto_exit_disabled"
	SkipSourceRisk         SkipReason = "source_risk"
)

// CopyRecord is the append-only outcome of a decision. Exactly one record
// exists per (FollowID, SourceTradeID) pair; the pair is the idempotency key.
type CopyRecord struct {
	FollowID      string
	SourceTradeID string
	Decision      CopyDecision
	Reason        string
	CopiedSize    float64
	CopiedValue   float64
	OrderID       string
	WhaleTrade    bool
	// RealizedPnL is set on auto-exit copies: proceeds minus the mirrored
	// position's entry cost.
	RealizedPnL float64
	Timestamp   time.Time
}

// CopyOrderIntent is an accepted decision ready for submission to the
// order execution service.
type CopyOrderIntent struct {
	FollowID      string
	SourceTradeID string
	MarketID      string
	Outcome       string
	Side          TradeSide
	Size          float64
	Price         float64
	// ClosesPosition marks an auto-exit intent that fully unwinds the
	// follower's mirrored position.
	ClosesPosition bool
}

// Value returns the notional value of the intent.
func (i CopyOrderIntent) Value() float64 {
	return i.Size * i.Price
}
