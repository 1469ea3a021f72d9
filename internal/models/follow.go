package models

import "time"

// FollowStatus represents the lifecycle state of a follow relationship.
type FollowStatus string

const (
	FollowActive  FollowStatus = "ACTIVE"
	FollowStopped FollowStatus = "STOPPED"
)

// Follow is a configured relationship instructing the engine to mirror a
// source wallet's trades for a follower. At most one active follow exists
// per (follower, source) pair.
type Follow struct {
	ID        string
	Follower  Wallet
	Source    Wallet
	Config    FollowConfig
	Status    FollowStatus
	CreatedAt time.Time
	StoppedAt *time.Time
}

// IsActive reports whether the follow still accepts new trade events.
func (f *Follow) IsActive() bool {
	return f.Status == FollowActive
}

// FollowConfig is an immutable snapshot of copy settings. Updates replace
// the whole value atomically; a decision in flight always sees a single
// consistent config.
type FollowConfig struct {
	// MaxPositionSize caps the notional value of a single copied order.
	MaxPositionSize float64
	// CopyPercentage is the share of the source trade's size to copy, in (0, 100].
	CopyPercentage float64
	// MaxTotalExposure caps committed plus reserved notional across the follow.
	MaxTotalExposure float64
	// MinTradeConfidence skips source trades below this notional value.
	MinTradeConfidence float64
	// MarketAllowList, when non-empty, restricts copying to these markets.
	MarketAllowList []string
	// MarketDenyList always excludes these markets.
	MarketDenyList []string
	// AutoExit mirrors the source's closing trades against copied positions.
	AutoExit bool
	// MaxRiskScore skips trades from a source whose current risk score
	// exceeds this value. Zero disables the gate.
	MaxRiskScore float64
	// MinTier skips trades from a source classified below this tier.
	// Empty disables the gate.
	MinTier Tier
}

// AllowsMarket applies the allow/deny list filters to a market id. The deny
// list is checked first, so a market on both lists stays excluded.
func (c FollowConfig) AllowsMarket(marketID string) bool {
	for _, m := range c.MarketDenyList {
		if m == marketID {
			return false
		}
	}
	if len(c.MarketAllowList) > 0 {
		for _, m := range c.MarketAllowList {
			if m == marketID {
				return true
			}
		}
		return false
	}
	return true
}

// ExposureState is the per-follow exposure accounting snapshot.
// Invariant: Committed + Reserved never exceeds the follow's MaxTotalExposure.
type ExposureState struct {
	Reserved  float64
	Committed float64
}

// Total returns committed plus reserved notional.
func (e ExposureState) Total() float64 {
	return e.Committed + e.Reserved
}
