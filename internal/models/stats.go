package models

// Tier is a discrete performance classification derived from volume,
// win rate, and ROI.
type Tier string

const (
	TierWhale        Tier = "Whale"
	TierExpert       Tier = "Expert"
	TierAdvanced     Tier = "Advanced"
	TierIntermediate Tier = "Intermediate"
	TierBeginner     Tier = "Beginner"
)

// Rank returns the ordinal position of the tier, higher = better.
func (t Tier) Rank() int {
	switch t {
	case TierWhale:
		return 4
	case TierExpert:
		return 3
	case TierAdvanced:
		return 2
	case TierIntermediate:
		return 1
	default:
		return 0
	}
}

// TraderStatsSnapshot is the scoring engine's derived view of a wallet's
// performance over a lookback window. It is recomputed on demand and is
// never authoritative state.
type TraderStatsSnapshot struct {
	Wallet        Wallet
	PeriodDays    int
	TotalTrades   int
	TotalVolume   float64
	AvgTradeSize  float64
	WinCount      int
	LossCount     int
	WinRate       float64
	TotalPnL      float64
	ROIPercentage float64
	RiskScore     float64
	Tier          Tier

	// Extended fields computed alongside the core snapshot.
	OpenPositions    int
	ClosedPositions  int
	BestPositionPnL  float64
	WorstPositionPnL float64
	PnLVolatility    float64
	UniqueMarkets    int
	TradesPerDay     float64
}

// MarketPerformance is a trader's aggregate performance within one market.
type MarketPerformance struct {
	MarketID  string
	Positions int
	Wins      int
	Losses    int
	WinRate   float64
	TotalPnL  float64
	Volume    float64
}
