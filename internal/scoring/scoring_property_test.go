package scoring

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"polymarket-copytrader/internal/models"
)

// Win rate derived from any position set stays within [0, 100].
func TestProperty_WinRateBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("win rate within [0, 100]", prop.ForAll(
		func(pnls []float64) bool {
			trades := []models.Trade{{
				ID:        "t",
				MarketID:  "m",
				Size:      10,
				Price:     0.5,
				Timestamp: time.Now(),
			}}
			positions := make([]models.Position, len(pnls))
			for i, pnl := range pnls {
				positions[i] = models.Position{CashPnL: pnl, InitialValue: 100}
			}

			snap, err := Compute("0xtrader", 30, trades, positions)
			if err != nil {
				return false
			}
			return snap.WinRate >= 0 && snap.WinRate <= 100
		},
		gen.SliceOf(gen.Float64Range(-1000, 1000)),
	))

	properties.TestingRun(t)
}

// Risk score is monotone in volatility and bounded by [0, 100].
func TestProperty_RiskScoreMonotoneInVolatility(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("more volatility never lowers risk", prop.ForAll(
		func(vol1, vol2, winRate, roi float64) bool {
			lo, hi := vol1, vol2
			if lo > hi {
				lo, hi = hi, lo
			}
			return RiskScore(hi, winRate, roi) >= RiskScore(lo, winRate, roi)
		},
		gen.Float64Range(0, 100000),
		gen.Float64Range(0, 100000),
		gen.Float64Range(0, 100),
		gen.Float64Range(-500, 500),
	))

	properties.Property("risk score within [0, 100]", prop.ForAll(
		func(vol, winRate, roi float64) bool {
			score := RiskScore(vol, winRate, roi)
			return score >= 0 && score <= 100
		},
		gen.Float64Range(0, 1e9),
		gen.Float64Range(0, 100),
		gen.Float64Range(-1e6, 1e6),
	))

	properties.TestingRun(t)
}

// Growing volume alone never demotes a trader's tier.
func TestProperty_TierMonotoneInVolume(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("higher volume never lowers tier", prop.ForAll(
		func(vol1, vol2, winRate, roi float64) bool {
			lo, hi := vol1, vol2
			if lo > hi {
				lo, hi = hi, lo
			}
			lower := ClassifyTier(lo, winRate, roi)
			higher := ClassifyTier(hi, winRate, roi)
			return higher.Rank() >= lower.Rank()
		},
		gen.Float64Range(0, 5_000_000),
		gen.Float64Range(0, 5_000_000),
		gen.Float64Range(0, 100),
		gen.Float64Range(-100, 100),
	))

	properties.TestingRun(t)
}
