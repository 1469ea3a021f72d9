// Package engine contains the copy decision pipeline and the execution
// dispatcher: everything between "a source trade happened" and "an order
// was (or was not) placed".
package engine

import (
	"polymarket-copytrader/internal/exposure"
	"polymarket-copytrader/internal/models"
)

// Decision is the outcome of evaluating one source trade for one follow.
// When Accepted, a reservation for Intent.Value() is held in the ledger and
// must be committed or released by the dispatcher.
type Decision struct {
	Accepted   bool
	Intent     *models.CopyOrderIntent
	Reason     models.SkipReason
	WhaleTrade bool
}

// DecisionEngine evaluates new-trade events against a follow's configuration
// and exposure state. It is synchronous and never blocks; the only shared
// state it touches is the per-follow exposure account and mirror book.
type DecisionEngine struct {
	ledger         *exposure.Ledger
	mirrors        *MirrorBook
	whaleThreshold float64
}

// NewDecisionEngine creates a decision engine.
func NewDecisionEngine(ledger *exposure.Ledger, mirrors *MirrorBook, whaleThreshold float64) *DecisionEngine {
	return &DecisionEngine{
		ledger:         ledger,
		mirrors:        mirrors,
		whaleThreshold: whaleThreshold,
	}
}

// Evaluate runs the decision pipeline, short-circuiting on the first
// rejection. Checks are ordered cheapest first so rejections stay cheap:
// market filter, source risk gate, exit routing, confidence, sizing,
// exposure reservation.
func (e *DecisionEngine) Evaluate(follow *models.Follow, trade models.Trade, stats *models.TraderStatsSnapshot) Decision {
	whale := e.whaleThreshold > 0 && trade.Notional() >= e.whaleThreshold
	cfg := follow.Config

	if !cfg.AllowsMarket(trade.MarketID) {
		return skip(models.SkipMarketFiltered, whale)
	}

	// Optional scoring gate: a fresh snapshot of the source trader, when
	// supplied, can veto the copy outright.
	if stats != nil {
		if cfg.MaxRiskScore > 0 && stats.RiskScore > cfg.MaxRiskScore {
			return skip(models.SkipSourceRisk, whale)
		}
		if cfg.MinTier != "" && stats.Tier.Rank() < cfg.MinTier.Rank() {
			return skip(models.SkipSourceRisk, whale)
		}
	}

	// Sell trades are exit trades: they only ever unwind a mirrored
	// position, never open one.
	if trade.Side == models.TradeSideSell {
		return e.evaluateExit(follow, trade, whale)
	}

	if trade.Notional() < cfg.MinTradeConfidence {
		return skip(models.SkipBelowConfidence, whale)
	}

	copySize := trade.Size * (cfg.CopyPercentage / 100)
	copyValue := copySize * trade.Price

	// Clamp value to the per-position cap, scaling size proportionally so
	// the price is preserved.
	if cfg.MaxPositionSize > 0 && copyValue > cfg.MaxPositionSize {
		copyValue = cfg.MaxPositionSize
		copySize = copyValue / trade.Price
	}

	if !e.ledger.Reserve(follow.ID, copyValue) {
		return skip(models.SkipExposureExceeded, whale)
	}

	return Decision{
		Accepted:   true,
		WhaleTrade: whale,
		Intent: &models.CopyOrderIntent{
			FollowID:      follow.ID,
			SourceTradeID: trade.ID,
			MarketID:      trade.MarketID,
			Outcome:       trade.Outcome,
			Side:          models.TradeSideBuy,
			Size:          copySize,
			Price:         trade.Price,
		},
	}
}

// evaluateExit routes a source sell. With auto-exit enabled and a mirrored
// position on the books, the copy is sized to exactly close that position,
// bypassing the confidence and percentage sizing steps. No reservation is
// taken: closing frees exposure rather than consuming it.
func (e *DecisionEngine) evaluateExit(follow *models.Follow, trade models.Trade, whale bool) Decision {
	pos, ok := e.mirrors.Get(follow.ID, trade.MarketID, trade.Outcome)
	if !ok {
		return skip(models.SkipNoMirroredPosition, whale)
	}
	if !follow.Config.AutoExit {
		return skip(models.SkipAutoExitDisabled, whale)
	}

	return Decision{
		Accepted:   true,
		WhaleTrade: whale,
		Intent: &models.CopyOrderIntent{
			FollowID:       follow.ID,
			SourceTradeID:  trade.ID,
			MarketID:       trade.MarketID,
			Outcome:        trade.Outcome,
			Side:           models.TradeSideSell,
			Size:           pos.Size,
			Price:          trade.Price,
			ClosesPosition: true,
		},
	}
}

func skip(reason models.SkipReason, whale bool) Decision {
	return Decision{Reason: reason, WhaleTrade: whale}
}
