// Package scoring computes trader performance statistics, risk scores, and
// tier classifications from trade and position history.
package scoring

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	apperrors "polymarket-copytrader/internal/errors"
	"polymarket-copytrader/internal/models"
)

// HistorySource supplies the historical data the engine scores. It is the
// read-only boundary to the external trade history provider.
type HistorySource interface {
	GetTrades(ctx context.Context, wallet models.Wallet, since time.Time) ([]models.Trade, error)
	GetPositions(ctx context.Context, wallet models.Wallet) ([]models.Position, error)
}

// Risk score blend weights. Volatility is scaled against a fixed reference
// band so that increasing P&L volatility never decreases the score.
const (
	riskWeightVolatility = 0.4
	riskWeightWinRate    = 0.4
	riskWeightROI        = 0.2
	volatilityScale      = 100.0
)

// Engine computes TraderStatsSnapshots on demand. It holds no mutable state
// beyond its data source; every snapshot is a pure function of history.
type Engine struct {
	source HistorySource
	logger zerolog.Logger
}

// NewEngine creates a new scoring engine.
func NewEngine(source HistorySource, logger zerolog.Logger) *Engine {
	return &Engine{
		source: source,
		logger: logger,
	}
}

// TraderStats fetches a wallet's history over the lookback window and scores
// it. A wallet with zero trades in the window yields an all-zero snapshot
// with the Beginner tier; the underlying InsufficientDataError is logged,
// never returned.
func (e *Engine) TraderStats(ctx context.Context, wallet models.Wallet, days int) (*models.TraderStatsSnapshot, error) {
	since := time.Now().AddDate(0, 0, -days)

	trades, err := e.source.GetTrades(ctx, wallet, since)
	if err != nil {
		return nil, apperrors.Wrap(err, "fetching trades for scoring")
	}

	positions, err := e.source.GetPositions(ctx, wallet)
	if err != nil {
		return nil, apperrors.Wrap(err, "fetching positions for scoring")
	}

	snapshot, err := Compute(wallet, days, trades, positions)
	if err != nil {
		e.logger.Debug().
			Str("wallet", string(wallet)).
			Int("days", days).
			Msg("No trade history in window, returning empty snapshot")
		return emptySnapshot(wallet, days), nil
	}

	return snapshot, nil
}

// Compare scores several wallets over the same window.
func (e *Engine) Compare(ctx context.Context, wallets []models.Wallet, days int) ([]*models.TraderStatsSnapshot, error) {
	snapshots := make([]*models.TraderStatsSnapshot, 0, len(wallets))
	for _, w := range wallets {
		snap, err := e.TraderStats(ctx, w, days)
		if err != nil {
			return nil, apperrors.Wrapf(err, "scoring %s", w)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

// MarketPerformance breaks a wallet's position history down per market,
// sorted by total P&L descending.
func (e *Engine) MarketPerformance(ctx context.Context, wallet models.Wallet, limit int) ([]models.MarketPerformance, error) {
	positions, err := e.source.GetPositions(ctx, wallet)
	if err != nil {
		return nil, apperrors.Wrap(err, "fetching positions for market breakdown")
	}

	byMarket := make(map[string]*models.MarketPerformance)
	for _, pos := range positions {
		perf, ok := byMarket[pos.MarketID]
		if !ok {
			perf = &models.MarketPerformance{MarketID: pos.MarketID}
			byMarket[pos.MarketID] = perf
		}
		perf.Positions++
		perf.TotalPnL += pos.CashPnL
		perf.Volume += pos.InitialValue
		if pos.CashPnL > 0 {
			perf.Wins++
		} else if pos.CashPnL < 0 {
			perf.Losses++
		}
	}

	results := make([]models.MarketPerformance, 0, len(byMarket))
	for _, perf := range byMarket {
		if decided := perf.Wins + perf.Losses; decided > 0 {
			perf.WinRate = float64(perf.Wins) / float64(decided) * 100
		}
		results = append(results, *perf)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].TotalPnL > results[j].TotalPnL
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Compute scores a wallet from already-fetched history. It is a pure
// function: same inputs, same snapshot. Returns InsufficientDataError when
// the trade set is empty.
func Compute(wallet models.Wallet, days int, trades []models.Trade, positions []models.Position) (*models.TraderStatsSnapshot, error) {
	if len(trades) == 0 {
		return nil, apperrors.NewInsufficientDataError(string(wallet), days)
	}

	snap := &models.TraderStatsSnapshot{
		Wallet:      wallet,
		PeriodDays:  days,
		TotalTrades: len(trades),
	}

	markets := make(map[string]struct{})
	var firstTrade, lastTrade time.Time
	for i, t := range trades {
		snap.TotalVolume += t.Notional()
		markets[t.MarketID] = struct{}{}
		if i == 0 || t.Timestamp.Before(firstTrade) {
			firstTrade = t.Timestamp
		}
		if t.Timestamp.After(lastTrade) {
			lastTrade = t.Timestamp
		}
	}
	snap.AvgTradeSize = snap.TotalVolume / float64(snap.TotalTrades)
	snap.UniqueMarkets = len(markets)

	if activeDays := lastTrade.Sub(firstTrade).Hours() / 24; activeDays > 0 {
		snap.TradesPerDay = float64(snap.TotalTrades) / activeDays
	}

	// Win/loss is counted over positions, not trades. Flat positions count
	// toward neither side.
	var totalInvested float64
	var pnls []float64
	for _, pos := range positions {
		snap.TotalPnL += pos.CashPnL
		totalInvested += pos.InitialValue
		pnls = append(pnls, pos.CashPnL)

		if pos.IsOpen {
			snap.OpenPositions++
		} else {
			snap.ClosedPositions++
		}
		if pos.CashPnL > 0 {
			snap.WinCount++
		} else if pos.CashPnL < 0 {
			snap.LossCount++
		}
		if pos.CashPnL > snap.BestPositionPnL {
			snap.BestPositionPnL = pos.CashPnL
		}
		if pos.CashPnL < snap.WorstPositionPnL {
			snap.WorstPositionPnL = pos.CashPnL
		}
	}

	if decided := snap.WinCount + snap.LossCount; decided > 0 {
		snap.WinRate = float64(snap.WinCount) / float64(decided) * 100
	}
	if totalInvested > 0 {
		snap.ROIPercentage = snap.TotalPnL / totalInvested * 100
	}

	snap.PnLVolatility = stddev(pnls)
	snap.RiskScore = RiskScore(snap.PnLVolatility, snap.WinRate, snap.ROIPercentage)
	snap.Tier = ClassifyTier(snap.TotalVolume, snap.WinRate, snap.ROIPercentage)

	return snap, nil
}

// RiskScore blends P&L volatility, win-rate instability, and ROI
// sustainability into a 0-100 score, higher = riskier.
func RiskScore(pnlVolatility, winRate, roi float64) float64 {
	volatilityScore := math.Min(pnlVolatility/volatilityScale, 100)
	winRateRisk := 100 - winRate
	roiRisk := math.Min(math.Max(0, -roi), 100)

	score := volatilityScore*riskWeightVolatility +
		winRateRisk*riskWeightWinRate +
		roiRisk*riskWeightROI

	return math.Round(score*100) / 100
}

// ClassifyTier assigns a tier from the ordered threshold ladder, evaluated
// top-down with first match winning.
func ClassifyTier(volume, winRate, roi float64) models.Tier {
	switch {
	case volume >= 1_000_000 && winRate >= 70 && roi >= 50:
		return models.TierWhale
	case volume >= 100_000 && winRate >= 60 && roi >= 25:
		return models.TierExpert
	case volume >= 10_000 && winRate >= 50 && roi >= 10:
		return models.TierAdvanced
	case volume >= 1_000 && roi >= 0:
		return models.TierIntermediate
	default:
		return models.TierBeginner
	}
}

func emptySnapshot(wallet models.Wallet, days int) *models.TraderStatsSnapshot {
	return &models.TraderStatsSnapshot{
		Wallet:     wallet,
		PeriodDays: days,
		Tier:       models.TierBeginner,
	}
}

func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	// Sample standard deviation.
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}
