package scoring

import (
	"errors"
	"testing"
	"time"

	apperrors "polymarket-copytrader/internal/errors"
	"polymarket-copytrader/internal/models"
)

func tradeAt(marketID string, size, price float64, ts time.Time) models.Trade {
	return models.Trade{
		ID:        marketID + ts.String(),
		Wallet:    "0xtrader",
		MarketID:  marketID,
		Side:      models.TradeSideBuy,
		Size:      size,
		Price:     price,
		Timestamp: ts,
	}
}

func position(pnl, invested float64, open bool) models.Position {
	return models.Position{
		Wallet:       "0xtrader",
		MarketID:     "m",
		CashPnL:      pnl,
		InitialValue: invested,
		IsOpen:       open,
	}
}

func TestComputeNoTrades(t *testing.T) {
	_, err := Compute("0xtrader", 30, nil, nil)
	if err == nil {
		t.Fatal("expected error for empty history")
	}
	var insufficient *apperrors.InsufficientDataError
	if !errors.As(err, &insufficient) {
		t.Errorf("error type = %T, want InsufficientDataError", err)
	}
}

func TestComputeAggregates(t *testing.T) {
	now := time.Now()
	trades := []models.Trade{
		tradeAt("m1", 100, 0.50, now.AddDate(0, 0, -10)),
		tradeAt("m2", 200, 0.25, now.AddDate(0, 0, -5)),
		tradeAt("m1", 400, 0.25, now),
	}
	positions := []models.Position{
		position(30, 100, false),
		position(-10, 50, false),
		position(0, 25, true),
	}

	snap, err := Compute("0xtrader", 30, trades, positions)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if snap.TotalTrades != 3 {
		t.Errorf("TotalTrades = %d, want 3", snap.TotalTrades)
	}
	if snap.TotalVolume != 200 {
		t.Errorf("TotalVolume = %v, want 200", snap.TotalVolume)
	}
	if snap.UniqueMarkets != 2 {
		t.Errorf("UniqueMarkets = %d, want 2", snap.UniqueMarkets)
	}
	if snap.WinCount != 1 || snap.LossCount != 1 {
		t.Errorf("W/L = %d/%d, want 1/1", snap.WinCount, snap.LossCount)
	}
	// Flat positions count toward neither side: 1 win of 2 decided.
	if snap.WinRate != 50 {
		t.Errorf("WinRate = %v, want 50", snap.WinRate)
	}
	if snap.TotalPnL != 20 {
		t.Errorf("TotalPnL = %v, want 20", snap.TotalPnL)
	}
	// 20 profit over 175 invested.
	wantROI := 20.0 / 175.0 * 100
	if snap.ROIPercentage != wantROI {
		t.Errorf("ROI = %v, want %v", snap.ROIPercentage, wantROI)
	}
	if snap.OpenPositions != 1 || snap.ClosedPositions != 2 {
		t.Errorf("open/closed = %d/%d, want 1/2", snap.OpenPositions, snap.ClosedPositions)
	}
	if snap.BestPositionPnL != 30 || snap.WorstPositionPnL != -10 {
		t.Errorf("best/worst = %v/%v, want 30/-10", snap.BestPositionPnL, snap.WorstPositionPnL)
	}
}

func TestComputeZeroInvestedROI(t *testing.T) {
	now := time.Now()
	trades := []models.Trade{tradeAt("m1", 10, 0.5, now)}
	positions := []models.Position{position(5, 0, false)}

	snap, err := Compute("0xtrader", 30, trades, positions)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if snap.ROIPercentage != 0 {
		t.Errorf("ROI = %v, want 0 with zero invested capital", snap.ROIPercentage)
	}
}

func TestComputeNoDecidedPositionsWinRate(t *testing.T) {
	now := time.Now()
	trades := []models.Trade{tradeAt("m1", 10, 0.5, now)}
	positions := []models.Position{position(0, 100, true)}

	snap, err := Compute("0xtrader", 30, trades, positions)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if snap.WinRate != 0 {
		t.Errorf("WinRate = %v, want 0 with no decided positions", snap.WinRate)
	}
}

func TestClassifyTierLadder(t *testing.T) {
	tests := []struct {
		name    string
		volume  float64
		winRate float64
		roi     float64
		want    models.Tier
	}{
		{"whale", 2_000_000, 75, 60, models.TierWhale},
		{"whale volume but weak roi", 2_000_000, 75, 10, models.TierIntermediate},
		{"expert", 150_000, 65, 30, models.TierExpert},
		{"advanced", 20_000, 55, 15, models.TierAdvanced},
		{"intermediate", 5_000, 20, 0, models.TierIntermediate},
		{"negative roi is beginner", 5_000, 20, -5, models.TierBeginner},
		{"tiny volume", 500, 90, 80, models.TierBeginner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyTier(tt.volume, tt.winRate, tt.roi); got != tt.want {
				t.Errorf("ClassifyTier(%v, %v, %v) = %s, want %s", tt.volume, tt.winRate, tt.roi, got, tt.want)
			}
		})
	}
}

func TestRiskScoreComponents(t *testing.T) {
	// Perfect trader: no volatility, 100% win rate, positive ROI.
	if got := RiskScore(0, 100, 50); got != 0 {
		t.Errorf("RiskScore(0, 100, 50) = %v, want 0", got)
	}
	// Worst case: every component saturated.
	if got := RiskScore(1e9, 0, -1000); got != 100 {
		t.Errorf("saturated RiskScore = %v, want 100", got)
	}
	// Positive ROI contributes no ROI risk.
	withPositive := RiskScore(500, 50, 20)
	withNegative := RiskScore(500, 50, -20)
	if withNegative <= withPositive {
		t.Errorf("negative ROI should raise risk: %v <= %v", withNegative, withPositive)
	}
}
