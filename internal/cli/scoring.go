// Package cli provides the command-line interface for the copy-trading engine.
package cli

import (
	"github.com/spf13/cobra"

	"polymarket-copytrader/internal/models"
)

// addScoringCommands adds trader scoring and comparison commands.
func addScoringCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newStatsCmd(app))
	rootCmd.AddCommand(newCompareCmd(app))
	rootCmd.AddCommand(newMarketsCmd(app))
}

func newStatsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <wallet>",
		Short: "Score a trader's history",
		Long: `Score a trader's history over a lookback window.

Computes volume, win rate, ROI, risk score and tier from the trader's
trades and positions. Use this before deciding to follow someone.`,
		Example: `  copytrader stats 0xabc...
  copytrader stats 0xabc... --days 90`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			days, _ := cmd.Flags().GetInt("days")
			if days <= 0 {
				days = app.Config.Scoring.DefaultLookbackDays
			}

			stats, err := app.Scoring.TraderStats(cmd.Context(), models.Wallet(args[0]), days)
			if err != nil {
				output.Error("Failed to score trader: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(stats)
			}
			printStats(output, stats)
			return nil
		},
	}
	cmd.Flags().Int("days", 0, "lookback window in days (default from config)")
	return cmd
}

func newCompareCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <wallet> <wallet> [wallet...]",
		Short: "Compare traders side by side",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			days, _ := cmd.Flags().GetInt("days")
			if days <= 0 {
				days = app.Config.Scoring.DefaultLookbackDays
			}

			wallets := make([]models.Wallet, len(args))
			for i, a := range args {
				wallets[i] = models.Wallet(a)
			}

			snapshots, err := app.Scoring.Compare(cmd.Context(), wallets, days)
			if err != nil {
				output.Error("Failed to compare traders: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(snapshots)
			}

			output.Bold("%-14s %-13s %12s %8s %9s %6s", "WALLET", "TIER", "VOLUME", "WIN%", "ROI", "RISK")
			for _, s := range snapshots {
				output.Printf("%-14s %-13s %12s %7.1f%% %9s %6.1f\n",
					shortWallet(s.Wallet), FormatTier(s.Tier), FormatUSD(s.TotalVolume),
					s.WinRate, FormatPercent(s.ROIPercentage), s.RiskScore)
			}
			return nil
		},
	}
	cmd.Flags().Int("days", 0, "lookback window in days (default from config)")
	return cmd
}

func newMarketsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "markets <wallet>",
		Short: "Show a trader's per-market performance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			limit, _ := cmd.Flags().GetInt("limit")

			breakdown, err := app.Scoring.MarketPerformance(cmd.Context(), models.Wallet(args[0]), limit)
			if err != nil {
				output.Error("Failed to get market performance: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(breakdown)
			}
			if len(breakdown) == 0 {
				output.Dim("No position history")
				return nil
			}

			output.Bold("%-28s %10s %12s %9s", "MARKET", "POSITIONS", "P&L", "WIN%")
			for _, m := range breakdown {
				output.Printf("%-28s %10d %12s %8.1f%%\n",
					m.MarketID, m.Positions, FormatPnL(m.TotalPnL), m.WinRate)
			}
			return nil
		},
	}
	cmd.Flags().Int("limit", 10, "number of markets to show")
	return cmd
}

func printStats(output *Output, s *models.TraderStatsSnapshot) {
	output.Bold("Trader %s", s.Wallet)
	output.Printf("  Period:          %d days\n", s.PeriodDays)
	output.Printf("  Tier:            %s\n", FormatTier(s.Tier))
	output.Println()
	output.Printf("  Total trades:    %d\n", s.TotalTrades)
	output.Printf("  Total volume:    %s\n", FormatUSD(s.TotalVolume))
	output.Printf("  Avg trade size:  %s\n", FormatUSD(s.AvgTradeSize))
	output.Printf("  Trades/day:      %.2f\n", s.TradesPerDay)
	output.Printf("  Unique markets:  %d\n", s.UniqueMarkets)
	output.Println()
	output.Printf("  Win rate:        %.1f%% (%d W / %d L)\n", s.WinRate, s.WinCount, s.LossCount)
	output.Printf("  ROI:             %s\n", FormatPercent(s.ROIPercentage))
	output.Printf("  Total P&L:       %s\n", FormatPnL(s.TotalPnL))
	output.Printf("  Best position:   %s\n", FormatPnL(s.BestPositionPnL))
	output.Printf("  Worst position:  %s\n", FormatPnL(s.WorstPositionPnL))
	output.Printf("  Open/closed:     %d / %d\n", s.OpenPositions, s.ClosedPositions)
	output.Println()
	output.Printf("  Risk score:      %.1f / 100\n", s.RiskScore)
	if s.RiskScore >= 70 {
		output.Warning("  High risk trader")
	}
}
