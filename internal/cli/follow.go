// Package cli provides the command-line interface for the copy-trading engine.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"polymarket-copytrader/internal/copier"
	"polymarket-copytrader/internal/models"
)

// addFollowCommands adds follow lifecycle commands.
func addFollowCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newFollowCmd(app))
	rootCmd.AddCommand(newUnfollowCmd(app))
	rootCmd.AddCommand(newUpdateCmd(app))
	rootCmd.AddCommand(newFollowingCmd(app))
	rootCmd.AddCommand(newStatusCmd(app))
}

// followFlags registers the shared follow configuration flags.
func followFlags(cmd *cobra.Command, defaults models.FollowConfig) {
	cmd.Flags().Float64("pct", defaults.CopyPercentage, "percentage of each source trade to copy (0-100]")
	cmd.Flags().Float64("max-position", defaults.MaxPositionSize, "max dollar value per copied position (0 disables)")
	cmd.Flags().Float64("max-exposure", defaults.MaxTotalExposure, "max total dollar exposure for this follow")
	cmd.Flags().Float64("min-confidence", defaults.MinTradeConfidence, "skip source trades below this notional value")
	cmd.Flags().StringSlice("allow", nil, "only copy trades in these markets")
	cmd.Flags().StringSlice("deny", nil, "never copy trades in these markets")
	cmd.Flags().Bool("auto-exit", defaults.AutoExit, "mirror the source trader's exits")
	cmd.Flags().Float64("max-risk", 0, "skip trades while the source's risk score exceeds this (0 disables)")
	cmd.Flags().String("min-tier", "", "skip trades while the source is below this tier (empty disables)")
}

// followConfigFromFlags builds a FollowConfig from the registered flags.
func followConfigFromFlags(cmd *cobra.Command) models.FollowConfig {
	pct, _ := cmd.Flags().GetFloat64("pct")
	maxPos, _ := cmd.Flags().GetFloat64("max-position")
	maxExp, _ := cmd.Flags().GetFloat64("max-exposure")
	minConf, _ := cmd.Flags().GetFloat64("min-confidence")
	allow, _ := cmd.Flags().GetStringSlice("allow")
	deny, _ := cmd.Flags().GetStringSlice("deny")
	autoExit, _ := cmd.Flags().GetBool("auto-exit")
	maxRisk, _ := cmd.Flags().GetFloat64("max-risk")
	minTier, _ := cmd.Flags().GetString("min-tier")

	return models.FollowConfig{
		CopyPercentage:     pct,
		MaxPositionSize:    maxPos,
		MaxTotalExposure:   maxExp,
		MinTradeConfidence: minConf,
		MarketAllowList:    allow,
		MarketDenyList:     deny,
		AutoExit:           autoExit,
		MaxRiskScore:       maxRisk,
		MinTier:            models.Tier(minTier),
	}
}

func newFollowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "follow <source-wallet>",
		Short: "Start copying a trader's positions",
		Example: `  copytrader follow 0xabc... --follower 0xdef...
  copytrader follow 0xabc... --follower 0xdef... --pct 25 --max-exposure 2500
  copytrader follow 0xabc... --follower 0xdef... --deny election-2028 --min-tier Advanced`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Copier == nil {
				return fmt.Errorf("store unavailable, cannot manage follows")
			}

			follower, _ := cmd.Flags().GetString("follower")
			cfg := followConfigFromFlags(cmd)

			follow, err := app.Copier.CreateFollow(cmd.Context(), copier.FollowRequest{
				Follower: models.Wallet(follower),
				Source:   models.Wallet(args[0]),
				Config:   &cfg,
			})
			if err != nil {
				output.Error("Failed to create follow: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(follow)
			}
			output.Success("Following %s", follow.Source)
			output.Printf("  Follow ID:      %s\n", follow.ID)
			output.Printf("  Copy:           %.1f%% of each trade\n", follow.Config.CopyPercentage)
			output.Printf("  Max position:   %s\n", FormatUSD(follow.Config.MaxPositionSize))
			output.Printf("  Max exposure:   %s\n", FormatUSD(follow.Config.MaxTotalExposure))
			output.Printf("  Auto exit:      %v\n", follow.Config.AutoExit)
			return nil
		},
	}
	cmd.Flags().String("follower", "", "your wallet address (required)")
	cmd.MarkFlagRequired("follower")
	followFlags(cmd, defaultsFromConfig(app))
	return cmd
}

func newUnfollowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unfollow <follow-id>",
		Short: "Stop copying a trader",
		Long: `Stop copying a trader.

The monitor stops, any in-flight copy completes and is recorded, and no new
copies are placed. Copy history is retained.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Copier == nil {
				return fmt.Errorf("store unavailable, cannot manage follows")
			}
			if err := app.Copier.StopFollow(cmd.Context(), args[0]); err != nil {
				output.Error("Failed to stop follow: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]string{"follow_id": args[0], "status": string(models.FollowStopped)})
			}
			output.Success("Stopped follow %s", args[0])
			return nil
		},
	}
}

func newUpdateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <follow-id>",
		Short: "Update a follow's configuration",
		Long: `Update a follow's configuration.

The new configuration applies atomically: the next evaluated trade sees all
new values, never a mix of old and new.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Copier == nil {
				return fmt.Errorf("store unavailable, cannot manage follows")
			}
			cfg := followConfigFromFlags(cmd)
			if err := app.Copier.UpdateFollowConfig(cmd.Context(), args[0], cfg); err != nil {
				output.Error("Failed to update follow: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"follow_id": args[0], "config": cfg})
			}
			output.Success("Updated follow %s", args[0])
			return nil
		},
	}
	followFlags(cmd, defaultsFromConfig(app))
	return cmd
}

func newFollowingCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "following",
		Short: "List active follows",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Copier == nil {
				return fmt.Errorf("store unavailable, cannot manage follows")
			}
			follows, err := app.Copier.Following(cmd.Context())
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(follows)
			}
			if len(follows) == 0 {
				output.Dim("Not following anyone")
				return nil
			}
			output.Bold("%-22s %-14s %6s %12s %12s", "FOLLOW ID", "SOURCE", "COPY%", "MAX POS", "MAX EXP")
			for _, f := range follows {
				output.Printf("%-22s %-14s %5.1f%% %12s %12s\n",
					f.ID, shortWallet(f.Source), f.Config.CopyPercentage,
					FormatUSD(f.Config.MaxPositionSize), FormatUSD(f.Config.MaxTotalExposure))
			}
			return nil
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <follow-id>",
		Short: "Show follow status, exposure and performance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Copier == nil {
				return fmt.Errorf("store unavailable, cannot manage follows")
			}
			status, err := app.Copier.FollowStatus(cmd.Context(), args[0])
			if err != nil {
				output.Error("Failed to get status: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(status)
			}

			f := status.Follow
			output.Bold("Follow %s", f.ID)
			output.Printf("  Source:        %s\n", f.Source)
			output.Printf("  Status:        %s\n", f.Status)
			output.Printf("  Since:         %s\n", FormatTime(f.CreatedAt))
			if f.StoppedAt != nil {
				output.Printf("  Stopped:       %s\n", FormatTime(*f.StoppedAt))
			}
			output.Println()
			output.Bold("Exposure")
			output.Printf("  Committed:     %s\n", FormatUSD(status.Exposure.Committed))
			output.Printf("  Reserved:      %s\n", FormatUSD(status.Exposure.Reserved))
			output.Printf("  Cap:           %s\n", FormatUSD(f.Config.MaxTotalExposure))
			output.Println()
			output.Bold("Performance")
			p := status.Performance
			output.Printf("  Copied trades: %d\n", p.CopiedTrades)
			output.Printf("  Volume copied: %s\n", FormatUSD(p.VolumeCopied))
			output.Printf("  Avg per trade: %s\n", FormatUSD(p.AvgVolumePerTrade))
			output.Printf("  Trades/day:    %.2f\n", p.TradesPerDay)
			output.Printf("  Failures:      %d\n", p.Failures)
			output.Printf("  Realized P&L:  %s\n", FormatPnL(p.RealizedPnL))
			if len(p.Skips) > 0 {
				output.Println()
				output.Bold("Skips")
				for reason, count := range p.Skips {
					output.Printf("  %-22s %d\n", reason, count)
				}
			}
			if len(status.OpenPositions) > 0 {
				output.Println()
				output.Bold("Open positions")
				for _, pos := range status.OpenPositions {
					output.Printf("  %-20s %-10s %8s shares %10s\n",
						pos.MarketID, pos.Outcome, FormatShares(pos.Size), FormatUSD(pos.Value))
				}
			}
			return nil
		},
	}
}

func defaultsFromConfig(app *App) models.FollowConfig {
	return models.FollowConfig{
		MaxPositionSize:    app.Config.Copy.MaxPositionSize,
		CopyPercentage:     app.Config.Copy.CopyPercentage,
		MaxTotalExposure:   app.Config.Copy.MaxTotalExposure,
		MinTradeConfidence: app.Config.Copy.MinTradeConfidence,
		AutoExit:           app.Config.Copy.AutoExit,
	}
}

func shortWallet(w models.Wallet) string {
	s := string(w)
	if len(s) <= 12 {
		return s
	}
	return s[:8] + "..."
}
