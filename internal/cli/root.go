// Package cli provides the command-line interface for the copy-trading engine.
package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"polymarket-copytrader/internal/config"
	"polymarket-copytrader/internal/copier"
	"polymarket-copytrader/internal/executor"
	"polymarket-copytrader/internal/feed"
	"polymarket-copytrader/internal/logging"
	"polymarket-copytrader/internal/polymarket"
	"polymarket-copytrader/internal/resilience"
	"polymarket-copytrader/internal/scoring"
	"polymarket-copytrader/internal/store"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   store.DataStore
	Copier  *copier.Copier
	Scoring *scoring.Engine
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	// Initialize SQLite store
	dbPath := cfg.Store.Path
	if dbPath == "" {
		dbPath = config.DefaultConfigDir() + "/copytrader.db"
	}
	dataStore, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, some features may be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", dbPath).Msg("SQLite store initialized")
	}

	// The history source is rate limited and circuit protected; every
	// consumer (pollers, scoring) shares the same budget.
	client := polymarket.NewClient("", cfg.Poller.FetchLimit)
	limited := feed.NewRateLimitedSource(client, cfg.Poller.RateLimit, cfg.Poller.RateBurst)
	source := resilience.NewGuardedSource(limited, resilience.NewCircuitBreaker("data-api", resilience.DefaultCircuitBreakerConfig()))

	// Paper execution until a live execution service is wired in.
	exec := resilience.NewGuardedExecutor(executor.NewPaperExecutor(), resilience.NewCircuitBreaker("executor", resilience.DefaultCircuitBreakerConfig()))

	if app.Store != nil {
		app.Copier = copier.New(cfg, app.Store, source, exec, logger)
		app.Scoring = app.Copier.Scoring()
	} else {
		app.Scoring = scoring.NewEngine(source, logger)
	}

	rootCmd := &cobra.Command{
		Use:   "copytrader",
		Short: "Polymarket copy-trading engine",
		Long: `Copytrader mirrors the trades of selected Polymarket wallets.

It polls each followed wallet's trade history, filters and sizes new trades
against your follow configuration, and places proportional copies while
keeping total exposure under a hard cap. A scoring engine ranks traders by
volume, win rate, ROI and risk before you follow them.

Use 'copytrader help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/copytrader)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addFollowCommands(rootCmd, app)
	addScoringCommands(rootCmd, app)
	addRecordCommands(rootCmd, app)
	addRunCommand(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("copytrader v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			output.Bold("Poller")
			output.Printf("  interval:          %s\n", app.Config.Poller.Interval)
			output.Printf("  rate limit:        %.1f req/s (burst %d)\n", app.Config.Poller.RateLimit, app.Config.Poller.RateBurst)
			output.Bold("Copy defaults")
			output.Printf("  copy percentage:   %.1f%%\n", app.Config.Copy.CopyPercentage)
			output.Printf("  max position:      %s\n", FormatUSD(app.Config.Copy.MaxPositionSize))
			output.Printf("  max exposure:      %s\n", FormatUSD(app.Config.Copy.MaxTotalExposure))
			output.Printf("  min confidence:    %s\n", FormatUSD(app.Config.Copy.MinTradeConfidence))
			output.Printf("  auto exit:         %v\n", app.Config.Copy.AutoExit)
			output.Bold("Scoring")
			output.Printf("  lookback:          %d days\n", app.Config.Scoring.DefaultLookbackDays)
			output.Printf("  whale threshold:   %s\n", FormatUSD(app.Config.Scoring.WhaleThreshold))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}
