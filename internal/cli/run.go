// Package cli provides the command-line interface for the copy-trading engine.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// addRunCommand adds the engine run command.
func addRunCommand(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newRunCmd(app))
}

func newRunCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the copy engine",
		Long: `Run the copy engine.

Resumes every active follow from the store and starts one trade monitor per
follow. Runs until interrupted; each monitor finishes its in-flight work
before shutdown.`,
		Example: `  copytrader run
  copytrader run --debug`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Copier == nil {
				return fmt.Errorf("store unavailable, cannot run engine")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			output.Info("Copy engine running, Ctrl-C to stop")
			err := app.Copier.Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				output.Error("Engine stopped: %v", err)
				return err
			}
			output.Success("Engine stopped")
			return nil
		},
	}
}
