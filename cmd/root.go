package cmd

import (
	"fmt"
	"os"

	"ticket-reconciler/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "ticket-reconciler",
	Short: "Ticket Sales Reconciliation Service",
	Long: `Ticket Reconciler compares the local ticket sales ledger with the orders
reported by ticketing platforms (Humanitix, Eventbrite), repairs safe
differences and records everything else for operator review.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with ISO8601 timestamps reads better on a terminal
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
