package cmd

import (
	"fmt"

	"ticket-reconciler/core/config"
	"ticket-reconciler/core/database"
	"ticket-reconciler/core/logger"
	"ticket-reconciler/feature/reconciliation"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd creates or updates the reconciliation tables.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the reconciliation tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logg.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}

		if err := reconciliation.Migrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		logg.Info("Database migrated", zap.String("database", cfg.Database.Name))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
