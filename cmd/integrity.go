package cmd

import (
	"context"
	"fmt"

	"ticket-reconciler/feature/integrity"
	"ticket-reconciler/feature/integrity/checks"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check the reconciliation schema and archive storage",
	Long:  `Checks that the reconciliation tables match their models and that the archive bucket has the required folders.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, true)
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the reconciliation tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false)
	},
}

// storageCmd represents the integrity storage command
var storageCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and fix the archive folder structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true)
	},
}

// ledgerCmd represents the integrity ledger command
var ledgerCmd = &cobra.Command{
	Use:   "ledger <eventId>",
	Short: "Check the ledger rows of an event",
	Long:  `Looks for negative amounts, zero quantities, missing or invalid customer data and duplicate orders.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newIntegrityService(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.close()

		report, err := svc.CheckLedger(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("ledger check failed: %w", err)
		}

		if report.Status == checks.StatusPassed {
			svc.logger.Info("Ledger is consistent.", zap.String("event_id", args[0]))
			return nil
		}
		for _, issue := range report.Issues {
			svc.logger.Warn("Ledger issue",
				zap.String("rule", issue.Rule),
				zap.String("severity", string(issue.Severity)),
				zap.Strings("records", issue.AffectedRecords),
				zap.String("suggestion", issue.SuggestedAction))
		}
		return printJSON(report)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(schemaCmd, storageCmd, ledgerCmd)

	storageCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the bucket and missing folders")
}

type integrityRunner struct {
	*integrity.Service
	logger *zap.Logger
	close  func()
}

func newIntegrityService(ctx context.Context) (*integrityRunner, error) {
	svc, err := bootstrap(ctx, false)
	if err != nil {
		return nil, err
	}
	cfg := svc.cfg
	return &integrityRunner{
		Service: integrity.NewService(svc.storage, cfg.Storage.Bucket, cfg.Storage.Region, svc.logger, svc.db),
		logger:  svc.logger,
		close:   svc.Close,
	}, nil
}

func runIntegrityChecks(ctx context.Context, runSchema, runStorage bool) error {
	svc, err := newIntegrityService(ctx)
	if err != nil {
		return err
	}
	defer svc.close()
	logg := svc.logger

	if runSchema {
		logg.Info("Checking reconciliation schema...")
		report, err := svc.CheckSchema()
		if err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}

		if report.Matched {
			logg.Info("Schema matches the expected definition.", zap.String("driver", report.Driver))
		} else {
			logg.Warn("Schema mismatches found", zap.String("driver", report.Driver))
			for table, tblReport := range report.Tables {
				if tblReport.Status == "ok" {
					continue
				}
				if len(tblReport.MissingColumns) > 0 {
					logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tblReport.MissingColumns))
				}
				if len(tblReport.TypeMismatches) > 0 {
					logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tblReport.TypeMismatches))
				}
			}
			for _, e := range report.Errors {
				logg.Error("Inspection Error", zap.String("error", e))
			}
		}
	}

	if runStorage {
		logg.Info("Checking archive structure...")
		report, err := svc.CheckStructure(ctx)
		if err != nil {
			return fmt.Errorf("storage check failed: %w", err)
		}

		if len(report.Missing) == 0 {
			logg.Info("Archive structure is intact.", zap.String("bucket", report.Bucket))
			return nil
		}

		logg.Warn("Missing folders detected", zap.Bool("bucket_exists", report.Exists), zap.Strings("missing", report.Missing))
		if fixFlag {
			logg.Info("Fixing missing folders...")
			if err := svc.FixStructure(ctx, report.Missing); err != nil {
				return fmt.Errorf("failed to fix structure: %w", err)
			}
			logg.Info("Structure fixed successfully.")
		} else {
			logg.Info("Run 'integrity storage --fix' to create missing folders.")
		}
	}

	return nil
}
