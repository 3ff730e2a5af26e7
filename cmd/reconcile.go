package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"ticket-reconciler/core/reconcile"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	platformFlag   string
	historyLimit   int
	auditLimit     int
	resolutionFlag string
	notesFlag      string
	adjustType     string
	saleIDFlag     string
	amountFlag     string
	reasonFlag     string
	saleFileFlag   string
	yesConfirm     bool
)

// reconcileCmd is the parent command for all reconcile operations.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile ticket sales with the ticketing platforms",
	Long: `Compare the local sales ledger of an event with the orders reported by its
ticketing platforms, repair safe differences and review the rest.`,
}

var runCmd = &cobra.Command{
	Use:   "run <eventId>",
	Short: "Run reconciliation for an event",
	Long: `Runs reconciliation for one platform of an event, or for every linked
platform when --platform is omitted.

Examples:
  reconcile run evt-1
  reconcile run evt-1 --platform humanitix`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := bootstrap(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		reports, err := svc.service.Run(cmd.Context(), args[0], platformFlag)
		for _, r := range reports {
			printReport(svc.logger, r)
		}
		if err != nil {
			return fmt.Errorf("reconciliation failed: %w", err)
		}
		return printJSON(reports)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <eventId>",
	Short: "Show reconciliation statistics of an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := bootstrap(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		stats, err := svc.service.Stats(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(stats)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <eventId>",
	Short: "List recent reconciliation reports of an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := bootstrap(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		reports, err := svc.service.History(cmd.Context(), args[0], historyLimit)
		if err != nil {
			return err
		}
		return printJSON(reports)
	},
}

var unresolvedCmd = &cobra.Command{
	Use:   "unresolved <eventId>",
	Short: "List discrepancies waiting for a decision",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := bootstrap(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		items, err := svc.service.Unresolved(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(items)
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <discrepancyId>",
	Short: "Record an operator decision for a discrepancy",
	Long: `Marks a discrepancy as ignored, platform_updated or manual_review.

Example:
  reconcile resolve 7f0c... --resolution ignored --notes "comp ticket"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := bootstrap(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		d, err := svc.service.Resolve(cmd.Context(), args[0], reconcile.Resolution(resolutionFlag), notesFlag)
		if err != nil {
			return err
		}
		return printJSON(d)
	},
}

var adjustCmd = &cobra.Command{
	Use:   "adjust <eventId>",
	Short: "Apply a manual ledger adjustment",
	Long: `Adds, removes or re-prices a ledger sale. Every adjustment is audited and
needs a reason. Removing a sale asks for confirmation unless --yes is given.

Examples:
  reconcile adjust evt-1 --platform humanitix --type update_amount --sale-id L1 --amount 70.00 --reason "refund"
  reconcile adjust evt-1 --platform humanitix --type remove_sale --sale-id L2 --reason "test order" --yes
  reconcile adjust evt-1 --platform eventbrite --type add_sale --sale sale.json --reason "door sale"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		adj := reconcile.ManualAdjustment{
			Type:   reconcile.AdjustmentType(adjustType),
			SaleID: saleIDFlag,
			Reason: reasonFlag,
		}
		if amountFlag != "" {
			amount, err := decimal.NewFromString(amountFlag)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amountFlag, err)
			}
			adj.Amount = &amount
		}
		if saleFileFlag != "" {
			sale, err := readSale(saleFileFlag)
			if err != nil {
				return err
			}
			adj.Sale = sale
		}
		if err := adj.Validate(); err != nil {
			return err
		}

		if adj.Type == reconcile.AdjustRemoveSale && !confirmDestructiveAction() {
			fmt.Println("Operation cancelled. No changes were made.")
			return nil
		}

		svc, err := bootstrap(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		result, err := svc.service.Adjust(cmd.Context(), args[0], platformFlag, adj)
		if err != nil {
			return err
		}
		svc.logger.Info("Manual adjustment applied",
			zap.String("sale_id", result.SaleID),
			zap.String("audit_id", result.AuditID))
		return printJSON(result)
	},
}

var reprocessCmd = &cobra.Command{
	Use:   "reprocess <eventId>",
	Short: "Re-run resolution over stored unresolved discrepancies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := bootstrap(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		resolved, err := svc.service.Reprocess(cmd.Context(), args[0], platformFlag)
		if err != nil {
			return err
		}
		svc.logger.Info("Reprocessing finished", zap.Int("resolved", resolved))
		return nil
	},
}

var linkCmd = &cobra.Command{
	Use:   "link <eventId> <platform> <externalEventId>",
	Short: "Link an event to its id on a ticketing platform",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := bootstrap(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		return svc.service.LinkPlatform(cmd.Context(), reconcile.PlatformLink{
			EventID:         args[0],
			Platform:        args[1],
			ExternalEventID: args[2],
		})
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit <eventId>",
	Short: "Show the newest ledger audit entries of an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := bootstrap(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer svc.Close()

		entries, err := svc.service.AuditLog(cmd.Context(), args[0], auditLimit)
		if err != nil {
			return err
		}
		return printJSON(entries)
	},
}

func init() {
	reconcileCmd.AddCommand(runCmd, statsCmd, historyCmd, unresolvedCmd, resolveCmd,
		adjustCmd, reprocessCmd, linkCmd, auditCmd)

	runCmd.Flags().StringVar(&platformFlag, "platform", "", "Platform to reconcile (default: every linked platform)")
	reprocessCmd.Flags().StringVar(&platformFlag, "platform", "", "Platform to reprocess (default: every linked platform)")
	adjustCmd.Flags().StringVar(&platformFlag, "platform", "", "Platform of the sale")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of reports to show")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 50, "Number of entries to show")

	resolveCmd.Flags().StringVar(&resolutionFlag, "resolution", "", "ignored, platform_updated or manual_review")
	resolveCmd.Flags().StringVar(&notesFlag, "notes", "", "Operator notes")
	_ = resolveCmd.MarkFlagRequired("resolution")

	adjustCmd.Flags().StringVar(&adjustType, "type", "", "add_sale, remove_sale or update_amount")
	adjustCmd.Flags().StringVar(&saleIDFlag, "sale-id", "", "Ledger sale id (remove_sale, update_amount)")
	adjustCmd.Flags().StringVar(&amountFlag, "amount", "", "New amount (update_amount)")
	adjustCmd.Flags().StringVar(&reasonFlag, "reason", "", "Reason recorded in the audit log")
	adjustCmd.Flags().StringVar(&saleFileFlag, "sale", "", "JSON file with the sale to add (add_sale)")
	adjustCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	_ = adjustCmd.MarkFlagRequired("platform")
	_ = adjustCmd.MarkFlagRequired("type")
	_ = adjustCmd.MarkFlagRequired("reason")

	RootCmd.AddCommand(reconcileCmd)
}

// printReport logs the summary of a reconciliation report.
func printReport(l *zap.Logger, r *reconcile.Report) {
	if r == nil {
		return
	}
	l.Info("Reconciliation report",
		zap.String("report_id", r.ID),
		zap.String("platform", r.Platform),
		zap.String("status", string(r.Status)),
		zap.Int("local_sales", r.TotalLocalSales),
		zap.Int("platform_sales", r.TotalPlatformSales),
		zap.String("revenue_difference", r.RevenueDifference().StringFixed(2)),
		zap.Int("found", r.DiscrepanciesFound),
		zap.Int("resolved", r.DiscrepanciesResolved),
		zap.String("health", string(r.SyncHealth)),
	)

	// Show a sample of what is left for review
	shown := 0
	for _, d := range r.Discrepancies {
		if d.Resolution.IsTerminal() {
			continue
		}
		if shown == 5 {
			l.Info("Additional discrepancies not shown", zap.Int("total", r.DiscrepanciesFound-r.DiscrepanciesResolved))
			break
		}
		l.Info("Needs review",
			zap.String("id", d.ID),
			zap.String("type", string(d.Kind())),
			zap.String("severity", string(d.Severity)))
		shown++
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func readSale(path string) (*reconcile.LocalSale, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sale file: %w", err)
	}
	var sale reconcile.LocalSale
	if err := json.Unmarshal(data, &sale); err != nil {
		return nil, fmt.Errorf("invalid sale file %s: %w", path, err)
	}
	return &sale, nil
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("Type 'yes' to remove the sale: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
