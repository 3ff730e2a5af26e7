package checks

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"ticket-reconciler/core/reconcile"
	"ticket-reconciler/feature/reconciliation/models"

	"gorm.io/gorm"
)

// Ledger check status values.
const (
	StatusPassed  = "passed"
	StatusWarning = "warning"
	StatusFailed  = "failed"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Issue is a rule violation found in the ledger.
type Issue struct {
	Rule            string             `json:"rule"`
	Description     string             `json:"description"`
	Severity        reconcile.Severity `json:"severity"`
	AffectedRecords []string           `json:"affected_records"`
	SuggestedAction string             `json:"suggested_action"`
}

// LedgerReport is the result of running the ledger rules for an event.
type LedgerReport struct {
	EventID   string    `json:"event_id"`
	Status    string    `json:"status"`
	Issues    []Issue   `json:"issues"`
	CheckedAt time.Time `json:"checked_at"`
}

// Rule is a single ledger check. Find returns the affected record keys.
type Rule struct {
	ID         string
	Name       string
	Severity   reconcile.Severity
	Suggestion string
	Find       func(q *gorm.DB, eventID string) ([]string, error)
}

// LedgerRules are the checks run by CheckLedger.
var LedgerRules = []Rule{
	{
		ID:         "negative_amounts",
		Name:       "Negative Ticket Amounts",
		Severity:   reconcile.SeverityCritical,
		Suggestion: "Review and correct negative amounts; they may be refunds or data entry errors",
		Find: func(q *gorm.DB, eventID string) ([]string, error) {
			return pluckIDs(q.Where("event_id = ? AND total_amount < 0", eventID))
		},
	},
	{
		ID:         "zero_ticket_quantity",
		Name:       "Zero Ticket Quantities",
		Severity:   reconcile.SeverityHigh,
		Suggestion: "Review zero quantity sales; they may be administrative entries",
		Find: func(q *gorm.DB, eventID string) ([]string, error) {
			return pluckIDs(q.Where("event_id = ? AND quantity <= 0", eventID))
		},
	},
	{
		ID:         "missing_customer_info",
		Name:       "Missing Customer Information",
		Severity:   reconcile.SeverityMedium,
		Suggestion: "Update missing customer information from the order platform",
		Find: func(q *gorm.DB, eventID string) ([]string, error) {
			return pluckIDs(q.Where("event_id = ?", eventID).
				Where("(customer_name IS NULL OR customer_name = '' OR customer_email IS NULL OR customer_email = '')"))
		},
	},
	{
		ID:         "invalid_email_format",
		Name:       "Invalid Email Formats",
		Severity:   reconcile.SeverityMedium,
		Suggestion: "Correct the email format or verify the customer information",
		Find: func(q *gorm.DB, eventID string) ([]string, error) {
			var rows []models.TicketSale
			err := q.Select("id", "customer_email").
				Where("event_id = ? AND customer_email IS NOT NULL AND customer_email <> ''", eventID).
				Find(&rows).Error
			if err != nil {
				return nil, err
			}
			ids := []string{}
			for _, r := range rows {
				if !emailPattern.MatchString(r.CustomerEmail) {
					ids = append(ids, r.ID)
				}
			}
			return ids, nil
		},
	},
	{
		ID:         "duplicate_ticket_sales",
		Name:       "Duplicate Ticket Sales",
		Severity:   reconcile.SeverityMedium,
		Suggestion: "Review and remove duplicate entries",
		Find: func(q *gorm.DB, eventID string) ([]string, error) {
			var dups []struct {
				Platform        string
				PlatformOrderID string
			}
			err := q.Select("platform, platform_order_id").
				Where("event_id = ? AND platform_order_id IS NOT NULL AND platform_order_id <> ''", eventID).
				Group("platform, platform_order_id").
				Having("COUNT(*) > 1").
				Scan(&dups).Error
			if err != nil {
				return nil, err
			}
			keys := make([]string, 0, len(dups))
			for _, d := range dups {
				keys = append(keys, d.Platform+":"+d.PlatformOrderID)
			}
			return keys, nil
		},
	},
}

// CheckLedger runs rules over the ledger rows of an event. A rule that
// cannot be executed is reported as a high severity issue.
func CheckLedger(ctx context.Context, db *gorm.DB, eventID string, rules []Rule, now time.Time) (*LedgerReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &LedgerReport{
		EventID:   eventID,
		Status:    StatusPassed,
		Issues:    []Issue{},
		CheckedAt: now,
	}

	for _, rule := range rules {
		q := db.WithContext(ctx).Model(&models.TicketSale{})
		affected, err := rule.Find(q, eventID)
		if err != nil {
			report.Issues = append(report.Issues, Issue{
				Rule:            "rule_execution_error",
				Description:     fmt.Sprintf("Failed to execute rule %s: %v", rule.Name, err),
				Severity:        reconcile.SeverityHigh,
				AffectedRecords: []string{},
				SuggestedAction: "Check rule configuration and database connectivity",
			})
			continue
		}
		if len(affected) == 0 {
			continue
		}
		report.Issues = append(report.Issues, Issue{
			Rule:            rule.ID,
			Description:     fmt.Sprintf("%s: %d record(s)", rule.Name, len(affected)),
			Severity:        rule.Severity,
			AffectedRecords: affected,
			SuggestedAction: rule.Suggestion,
		})
	}

	report.Status = statusFor(report.Issues)
	return report, nil
}

// statusFor grades a report by the highest issue severity.
func statusFor(issues []Issue) string {
	status := StatusPassed
	for _, i := range issues {
		switch i.Severity {
		case reconcile.SeverityCritical, reconcile.SeverityHigh:
			return StatusFailed
		case reconcile.SeverityMedium:
			status = StatusWarning
		}
	}
	return status
}

func pluckIDs(q *gorm.DB) ([]string, error) {
	ids := []string{}
	if err := q.Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
