package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Alert is the notification payload for a run that crossed a threshold.
type Alert struct {
	ReportID              string          `json:"report_id"`
	EventID               string          `json:"event_id"`
	Platform              string          `json:"platform"`
	SyncHealth            SyncHealth      `json:"sync_health"`
	DiscrepanciesFound    int             `json:"discrepancies_found"`
	DiscrepanciesResolved int             `json:"discrepancies_resolved"`
	RevenueDifference     decimal.Decimal `json:"revenue_difference"`
	Reasons               []string        `json:"reasons"`
	RaisedAt              time.Time       `json:"raised_at"`
}

// AlertReasons returns why a report needs an alert, or nil when it does not.
func AlertReasons(r Report, cfg Config) []string {
	var reasons []string
	if r.SyncHealth == HealthCritical {
		reasons = append(reasons, "sync health is critical")
	}
	if r.DiscrepanciesFound > cfg.AlertThreshold.Count {
		reasons = append(reasons, fmt.Sprintf("%d discrepancies found (threshold %d)", r.DiscrepanciesFound, cfg.AlertThreshold.Count))
	}
	if gap := r.RevenueDifference(); gap.GreaterThan(cfg.AlertThreshold.Amount) {
		reasons = append(reasons, fmt.Sprintf("revenue difference %s exceeds %s", gap.StringFixed(2), cfg.AlertThreshold.Amount.StringFixed(2)))
	}
	return reasons
}

// CheckAndSendAlerts sends at most one notification for the report. Delivery
// failures are logged and never retried. It reports whether an alert was raised.
func CheckAndSendAlerts(ctx context.Context, r Report, cfg Config, notifier Notifier, logger *zap.Logger, at time.Time) bool {
	reasons := AlertReasons(r, cfg)
	if len(reasons) == 0 {
		return false
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	alert := Alert{
		ReportID:              r.ID,
		EventID:               r.EventID,
		Platform:              r.Platform,
		SyncHealth:            r.SyncHealth,
		DiscrepanciesFound:    r.DiscrepanciesFound,
		DiscrepanciesResolved: r.DiscrepanciesResolved,
		RevenueDifference:     r.RevenueDifference(),
		Reasons:               reasons,
		RaisedAt:              at,
	}

	logger.Warn("Reconciliation alert raised",
		zap.String("event_id", r.EventID),
		zap.String("platform", r.Platform),
		zap.String("report_id", r.ID),
		zap.Strings("reasons", reasons))

	if notifier == nil {
		return true
	}
	if err := notifier.NotifyReconciliationAlert(ctx, alert); err != nil {
		logger.Error("Failed to send reconciliation alert",
			zap.String("event_id", r.EventID),
			zap.String("report_id", r.ID),
			zap.Error(err))
	}
	return true
}
