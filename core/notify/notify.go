// Package notify delivers reconciliation alerts to operators.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"ticket-reconciler/core/reconcile"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// streamAdder is the subset of the Redis client the stream notifier needs.
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisStream appends alerts to a Redis stream consumed by the operator tooling.
type RedisStream struct {
	client streamAdder
	stream string
	maxLen int64
}

// NewRedisStream creates a notifier writing to stream. The stream is capped
// at roughly 10k entries.
func NewRedisStream(client streamAdder, stream string) *RedisStream {
	return &RedisStream{client: client, stream: stream, maxLen: 10000}
}

// NotifyReconciliationAlert implements reconcile.Notifier.
func (n *RedisStream) NotifyReconciliationAlert(ctx context.Context, alert reconcile.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to encode alert: %w", err)
	}

	err = n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		MaxLen: n.maxLen,
		Approx: true,
		Values: map[string]any{
			"type":      "reconciliation_alert",
			"event_id":  alert.EventID,
			"platform":  alert.Platform,
			"report_id": alert.ReportID,
			"payload":   string(payload),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish alert to %s: %w", n.stream, err)
	}
	return nil
}

// Log writes alerts to the application log. It is the sink when Redis is disabled.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a log-only notifier.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

// NotifyReconciliationAlert implements reconcile.Notifier.
func (n *Log) NotifyReconciliationAlert(_ context.Context, alert reconcile.Alert) error {
	n.logger.Warn("Reconciliation alert",
		zap.String("event_id", alert.EventID),
		zap.String("platform", alert.Platform),
		zap.String("report_id", alert.ReportID),
		zap.String("sync_health", string(alert.SyncHealth)),
		zap.Int("discrepancies_found", alert.DiscrepanciesFound),
		zap.String("revenue_difference", alert.RevenueDifference.StringFixed(2)),
		zap.Strings("reasons", alert.Reasons))
	return nil
}
