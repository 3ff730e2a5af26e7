package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticket-reconciler/core/lock"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// Engine orchestrates reconciliation runs and operator actions.
type Engine struct {
	store       Store
	fetcher     PlatformFetcher
	locker      lock.Locker
	notifier    Notifier
	archiver    Archiver
	logger      *zap.Logger
	newID       IDGenerator
	now         func() time.Time
	stats       *statsCache
	statsWindow time.Duration
	concurrency int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocker sets the run lock. Defaults to an in-process lock.
func WithLocker(l lock.Locker) Option {
	return func(e *Engine) { e.locker = l }
}

// WithNotifier sets the alert sink. Without one, alerts are only logged.
func WithNotifier(n Notifier) Option {
	return func(e *Engine) { e.notifier = n }
}

// WithArchiver enables archiving of finished reports.
func WithArchiver(a Archiver) Option {
	return func(e *Engine) { e.archiver = a }
}

// WithIDGenerator overrides UUIDGenerator. The generator must be safe for concurrent use.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) { e.newID = g }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithStatsCache caches Stats per event for ttl. Zero disables the cache.
func WithStatsCache(ttl time.Duration) Option {
	return func(e *Engine) { e.stats = newStatsCache(ttl) }
}

// WithStatsWindow sets how far back Stats looks.
func WithStatsWindow(d time.Duration) Option {
	return func(e *Engine) { e.statsWindow = d }
}

// WithConcurrency bounds the number of discrepancies resolved in parallel.
func WithConcurrency(n int) Option {
	return func(e *Engine) { e.concurrency = n }
}

// NewEngine creates an engine over the given store and platform fetcher.
func NewEngine(store Store, fetcher PlatformFetcher, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		fetcher:     fetcher,
		locker:      lock.NewLocal(),
		logger:      logger,
		newID:       UUIDGenerator,
		now:         func() time.Time { return time.Now().UTC() },
		stats:       newStatsCache(0),
		statsWindow: 30 * 24 * time.Hour,
		concurrency: 4,
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func runKey(eventID, platform string) string {
	return "reconcile:" + eventID + ":" + platform
}

// acquire takes the run lock for (eventID, platform).
func (e *Engine) acquire(ctx context.Context, eventID, platform string) (func(), error) {
	key := runKey(eventID, platform)
	release, err := e.locker.Lock(ctx, key)
	if errors.Is(err, lock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: %s", ErrRunInProgress, key)
	}
	if err != nil {
		return nil, err
	}

	return func() {
		// The caller's context may already be done; release must still happen.
		if err := release(context.WithoutCancel(ctx)); err != nil {
			e.logger.Warn("Failed to release run lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func (e *Engine) resolver() *Resolver {
	return &Resolver{
		Store:       e.store,
		Logger:      e.logger,
		NewID:       e.newID,
		Now:         e.now,
		Concurrency: e.concurrency,
	}
}

// Reconcile runs one reconciliation for an event on a platform.
//
// Fetch failures produce a failed report which is persisted and returned
// together with a *FetchError. Persistence failures after the run are
// logged; the returned report is still complete.
func (e *Engine) Reconcile(ctx context.Context, eventID, platform string, cfg Config) (*Report, error) {
	if eventID == "" {
		return nil, &ValidationError{Field: "event_id", Reason: "must not be empty"}
	}
	if platform == "" {
		return nil, &ValidationError{Field: "platform", Reason: "must not be empty"}
	}

	unlock, err := e.acquire(ctx, eventID, platform)
	if err != nil {
		return nil, err
	}
	defer unlock()

	log := e.logger.With(zap.String("event_id", eventID), zap.String("platform", platform))

	report := &Report{
		ID:            e.newID(),
		EventID:       eventID,
		Platform:      platform,
		StartTime:     e.now(),
		Status:        StatusRunning,
		Discrepancies: []Discrepancy{},
	}
	log.Info("Starting reconciliation", zap.String("report_id", report.ID))

	link, err := e.findLink(ctx, eventID, platform)
	if err != nil {
		return e.fail(ctx, log, report, &FetchError{Source: "event platform", EventID: eventID, Platform: platform, Err: err})
	}

	local, err := e.store.FetchLocalSales(ctx, eventID, platform)
	if err != nil {
		return e.fail(ctx, log, report, &FetchError{Source: "local", EventID: eventID, Platform: platform, Err: err})
	}

	remote, err := e.fetcher.FetchPlatformSales(ctx, link)
	if err != nil {
		return e.fail(ctx, log, report, &FetchError{Source: "platform", EventID: eventID, Platform: platform, Err: err})
	}

	report.TotalLocalSales = len(local)
	report.TotalPlatformSales = len(remote)
	report.TotalLocalRevenue = sumLocal(local)
	report.TotalPlatformRevenue = sumRemote(remote)

	snap := Snapshot{EventID: eventID, Platform: platform, Local: local, Remote: remote}
	discrepancies, err := Detect(snap, cfg, e.newID, e.now())
	if err != nil {
		return e.fail(ctx, log, report, err)
	}
	for i := range discrepancies {
		discrepancies[i].ReportID = report.ID
	}
	report.Discrepancies = discrepancies
	report.DiscrepanciesFound = len(discrepancies)

	_, resolved := e.resolver().Resolve(ctx, report.Discrepancies, cfg)
	report.DiscrepanciesResolved = resolved

	end := e.now()
	report.EndTime = &end
	report.Status = StatusCompleted
	report.SyncHealth = CalculateSyncHealth(*report)

	if err := e.store.PersistReport(ctx, report); err != nil {
		log.Error("Failed to persist report", zap.Error(&PersistenceError{Op: "report", Err: err}))
	}
	if err := e.store.UpdateEventHealthStatus(ctx, eventID, platform, report.SyncHealth, end); err != nil {
		log.Error("Failed to update event health", zap.Error(&PersistenceError{Op: "event health", Err: err}))
	}
	e.stats.invalidate(eventID)
	e.archive(ctx, log, *report)

	log.Info("Reconciliation completed",
		zap.String("report_id", report.ID),
		zap.Int("discrepancies_found", report.DiscrepanciesFound),
		zap.Int("discrepancies_resolved", report.DiscrepanciesResolved),
		zap.String("sync_health", string(report.SyncHealth)))

	CheckAndSendAlerts(ctx, *report, cfg, e.notifier, log, e.now())
	return report, nil
}

// fail finalizes a report as failed, persists it and returns err.
func (e *Engine) fail(ctx context.Context, log *zap.Logger, report *Report, err error) (*Report, error) {
	end := e.now()
	report.EndTime = &end
	report.Status = StatusFailed
	report.Error = err.Error()
	report.Discrepancies = []Discrepancy{}

	log.Error("Reconciliation failed", zap.String("report_id", report.ID), zap.Error(err))

	if perr := e.store.PersistReport(ctx, report); perr != nil {
		log.Error("Failed to persist failed report", zap.Error(&PersistenceError{Op: "report", Err: perr}))
	}
	e.stats.invalidate(report.EventID)
	return report, err
}

func (e *Engine) archive(ctx context.Context, log *zap.Logger, report Report) {
	if e.archiver == nil {
		return
	}
	if err := e.archiver.ArchiveReport(ctx, report); err != nil {
		log.Warn("Failed to archive report", zap.String("report_id", report.ID), zap.Error(err))
	}
}

func (e *Engine) findLink(ctx context.Context, eventID, platform string) (PlatformLink, error) {
	links, err := e.store.FetchEventPlatforms(ctx, eventID)
	if err != nil {
		return PlatformLink{}, err
	}
	for _, l := range links {
		if l.Platform == platform {
			return l, nil
		}
	}
	return PlatformLink{}, fmt.Errorf("%w: event %s is not linked to %s", ErrNotFound, eventID, platform)
}

// ReconcileEvent reconciles every platform the event is linked to, in link
// order. A failure on one platform does not stop the others; all errors are
// joined into the returned error.
func (e *Engine) ReconcileEvent(ctx context.Context, eventID string, cfg Config) ([]*Report, error) {
	links, err := e.store.FetchEventPlatforms(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event platforms: %w", err)
	}

	reports := make([]*Report, 0, len(links))
	var errs []error
	for _, l := range links {
		report, err := e.Reconcile(ctx, eventID, l.Platform, cfg)
		if report != nil {
			reports = append(reports, report)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", l.Platform, err))
		}
	}

	return reports, errors.Join(errs...)
}

// Reprocess runs the resolver again over the stored unresolved
// discrepancies of an event on a platform with the given config. It returns
// the number of discrepancies auto-corrected.
func (e *Engine) Reprocess(ctx context.Context, eventID, platform string, cfg Config) (int, error) {
	unlock, err := e.acquire(ctx, eventID, platform)
	if err != nil {
		return 0, err
	}
	defer unlock()

	pending, err := e.store.FetchUnresolvedDiscrepancies(ctx, eventID, platform)
	if err != nil {
		return 0, fmt.Errorf("failed to load unresolved discrepancies: %w", err)
	}

	outcomes, resolved := e.resolver().Resolve(ctx, pending, cfg)
	for i, o := range outcomes {
		if !o.Changed {
			continue
		}
		if err := e.store.UpdateDiscrepancy(ctx, pending[i]); err != nil {
			e.logger.Error("Failed to save discrepancy",
				zap.String("discrepancy_id", o.DiscrepancyID),
				zap.Error(&PersistenceError{Op: "discrepancy", Err: err}))
		}
	}

	e.logger.Info("Reprocessed unresolved discrepancies",
		zap.String("event_id", eventID),
		zap.String("platform", platform),
		zap.Int("pending", len(pending)),
		zap.Int("resolved", resolved))
	return resolved, nil
}

// ResolveDiscrepancy records an operator decision on a discrepancy. Only
// unresolved discrepancies or those awaiting manual review can be resolved.
func (e *Engine) ResolveDiscrepancy(ctx context.Context, id string, resolution Resolution, notes string) (*Discrepancy, error) {
	if err := ValidateResolution(resolution); err != nil {
		return nil, err
	}

	d, err := e.store.GetDiscrepancy(ctx, id)
	if err != nil {
		return nil, err
	}

	unlock, err := e.acquire(ctx, d.EventID, d.Platform)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Re-read under the lock; a run may have resolved it in the meantime.
	d, err = e.store.GetDiscrepancy(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Resolution.IsTerminal() {
		return nil, fmt.Errorf("%w: %s is %s", ErrAlreadyResolved, id, d.Resolution)
	}

	previous := d.Resolution
	d.Resolution = resolution
	d.Notes = sanitizeText(notes)
	d.ResolvedAt = nil
	if resolution.IsTerminal() {
		at := e.now()
		d.ResolvedAt = &at
	}

	err = e.store.Atomic(ctx, func(tx Store) error {
		if err := tx.UpdateDiscrepancy(ctx, *d); err != nil {
			return err
		}
		return tx.LogAction(ctx, AuditEntry{
			ID:       e.newID(),
			EventID:  d.EventID,
			Platform: d.Platform,
			Action:   ActionResolveDiscrepancy,
			Reason:   d.Notes,
			Metadata: map[string]any{
				"discrepancy_id":      d.ID,
				"type":                string(d.Kind()),
				"previous_resolution": string(previous),
				"resolution":          string(resolution),
			},
			CreatedAt: e.now(),
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve discrepancy %s: %w", id, err)
	}

	e.logger.Info("Discrepancy resolved",
		zap.String("discrepancy_id", id),
		zap.String("resolution", string(resolution)))
	return d, nil
}

// ApplyManualAdjustment applies an operator ledger change and its audit
// entry in one transaction.
func (e *Engine) ApplyManualAdjustment(ctx context.Context, eventID, platform string, adj ManualAdjustment) (*AdjustmentResult, error) {
	if eventID == "" || platform == "" {
		return nil, fmt.Errorf("%w: event and platform are required", ErrInvalidAdjustment)
	}
	if err := adj.Validate(); err != nil {
		return nil, err
	}

	unlock, err := e.acquire(ctx, eventID, platform)
	if err != nil {
		return nil, err
	}
	defer unlock()

	result := &AdjustmentResult{SaleID: adj.SaleID, AuditID: e.newID()}
	entry := AuditEntry{
		ID:        result.AuditID,
		EventID:   eventID,
		Platform:  platform,
		Reason:    sanitizeText(adj.Reason),
		Metadata:  map[string]any{"type": string(adj.Type)},
		CreatedAt: e.now(),
	}

	err = e.store.Atomic(ctx, func(tx Store) error {
		switch adj.Type {
		case AdjustAddSale:
			sale := *adj.Sale
			if sale.ID == "" {
				sale.ID = e.newID()
			}
			sale.EventID = eventID
			sale.Platform = platform
			if sale.PlatformOrderID == "" {
				sale.PlatformOrderID = "manual-" + sale.ID
			}
			if sale.PurchaseDate.IsZero() {
				sale.PurchaseDate = e.now()
			}
			if sale.Quantity == 0 {
				sale.Quantity = 1
			}

			inserted, err := tx.InsertSale(ctx, sale, FlagManualEntry)
			if err != nil {
				return err
			}
			if !inserted {
				return fmt.Errorf("%w: order %s already exists", ErrInvalidAdjustment, sale.PlatformOrderID)
			}
			result.SaleID = sale.ID
			entry.Action = ActionManualAddSale
			entry.Metadata["platform_order_id"] = sale.PlatformOrderID
			entry.Metadata["total_amount"] = sale.TotalAmount.String()

		case AdjustRemoveSale:
			if err := tx.DeleteSale(ctx, adj.SaleID); err != nil {
				return err
			}
			entry.Action = ActionManualRemoveSale

		case AdjustUpdateAmount:
			if err := tx.UpdateSaleAmount(ctx, adj.SaleID, *adj.Amount, FlagManualAdjustment); err != nil {
				return err
			}
			entry.Action = ActionManualUpdateAmount
			entry.Metadata["total_amount"] = adj.Amount.String()
		}

		entry.Metadata["sale_id"] = result.SaleID
		return tx.LogAction(ctx, entry)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply %s: %w", adj.Type, err)
	}

	e.logger.Info("Manual adjustment applied",
		zap.String("event_id", eventID),
		zap.String("platform", platform),
		zap.String("type", string(adj.Type)),
		zap.String("sale_id", result.SaleID))
	return result, nil
}

// Stats summarizes the reports of an event within the stats window.
func (e *Engine) Stats(ctx context.Context, eventID string) (Stats, error) {
	return e.stats.getOrBuild(eventID, func() (Stats, error) {
		reports, err := e.store.FetchReportsSince(ctx, eventID, e.now().Add(-e.statsWindow))
		if err != nil {
			return Stats{}, fmt.Errorf("failed to load reports: %w", err)
		}
		return BuildStats(reports), nil
	})
}

// History returns the latest reports of an event, newest first.
func (e *Engine) History(ctx context.Context, eventID string, limit int) ([]Report, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	reports, err := e.store.FetchHistory(ctx, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return reports, nil
}

// Unresolved lists discrepancies of an event that still need attention.
func (e *Engine) Unresolved(ctx context.Context, eventID string) ([]Discrepancy, error) {
	ds, err := e.store.FetchUnresolvedDiscrepancies(ctx, eventID, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load unresolved discrepancies: %w", err)
	}
	return ds, nil
}

func sumLocal(sales []LocalSale) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.TotalAmount)
	}
	return total
}

func sumRemote(sales []PlatformSale) decimal.Decimal {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.TotalAmount)
	}
	return total
}
