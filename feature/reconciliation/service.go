package reconciliation

import (
	"context"
	"errors"
	"fmt"

	"ticket-reconciler/core/reconcile"

	"go.uber.org/zap"
)

const defaultAuditLimit = 50

// ErrArchiveDisabled is returned when no object storage is configured.
var ErrArchiveDisabled = errors.New("report archive is disabled")

// Service exposes reconciliation operations to the HTTP handler and the CLI.
type Service struct {
	engine  *reconcile.Engine
	store   *Store
	archive *Archive
	cfg     reconcile.Config
	logger  *zap.Logger
}

// NewService creates a reconciliation service. archive may be nil.
func NewService(engine *reconcile.Engine, store *Store, archive *Archive, cfg reconcile.Config, logger *zap.Logger) *Service {
	return &Service{
		engine:  engine,
		store:   store,
		archive: archive,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run reconciles one platform of an event, or all of them when platform is empty.
func (s *Service) Run(ctx context.Context, eventID, platform string) ([]*reconcile.Report, error) {
	if platform != "" {
		report, err := s.engine.Reconcile(ctx, eventID, platform, s.cfg)
		if report == nil {
			return nil, err
		}
		return []*reconcile.Report{report}, err
	}
	return s.engine.ReconcileEvent(ctx, eventID, s.cfg)
}

// Stats returns the health summary of an event.
func (s *Service) Stats(ctx context.Context, eventID string) (reconcile.Stats, error) {
	return s.engine.Stats(ctx, eventID)
}

// History returns the latest reports of an event.
func (s *Service) History(ctx context.Context, eventID string, limit int) ([]reconcile.Report, error) {
	return s.engine.History(ctx, eventID, limit)
}

// Report returns a stored report.
func (s *Service) Report(ctx context.Context, reportID string) (*reconcile.Report, error) {
	return s.store.GetReport(ctx, reportID)
}

// Unresolved lists the open discrepancies of an event.
func (s *Service) Unresolved(ctx context.Context, eventID string) ([]reconcile.Discrepancy, error) {
	return s.engine.Unresolved(ctx, eventID)
}

// Resolve records an operator decision on a discrepancy.
func (s *Service) Resolve(ctx context.Context, id string, resolution reconcile.Resolution, notes string) (*reconcile.Discrepancy, error) {
	return s.engine.ResolveDiscrepancy(ctx, id, resolution, notes)
}

// Adjust applies a manual ledger change.
func (s *Service) Adjust(ctx context.Context, eventID, platform string, adj reconcile.ManualAdjustment) (*reconcile.AdjustmentResult, error) {
	return s.engine.ApplyManualAdjustment(ctx, eventID, platform, adj)
}

// Reprocess re-runs automatic resolution over open discrepancies with the current config.
// An empty platform reprocesses every linked platform.
func (s *Service) Reprocess(ctx context.Context, eventID, platform string) (int, error) {
	if platform != "" {
		return s.engine.Reprocess(ctx, eventID, platform, s.cfg)
	}

	links, err := s.store.FetchEventPlatforms(ctx, eventID)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, l := range links {
		n, err := s.engine.Reprocess(ctx, eventID, l.Platform, s.cfg)
		if err != nil {
			return total, fmt.Errorf("%s: %w", l.Platform, err)
		}
		total += n
	}
	return total, nil
}

// LinkPlatform connects an event to its id on a platform.
func (s *Service) LinkPlatform(ctx context.Context, link reconcile.PlatformLink) error {
	if err := s.store.LinkPlatform(ctx, link); err != nil {
		return err
	}
	s.logger.Info("Event linked to platform",
		zap.String("event_id", link.EventID),
		zap.String("platform", link.Platform),
		zap.String("external_event_id", link.ExternalEventID))
	return nil
}

// Platforms returns the platform links of an event.
func (s *Service) Platforms(ctx context.Context, eventID string) ([]reconcile.PlatformLink, error) {
	return s.store.FetchEventPlatforms(ctx, eventID)
}

// AuditLog returns the newest audit entries of an event.
func (s *Service) AuditLog(ctx context.Context, eventID string, limit int) ([]reconcile.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	return s.store.FetchAuditLog(ctx, eventID, limit)
}

// ArchivedReports lists archived report files of an event.
func (s *Service) ArchivedReports(ctx context.Context, eventID string) ([]string, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.List(ctx, eventID)
}

// ArchivedReport returns the content of an archived report file.
func (s *Service) ArchivedReport(ctx context.Context, eventID, reportID, format string) ([]byte, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.Read(ctx, eventID, reportID, format)
}
