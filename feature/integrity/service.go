package integrity

import (
	"context"
	"errors"
	"time"

	"ticket-reconciler/core/storage"
	"ticket-reconciler/feature/integrity/checks"
	"ticket-reconciler/feature/reconciliation/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errStorageDisabled = errors.New("object storage is not configured")

// Service handles integrity checks.
type Service struct {
	client storage.Client
	bucket string
	region string
	logger *zap.Logger
	db     *gorm.DB
	now    func() time.Time
}

// NewService creates a new integrity service. client may be nil when no
// object storage is configured.
func NewService(client storage.Client, bucket, region string, logger *zap.Logger, db *gorm.DB) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		region: region,
		logger: logger,
		db:     db,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CheckLedger runs the ledger rules for an event.
func (s *Service) CheckLedger(ctx context.Context, eventID string) (*checks.LedgerReport, error) {
	report, err := checks.CheckLedger(ctx, s.db, eventID, checks.LedgerRules, s.now())
	if err != nil {
		return nil, err
	}
	if report.Status != checks.StatusPassed {
		s.logger.Warn("Ledger integrity issues found",
			zap.String("event_id", eventID),
			zap.String("status", report.Status),
			zap.Int("issues", len(report.Issues)))
	}
	return report, nil
}

// CheckSchema compares the reconciliation tables with their models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db, models.All()...)
}

// CheckStructure reports missing archive folders.
func (s *Service) CheckStructure(ctx context.Context) (*checks.StorageReport, error) {
	if s.client == nil {
		return nil, errStorageDisabled
	}
	return checks.CheckStructure(ctx, s.client, s.bucket)
}

// FixStructure creates the bucket and missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	if s.client == nil {
		return errStorageDisabled
	}
	return checks.FixStructure(ctx, s.client, s.bucket, s.region, s.logger, missing)
}
