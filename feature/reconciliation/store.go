package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ticket-reconciler/core/reconcile"
	"ticket-reconciler/feature/reconciliation/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const discrepancyBatchSize = 100

// Store is the gorm implementation of reconcile.Store.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the reconciliation tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}

// FetchLocalSales returns the ledger rows of an event on a platform.
func (s *Store) FetchLocalSales(ctx context.Context, eventID, platform string) ([]reconcile.LocalSale, error) {
	var rows []models.TicketSale
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND platform = ?", eventID, platform).
		Order("purchase_date, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch local sales: %w", err)
	}

	sales := make([]reconcile.LocalSale, 0, len(rows))
	for _, r := range rows {
		sales = append(sales, r.ToDomain())
	}
	return sales, nil
}

// InsertSale adds a ledger row, ignoring conflicts on (platform, platform_order_id).
func (s *Store) InsertSale(ctx context.Context, sale reconcile.LocalSale, flag reconcile.SaleFlag) (bool, error) {
	row := models.NewTicketSale(sale, flag)
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if res.Error != nil {
		return false, fmt.Errorf("failed to insert sale %s: %w", sale.ID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// UpdateSaleAmount overwrites the total of a ledger row.
func (s *Store) UpdateSaleAmount(ctx context.Context, saleID string, amount decimal.Decimal, flag reconcile.SaleFlag) error {
	res := s.db.WithContext(ctx).Model(&models.TicketSale{}).
		Where("id = ?", saleID).
		Updates(map[string]any{
			"total_amount":        amount,
			"reconciliation_flag": string(flag),
			"updated_at":          time.Now().UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update sale %s: %w", saleID, res.Error)
	}
	if res.RowsAffected == 0 {
		return s.requireExists(ctx, &models.TicketSale{}, saleID)
	}
	return nil
}

// DeleteSale removes a ledger row.
func (s *Store) DeleteSale(ctx context.Context, saleID string) error {
	res := s.db.WithContext(ctx).Where("id = ?", saleID).Delete(&models.TicketSale{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete sale %s: %w", saleID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: sale %s", reconcile.ErrNotFound, saleID)
	}
	return nil
}

// LogAction appends an audit entry.
func (s *Store) LogAction(ctx context.Context, entry reconcile.AuditEntry) error {
	row, err := models.NewReconciliationAuditLog(entry)
	if err != nil {
		return fmt.Errorf("failed to encode audit entry: %w", err)
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// Atomic runs fn in a database transaction.
func (s *Store) Atomic(ctx context.Context, fn func(reconcile.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// PersistReport upserts the report row and its discrepancies.
func (s *Store) PersistReport(ctx context.Context, report *reconcile.Report) error {
	row := models.NewReconciliationReport(*report)

	rows := make([]models.ReconciliationDiscrepancy, 0, len(report.Discrepancies))
	for _, d := range report.Discrepancies {
		r, err := models.NewReconciliationDiscrepancy(d)
		if err != nil {
			return fmt.Errorf("failed to encode discrepancy %s: %w", d.ID, err)
		}
		rows = append(rows, r)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return fmt.Errorf("failed to save report %s: %w", report.ID, err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).CreateInBatches(&rows, discrepancyBatchSize).Error; err != nil {
			return fmt.Errorf("failed to save discrepancies of %s: %w", report.ID, err)
		}
		return nil
	})
}

// GetDiscrepancy loads a discrepancy by id.
func (s *Store) GetDiscrepancy(ctx context.Context, id string) (*reconcile.Discrepancy, error) {
	var row models.ReconciliationDiscrepancy
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: discrepancy %s", reconcile.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load discrepancy %s: %w", id, err)
	}

	d, err := row.ToDomain()
	if err != nil {
		return nil, fmt.Errorf("failed to decode discrepancy %s: %w", id, err)
	}
	return &d, nil
}

// UpdateDiscrepancy saves the resolution state of a discrepancy.
func (s *Store) UpdateDiscrepancy(ctx context.Context, d reconcile.Discrepancy) error {
	res := s.db.WithContext(ctx).Model(&models.ReconciliationDiscrepancy{}).
		Where("id = ?", d.ID).
		Updates(map[string]any{
			"resolution":  string(d.Resolution),
			"resolved_at": d.ResolvedAt,
			"notes":       d.Notes,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update discrepancy %s: %w", d.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return s.requireExists(ctx, &models.ReconciliationDiscrepancy{}, d.ID)
	}
	return nil
}

// FetchUnresolvedDiscrepancies returns unset or manual_review discrepancies, oldest first.
func (s *Store) FetchUnresolvedDiscrepancies(ctx context.Context, eventID, platform string) ([]reconcile.Discrepancy, error) {
	q := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Where("(resolution IN ? OR resolution IS NULL)", []string{string(reconcile.ResolutionNone), string(reconcile.ResolutionManualReview)})
	if platform != "" {
		q = q.Where("platform = ?", platform)
	}

	var rows []models.ReconciliationDiscrepancy
	if err := q.Order("detected_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch unresolved discrepancies: %w", err)
	}
	return toDiscrepancies(rows)
}

// FetchHistory returns the newest reports of an event with their discrepancies.
func (s *Store) FetchHistory(ctx context.Context, eventID string, limit int) ([]reconcile.Report, error) {
	var rows []models.ReconciliationReport
	err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("start_time DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	if len(rows) == 0 {
		return []reconcile.Report{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}

	var drows []models.ReconciliationDiscrepancy
	if err := s.db.WithContext(ctx).Where("report_id IN ?", ids).Order("detected_at, id").Find(&drows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch report discrepancies: %w", err)
	}
	ds, err := toDiscrepancies(drows)
	if err != nil {
		return nil, err
	}

	byReport := make(map[string][]reconcile.Discrepancy, len(rows))
	for _, d := range ds {
		byReport[d.ReportID] = append(byReport[d.ReportID], d)
	}

	reports := make([]reconcile.Report, 0, len(rows))
	for _, r := range rows {
		report := r.ToDomain()
		if found := byReport[r.ID]; found != nil {
			report.Discrepancies = found
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// FetchReportsSince returns the reports started at or after since, oldest first.
func (s *Store) FetchReportsSince(ctx context.Context, eventID string, since time.Time) ([]reconcile.Report, error) {
	var rows []models.ReconciliationReport
	err := s.db.WithContext(ctx).
		Where("event_id = ? AND start_time >= ?", eventID, since.UTC()).
		Order("start_time, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}

	reports := make([]reconcile.Report, 0, len(rows))
	for _, r := range rows {
		reports = append(reports, r.ToDomain())
	}
	return reports, nil
}

// GetReport loads a report with its discrepancies.
func (s *Store) GetReport(ctx context.Context, id string) (*reconcile.Report, error) {
	var row models.ReconciliationReport
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: report %s", reconcile.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load report %s: %w", id, err)
	}

	var drows []models.ReconciliationDiscrepancy
	if err := s.db.WithContext(ctx).Where("report_id = ?", id).Order("detected_at, id").Find(&drows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch report discrepancies: %w", err)
	}
	ds, err := toDiscrepancies(drows)
	if err != nil {
		return nil, err
	}

	report := row.ToDomain()
	report.Discrepancies = ds
	return &report, nil
}

// UpdateEventHealthStatus records the health of the last run on the platform link.
func (s *Store) UpdateEventHealthStatus(ctx context.Context, eventID, platform string, health reconcile.SyncHealth, at time.Time) error {
	at = at.UTC()
	err := s.db.WithContext(ctx).Model(&models.TicketPlatform{}).
		Where("event_id = ? AND platform = ?", eventID, platform).
		Updates(map[string]any{
			"sync_health_status": string(health),
			"last_reconciled_at": &at,
			"updated_at":         at,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update event health: %w", err)
	}
	return nil
}

// FetchEventPlatforms returns the platform links of an event ordered by platform.
func (s *Store) FetchEventPlatforms(ctx context.Context, eventID string) ([]reconcile.PlatformLink, error) {
	var rows []models.TicketPlatform
	if err := s.db.WithContext(ctx).Where("event_id = ?", eventID).Order("platform").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch event platforms: %w", err)
	}

	links := make([]reconcile.PlatformLink, 0, len(rows))
	for _, r := range rows {
		links = append(links, r.ToDomain())
	}
	return links, nil
}

// LinkPlatform creates or updates the link between an event and a platform event.
func (s *Store) LinkPlatform(ctx context.Context, link reconcile.PlatformLink) error {
	row := models.TicketPlatform{
		EventID:         link.EventID,
		Platform:        link.Platform,
		ExternalEventID: link.ExternalEventID,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_id"}, {Name: "platform"}},
		DoUpdates: clause.AssignmentColumns([]string{"external_event_id", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to link %s to %s: %w", link.EventID, link.Platform, err)
	}
	return nil
}

// FetchAuditLog returns the newest audit entries of an event.
func (s *Store) FetchAuditLog(ctx context.Context, eventID string, limit int) ([]reconcile.AuditEntry, error) {
	var rows []models.ReconciliationAuditLog
	err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch audit log: %w", err)
	}

	entries := make([]reconcile.AuditEntry, 0, len(rows))
	for _, r := range rows {
		e, err := r.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode audit entry %s: %w", r.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *Store) requireExists(ctx context.Context, model any, id string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", reconcile.ErrNotFound, id)
	}
	return nil
}

func toDiscrepancies(rows []models.ReconciliationDiscrepancy) ([]reconcile.Discrepancy, error) {
	ds := make([]reconcile.Discrepancy, 0, len(rows))
	for _, r := range rows {
		d, err := r.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("failed to decode discrepancy %s: %w", r.ID, err)
		}
		ds = append(ds, d)
	}
	return ds, nil
}
