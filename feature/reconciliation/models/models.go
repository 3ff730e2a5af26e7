package models

import (
	"encoding/json"
	"time"

	"ticket-reconciler/core/reconcile"

	"github.com/shopspring/decimal"
)

// TicketSale is a row of the 'ticket_sales' ledger table.
type TicketSale struct {
	ID                 string          `gorm:"column:id;primaryKey;size:64"`
	EventID            string          `gorm:"column:event_id;size:64;index:idx_sales_event_platform"`
	Platform           string          `gorm:"column:platform;size:32;index:idx_sales_event_platform;uniqueIndex:idx_sales_platform_order"`
	PlatformOrderID    string          `gorm:"column:platform_order_id;size:191;uniqueIndex:idx_sales_platform_order"`
	TotalAmount        decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2);not null"`
	PurchaseDate       time.Time       `gorm:"column:purchase_date"`
	CustomerEmail      string          `gorm:"column:customer_email;size:255"`
	CustomerName       string          `gorm:"column:customer_name;size:255"`
	TicketType         string          `gorm:"column:ticket_type;size:255"`
	Quantity           int             `gorm:"column:quantity"`
	ReconciliationFlag string          `gorm:"column:reconciliation_flag;size:32"`
	CreatedAt          time.Time       `gorm:"column:created_at"`
	UpdatedAt          time.Time       `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (TicketSale) TableName() string {
	return "ticket_sales"
}

// ToDomain converts the row to a ledger sale.
func (s TicketSale) ToDomain() reconcile.LocalSale {
	return reconcile.LocalSale{
		ID:              s.ID,
		EventID:         s.EventID,
		Platform:        s.Platform,
		PlatformOrderID: s.PlatformOrderID,
		TotalAmount:     s.TotalAmount,
		PurchaseDate:    s.PurchaseDate.UTC(),
		CustomerEmail:   s.CustomerEmail,
		CustomerName:    s.CustomerName,
		TicketType:      s.TicketType,
		Quantity:        s.Quantity,
	}
}

// NewTicketSale builds a row from a ledger sale.
func NewTicketSale(s reconcile.LocalSale, flag reconcile.SaleFlag) TicketSale {
	return TicketSale{
		ID:                 s.ID,
		EventID:            s.EventID,
		Platform:           s.Platform,
		PlatformOrderID:    s.PlatformOrderID,
		TotalAmount:        s.TotalAmount,
		PurchaseDate:       s.PurchaseDate.UTC(),
		CustomerEmail:      s.CustomerEmail,
		CustomerName:       s.CustomerName,
		TicketType:         s.TicketType,
		Quantity:           s.Quantity,
		ReconciliationFlag: string(flag),
	}
}

// TicketPlatform links an event to its id on an external platform.
type TicketPlatform struct {
	EventID          string     `gorm:"column:event_id;primaryKey;size:64"`
	Platform         string     `gorm:"column:platform;primaryKey;size:32"`
	ExternalEventID  string     `gorm:"column:external_event_id;size:191"`
	SyncHealthStatus string     `gorm:"column:sync_health_status;size:16"`
	LastReconciledAt *time.Time `gorm:"column:last_reconciled_at"`
	CreatedAt        time.Time  `gorm:"column:created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

// TableName overrides the table name.
func (TicketPlatform) TableName() string {
	return "ticket_platforms"
}

// ToDomain converts the row to a platform link.
func (p TicketPlatform) ToDomain() reconcile.PlatformLink {
	return reconcile.PlatformLink{
		EventID:         p.EventID,
		Platform:        p.Platform,
		ExternalEventID: p.ExternalEventID,
	}
}

// ReconciliationReport is a row of 'reconciliation_reports'.
type ReconciliationReport struct {
	ID                    string          `gorm:"column:id;primaryKey;size:64"`
	EventID               string          `gorm:"column:event_id;size:64;index:idx_reports_event_start"`
	Platform              string          `gorm:"column:platform;size:32"`
	StartTime             time.Time       `gorm:"column:start_time;index:idx_reports_event_start"`
	EndTime               *time.Time      `gorm:"column:end_time"`
	Status                string          `gorm:"column:status;size:16"`
	TotalLocalSales       int             `gorm:"column:total_local_sales"`
	TotalPlatformSales    int             `gorm:"column:total_platform_sales"`
	TotalLocalRevenue     decimal.Decimal `gorm:"column:total_local_revenue;type:decimal(12,2)"`
	TotalPlatformRevenue  decimal.Decimal `gorm:"column:total_platform_revenue;type:decimal(12,2)"`
	DiscrepanciesFound    int             `gorm:"column:discrepancies_found"`
	DiscrepanciesResolved int             `gorm:"column:discrepancies_resolved"`
	SyncHealth            string          `gorm:"column:sync_health;size:16"`
	Error                 string          `gorm:"column:error;type:text"`
}

// TableName overrides the table name.
func (ReconciliationReport) TableName() string {
	return "reconciliation_reports"
}

// NewReconciliationReport builds a row from a report. Discrepancies are stored separately.
func NewReconciliationReport(r reconcile.Report) ReconciliationReport {
	return ReconciliationReport{
		ID:                    r.ID,
		EventID:               r.EventID,
		Platform:              r.Platform,
		StartTime:             r.StartTime.UTC(),
		EndTime:               r.EndTime,
		Status:                string(r.Status),
		TotalLocalSales:       r.TotalLocalSales,
		TotalPlatformSales:    r.TotalPlatformSales,
		TotalLocalRevenue:     r.TotalLocalRevenue,
		TotalPlatformRevenue:  r.TotalPlatformRevenue,
		DiscrepanciesFound:    r.DiscrepanciesFound,
		DiscrepanciesResolved: r.DiscrepanciesResolved,
		SyncHealth:            string(r.SyncHealth),
		Error:                 r.Error,
	}
}

// ToDomain converts the row to a report without discrepancies.
func (r ReconciliationReport) ToDomain() reconcile.Report {
	var end *time.Time
	if r.EndTime != nil {
		t := r.EndTime.UTC()
		end = &t
	}
	return reconcile.Report{
		ID:                    r.ID,
		EventID:               r.EventID,
		Platform:              r.Platform,
		StartTime:             r.StartTime.UTC(),
		EndTime:               end,
		Status:                reconcile.ReportStatus(r.Status),
		TotalLocalSales:       r.TotalLocalSales,
		TotalPlatformSales:    r.TotalPlatformSales,
		TotalLocalRevenue:     r.TotalLocalRevenue,
		TotalPlatformRevenue:  r.TotalPlatformRevenue,
		DiscrepanciesFound:    r.DiscrepanciesFound,
		DiscrepanciesResolved: r.DiscrepanciesResolved,
		SyncHealth:            reconcile.SyncHealth(r.SyncHealth),
		Discrepancies:         []reconcile.Discrepancy{},
		Error:                 r.Error,
	}
}

// ReconciliationDiscrepancy is a row of 'reconciliation_discrepancies'.
// Finding payloads are kept as JSON text.
type ReconciliationDiscrepancy struct {
	ID            string     `gorm:"column:id;primaryKey;size:64"`
	ReportID      string     `gorm:"column:report_id;size:64;index"`
	EventID       string     `gorm:"column:event_id;size:64;index:idx_discrepancies_event"`
	Platform      string     `gorm:"column:platform;size:32;index:idx_discrepancies_event"`
	Type          string     `gorm:"column:type;size:32"`
	Severity      string     `gorm:"column:severity;size:16"`
	LocalData     string     `gorm:"column:local_data;type:text"`
	PlatformData  string     `gorm:"column:platform_data;type:text"`
	Difference    string     `gorm:"column:difference;type:text"`
	RelatedSaleID string     `gorm:"column:related_sale_id;size:64"`
	DetectedAt    time.Time  `gorm:"column:detected_at"`
	Resolution    string     `gorm:"column:resolution;size:32;index"`
	ResolvedAt    *time.Time `gorm:"column:resolved_at"`
	Notes         string     `gorm:"column:notes;type:text"`
}

// TableName overrides the table name.
func (ReconciliationDiscrepancy) TableName() string {
	return "reconciliation_discrepancies"
}

// NewReconciliationDiscrepancy builds a row from a discrepancy.
func NewReconciliationDiscrepancy(d reconcile.Discrepancy) (ReconciliationDiscrepancy, error) {
	row := ReconciliationDiscrepancy{
		ID:            d.ID,
		ReportID:      d.ReportID,
		EventID:       d.EventID,
		Platform:      d.Platform,
		Type:          string(d.Kind()),
		Severity:      string(d.Severity),
		RelatedSaleID: d.RelatedSaleID(),
		DetectedAt:    d.DetectedAt.UTC(),
		Resolution:    string(d.Resolution),
		ResolvedAt:    d.ResolvedAt,
		Notes:         d.Notes,
	}

	var err error
	if row.LocalData, err = encode(d.LocalData()); err != nil {
		return row, err
	}
	if row.PlatformData, err = encode(d.PlatformData()); err != nil {
		return row, err
	}
	if row.Difference, err = encode(d.Difference()); err != nil {
		return row, err
	}
	return row, nil
}

// ToDomain rebuilds the discrepancy and its finding.
func (r ReconciliationDiscrepancy) ToDomain() (reconcile.Discrepancy, error) {
	var (
		local    *reconcile.LocalSale
		platform *reconcile.PlatformSale
		diff     *reconcile.Difference
	)
	if err := decode(r.LocalData, &local); err != nil {
		return reconcile.Discrepancy{}, err
	}
	if err := decode(r.PlatformData, &platform); err != nil {
		return reconcile.Discrepancy{}, err
	}
	if err := decode(r.Difference, &diff); err != nil {
		return reconcile.Discrepancy{}, err
	}

	finding, err := reconcile.NewFinding(reconcile.Kind(r.Type), local, platform, diff, r.RelatedSaleID)
	if err != nil {
		return reconcile.Discrepancy{}, err
	}

	var resolvedAt *time.Time
	if r.ResolvedAt != nil {
		t := r.ResolvedAt.UTC()
		resolvedAt = &t
	}

	return reconcile.Discrepancy{
		ID:         r.ID,
		ReportID:   r.ReportID,
		EventID:    r.EventID,
		Platform:   r.Platform,
		Finding:    finding,
		Severity:   reconcile.Severity(r.Severity),
		DetectedAt: r.DetectedAt.UTC(),
		Resolution: reconcile.Resolution(r.Resolution),
		ResolvedAt: resolvedAt,
		Notes:      r.Notes,
	}, nil
}

// ReconciliationAuditLog is a row of the append-only 'reconciliation_audit_log'.
type ReconciliationAuditLog struct {
	ID        string    `gorm:"column:id;primaryKey;size:64"`
	EventID   string    `gorm:"column:event_id;size:64;index"`
	Platform  string    `gorm:"column:platform;size:32"`
	Action    string    `gorm:"column:action;size:32"`
	Reason    string    `gorm:"column:reason;type:text"`
	Metadata  string    `gorm:"column:metadata;type:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName overrides the table name.
func (ReconciliationAuditLog) TableName() string {
	return "reconciliation_audit_log"
}

// NewReconciliationAuditLog builds a row from an audit entry.
func NewReconciliationAuditLog(e reconcile.AuditEntry) (ReconciliationAuditLog, error) {
	meta := ""
	if len(e.Metadata) > 0 {
		b, err := json.Marshal(e.Metadata)
		if err != nil {
			return ReconciliationAuditLog{}, err
		}
		meta = string(b)
	}
	return ReconciliationAuditLog{
		ID:        e.ID,
		EventID:   e.EventID,
		Platform:  e.Platform,
		Action:    e.Action,
		Reason:    e.Reason,
		Metadata:  meta,
		CreatedAt: e.CreatedAt.UTC(),
	}, nil
}

// ToDomain converts the row to an audit entry.
func (a ReconciliationAuditLog) ToDomain() (reconcile.AuditEntry, error) {
	var meta map[string]any
	if err := decode(a.Metadata, &meta); err != nil {
		return reconcile.AuditEntry{}, err
	}
	return reconcile.AuditEntry{
		ID:        a.ID,
		EventID:   a.EventID,
		Platform:  a.Platform,
		Action:    a.Action,
		Reason:    a.Reason,
		Metadata:  meta,
		CreatedAt: a.CreatedAt.UTC(),
	}, nil
}

// All lists every model managed by AutoMigrate.
func All() []any {
	return []any{
		&TicketSale{},
		&TicketPlatform{},
		&ReconciliationReport{},
		&ReconciliationDiscrepancy{},
		&ReconciliationAuditLog{},
	}
}

func encode[T any](v *T) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decode(s string, out any) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), out)
}
