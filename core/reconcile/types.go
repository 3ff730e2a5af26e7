package reconcile

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supported ticketing platforms.
const (
	PlatformHumanitix  = "humanitix"
	PlatformEventbrite = "eventbrite"
)

// Kind identifies the type of a discrepancy.
type Kind string

const (
	KindMissingSale       Kind = "missing_sale"
	KindAmountMismatch    Kind = "amount_mismatch"
	KindDuplicateSale     Kind = "duplicate_sale"
	KindDataInconsistency Kind = "data_inconsistency"
)

// Severity grades how urgently a discrepancy needs attention.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Resolution records what happened to a discrepancy. The zero value means unresolved.
type Resolution string

const (
	ResolutionNone            Resolution = ""
	ResolutionAutoCorrected   Resolution = "auto_corrected"
	ResolutionManualReview    Resolution = "manual_review"
	ResolutionIgnored         Resolution = "ignored"
	ResolutionPlatformUpdated Resolution = "platform_updated"
)

// IsTerminal reports whether no further transition is allowed.
func (r Resolution) IsTerminal() bool {
	switch r {
	case ResolutionAutoCorrected, ResolutionIgnored, ResolutionPlatformUpdated:
		return true
	}
	return false
}

// ReportStatus is the lifecycle state of a reconciliation run.
type ReportStatus string

const (
	StatusRunning   ReportStatus = "running"
	StatusCompleted ReportStatus = "completed"
	StatusFailed    ReportStatus = "failed"
)

// SyncHealth is the coarse health grade of a run.
type SyncHealth string

const (
	HealthHealthy  SyncHealth = "healthy"
	HealthWarning  SyncHealth = "warning"
	HealthCritical SyncHealth = "critical"
)

// SaleFlag marks how a ledger row was last written.
type SaleFlag string

const (
	FlagReconciliationImport    SaleFlag = "reconciliation_import"
	FlagReconciliationCorrected SaleFlag = "reconciliation_corrected"
	FlagManualEntry             SaleFlag = "manual_entry"
	FlagManualAdjustment        SaleFlag = "manual_adjustment"
)

// LocalSale is one row of the internal ticket sales ledger.
type LocalSale struct {
	ID              string          `json:"id"`
	EventID         string          `json:"event_id"`
	Platform        string          `json:"platform"`
	PlatformOrderID string          `json:"platform_order_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PurchaseDate    time.Time       `json:"purchase_date"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerName    string          `json:"customer_name"`
	TicketType      string          `json:"ticket_type"`
	Quantity        int             `json:"quantity"`
}

// PlatformSale is an order as reported by an external platform, already
// normalized. It only exists for the duration of a run.
type PlatformSale struct {
	OrderID       string          `json:"order_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PurchaseDate  time.Time       `json:"purchase_date"`
	CustomerEmail string          `json:"customer_email"`
	CustomerName  string          `json:"customer_name"`
	TicketType    string          `json:"ticket_type"`
	Quantity      int             `json:"quantity"`
}

// ToLocal converts a platform order into a ledger row for the given event.
func (p PlatformSale) ToLocal(id, eventID, platform string) LocalSale {
	return LocalSale{
		ID:              id,
		EventID:         eventID,
		Platform:        platform,
		PlatformOrderID: p.OrderID,
		TotalAmount:     p.TotalAmount,
		PurchaseDate:    p.PurchaseDate,
		CustomerEmail:   p.CustomerEmail,
		CustomerName:    p.CustomerName,
		TicketType:      p.TicketType,
		Quantity:        p.Quantity,
	}
}

// PlatformLink ties an internal event to its id on an external platform.
type PlatformLink struct {
	EventID         string `json:"event_id"`
	Platform        string `json:"platform"`
	ExternalEventID string `json:"external_event_id"`
}

// Report is the outcome of one reconciliation run.
type Report struct {
	ID                    string          `json:"id"`
	EventID               string          `json:"event_id"`
	Platform              string          `json:"platform"`
	StartTime             time.Time       `json:"start_time"`
	EndTime               *time.Time      `json:"end_time,omitempty"`
	Status                ReportStatus    `json:"status"`
	TotalLocalSales       int             `json:"total_local_sales"`
	TotalPlatformSales    int             `json:"total_platform_sales"`
	TotalLocalRevenue     decimal.Decimal `json:"total_local_revenue"`
	TotalPlatformRevenue  decimal.Decimal `json:"total_platform_revenue"`
	DiscrepanciesFound    int             `json:"discrepancies_found"`
	DiscrepanciesResolved int             `json:"discrepancies_resolved"`
	SyncHealth            SyncHealth      `json:"sync_health"`
	Discrepancies         []Discrepancy   `json:"discrepancies"`
	Error                 string          `json:"error,omitempty"`
}

// RevenueDifference is the absolute gap between local and platform revenue.
func (r Report) RevenueDifference() decimal.Decimal {
	return r.TotalLocalRevenue.Sub(r.TotalPlatformRevenue).Abs()
}

// Audit actions written by the resolver and the manual adjustment applier.
const (
	ActionImportSale         = "import_sale"
	ActionCorrectAmount      = "correct_amount"
	ActionResolveDiscrepancy = "resolve_discrepancy"
	ActionManualAddSale      = "manual_add_sale"
	ActionManualRemoveSale   = "manual_remove_sale"
	ActionManualUpdateAmount = "manual_update_amount"
)

// AuditEntry is an append-only record of a ledger or discrepancy mutation.
type AuditEntry struct {
	ID        string         `json:"id"`
	EventID   string         `json:"event_id"`
	Platform  string         `json:"platform"`
	Action    string         `json:"action"`
	Reason    string         `json:"reason"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
