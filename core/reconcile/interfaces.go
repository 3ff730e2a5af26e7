package reconcile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ledger is the internal ticket sales ledger.
type Ledger interface {
	// FetchLocalSales returns every ledger row of an event on a platform.
	FetchLocalSales(ctx context.Context, eventID, platform string) ([]LocalSale, error)

	// InsertSale adds a row. A conflict on (platform, platform_order_id) is
	// not an error: it returns false and leaves the existing row untouched.
	InsertSale(ctx context.Context, sale LocalSale, flag SaleFlag) (bool, error)

	// UpdateSaleAmount overwrites the total of a row. Returns ErrNotFound if
	// the row does not exist.
	UpdateSaleAmount(ctx context.Context, saleID string, amount decimal.Decimal, flag SaleFlag) error

	// DeleteSale removes a row. Returns ErrNotFound if the row does not exist.
	DeleteSale(ctx context.Context, saleID string) error

	// LogAction appends an audit entry.
	LogAction(ctx context.Context, entry AuditEntry) error
}

// Store is the persistence surface of the engine.
type Store interface {
	Ledger

	// Atomic runs fn inside a transaction. A returned error rolls back every
	// write made through the Store passed to fn.
	Atomic(ctx context.Context, fn func(Store) error) error

	// PersistReport upserts the report and its discrepancies by id.
	PersistReport(ctx context.Context, report *Report) error

	// GetDiscrepancy returns ErrNotFound for unknown ids.
	GetDiscrepancy(ctx context.Context, id string) (*Discrepancy, error)

	// UpdateDiscrepancy saves resolution state of an existing discrepancy.
	UpdateDiscrepancy(ctx context.Context, d Discrepancy) error

	// FetchUnresolvedDiscrepancies returns discrepancies that are unset or
	// awaiting manual review. An empty platform matches every platform.
	FetchUnresolvedDiscrepancies(ctx context.Context, eventID, platform string) ([]Discrepancy, error)

	// FetchHistory returns the newest reports first.
	FetchHistory(ctx context.Context, eventID string, limit int) ([]Report, error)

	// FetchReportsSince returns reports started at or after since, oldest first.
	FetchReportsSince(ctx context.Context, eventID string, since time.Time) ([]Report, error)

	UpdateEventHealthStatus(ctx context.Context, eventID, platform string, health SyncHealth, at time.Time) error

	// FetchEventPlatforms returns the platforms an event is linked to.
	FetchEventPlatforms(ctx context.Context, eventID string) ([]PlatformLink, error)
}

// PlatformFetcher loads normalized orders for an event from its platform.
type PlatformFetcher interface {
	FetchPlatformSales(ctx context.Context, link PlatformLink) ([]PlatformSale, error)
}

// Notifier delivers alerts to operators.
type Notifier interface {
	NotifyReconciliationAlert(ctx context.Context, alert Alert) error
}

// Archiver keeps a copy of finished reports outside the database.
type Archiver interface {
	ArchiveReport(ctx context.Context, report Report) error
}

// IDGenerator returns a fresh unique id on every call.
type IDGenerator func() string

// UUIDGenerator is the default IDGenerator.
func UUIDGenerator() string {
	return uuid.NewString()
}
