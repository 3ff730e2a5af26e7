package checks

import (
	"context"
	"testing"
	"time"

	"ticket-reconciler/core/database"
	"ticket-reconciler/core/reconcile"
	"ticket-reconciler/feature/reconciliation/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var checkedAt = time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func setupSQLite(t *testing.T, migrate bool) *gorm.DB {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	if migrate {
		require.NoError(t, db.AutoMigrate(models.All()...))
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func sale(id, event, order, amount string, qty int, name, email string) models.TicketSale {
	return models.TicketSale{
		ID: id, EventID: event, Platform: "humanitix", PlatformOrderID: order,
		TotalAmount: decimal.RequireFromString(amount), Quantity: qty,
		CustomerName: name, CustomerEmail: email, PurchaseDate: checkedAt,
	}
}

func issueByRule(report *LedgerReport, rule string) *Issue {
	for i := range report.Issues {
		if report.Issues[i].Rule == rule {
			return &report.Issues[i]
		}
	}
	return nil
}

func TestCheckLedger(t *testing.T) {
	db := setupSQLite(t, true)
	rows := []models.TicketSale{
		sale("S1", "evt-1", "A-1", "-5.00", 1, "Ann", "ann@example.com"),
		sale("S2", "evt-1", "A-2", "10.00", 0, "", "not-an-email"),
		sale("S3", "evt-1", "A-3", "20.00", 2, "Cy", "cy@example.com"),
		sale("X1", "evt-2", "B-1", "-1.00", 1, "Dee", "dee@example.com"),
	}
	require.NoError(t, db.Create(&rows).Error)

	report, err := CheckLedger(context.Background(), db, "evt-1", LedgerRules, checkedAt)
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, report.Status)
	assert.Equal(t, checkedAt, report.CheckedAt)
	require.Len(t, report.Issues, 4)

	negative := issueByRule(report, "negative_amounts")
	require.NotNil(t, negative)
	assert.Equal(t, reconcile.SeverityCritical, negative.Severity)
	assert.Equal(t, []string{"S1"}, negative.AffectedRecords)

	assert.Equal(t, []string{"S2"}, issueByRule(report, "zero_ticket_quantity").AffectedRecords)
	assert.Equal(t, []string{"S2"}, issueByRule(report, "missing_customer_info").AffectedRecords)
	assert.Equal(t, []string{"S2"}, issueByRule(report, "invalid_email_format").AffectedRecords)
	assert.Nil(t, issueByRule(report, "duplicate_ticket_sales"))
}

func TestCheckLedger_Clean(t *testing.T) {
	db := setupSQLite(t, true)
	row := sale("S1", "evt-1", "A-1", "15.00", 1, "Ann", "ann@example.com")
	require.NoError(t, db.Create(&row).Error)

	report, err := CheckLedger(context.Background(), db, "evt-1", LedgerRules, checkedAt)
	require.NoError(t, err)
	assert.Equal(t, StatusPassed, report.Status)
	assert.Empty(t, report.Issues)
}

func TestCheckLedger_MediumIssuesWarn(t *testing.T) {
	db := setupSQLite(t, true)
	row := sale("S1", "evt-1", "A-1", "15.00", 1, "Ann", "ann@localhost")
	require.NoError(t, db.Create(&row).Error)

	report, err := CheckLedger(context.Background(), db, "evt-1", LedgerRules, checkedAt)
	require.NoError(t, err)
	assert.Equal(t, StatusWarning, report.Status)
	assert.Equal(t, []string{"S1"}, issueByRule(report, "invalid_email_format").AffectedRecords)
}

func TestCheckLedger_DuplicateOrders(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"platform", "platform_order_id"}).AddRow("eventbrite", "E-9")
	mock.ExpectQuery("SELECT platform, platform_order_id FROM `ticket_sales`.*GROUP BY platform, platform_order_id HAVING COUNT\\(\\*\\) > 1").
		WillReturnRows(rows)

	rules := []Rule{LedgerRules[4]}
	report, err := CheckLedger(context.Background(), db, "evt-1", rules, checkedAt)
	require.NoError(t, err)

	assert.Equal(t, StatusWarning, report.Status)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, []string{"eventbrite:E-9"}, report.Issues[0].AffectedRecords)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckLedger_RuleError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(".*").WillReturnError(assert.AnError)

	report, err := CheckLedger(context.Background(), db, "evt-1", LedgerRules[:1], checkedAt)
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, report.Status)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "rule_execution_error", report.Issues[0].Rule)
	assert.Equal(t, reconcile.SeverityHigh, report.Issues[0].Severity)
}

func TestCheckLedger_NilDB(t *testing.T) {
	report, err := CheckLedger(context.Background(), nil, "evt-1", LedgerRules, checkedAt)
	assert.Error(t, err)
	assert.Nil(t, report)
}
