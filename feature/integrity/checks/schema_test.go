package checks

import (
	"testing"

	"ticket-reconciler/feature/reconciliation/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckSchema_NilDB(t *testing.T) {
	report, err := CheckSchema(nil, models.All()...)
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckSchema_MigratedSQLite(t *testing.T) {
	db := setupSQLite(t, true)

	report, err := CheckSchema(db, models.All()...)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", report.Driver)
	assert.True(t, report.Matched, "%+v", report.Tables)
	assert.Len(t, report.Tables, 5)
	assert.Equal(t, "ok", report.Tables["ticket_sales"].Status)
}

func TestCheckSchema_MissingTable(t *testing.T) {
	db := setupSQLite(t, false)

	report, err := CheckSchema(db, &models.TicketSale{})
	require.NoError(t, err)
	assert.False(t, report.Matched)

	tbl := report.Tables["ticket_sales"]
	assert.Equal(t, "missing", tbl.Status)
	assert.Contains(t, tbl.MissingColumns, "platform_order_id")
}

func TestCheckSchema_TypeMismatch(t *testing.T) {
	db, mock := setupMockDB(t)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("id", "varchar(64)", "NO", "PRI", nil, "").
		AddRow("event_id", "varchar(64)", "YES", "MUL", nil, "").
		AddRow("platform", "varchar(32)", "YES", "", nil, "").
		AddRow("platform_order_id", "varchar(191)", "YES", "", nil, "").
		AddRow("total_amount", "DOUBLE", "NO", "", nil, "").
		AddRow("purchase_date", "datetime(3)", "YES", "", nil, "").
		AddRow("customer_email", "varchar(255)", "YES", "", nil, "").
		AddRow("customer_name", "varchar(255)", "YES", "", nil, "").
		AddRow("ticket_type", "varchar(255)", "YES", "", nil, "").
		AddRow("quantity", "bigint", "YES", "", nil, "").
		AddRow("created_at", "datetime(3)", "YES", "", nil, "").
		AddRow("updated_at", "datetime(3)", "YES", "", nil, "")
	mock.ExpectQuery("SHOW COLUMNS FROM `ticket_sales`").WillReturnRows(rows)

	report, err := CheckSchema(db, &models.TicketSale{})
	require.NoError(t, err)
	assert.False(t, report.Matched)

	tbl := report.Tables["ticket_sales"]
	assert.Equal(t, "error", tbl.Status)
	assert.Equal(t, []string{"reconciliation_flag"}, tbl.MissingColumns)
	require.Len(t, tbl.TypeMismatches, 1)
	assert.Contains(t, tbl.TypeMismatches[0], "total_amount: expected decimal(12,2), got double")
}

func TestCheckSchema_InspectError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("SHOW COLUMNS FROM `ticket_sales`").WillReturnError(assert.AnError)

	report, err := CheckSchema(db, &models.TicketSale{})
	require.NoError(t, err)
	assert.False(t, report.Matched)
	assert.Len(t, report.Errors, 1)
}

func TestParseGormTags(t *testing.T) {
	tag := "column:total_amount;type:decimal(12,2);not null"
	assert.Equal(t, "total_amount", parseGormColumn(tag))
	assert.Equal(t, "decimal(12,2)", parseGormType(tag))
	assert.Empty(t, parseGormType("column:id;primaryKey"))
}
