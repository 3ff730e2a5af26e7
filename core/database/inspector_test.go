package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestGetTableColumns_SQLite(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec(`CREATE TABLE ticket_sales (
		id TEXT PRIMARY KEY,
		Event_ID TEXT NOT NULL,
		platform_order_id TEXT,
		total_amount DECIMAL(12,2) NOT NULL,
		purchase_date DATETIME,
		reconciliation_flag TEXT DEFAULT 'manual_entry'
	)`).Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "ticket_sales")
	require.NoError(t, err)
	require.Len(t, columns, 6)

	byField := make(map[string]ColumnInfo)
	for _, col := range columns {
		byField[col.Field] = col
	}

	assert.Equal(t, "text", byField["id"].Type)
	assert.Equal(t, "PRI", byField["id"].Key)
	assert.Equal(t, "NO", byField["event_id"].Null)
	assert.Equal(t, "YES", byField["platform_order_id"].Null)
	assert.Equal(t, "decimal(12,2)", byField["total_amount"].Type)
	assert.Equal(t, "datetime", byField["purchase_date"].Type)
	require.NotNil(t, byField["reconciliation_flag"].Default)
	assert.Equal(t, "'manual_entry'", *byField["reconciliation_flag"].Default)

	// PRAGMA table_info is empty for an unknown table.
	cols, err := GetTableColumns(db, "reconciliation_reports")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestGetTableColumns_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("id", "varchar(64)", "NO", "PRI", nil, "").
		AddRow("Platform_Order_ID", "varchar(191)", "YES", "MUL", nil, "").
		AddRow("total_amount", "DECIMAL(12,2)", "NO", "", "0.00", "")
	mock.ExpectQuery("SHOW COLUMNS FROM `ticket_sales`").WillReturnRows(rows)

	columns, err := GetTableColumns(db, "ticket_sales")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	assert.Equal(t, "platform_order_id", columns[1].Field)
	assert.Equal(t, "MUL", columns[1].Key)
	assert.Equal(t, "decimal(12,2)", columns[2].Type)
	require.NotNil(t, columns[2].Default)
	assert.Equal(t, "0.00", *columns[2].Default)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTableColumns_MySQLError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery("SHOW COLUMNS FROM `audit_log`").WillReturnError(assert.AnError)

	_, err = GetTableColumns(db, "audit_log")
	assert.ErrorContains(t, err, "failed to get columns for table audit_log")
	assert.ErrorIs(t, err, assert.AnError)
}
