// Package database handles database connections and schema inspection.
//
// It wraps GORM to configure MySQL (production) or SQLite (local runs and tests)
// connections from the application's configuration.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table on either dialect. The ledger
// integrity feature uses it to verify the reconciliation tables against the
// models defined in feature/reconciliation/models.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "ticket_sales")
package database
