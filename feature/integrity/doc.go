// Package integrity provides health checks over the ledger and its infrastructure.
//
// # Checks Provided
//
//   - Ledger: per-event rules over ticket_sales (negative amounts, zero
//     quantities, missing or malformed customer data, duplicate orders).
//     The report status is failed on any critical or high issue, warning on
//     medium issues and passed otherwise.
//   - Schema: compares the reconciliation tables with their gorm models
//     (columns and declared types).
//   - Storage: checks that the archive bucket and its folders exist.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs schema and storage checks.
//   - GET /integrity/events/:eventId : Runs the ledger rules for an event.
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/storage : Runs the storage check (supports ?fix=true).
package integrity
