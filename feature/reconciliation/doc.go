// Package reconciliation exposes ticket sales reconciliation over HTTP.
//
// It owns the persistence of the ledger, platform links, reports,
// discrepancies and the audit log (Store, backed by gorm), the report
// archive in object storage (Archive) and the fiber routes under
// /reconciliation.
//
// Usage:
//
//	store := reconciliation.NewStore(db)
//	engine := reconcile.NewEngine(store, registry, logger, reconcile.WithArchiver(archive))
//	svc := reconciliation.NewService(engine, store, archive, cfg, logger)
//	manager.Register(reconciliation.NewFeature(svc))
package reconciliation
