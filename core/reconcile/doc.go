// Package reconcile compares the internal ticket sales ledger against the
// order data of external ticketing platforms and repairs what it safely can.
//
// A reconciliation run for one (event, platform) pair goes through these stages:
//
//  1. Fetch: local sales come from the Ledger, platform sales from a PlatformFetcher.
//  2. Detect: Detect indexes both sides by platform order id and emits
//     Discrepancy values (missing sales, amount mismatches, duplicates and
//     local-only rows).
//  3. Resolve: the Resolver imports missing sales and corrects small amount
//     differences. Everything else is parked for manual review.
//  4. Health: CalculateSyncHealth grades the run from its totals.
//  5. Persist and alert: the report is stored, the event health is updated and
//     CheckAndSendAlerts notifies operators when thresholds are crossed.
//
// Detection, duplicate grouping and analytics are pure functions over their
// inputs. All I/O goes through the interfaces in interfaces.go, so the
// Engine can run against the gorm store in production and an in-memory
// store in tests.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(store, fetchers, logger,
//	    reconcile.WithLocker(lock.NewRedis(rdb, 5*time.Minute)),
//	    reconcile.WithNotifier(notify.NewRedisStream(rdb, "reconciliation:alerts")),
//	)
//	report, err := engine.Reconcile(ctx, eventID, "humanitix", reconcile.DefaultConfig())
package reconcile
