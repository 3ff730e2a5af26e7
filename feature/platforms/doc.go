// Package platforms provides the ticketing platform API clients.
//
// Each client pages through the orders of an external event, keeps only
// completed orders and normalizes them into reconcile.PlatformSale values.
// Requests are rate limited per platform.
//
// Usage:
//
//	registry := platforms.NewDefaultRegistry(cfg.Platforms, logger)
//	sales, err := registry.FetchPlatformSales(ctx, reconcile.PlatformLink{
//		EventID: "evt-1", Platform: "humanitix", ExternalEventID: "abc123",
//	})
package platforms
