// Package config provides configuration management for the ticket reconciler.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Defaults come from the `default` struct tags of each
// section, and every key can be overridden by its upper-cased environment
// variable (reconcile.auto_correct_threshold -> RECONCILE_AUTO_CORRECT_THRESHOLD).
//
// # Configuration Structure
//
//   - Server: HTTP port, API key and timeouts
//   - Database: MySQL (or SQLite) ledger connection
//   - Storage: S3/MinIO report archive
//   - Log: Logging level and format
//   - Redis: run locks and the alert stream
//   - Reconcile: thresholds passed to every reconciliation run
//   - Platforms: Humanitix and Eventbrite API credentials
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rc, err := cfg.Reconcile.ToConfig()
package config
