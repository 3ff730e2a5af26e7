// Package logger builds the zap logger shared by every command and feature.
//
// Level "debug" selects zap's development preset; info, warn and error use the
// production preset at that level. Format is json or console.
//
// Request handlers derive their logger with WithRayID so every line of a
// request carries its ray_id:
//
//	l := logger.WithRayID(h.service.logger, c)
//	l.Error("Reconciliation run failed", zap.Error(err))
package logger
