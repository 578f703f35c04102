// Package logging provides structured logging using uber/zap.
//
// Two modes are available:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Logs go to stderr so CLI output on stdout stays machine readable.
//
// Example Usage:
//
//	logger := logging.FromSettings(cfg.Logging.Level, cfg.Logging.Development)
//	logger.Info("Loaded app", zap.String("app", "blog"), zap.String("kind", "internal"))
//	logger.Error("Failed to mount routes", zap.Error(err))
package logging
