// Package logger provides a structured logging interface for the follower tools.
//
// It wraps the zerolog library to provide:
//   - Multiple log levels (Debug, Info, Warn, Error)
//   - Structured logging with fields
//   - Colored console output on stderr, keeping stdout free for reports
//   - Optional JSON file output
//   - A global logger instance for easy access
//   - TestLogger and NewNopLogger for tests
//
// Basic Usage:
//
//	cfg := &config.LoggingConfig{Level: "info"}
//	err := logger.Initialize(cfg)
//
//	logger.Info("Collector started")
//	logger.WithField("page", 3).Info("Page collected")
//	logger.WithError(err).Error("Request rejected")
//
// Components take a Logger in their constructors; pass logger.GetLogger() in
// production and logger.NewTestLogger() in tests to assert on what was logged.
package logger
