// Package logger provides structured logging for the scraper.
//
// It wraps zerolog behind a small Logger interface so callers can log
// with or without structured fields, derive loggers with bound fields,
// and swap in a capturing TestLogger in tests.
//
// Basic usage:
//
//	err := logger.Initialize(&cfg.Logging)
//	logger.Info("starting up")
//	logger.WithField("query", "landscape").Info("searching")
//	logger.WithError(err).Error("scrape failed")
package logger
