// Package logger provides structured logging for the scraper.
//
// It wraps zerolog and writes to the console (pretty when attached to a
// terminal) and, when LoggingConfig.File is set, to a size-rotated log file.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	logger.WithField("category", "Audi").Info("Category started")
package logger
