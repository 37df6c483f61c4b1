package logger

import "fmt"

// LogRequest logs HTTP request information
func LogRequest(l Logger, method, url string, statusCode int, durationMs float64) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": durationMs,
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		l.DebugWithFields("HTTP request completed", fields)
	case statusCode >= 500:
		l.ErrorWithFields("HTTP request server error", fields)
	default:
		l.WarnWithFields("HTTP request client error", fields)
	}
}

// LogItem logs the outcome of one scraped item
func LogItem(l Logger, category, item string, err error) {
	entry := l.WithFields(map[string]interface{}{
		"category": category,
		"item":     item,
	})
	if err != nil {
		entry.WithError(err).Error("Item skipped")
		return
	}
	entry.Info("Item saved")
}

// LogCategoryProgress logs how far into a category the driver is
func LogCategoryProgress(l Logger, category string, done, total int) {
	percentage := 0.0
	if total > 0 {
		percentage = float64(done) / float64(total) * 100
	}

	l.WithFields(map[string]interface{}{
		"category":   category,
		"done":       done,
		"total":      total,
		"percentage": fmt.Sprintf("%.1f%%", percentage),
	}).Debug("Category progress")
}
