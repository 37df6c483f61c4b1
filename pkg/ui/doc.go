// Package ui renders run progress for interactive terminals. Non-interactive
// runs rely on the structured log instead.
package ui
