// Package resume decides which categories a run still has to process.
//
// A category is Done once the workbook on disk holds rows for it. Rows are
// saved only when a category finishes, so an interrupted category shows up as
// InProgress (its folder exists, its rows do not) and is processed again
// from its first item, reusing images already on disk.
//
// The inference is approximate: a category whose every item failed has no
// rows and is retried on the next run.
package resume
