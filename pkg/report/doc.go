// Package report renders assessment history for export as JSON, CSV,
// Markdown or HTML. HTML is produced from the Markdown rendering with
// goldmark.
package report
