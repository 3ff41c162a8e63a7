// Package logging centralizes slog construction and the structured field
// vocabulary shared by the pipeline stages.
//
// Loggers are built once in main and passed down; stage code derives child
// loggers via NewComponentLogger and WithContext so item IDs, stage names,
// and scheduler run IDs appear on every record without manual plumbing.
package logging
