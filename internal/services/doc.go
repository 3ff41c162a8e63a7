// Package services defines shared utilities consumed by the pipeline stages
// and external platform integrations.
//
// Key responsibilities:
//   - Context helpers that stamp content item IDs, stage names, and scheduler
//     run identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that keep failure
//     classification (transient vs validation vs missing configuration)
//     uniform across stages.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability, retries) stays consistent.
package services
