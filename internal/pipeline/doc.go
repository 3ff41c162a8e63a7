// Package pipeline wires the content stages to the scheduler and exposes the
// admin surface used by the CLI.
//
// The standing schedule covers collection, processing, the daily publishing
// slots, metrics refresh, retention cleanup, and the daily performance
// report. Campaign posting slots are registered and removed at runtime as
// campaigns are activated and paused.
package pipeline
