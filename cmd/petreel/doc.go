// Package main hosts the petreel CLI entrypoint and command graph.
//
// The Cobra-based command tree covers pipeline health, one-shot stage runs,
// item recovery, performance reporting, campaign management, and
// configuration scaffolding. Commands open the store directly and build the
// same pipeline manager the daemon uses, so a one-shot run behaves exactly
// like its scheduled counterpart.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
