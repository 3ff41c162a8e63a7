// Package scheduler runs named jobs on fixed or daily cadences.
//
// Jobs are registered under unique names; re-registering a name replaces the
// old schedule, which is how campaign slots are updated in place. Each run
// gets a unique run id and an optional timeout, and failures are logged
// without disturbing the cadence.
package scheduler
