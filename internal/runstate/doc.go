// Package runstate persists pipeline runs and per-stage status in SQLite.
//
// Stage rows are keyed by media id, stage name, and chapter index so that a
// later run against the same source can resume from the last completed
// stage. Run rows record each invocation and its terminal outcome for the
// status command.
package runstate
