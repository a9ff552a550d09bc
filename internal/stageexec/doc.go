// Package stageexec runs a single pipeline stage under artifact gating and
// records its status in the run-state store.
package stageexec
