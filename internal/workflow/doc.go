// Package workflow drives a single video through the reelcut pipeline.
//
// A Pipeline owns the run lock for its data directory and executes the
// run-level stages (acquire, transcribe, merge, subject, chapterize) through
// stageexec so each is skipped when its artifacts are already on disk.
// Selected chapters are then assembled on a bounded worker pool, where a
// failing chapter is recorded and its siblings continue. Publish and cleanup
// run last when enabled.
//
// External tools are reached through the small interfaces in
// collaborators.go; NewDeps wires the production implementations.
package workflow
