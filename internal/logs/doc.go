// Package logs tails the reelcut log file for the CLI.
//
// Tail reads the last N lines or everything after a byte offset, with
// bounded memory. Follow mode polls for appended lines until the wait
// elapses or the context is cancelled. A Match filter narrows the output to
// the lines of a single run, which is how `reelcut logs --run` works.
package logs
