// Package staging manages the lifecycle of the per-run working directory:
// the process-level run lock, publishing finished clips, and cleanup.
package staging
