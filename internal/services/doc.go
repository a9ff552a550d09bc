// Package services defines shared utilities consumed by the pipeline stages
// and the external tool adapters.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, chapter indexes, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     fatal (abort the run) or recoverable (warn and skip).
//
// Use these helpers when wiring new stage logic so error handling and
// observability stay uniform across the pipeline.
package services
