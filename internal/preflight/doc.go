// Package preflight provides readiness checks for external services
// and filesystem paths that reelcut depends on.
//
// These checks run in two contexts:
//   - The pipeline calls CheckDirectories before the first stage. If any
//     check fails, the run aborts before downloading anything.
//   - The CLI "reelcut check" command runs RunAll plus CheckSystemDeps to
//     display directory, binary, and LLM health.
package preflight
