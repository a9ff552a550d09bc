// Package main hosts the reelcut CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once per invocation and
// hands it to the workflow, run-state, and staging packages. Commands stay
// thin: each one loads what it needs, calls a single internal entry point,
// and renders the outcome as text or, with --json, as machine-readable
// output.
package main
