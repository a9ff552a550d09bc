// Package stage defines the contract for gated pipeline stages and the
// artifact checks shared by the executor and the stage implementations.
package stage
