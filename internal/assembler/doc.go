// Package assembler produces one vertical short per selected chapter.
//
// Each chapter passes through four gated steps (caption synthesis, cut,
// reframe, and caption burn-in) and finishes with a title text file next to
// the clip. Steps are recorded per chapter in the run-state store so a
// rerun resumes at the first incomplete step.
package assembler
