// Package reframe computes the crop, scale, and stack geometry that turns a
// landscape frame into a vertical one.
//
// Without a subject box the source is cropped to fill the target. With a
// box, the subject is cropped into a top pane and the whole frame is
// cropped to fill a bottom pane, and the two panes are stacked.
package reframe
