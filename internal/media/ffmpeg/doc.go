// Package ffmpeg is the transcoding gateway. Each operation builds an
// ffmpeg-go graph, renders it to arguments, and runs the binary through an
// injectable runner under a per-call timeout.
//
// Outputs are written to a sibling partial file and renamed into place only
// after ffmpeg succeeds, so an interrupted call never leaves a truncated
// artifact that a later run would mistake for a finished one.
package ffmpeg
