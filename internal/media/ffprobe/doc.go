// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual audio/video stream properties
//   - Prober: binds a binary path so callers can depend on an interface
//
// Helper methods on Result provide stream counts, the video frame size,
// and duration parsing.
package ffprobe
