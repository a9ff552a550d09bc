// Package subtitles renders speaker-coloured Advanced SubStation Alpha
// captions for a single clip window.
//
// Synthesize builds one style per ranked speaker and one Dialogue event per
// word whose timing lies strictly inside the window. Times are rebased to the
// window start so the file can be burned into the trimmed clip directly.
package subtitles
