// Package llm provides an OpenAI-compatible chat client and the two model
// calls the pipeline makes: chaptering a transcript and locating a streamer
// in sampled frames.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send a system prompt plus text or image parts.
// Client.CompleteJSON: send system/user prompts, receive JSON response.
// Client.HealthCheck: verify API key and model availability.
// Chapterizer.Chapterize: transcript in, chapters out.
// SubjectDetector.Detect: frames in, Detection out.
//
// # Retry Behaviour
//
// A request is attempted once by default. WithRetryMaxAttempts opts into
// retries on HTTP 408/429/5xx errors, empty content, and network timeouts
// with exponential backoff (base 1s, max 10s). Context cancellation aborts
// retries immediately.
//
// # Errors
//
// Chapterizer and SubjectDetector tag failures with services markers:
// ErrConfiguration for a missing key, ErrTimeout for deadlines, and
// ErrExternalTool for everything else including unparseable responses.
package llm
