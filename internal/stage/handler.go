package stage

import "context"

// Handler performs the work of one gated stage.
type Handler interface {
	Execute(ctx context.Context) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context) error

// Execute calls f.
func (f HandlerFunc) Execute(ctx context.Context) error { return f(ctx) }

// Names of the run-level and per-chapter stages in execution order.
const (
	Acquire    = "acquire"
	Transcribe = "transcribe"
	Merge      = "merge"
	Subject    = "subject"
	Chapterize = "chapterize"
	Select     = "select"
	Subtitle   = "subtitle"
	Cut        = "cut"
	Reframe    = "reframe"
	Burn       = "burn"
	Publish    = "publish"
	Cleanup    = "cleanup"
)
