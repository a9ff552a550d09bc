package workflow

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"reelcut/internal/assembler"
	"reelcut/internal/chapters"
	"reelcut/internal/config"
	"reelcut/internal/logging"
	"reelcut/internal/notifications"
	"reelcut/internal/paths"
	"reelcut/internal/services"
)

// Status is the terminal state of a run.
type Status string

const (
	// Completed means every run-level stage succeeded. Individual chapters
	// may still have failed; see Result.Failed.
	Completed Status = "completed"
	// Aborted means a run-level stage failed.
	Aborted Status = "aborted"
)

// ChapterFailure records a chapter whose assembly did not finish.
type ChapterFailure struct {
	// Index is the chapter's position in the chapter document.
	Index   int
	Chapter chapters.Chapter
	Err     error
}

// Result summarizes a run.
type Result struct {
	RunID   string
	MediaID string
	Status  Status
	Clips   []assembler.Clip
	Failed  []ChapterFailure
}

// Pipeline runs sources through every stage against one data directory.
type Pipeline struct {
	cfg      *config.Config
	reg      paths.Registry
	deps     Deps
	logger   *slog.Logger
	rng      *rand.Rand
	notifier notifications.Service
}

// NewPipeline validates cfg and deps. Problems are reported as
// services.ErrConfiguration before any stage runs.
func NewPipeline(cfg *config.Config, deps Deps, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "init", "configuration is required", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "validate config", "", err)
	}
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	missing := deps.missing(cfg)
	if len(missing) > 0 {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "init",
			fmt.Sprintf("collaborators not configured: %v", missing), nil)
	}

	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notifications.Noop()
	}
	return &Pipeline{
		cfg:      cfg,
		reg:      paths.New(cfg.Paths.DataDir),
		deps:     deps,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		rng:      rng,
		notifier: notifier,
	}, nil
}

// Registry returns the path registry the pipeline writes to.
func (p *Pipeline) Registry() paths.Registry { return p.reg }

func (d Deps) missing(cfg *config.Config) []string {
	var missing []string
	if d.Store == nil {
		missing = append(missing, "run state store")
	}
	if d.Acquirer == nil {
		missing = append(missing, "acquirer")
	}
	if d.Transcriber == nil {
		missing = append(missing, "transcriber")
	}
	if d.Chapterizer == nil {
		missing = append(missing, "chapterizer")
	}
	if d.Detector == nil && cfg.Reframe.DetectSubject {
		missing = append(missing, "subject detector")
	}
	if d.Gateway == nil {
		missing = append(missing, "media gateway")
	}
	if d.Prober == nil {
		missing = append(missing, "prober")
	}
	return missing
}
