package stageexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelcut/internal/logging"
	"reelcut/internal/notifications"
	"reelcut/internal/runstate"
	"reelcut/internal/services"
	"reelcut/internal/stage"
)

// Outcome reports what Run did with a stage.
type Outcome int

const (
	// Executed means the handler ran and produced its artifacts.
	Executed Outcome = iota
	// Skipped means the stage was already complete on disk.
	Skipped
)

func (o Outcome) String() string {
	if o == Skipped {
		return "skipped"
	}
	return "executed"
}

// Options controls stage execution and status persistence.
type Options struct {
	Logger   *slog.Logger
	Store    *runstate.Store
	Notifier notifications.Service
	Handler  stage.Handler
	Key      runstate.Key
	RunID    string
	// Artifacts are the outputs the stage must leave behind. A stage with no
	// artifacts always executes.
	Artifacts []string
}

// Run gates a stage on its status row and artifacts. A stage is skipped when
// every artifact exists and the row is done or absent; an absent row is
// recorded as done. Otherwise the handler runs and must produce every
// artifact, or the row is marked failed and an error is returned.
func Run(ctx context.Context, opts Options) (Outcome, error) {
	if opts.Handler == nil {
		return Executed, fmt.Errorf("stage handler unavailable: %s", opts.Key.Stage)
	}
	if opts.Store == nil {
		return Executed, fmt.Errorf("run state store is required")
	}

	stageCtx := services.WithStage(ctx, opts.Key.Stage)
	if opts.Key.Chapter != runstate.NoChapter {
		stageCtx = services.WithChapter(stageCtx, opts.Key.Chapter)
	}
	stageCtx = services.WithRequestID(stageCtx, uuid.NewString())
	stageLogger := logging.WithContext(stageCtx, opts.Logger)

	status, hasRow, err := opts.Store.StageStatus(stageCtx, opts.Key)
	if err != nil {
		return Executed, fmt.Errorf("read stage status: %w", err)
	}
	if stage.ArtifactsPresent(opts.Artifacts) && (!hasRow || status == runstate.StatusDone) {
		if !hasRow {
			if err := opts.Store.SetStage(stageCtx, opts.Key, runstate.StatusDone, opts.RunID, ""); err != nil {
				return Skipped, fmt.Errorf("persist imported stage: %w", err)
			}
		}
		stageLogger.Info(
			"stage skipped",
			logging.String(logging.FieldEventType, "stage_skip"),
			logging.Bool("imported", !hasRow),
			logging.Int("artifacts", len(opts.Artifacts)),
		)
		return Skipped, nil
	}

	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("previous_status", string(status)),
	)
	if err := opts.Store.SetStage(stageCtx, opts.Key, runstate.StatusPending, opts.RunID, ""); err != nil {
		return Executed, fmt.Errorf("persist pending transition: %w", err)
	}

	started := time.Now()
	if err := opts.Handler.Execute(stageCtx); err != nil {
		return Executed, handleFailure(stageCtx, stageLogger, opts, err)
	}
	if err := stage.RequireArtifacts(opts.Key.Stage, opts.Artifacts); err != nil {
		return Executed, handleFailure(stageCtx, stageLogger, opts, err)
	}

	if err := opts.Store.SetStage(stageCtx, opts.Key, runstate.StatusDone, opts.RunID, ""); err != nil {
		return Executed, fmt.Errorf("persist stage result: %w", err)
	}
	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started)),
	)
	return Executed, nil
}

func handleFailure(ctx context.Context, logger *slog.Logger, opts Options, stageErr error) error {
	message := strings.TrimSpace(stageErr.Error())
	if errors.Is(stageErr, context.Canceled) {
		message = "cancelled"
	}

	logger.Error(
		"stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String(logging.FieldErrorKind, services.Kind(stageErr)),
		logging.String("resolved_status", string(runstate.StatusFailed)),
		logging.Error(stageErr),
	)
	// The run context may already be cancelled; the failure row must still land.
	persistCtx := context.WithoutCancel(ctx)
	if err := opts.Store.SetStage(persistCtx, opts.Key, runstate.StatusFailed, opts.RunID, message); err != nil {
		logger.Error("failed to persist stage failure", logging.Error(err))
	}

	if opts.Notifier != nil {
		label := opts.Key.Stage
		if opts.Key.Chapter != runstate.NoChapter {
			label = fmt.Sprintf("%s (chapter %d)", opts.Key.Stage, opts.Key.Chapter)
		}
		if err := opts.Notifier.Publish(persistCtx, notifications.EventError, notifications.Payload{
			"error":   stageErr,
			"context": label,
		}); err != nil {
			logger.Debug("stage error notification failed", logging.Error(err))
		}
	}

	return stageErr
}
