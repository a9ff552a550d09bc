package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"reelcut/internal/assembler"
	"reelcut/internal/chapters"
	"reelcut/internal/logging"
	"reelcut/internal/notifications"
	"reelcut/internal/preflight"
	"reelcut/internal/reframe"
	"reelcut/internal/runstate"
	"reelcut/internal/services"
	"reelcut/internal/services/ytdlp"
	"reelcut/internal/stage"
	"reelcut/internal/staging"
	"reelcut/internal/subtitles"
	"reelcut/internal/transcript"
)

// Run processes source, a URL or a local file, and returns the produced
// clips. A run-level stage failure returns Aborted with the stage error;
// chapter failures are reported in Result.Failed and do not abort the run.
func (p *Pipeline) Run(ctx context.Context, source string) (Result, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)
	result := Result{RunID: runID, Status: Aborted}

	source = strings.TrimSpace(source)
	if source == "" {
		return result, services.Wrap(services.ErrConfiguration, "workflow", "run", "source is required", nil)
	}
	if err := p.prepare(logger); err != nil {
		return result, err
	}

	lock, err := staging.AcquireRunLock(p.reg)
	if err != nil {
		return result, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("run lock release failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "run_lock_release_failed"),
				logging.String(logging.FieldErrorHint, "remove the lock file if no run is active"),
				logging.String(logging.FieldImpact, "next run may report the directory busy"),
			)
		}
	}()

	if _, err := p.deps.Store.CreateRun(ctx, runID, source); err != nil {
		return result, err
	}
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("source", source),
	)
	_ = p.notifier.Publish(ctx, notifications.EventRunStarted, notifications.Payload{"source": source})

	started := time.Now()
	rs := &runState{runID: runID, source: source, remote: ytdlp.IsRemote(source), logger: logger}
	runErr := p.execute(ctx, rs, &result)
	p.finish(ctx, rs, &result, runErr, time.Since(started))
	return result, runErr
}

// prepare creates the working directories and verifies they are usable.
func (p *Pipeline) prepare(logger *slog.Logger) error {
	if err := p.cfg.EnsureDirectories(); err != nil {
		return services.Wrap(services.ErrConfiguration, "workflow", "prepare", "create directories", err)
	}
	if err := p.reg.EnsureAll(); err != nil {
		return services.Wrap(services.ErrConfiguration, "workflow", "prepare", "create working directories", err)
	}

	var failures []string
	for _, r := range preflight.CheckDirectories(p.cfg) {
		if r.Passed {
			logger.Debug("preflight check passed",
				logging.String("check", r.Name),
				logging.String("detail", r.Detail),
				logging.String(logging.FieldEventType, "preflight_passed"),
			)
			continue
		}
		logger.Error("preflight check failed",
			logging.String("check", r.Name),
			logging.String("detail", r.Detail),
			logging.String(logging.FieldEventType, "preflight_failed"),
			logging.String(logging.FieldErrorHint, "fix the reported issue and rerun"),
		)
		failures = append(failures, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	if len(failures) > 0 {
		return services.Wrap(services.ErrConfiguration, "workflow", "preflight", strings.Join(failures, "; "), nil)
	}
	return nil
}

func (p *Pipeline) execute(ctx context.Context, rs *runState, result *Result) error {
	if err := p.resolveMediaID(ctx, rs); err != nil {
		return err
	}
	result.MediaID = rs.mediaID
	rs.logger = rs.logger.With(logging.String("media_id", rs.mediaID))
	if err := p.deps.Store.SetMediaID(ctx, rs.runID, rs.mediaID); err != nil {
		return err
	}

	if err := p.acquire(ctx, rs); err != nil {
		return err
	}
	if err := p.transcribe(ctx, rs); err != nil {
		return err
	}
	if err := p.merge(ctx, rs); err != nil {
		return err
	}
	subject, err := p.detectSubject(ctx, rs)
	if err != nil {
		return err
	}
	if err := p.chapterize(ctx, rs); err != nil {
		return err
	}
	selected, err := p.selectChapters(ctx, rs)
	if err != nil {
		return err
	}
	if len(selected) == 0 {
		result.Status = Completed
		return nil
	}

	plan, err := p.plan(ctx, rs, subject)
	if err != nil {
		return err
	}
	words, language, err := p.words(rs)
	if err != nil {
		return err
	}
	clips, failed, err := p.assemble(ctx, rs, selected, plan, words, language)
	result.Clips = clips
	result.Failed = failed
	if err != nil {
		return err
	}

	if err := p.publish(ctx, rs, result); err != nil {
		return err
	}
	p.cleanup(ctx, rs)
	result.Status = Completed
	return nil
}

// assemble builds every selected chapter on a bounded pool. Workers never
// return errors to the group, so one failing chapter cannot cancel another.
func (p *Pipeline) assemble(ctx context.Context, rs *runState, selected []chapters.Candidate, plan reframe.Plan, words []transcript.Word, language string) ([]assembler.Clip, []ChapterFailure, error) {
	asm, err := assembler.New(assembler.Options{
		Registry:  p.reg,
		Gateway:   p.deps.Gateway,
		Store:     p.deps.Store,
		Logger:    rs.logger,
		RunID:     rs.runID,
		FontsDir:  p.cfg.Paths.FontsDir,
		Subtitles: p.subtitleOptions(language),
	}, assembler.Source{Stem: rs.mediaID, Video: rs.video.Path, Words: words, Plan: plan})
	if err != nil {
		return nil, nil, services.Wrap(services.ErrConfiguration, "workflow", "assembler", "", err)
	}

	clips := make([]*assembler.Clip, len(selected))
	errs := make([]error, len(selected))

	var g errgroup.Group
	g.SetLimit(p.cfg.Workflow.Workers)
	for i, cand := range selected {
		i, cand := i, cand
		g.Go(func() error {
			clip, err := asm.Assemble(ctx, cand.Index, cand.Chapter)
			if err != nil {
				errs[i] = err
				return nil
			}
			clips[i] = &clip
			return nil
		})
	}
	_ = g.Wait()

	var (
		out    []assembler.Clip
		failed []ChapterFailure
	)
	for i := range selected {
		if clips[i] != nil {
			out = append(out, *clips[i])
			continue
		}
		failed = append(failed, ChapterFailure{Index: selected[i].Index, Chapter: selected[i].Chapter, Err: errs[i]})
		logging.ErrorWithContext(rs.logger, "chapter assembly failed; continuing with remaining chapters", "chapter_failed",
			logging.Int(logging.FieldChapterIndex, selected[i].Index),
			logging.String("title", selected[i].Title),
			logging.String(logging.FieldErrorKind, services.Kind(errs[i])),
			logging.Error(errs[i]),
			logging.String(logging.FieldImpact, "clip not produced"),
		)
	}
	if err := ctx.Err(); err != nil {
		return out, failed, err
	}
	return out, failed, nil
}

func (p *Pipeline) subtitleOptions(language string) subtitles.Options {
	s := p.cfg.Subtitles
	opts := subtitles.DefaultOptions()
	opts.Style.FontName = s.FontName
	opts.Style.FontSize = s.FontSize
	opts.Style.OutlineColour = s.OutlineColour
	opts.Style.BackColour = s.BackColour
	opts.Style.Bold = s.Bold
	opts.Style.Italic = s.Italic
	opts.Style.Outline = s.Outline
	opts.Style.Shadow = s.Shadow
	opts.Style.Alignment = s.Alignment
	opts.Style.MarginL = s.MarginL
	opts.Style.MarginR = s.MarginR
	opts.Style.MarginV = s.MarginV
	opts.PlayResX = p.cfg.Reframe.TargetWidth
	opts.PlayResY = p.cfg.Reframe.TargetHeight
	opts.FadeInMS = s.FadeInMS
	opts.FadeOutMS = s.FadeOutMS
	opts.Uppercase = s.Uppercase
	opts.Language = language
	return opts
}

// publish moves finished clips and their titles to the final directory.
func (p *Pipeline) publish(ctx context.Context, rs *runState, result *Result) error {
	if !p.cfg.Workflow.Publish || len(result.Clips) == 0 {
		return nil
	}
	finalDir := p.cfg.Paths.FinalDir
	return p.gate(ctx, rs, stage.Publish, nil, func(context.Context) error {
		var files []string
		for _, clip := range result.Clips {
			files = append(files, clip.FinalPath, clip.TitlePath)
		}
		if _, err := staging.Publish(finalDir, files, rs.logger); err != nil {
			return services.Wrap(services.ErrExternalTool, stage.Publish, "move clips", "", err)
		}
		for i := range result.Clips {
			clip := &result.Clips[i]
			clip.FinalPath = filepath.Join(finalDir, filepath.Base(clip.FinalPath))
			if clip.TitlePath != "" {
				clip.TitlePath = filepath.Join(finalDir, filepath.Base(clip.TitlePath))
			}
		}
		return nil
	})
}

// cleanup empties the working directories. Failures are logged only; the
// clips are already published.
func (p *Pipeline) cleanup(ctx context.Context, rs *runState) {
	if !p.cfg.Workflow.Cleanup {
		return
	}
	_ = p.gate(ctx, rs, stage.Cleanup, nil, func(ctx context.Context) error {
		res := staging.Cleanup(ctx, p.reg, staging.CleanupOptions{Logger: rs.logger, LockHeld: true})
		if len(res.Errors) > 0 {
			logging.WarnWithContext(rs.logger, "workspace cleanup incomplete", "staging_cleanup_failed",
				logging.Int("errors", len(res.Errors)),
				logging.String(logging.FieldErrorHint, "check data_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
		}
		return nil
	})
}

func (p *Pipeline) finish(ctx context.Context, rs *runState, result *Result, runErr error, elapsed time.Duration) {
	persistCtx := context.WithoutCancel(ctx)
	status := runstate.RunCompleted
	message := ""
	if runErr != nil || result.Status != Completed {
		result.Status = Aborted
		status = runstate.RunAborted
		if runErr != nil {
			message = runErr.Error()
		}
	}
	if err := p.deps.Store.FinishRun(persistCtx, rs.runID, status, len(result.Clips), len(result.Failed), message); err != nil {
		rs.logger.Warn("failed to persist run outcome",
			logging.Error(err),
			logging.String(logging.FieldEventType, "run_persist_failed"),
			logging.String(logging.FieldErrorHint, "check the state database"),
			logging.String(logging.FieldImpact, "status command shows a stale run"),
		)
	}

	if result.Status == Aborted {
		logging.ErrorWithContext(rs.logger, "run aborted", "run_aborted",
			logging.String(logging.FieldErrorKind, services.Kind(runErr)),
			logging.Error(runErr),
			logging.Duration("elapsed", elapsed),
		)
		if err := p.notifier.Publish(persistCtx, notifications.EventRunAborted, notifications.Payload{
			"source": rs.source,
			"error":  runErr,
		}); err != nil && !errors.Is(err, context.Canceled) {
			rs.logger.Debug("run aborted notification failed", logging.Error(err))
		}
		return
	}

	rs.logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("clips", len(result.Clips)),
		logging.Int("failed", len(result.Failed)),
		logging.Duration("elapsed", elapsed),
	)
	if err := p.notifier.Publish(persistCtx, notifications.EventRunCompleted, notifications.Payload{
		"source":   rs.source,
		"clips":    len(result.Clips),
		"failed":   len(result.Failed),
		"duration": elapsed,
	}); err != nil {
		rs.logger.Debug("run completed notification failed", logging.Error(err))
	}
}
