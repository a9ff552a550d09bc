package assembler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"reelcut/internal/chapters"
	"reelcut/internal/fileutil"
	"reelcut/internal/logging"
	"reelcut/internal/paths"
	"reelcut/internal/reframe"
	"reelcut/internal/runstate"
	"reelcut/internal/services"
	"reelcut/internal/stage"
	"reelcut/internal/stageexec"
	"reelcut/internal/subtitles"
	"reelcut/internal/transcript"
)

// MediaGateway is the subset of the ffmpeg gateway the assembler drives.
type MediaGateway interface {
	Trim(ctx context.Context, src, dst string, start, end float64) error
	Reframe(ctx context.Context, src, dst string, plan reframe.Plan) error
	BurnSubtitles(ctx context.Context, src, subtitle, fontsDir, dst string) error
}

// Clip is the finished artifact set for one chapter. SubtitlePath is empty
// when the chapter window held no words.
type Clip struct {
	Index        int
	Chapter      chapters.Chapter
	SubtitlePath string
	TitlePath    string
	FinalPath    string
}

// Source describes the per-run inputs shared by every chapter.
type Source struct {
	// Stem names the clip artifacts and keys their stage rows.
	Stem  string
	Video string
	Words []transcript.Word
	Plan  reframe.Plan
}

// Options bundles the collaborators of an Assembler.
type Options struct {
	Registry  paths.Registry
	Gateway   MediaGateway
	Store     *runstate.Store
	Logger    *slog.Logger
	RunID     string
	FontsDir  string
	Subtitles subtitles.Options
}

// Assembler builds clips for a single source.
type Assembler struct {
	opts   Options
	source Source
	logger *slog.Logger
}

// New returns an assembler for source.
func New(opts Options, source Source) (*Assembler, error) {
	if opts.Gateway == nil {
		return nil, errors.New("assembler: media gateway is required")
	}
	if opts.Store == nil {
		return nil, errors.New("assembler: run state store is required")
	}
	if strings.TrimSpace(source.Stem) == "" || strings.TrimSpace(source.Video) == "" {
		return nil, errors.New("assembler: source stem and video are required")
	}
	return &Assembler{
		opts:   opts,
		source: source,
		logger: logging.NewComponentLogger(opts.Logger, "assembler"),
	}, nil
}

// Assemble runs the caption, cut, reframe, and burn steps for chapter index,
// the chapter's position in the chapter document.
// The first failing step aborts this chapter only.
func (a *Assembler) Assemble(ctx context.Context, index int, ch chapters.Chapter) (Clip, error) {
	ctx = services.WithChapter(ctx, index)
	logger := logging.WithContext(ctx, a.logger)
	artifacts := a.opts.Registry.Clip(a.source.Stem, index)
	clip := Clip{Index: index, Chapter: ch}

	captioned, err := a.subtitle(ctx, logger, index, ch, artifacts.Subtitle)
	if err != nil {
		return clip, err
	}
	if captioned {
		clip.SubtitlePath = artifacts.Subtitle
	}

	if err := a.run(ctx, index, stage.Cut, []string{artifacts.Horizontal}, func(ctx context.Context) error {
		return a.opts.Gateway.Trim(ctx, a.source.Video, artifacts.Horizontal, ch.Start, ch.End)
	}); err != nil {
		return clip, err
	}

	if err := a.run(ctx, index, stage.Reframe, []string{artifacts.Vertical}, func(ctx context.Context) error {
		return a.opts.Gateway.Reframe(ctx, artifacts.Horizontal, artifacts.Vertical, a.source.Plan)
	}); err != nil {
		return clip, err
	}

	if err := a.run(ctx, index, stage.Burn, []string{artifacts.Final}, func(ctx context.Context) error {
		if !captioned {
			if err := fileutil.CopyFile(artifacts.Vertical, artifacts.Final); err != nil {
				return services.Wrap(services.ErrExternalTool, stage.Burn, "copy uncaptioned clip", "", err)
			}
			return nil
		}
		return a.opts.Gateway.BurnSubtitles(ctx, artifacts.Vertical, artifacts.Subtitle, a.opts.FontsDir, artifacts.Final)
	}); err != nil {
		return clip, err
	}
	clip.FinalPath = artifacts.Final

	title := strings.TrimSpace(ch.Title)
	if err := fileutil.WriteFileAtomic(artifacts.Title, []byte(title), 0o644); err != nil {
		return clip, fmt.Errorf("write clip title: %w", err)
	}
	clip.TitlePath = artifacts.Title

	logger.Info("clip assembled",
		logging.String(logging.FieldEventType, "clip_complete"),
		logging.String("final", clip.FinalPath),
		logging.Bool("captioned", captioned),
		logging.Float64("duration_seconds", ch.Duration()),
	)
	return clip, nil
}

// subtitle synthesizes captions for the chapter window. An empty window is
// reported and the clip continues without captions.
func (a *Assembler) subtitle(ctx context.Context, logger *slog.Logger, index int, ch chapters.Chapter, path string) (bool, error) {
	doc, err := subtitles.Synthesize(a.source.Words, subtitles.Window{Start: ch.Start, End: ch.End}, a.opts.Subtitles)
	if errors.Is(err, services.ErrEmptySelection) {
		logging.WarnWithContext(logger, "no words in chapter window; clip will have no captions", "subtitle_empty",
			logging.String(logging.FieldErrorHint, "check diarization output or chapter boundaries"),
			logging.String(logging.FieldImpact, "clip published without captions"),
			logging.Float64("start", ch.Start),
			logging.Float64("end", ch.End),
		)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	err = a.run(ctx, index, stage.Subtitle, []string{path}, func(context.Context) error {
		return subtitles.WriteFile(path, doc)
	})
	return err == nil, err
}

func (a *Assembler) run(ctx context.Context, index int, name string, artifacts []string, fn stage.HandlerFunc) error {
	_, err := stageexec.Run(ctx, stageexec.Options{
		Logger:    a.logger,
		Store:     a.opts.Store,
		Handler:   fn,
		Key:       runstate.Key{MediaID: a.source.Stem, Stage: name, Chapter: index},
		RunID:     a.opts.RunID,
		Artifacts: artifacts,
	})
	return err
}
