package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"reelcut/internal/chapters"
	"reelcut/internal/fileutil"
	"reelcut/internal/logging"
	"reelcut/internal/media"
	"reelcut/internal/paths"
	"reelcut/internal/reframe"
	"reelcut/internal/runstate"
	"reelcut/internal/services"
	"reelcut/internal/services/llm"
	"reelcut/internal/services/whisperx"
	"reelcut/internal/stage"
	"reelcut/internal/stageexec"
	"reelcut/internal/textutil"
	"reelcut/internal/transcript"
)

// runState carries per-run values between stages.
type runState struct {
	runID   string
	source  string
	mediaID string
	remote  bool
	audio   string
	video   *media.Video
	logger  *slog.Logger
}

func (p *Pipeline) gate(ctx context.Context, rs *runState, name string, artifacts []string, fn stage.HandlerFunc) error {
	_, err := stageexec.Run(ctx, stageexec.Options{
		Logger:    rs.logger,
		Store:     p.deps.Store,
		Notifier:  p.notifier,
		Handler:   fn,
		Key:       runstate.Key{MediaID: rs.mediaID, Stage: name, Chapter: runstate.NoChapter},
		RunID:     rs.runID,
		Artifacts: artifacts,
	})
	return err
}

// resolveMediaID names the artifacts of source. Remote ids come from
// yt-dlp; local files use their sanitized base name.
func (p *Pipeline) resolveMediaID(ctx context.Context, rs *runState) error {
	if !rs.remote {
		if !fileutil.Exists(rs.source) {
			return services.Wrap(services.ErrMissingArtifact, stage.Acquire, "local source", rs.source, nil)
		}
		base := filepath.Base(rs.source)
		rs.mediaID = textutil.SanitizeToken(strings.TrimSuffix(base, filepath.Ext(base)))
		return nil
	}
	id, err := p.deps.Acquirer.ResolveID(ctx, rs.source)
	if err != nil {
		return err
	}
	id = textutil.SanitizeFileName(id)
	if id == "" {
		return services.Wrap(services.ErrExternalTool, stage.Acquire, "resolve id", "yt-dlp returned an empty id", nil)
	}
	rs.mediaID = id
	return nil
}

func (p *Pipeline) acquire(ctx context.Context, rs *runState) error {
	if !rs.remote {
		rs.audio = rs.source
		return nil
	}
	audio := p.reg.Audio(rs.mediaID)
	video := p.reg.Video(rs.mediaID)
	err := p.gate(ctx, rs, stage.Acquire, []string{audio, video}, func(ctx context.Context) error {
		got, err := p.deps.Acquirer.DownloadAudio(ctx, rs.source, p.reg.Dir(paths.RoleAudio))
		if err != nil {
			return err
		}
		if err := relocate(got, audio); err != nil {
			return err
		}
		got, err = p.deps.Acquirer.DownloadVideo(ctx, rs.source, p.reg.Dir(paths.RoleVideo), p.cfg.Acquisition.Quality)
		if err != nil {
			return err
		}
		return relocate(got, video)
	})
	rs.audio = audio
	return err
}

func (p *Pipeline) transcriptArtifacts(id string) []string {
	var out []string
	if p.cfg.Transcription.Mode.Sentences() {
		out = append(out, p.reg.SentenceTranscript(id))
	}
	if p.cfg.Transcription.Mode.Words() {
		out = append(out, p.reg.WordTranscript(id))
	}
	return out
}

func (p *Pipeline) transcribe(ctx context.Context, rs *runState) error {
	tc := p.cfg.Transcription
	return p.gate(ctx, rs, stage.Transcribe, p.transcriptArtifacts(rs.mediaID), func(ctx context.Context) error {
		result, err := p.deps.Transcriber.Transcribe(ctx, rs.audio, p.reg.Dir(paths.RoleTranscript), whisperx.Options{
			Mode:        tc.Mode,
			Diarize:     tc.Diarize,
			MinSpeakers: tc.MinSpeakers,
			MaxSpeakers: tc.MaxSpeakers,
			Language:    tc.Language,
		})
		if err != nil {
			return err
		}
		if result.SentencePath != "" {
			if err := relocate(result.SentencePath, p.reg.SentenceTranscript(rs.mediaID)); err != nil {
				return err
			}
		}
		if result.WordPath != "" {
			if err := relocate(result.WordPath, p.reg.WordTranscript(rs.mediaID)); err != nil {
				return err
			}
		}
		return nil
	})
}

// merge muxes the separately downloaded streams. Local sources are used as is.
func (p *Pipeline) merge(ctx context.Context, rs *runState) error {
	if !rs.remote {
		rs.video = media.NewVideo(rs.source)
		return nil
	}
	merged := p.reg.Merged(rs.mediaID)
	err := p.gate(ctx, rs, stage.Merge, []string{merged}, func(ctx context.Context) error {
		return p.deps.Gateway.Mux(ctx, p.reg.Video(rs.mediaID), rs.audio, merged)
	})
	rs.video = media.NewVideo(merged)
	return err
}

// detectSubject returns the subject box to frame, or nil for crop-to-fill.
// The detection is cached on disk so resumed runs do not resample frames.
func (p *Pipeline) detectSubject(ctx context.Context, rs *runState) (*reframe.BBox, error) {
	if !p.cfg.Reframe.DetectSubject {
		return nil, nil
	}
	cache := p.reg.Subject(rs.mediaID)
	err := p.gate(ctx, rs, stage.Subject, []string{cache}, func(ctx context.Context) error {
		info, err := rs.video.Resolve(ctx, p.deps.Prober)
		if err != nil {
			return err
		}
		instants, err := media.SampleTimestamps(info.Duration, p.cfg.Reframe.FrameSamples, p.rng)
		if err != nil {
			return services.Wrap(services.ErrValidation, stage.Subject, "sample frames", "", err)
		}
		frames := make([]string, 0, len(instants))
		for i, at := range instants {
			frame := p.reg.Frame(rs.mediaID, i+1)
			if err := p.deps.Gateway.ExtractFrame(ctx, rs.video.Path, at, frame); err != nil {
				return err
			}
			frames = append(frames, frame)
		}
		detection, err := p.deps.Detector.Detect(ctx, frames)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(detection, "", "  ")
		if err != nil {
			return fmt.Errorf("encode subject detection: %w", err)
		}
		return fileutil.WriteFileAtomic(cache, data, 0o644)
	})
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(cache)
	if err != nil {
		return nil, services.Wrap(services.ErrMissingArtifact, stage.Subject, "load detection", cache, err)
	}
	var detection llm.Detection
	if err := json.Unmarshal(data, &detection); err != nil {
		return nil, services.Wrap(services.ErrValidation, stage.Subject, "decode detection", cache, err)
	}
	rs.logger.Info("subject detection loaded",
		logging.String(logging.FieldEventType, "subject_detection"),
		logging.Bool("is_reaction", detection.IsReaction),
		logging.Float64("confidence", detection.Confidence),
		logging.String("reason", detection.Reason),
	)
	return detection.Subject(), nil
}

func (p *Pipeline) chapterize(ctx context.Context, rs *runState) error {
	src := p.reg.SentenceTranscript(rs.mediaID)
	if !p.cfg.Transcription.Mode.Sentences() {
		src = p.reg.WordTranscript(rs.mediaID)
	}
	out := p.reg.Chapters(rs.mediaID)
	return p.gate(ctx, rs, stage.Chapterize, []string{out}, func(ctx context.Context) error {
		doc, err := transcript.Load(src)
		if err != nil {
			return err
		}
		chs, err := p.deps.Chapterizer.Chapterize(ctx, doc)
		if err != nil {
			return err
		}
		return chapters.Write(out, chapters.Document{Chapters: chs})
	})
}

// selectChapters loads the chapter document and keeps the playable chapters
// at or above the engagement threshold. Candidates carry their document
// position, which names their clip artifacts.
func (p *Pipeline) selectChapters(ctx context.Context, rs *runState) ([]chapters.Candidate, error) {
	var selected []chapters.Candidate
	err := p.gate(ctx, rs, stage.Select, nil, func(context.Context) error {
		doc, err := chapters.Load(p.reg.Chapters(rs.mediaID))
		if err != nil {
			return err
		}
		for _, issue := range chapters.Inspect(doc.Chapters) {
			logging.WarnWithContext(rs.logger, "chapter irregularity", "chapter_issue",
				logging.String("issue", issue.String()),
				logging.String(logging.FieldErrorHint, "review the chapter document"),
				logging.String(logging.FieldImpact, "inverted chapters are dropped"),
			)
		}
		threshold := p.cfg.Selection.EngagementThreshold
		selected = chapters.SelectCandidates(doc.Chapters, threshold)
		if len(selected) == 0 {
			logging.WarnWithContext(rs.logger, "no chapters met the engagement threshold", "selection_empty",
				logging.String(logging.FieldErrorKind, services.Kind(services.ErrEmptySelection)),
				logging.Float64("threshold", threshold),
				logging.Int("chapters", len(doc.Chapters)),
				logging.String(logging.FieldErrorHint, "lower selection.engagement_threshold"),
				logging.String(logging.FieldImpact, "no clips produced"),
			)
			return nil
		}
		rs.logger.Info("chapters selected",
			logging.String(logging.FieldEventType, "selection_complete"),
			logging.Int("selected", len(selected)),
			logging.Int("chapters", len(doc.Chapters)),
			logging.Float64("threshold", threshold),
		)
		return nil
	})
	return selected, err
}

// plan computes the reframe geometry for the merged video.
func (p *Pipeline) plan(ctx context.Context, rs *runState, subject *reframe.BBox) (reframe.Plan, error) {
	info, err := rs.video.Resolve(ctx, p.deps.Prober)
	if err != nil {
		return reframe.Plan{}, err
	}
	target := reframe.Size{Width: p.cfg.Reframe.TargetWidth, Height: p.cfg.Reframe.TargetHeight}
	plan, err := reframe.Compute(reframe.Size{Width: info.Width, Height: info.Height}, target, subject, p.cfg.Reframe.TopRatio)
	if err != nil {
		return reframe.Plan{}, err
	}
	if plan.Fallback != "" {
		logging.WarnWithContext(rs.logger, "subject box rejected; using crop-to-fill", "reframe_fallback",
			logging.String("fallback", string(plan.Fallback)),
			logging.Error(plan.FallbackErr),
			logging.String(logging.FieldErrorHint, "subject detection returned an unusable box"),
			logging.String(logging.FieldImpact, "clips use a single cropped pane"),
		)
	}
	rs.logger.Info("reframe planned",
		logging.String(logging.FieldEventType, "reframe_plan"),
		logging.String("layout", plan.Layout.String()),
		logging.String("source", plan.Source.String()),
		logging.String("output", plan.Output().String()),
	)
	return plan, nil
}

// words loads the word transcript used for captions. A sentence-only run
// yields no words and every clip is published uncaptioned.
func (p *Pipeline) words(rs *runState) ([]transcript.Word, string, error) {
	if !p.cfg.Transcription.Mode.Words() {
		logging.WarnWithContext(rs.logger, "word transcript disabled; clips will have no captions", "captions_disabled",
			logging.String(logging.FieldErrorHint, "set transcription.mode to word or both"),
			logging.String(logging.FieldImpact, "clips published without captions"),
		)
		return nil, "", nil
	}
	doc, err := transcript.Load(p.reg.WordTranscript(rs.mediaID))
	if err != nil {
		return nil, "", err
	}
	return doc.Words, doc.Language, nil
}

// relocate moves src to dst when a collaborator named its output differently.
func relocate(src, dst string) error {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil
	}
	if err := fileutil.MoveFile(src, dst); err != nil {
		return services.Wrap(services.ErrMissingArtifact, "workflow", "relocate", fmt.Sprintf("%s -> %s", src, dst), err)
	}
	return nil
}
