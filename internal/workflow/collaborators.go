package workflow

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"reelcut/internal/assembler"
	"reelcut/internal/chapters"
	"reelcut/internal/config"
	"reelcut/internal/media"
	"reelcut/internal/media/ffmpeg"
	"reelcut/internal/media/ffprobe"
	"reelcut/internal/notifications"
	"reelcut/internal/runstate"
	"reelcut/internal/services/llm"
	"reelcut/internal/services/whisperx"
	"reelcut/internal/services/ytdlp"
	"reelcut/internal/transcript"
)

// Acquirer fetches remote sources.
type Acquirer interface {
	ResolveID(ctx context.Context, url string) (string, error)
	DownloadAudio(ctx context.Context, url, dir string) (string, error)
	DownloadVideo(ctx context.Context, url, dir string, quality ytdlp.Quality) (string, error)
}

// Transcriber produces transcript documents from audio.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outDir string, opts whisperx.Options) (transcript.Result, error)
}

// Chapterizer splits a transcript into scored chapters.
type Chapterizer interface {
	Chapterize(ctx context.Context, doc transcript.Document) ([]chapters.Chapter, error)
}

// SubjectDetector locates a secondary subject in sampled frames.
type SubjectDetector interface {
	Detect(ctx context.Context, framePaths []string) (llm.Detection, error)
}

// MediaGateway is the media-tool surface used by the pipeline and assembler.
type MediaGateway interface {
	assembler.MediaGateway
	Mux(ctx context.Context, video, audio, dst string) error
	ExtractFrame(ctx context.Context, src string, at float64, dst string) error
}

var (
	_ Acquirer        = (*ytdlp.Service)(nil)
	_ Transcriber     = (*whisperx.Service)(nil)
	_ Chapterizer     = (*llm.Chapterizer)(nil)
	_ SubjectDetector = (*llm.SubjectDetector)(nil)
	_ MediaGateway    = (*ffmpeg.Gateway)(nil)
	_ media.Prober    = ffprobe.Prober{}
)

// Deps bundles the pipeline collaborators.
type Deps struct {
	Store       *runstate.Store
	Acquirer    Acquirer
	Transcriber Transcriber
	Chapterizer Chapterizer
	Detector    SubjectDetector
	Gateway     MediaGateway
	Prober      media.Prober
	Notifier    notifications.Service
	// Rand drives frame sampling. A time-seeded source is used when nil.
	Rand *rand.Rand
}

// NewDeps wires the production collaborators for cfg around store.
func NewDeps(cfg *config.Config, store *runstate.Store, logger *slog.Logger) Deps {
	toolTimeout := time.Duration(cfg.Workflow.ToolTimeoutSeconds) * time.Second

	client := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		RetryAttempts:  cfg.LLM.RetryAttempts,
	})

	return Deps{
		Store: store,
		Acquirer: ytdlp.NewService(ytdlp.Config{
			Binary:       cfg.Acquisition.YtDlpBinary,
			AudioBitrate: cfg.Acquisition.AudioBitrate,
			Timeout:      toolTimeout,
		}),
		Transcriber: whisperx.NewService(whisperx.Config{
			Model:       cfg.Transcription.Model,
			CUDAEnabled: cfg.Transcription.CUDAEnabled,
			VADMethod:   cfg.Transcription.VADMethod,
			HFToken:     cfg.Transcription.HFToken,
			Timeout:     toolTimeout,
		}),
		Chapterizer: llm.NewChapterizer(client),
		Detector:    llm.NewSubjectDetector(client, logger),
		Gateway:     ffmpeg.New(cfg.FFmpegBinary(), toolTimeout),
		Prober:      ffprobe.Prober{Binary: cfg.FFprobeBinary()},
		Notifier:    notifications.NewService(cfg),
	}
}
