package workflow_test

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"reelcut/internal/chapters"
	"reelcut/internal/config"
	"reelcut/internal/logging"
	"reelcut/internal/media/ffprobe"
	"reelcut/internal/reframe"
	"reelcut/internal/services"
	"reelcut/internal/services/llm"
	"reelcut/internal/services/whisperx"
	"reelcut/internal/services/ytdlp"
	"reelcut/internal/testsupport"
	"reelcut/internal/transcript"
	"reelcut/internal/workflow"
)

const testSource = "https://example.com/watch?v=abc123"

type counter struct {
	mu    sync.Mutex
	calls map[string]int
}

func (c *counter) inc(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[name]++
}

func (c *counter) count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[name]
}

func touch(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

type fakeAcquirer struct{ *counter }

func (f fakeAcquirer) ResolveID(context.Context, string) (string, error) {
	f.inc("resolve")
	return "abc123", nil
}

func (f fakeAcquirer) DownloadAudio(_ context.Context, _, dir string) (string, error) {
	f.inc("audio")
	path := filepath.Join(dir, "abc123.mp3")
	return path, touch(path, "audio")
}

func (f fakeAcquirer) DownloadVideo(_ context.Context, _, dir string, _ ytdlp.Quality) (string, error) {
	f.inc("video")
	path := filepath.Join(dir, "abc123.mp4")
	return path, touch(path, "video")
}

type fakeTranscriber struct {
	*counter
	words     []transcript.Word
	writeNone bool
}

func (f fakeTranscriber) Transcribe(_ context.Context, audioPath, outDir string, opts whisperx.Options) (transcript.Result, error) {
	f.inc("transcribe")
	res := transcript.Result{Language: "en"}
	if f.writeNone {
		return res, nil
	}
	stem := transcript.Stem(audioPath)
	if opts.Mode.Sentences() {
		res.SentencePath = filepath.Join(outDir, transcript.SentenceFileName(stem))
		doc := transcript.Document{Language: "en", Mode: transcript.ModeSentence, Segments: []transcript.Segment{{Start: 30, End: 90, Text: "hello there"}}}
		if err := transcript.Write(res.SentencePath, doc); err != nil {
			return res, err
		}
	}
	if opts.Mode.Words() {
		res.WordPath = filepath.Join(outDir, transcript.WordFileName(stem))
		doc := transcript.Document{Language: "en", Mode: transcript.ModeWord, Words: f.words}
		if err := transcript.Write(res.WordPath, doc); err != nil {
			return res, err
		}
	}
	return res, nil
}

type fakeChapterizer struct {
	*counter
	chapters []chapters.Chapter
}

func (f fakeChapterizer) Chapterize(context.Context, transcript.Document) ([]chapters.Chapter, error) {
	f.inc("chapterize")
	return f.chapters, nil
}

type fakeDetector struct {
	*counter
	detection llm.Detection
}

func (f fakeDetector) Detect(_ context.Context, frames []string) (llm.Detection, error) {
	f.inc("detect")
	if len(frames) == 0 {
		return llm.Detection{}, errors.New("no frames")
	}
	return f.detection, nil
}

type fakeGateway struct {
	*counter
	mu      sync.Mutex
	layouts []reframe.Layout
	failAt  float64
	starts  []float64
}

func (g *fakeGateway) Trim(_ context.Context, _, dst string, start, _ float64) error {
	g.inc("trim")
	g.mu.Lock()
	g.starts = append(g.starts, start)
	g.mu.Unlock()
	if g.failAt > 0 && start == g.failAt {
		return services.Wrap(services.ErrExternalTool, "cut", "ffmpeg", "exit status 1", nil)
	}
	return touch(dst, "horizontal")
}

func (g *fakeGateway) Reframe(_ context.Context, _, dst string, plan reframe.Plan) error {
	g.inc("reframe")
	g.mu.Lock()
	g.layouts = append(g.layouts, plan.Layout)
	g.mu.Unlock()
	return touch(dst, "vertical")
}

func (g *fakeGateway) BurnSubtitles(_ context.Context, _, _, _, dst string) error {
	g.inc("burn")
	return touch(dst, "final")
}

func (g *fakeGateway) Mux(_ context.Context, _, _, dst string) error {
	g.inc("mux")
	return touch(dst, "merged")
}

func (g *fakeGateway) ExtractFrame(_ context.Context, _ string, _ float64, dst string) error {
	g.inc("frame")
	return touch(dst, "png")
}

type fakeProber struct{}

func (fakeProber) Inspect(context.Context, string) (ffprobe.Result, error) {
	return ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "video", Width: 1920, Height: 1080}, {CodecType: "audio"}},
		Format:  ffprobe.Format{Duration: "600"},
	}, nil
}

type harness struct {
	cfg      *config.Config
	deps     workflow.Deps
	calls    *counter
	gateway  *fakeGateway
	pipeline *workflow.Pipeline
}

func defaultWords() []transcript.Word {
	return []transcript.Word{
		{Start: 31, End: 31.4, Text: "hello", Speaker: "SPEAKER_01"},
		{Start: 31.5, End: 32, Text: "there", Speaker: "SPEAKER_00"},
		{Start: 120, End: 121, Text: "later", Speaker: "SPEAKER_00"},
	}
}

func defaultChapters() []chapters.Chapter {
	return []chapters.Chapter{
		{Title: "Hook", Start: 30, End: 90, EngagementScore: 0.8},
		{Title: "Filler", Start: 90, End: 200, EngagementScore: 0.3},
	}
}

func reactionDetection() llm.Detection {
	return llm.Detection{
		IsReaction: true,
		Confidence: 0.9,
		Reason:     "webcam overlay",
		BBox:       &reframe.BBox{X: 0.7, Y: 0.05, Width: 0.25, Height: 0.3},
	}
}

type harnessOption func(*harness)

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	calls := &counter{}
	h := &harness{
		cfg:     testsupport.NewConfig(t),
		calls:   calls,
		gateway: &fakeGateway{counter: calls},
	}
	h.deps = workflow.Deps{
		Acquirer:    fakeAcquirer{calls},
		Transcriber: fakeTranscriber{counter: calls, words: defaultWords()},
		Chapterizer: fakeChapterizer{counter: calls, chapters: defaultChapters()},
		Detector:    fakeDetector{counter: calls, detection: reactionDetection()},
		Gateway:     h.gateway,
		Prober:      fakeProber{},
		Rand:        rand.New(rand.NewSource(1)),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.deps.Store = testsupport.MustOpenStore(t, h.cfg)

	pipeline, err := workflow.NewPipeline(h.cfg, h.deps, logging.NewNop())
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	h.pipeline = pipeline
	return h
}
