package assembler

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"reelcut/internal/chapters"
	"reelcut/internal/logging"
	"reelcut/internal/paths"
	"reelcut/internal/reframe"
	"reelcut/internal/runstate"
	"reelcut/internal/services"
	"reelcut/internal/stage"
	"reelcut/internal/subtitles"
	"reelcut/internal/testsupport"
	"reelcut/internal/transcript"
)

type fakeGateway struct {
	calls      []string
	reframeErr error
}

func (g *fakeGateway) Trim(_ context.Context, _, dst string, _, _ float64) error {
	g.calls = append(g.calls, "trim")
	return os.WriteFile(dst, []byte("horizontal"), 0o644)
}

func (g *fakeGateway) Reframe(_ context.Context, _, dst string, _ reframe.Plan) error {
	g.calls = append(g.calls, "reframe")
	if g.reframeErr != nil {
		return g.reframeErr
	}
	return os.WriteFile(dst, []byte("vertical"), 0o644)
}

func (g *fakeGateway) BurnSubtitles(_ context.Context, _, subtitle, _, dst string) error {
	g.calls = append(g.calls, "burn")
	if _, err := os.Stat(subtitle); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte("final"), 0o644)
}

func newAssembler(t *testing.T, gw *fakeGateway, words []transcript.Word) (*Assembler, paths.Registry, *runstate.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	reg := paths.New(cfg.Paths.DataDir)
	if err := reg.EnsureAll(); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := testsupport.MustOpenStore(t, cfg)
	plan, err := reframe.Compute(reframe.Size{Width: 1920, Height: 1080}, reframe.DefaultTarget, nil, reframe.DefaultTopRatio)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	a, err := New(Options{
		Registry:  reg,
		Gateway:   gw,
		Store:     store,
		Logger:    logging.NewNop(),
		RunID:     "run-1",
		Subtitles: subtitles.DefaultOptions(),
	}, Source{Stem: "vid", Video: "/src/vid.merged.mp4", Words: words, Plan: plan})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, reg, store
}

func windowWords() []transcript.Word {
	return []transcript.Word{
		{Start: 31, End: 31.5, Text: "hello", Speaker: "SPEAKER_01"},
		{Start: 40, End: 40.4, Text: "there", Speaker: "SPEAKER_00"},
	}
}

func TestAssembleProducesClipAndResumes(t *testing.T) {
	gw := &fakeGateway{}
	a, reg, _ := newAssembler(t, gw, windowWords())
	ch := chapters.Chapter{Title: "  The Hook  ", Start: 30, End: 90, EngagementScore: 0.8}

	clip, err := a.Assemble(context.Background(), 0, ch)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := reg.Clip("vid", 0)
	if clip.FinalPath != want.Final || clip.SubtitlePath != want.Subtitle || clip.TitlePath != want.Title {
		t.Fatalf("unexpected clip paths: %+v", clip)
	}
	title, err := os.ReadFile(clip.TitlePath)
	if err != nil || string(title) != "The Hook" {
		t.Fatalf("title = %q, err=%v", title, err)
	}
	script, err := os.ReadFile(clip.SubtitlePath)
	if err != nil || !strings.Contains(string(script), "HELLO") {
		t.Fatalf("subtitle missing caption text: err=%v", err)
	}
	if got := strings.Join(gw.calls, ","); got != "trim,reframe,burn" {
		t.Fatalf("calls = %s", got)
	}

	gw.calls = nil
	if _, err := a.Assemble(context.Background(), 0, ch); err != nil {
		t.Fatalf("second Assemble: %v", err)
	}
	if len(gw.calls) != 0 {
		t.Fatalf("expected resumed run to skip gateway, got %v", gw.calls)
	}
}

func TestAssembleWithoutWordsSkipsCaptions(t *testing.T) {
	gw := &fakeGateway{}
	a, reg, _ := newAssembler(t, gw, nil)

	clip, err := a.Assemble(context.Background(), 1, chapters.Chapter{Title: "Quiet", Start: 10, End: 20})
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if clip.SubtitlePath != "" {
		t.Fatalf("expected no subtitle, got %s", clip.SubtitlePath)
	}
	if _, err := os.Stat(reg.Clip("vid", 1).Subtitle); !os.IsNotExist(err) {
		t.Fatal("no subtitle file should be written for an empty window")
	}
	data, err := os.ReadFile(clip.FinalPath)
	if err != nil || string(data) != "vertical" {
		t.Fatalf("final should be the uncaptioned vertical clip, got %q err=%v", data, err)
	}
	for _, call := range gw.calls {
		if call == "burn" {
			t.Fatal("burn must not run without captions")
		}
	}
}

func TestAssembleRecordsFailedStep(t *testing.T) {
	gw := &fakeGateway{reframeErr: services.Wrap(services.ErrExternalTool, "reframe", "ffmpeg", "exit status 1", nil)}
	a, _, store := newAssembler(t, gw, windowWords())

	clip, err := a.Assemble(context.Background(), 2, chapters.Chapter{Title: "Broken", Start: 30, End: 90})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if clip.FinalPath != "" {
		t.Fatalf("expected no final path, got %s", clip.FinalPath)
	}
	status, ok, err := store.StageStatus(context.Background(), runstate.Key{MediaID: "vid", Stage: stage.Reframe, Chapter: 2})
	if err != nil || !ok || status != runstate.StatusFailed {
		t.Fatalf("reframe status = %q ok=%v err=%v", status, ok, err)
	}
}

func TestNewValidatesCollaborators(t *testing.T) {
	if _, err := New(Options{}, Source{Stem: "a", Video: "b"}); err == nil {
		t.Fatal("expected error without gateway")
	}
}
