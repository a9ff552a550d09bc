package media

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"reelcut/internal/media/ffprobe"
	"reelcut/internal/services"
)

type countingProber struct {
	calls  int
	result ffprobe.Result
	err    error
}

func (p *countingProber) Inspect(context.Context, string) (ffprobe.Result, error) {
	p.calls++
	return p.result, p.err
}

func TestResolveProbesOnce(t *testing.T) {
	prober := &countingProber{result: ffprobe.Result{
		Streams: []ffprobe.Stream{{CodecType: "video", Width: 1920, Height: 1080}},
		Format:  ffprobe.Format{Duration: "600"},
	}}
	video := NewVideo("/tmp/abc.merged.mp4")
	if video.Resolved() {
		t.Fatal("new video should be unresolved")
	}
	for i := 0; i < 3; i++ {
		info, err := video.Resolve(context.Background(), prober)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if info.Width != 1920 || info.Height != 1080 || info.Duration != 600 {
			t.Fatalf("unexpected info %+v", info)
		}
	}
	if prober.calls != 1 {
		t.Fatalf("expected one probe, got %d", prober.calls)
	}
	if !video.Resolved() {
		t.Fatal("video should be resolved")
	}
}

func TestResolveFailureStaysUnresolved(t *testing.T) {
	prober := &countingProber{err: errors.New("boom")}
	video := NewVideo("missing.mp4")
	if _, err := video.Resolve(context.Background(), prober); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if video.Resolved() {
		t.Fatal("failed probe should not mark the video resolved")
	}
}

func TestSampleTimestampsWindow(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	stamps, err := SampleTimestamps(600, 50, rng)
	if err != nil {
		t.Fatalf("SampleTimestamps: %v", err)
	}
	for _, ts := range stamps {
		if ts < 120 || ts > 480 {
			t.Fatalf("timestamp %.2f outside the middle window", ts)
		}
	}
	if _, err := SampleTimestamps(0, 2, rng); err == nil {
		t.Fatal("expected error for zero duration")
	}
}
