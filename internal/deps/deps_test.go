package deps

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"reelcut/internal/config"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
}

func TestRequirementsAndMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Acquisition.YtDlpBinary = "clearly-not-present-ytdlp"
	reqs := Requirements(&cfg)
	if len(reqs) != 4 {
		t.Fatalf("expected 4 requirements, got %d", len(reqs))
	}
	statuses := []Status{
		{Name: "a", Available: true},
		{Name: "b", Available: false},
		{Name: "c", Available: false, Optional: true},
	}
	missing := Missing(statuses)
	if len(missing) != 1 || missing[0].Name != "b" {
		t.Fatalf("unexpected missing set %+v", missing)
	}
}

func TestParseFilterNames(t *testing.T) {
	output := `Filters:
  T.. = Timeline support
 ... ass               V->V       Render ASS subtitles onto input video using the libass library.
 TSC crop              V->V       Crop the input video.
 ..C scale             V->V       Scale the input video size and/or convert the image format.
 ... vstack            N->V       Stack video inputs vertically.
`
	names := parseFilterNames(output)
	for _, want := range RequiredFilters {
		if !names[want] {
			t.Fatalf("expected filter %q in %v", want, names)
		}
	}
	if names["Timeline"] {
		t.Fatal("legend rows must not be parsed as filters")
	}
}

func TestCheckFFmpegFiltersWithStub(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub")
	}
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\necho ' ... crop V->V Crop'\necho ' ... scale V->V Scale'\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	status := CheckFFmpegFilters(context.Background(), stub)
	if status.Available {
		t.Fatal("expected missing filters to make status unavailable")
	}
	if status.Detail != "missing filters: ass, vstack" {
		t.Fatalf("unexpected detail %q", status.Detail)
	}
}
