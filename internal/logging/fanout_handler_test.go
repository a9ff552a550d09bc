package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestTeeHandlerCollapses(t *testing.T) {
	if _, ok := TeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if TeeHandler(nil, inner) != inner {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestTeeHandlerRespectsEachLevel(t *testing.T) {
	var console, file bytes.Buffer
	h := TeeHandler(
		slog.NewTextHandler(&console, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewTextHandler(&file, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug to be enabled through the file handler")
	}
	logger := slog.New(h).With(slog.String(FieldRunID, "run-1"))
	logger.Debug("probe finished")
	logger.Warn("subject box rejected")

	if strings.Contains(console.String(), "probe finished") {
		t.Fatal("console handler should drop debug records")
	}
	if !strings.Contains(console.String(), "subject box rejected") {
		t.Fatal("console handler missing warning")
	}
	for _, want := range []string{"probe finished", "subject box rejected", "run_id=run-1"} {
		if !strings.Contains(file.String(), want) {
			t.Fatalf("file handler missing %q: %s", want, file.String())
		}
	}
}
