package transcript

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"reelcut/internal/services"
)

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{"sentence": ModeSentence, "WORD": ModeWord, " both ": ModeBoth}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseMode(%q) = %v, want %v", raw, got, want)
		}
	}
	if _, err := ParseMode("paragraph"); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestModeGranularity(t *testing.T) {
	if !ModeBoth.Sentences() || !ModeBoth.Words() {
		t.Fatal("both should produce sentences and words")
	}
	if ModeSentence.Words() || ModeWord.Sentences() {
		t.Fatal("single modes should produce one granularity")
	}
}

func TestWindowStrictContainment(t *testing.T) {
	words := []Word{
		{Start: 29.5, End: 30.2, Text: "straddle"},
		{Start: 30, End: 30.4, Text: "first"},
		{Start: 50, End: 51, Text: "middle"},
		{Start: 89.6, End: 90, Text: "last"},
		{Start: 89.8, End: 90.3, Text: "over"},
	}
	got := Window(words, 30, 90)
	if len(got) != 3 {
		t.Fatalf("expected 3 words, got %d: %+v", len(got), got)
	}
	if got[0].Text != "first" || got[2].Text != "last" {
		t.Fatalf("unexpected selection: %+v", got)
	}
	if Window(words, 100, 200) != nil {
		t.Fatal("expected nil for empty window")
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), WordFileName("abc"))
	doc := Document{
		Language: "en",
		Mode:     ModeWord,
		Words:    []Word{{Start: 1, End: 1.5, Text: "hello", Speaker: "SPEAKER_01"}},
	}
	if err := Write(path, doc); err != nil {
		t.Fatalf("Write: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Mode != ModeWord || len(loaded.Words) != 1 || loaded.Words[0].Speaker != "SPEAKER_01" {
		t.Fatalf("unexpected document: %+v", loaded)
	}
}

func TestDocumentModeEncodesAsString(t *testing.T) {
	data, err := json.Marshal(Document{Language: "en", Mode: ModeSentence})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"mode":"sentence"`) {
		t.Fatalf("expected string mode, got %s", data)
	}
}

func TestLoadMissingIsMissingArtifact(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.word.json"))
	if !errors.Is(err, services.ErrMissingArtifact) {
		t.Fatalf("expected ErrMissingArtifact, got %v", err)
	}
}

func TestStem(t *testing.T) {
	if got := Stem("/data/transcript/abc123.sentence.json"); got != "abc123" {
		t.Fatalf("Stem = %q", got)
	}
}
