package whisperx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelcut/internal/services"
	"reelcut/internal/transcript"
)

const samplePayload = `{
  "language": "en",
  "segments": [
    {"start": 0.5, "end": 2.0, "text": " Hello there. ", "speaker": "SPEAKER_01",
     "words": [
       {"word": "Hello", "start": 0.5, "end": 0.9, "speaker": "SPEAKER_01"},
       {"word": "there.", "start": 1.0, "end": 2.0},
       {"word": "1990", "speaker": "SPEAKER_01"}
     ]},
    {"start": 2.5, "end": 3.0, "text": "  "}
  ]
}`

func fakeWhisperX(t *testing.T, captured *[]string) func(context.Context, string, ...string) error {
	t.Helper()
	return func(_ context.Context, name string, args ...string) error {
		if name != UVXCommand {
			t.Fatalf("unexpected command %q", name)
		}
		*captured = args
		var outDir, source string
		for i, arg := range args {
			if arg == "--output_dir" && i+1 < len(args) {
				outDir = args[i+1]
			}
			if arg == "whisperx" && i+1 < len(args) {
				source = args[i+1]
			}
		}
		base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		return os.WriteFile(filepath.Join(outDir, base+".json"), []byte(samplePayload), 0o644)
	}
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "abc123.mp3")
	if err := os.WriteFile(path, []byte("mp3"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	return path
}

func TestTranscribeWritesBothDocuments(t *testing.T) {
	audio := writeAudio(t)
	outDir := filepath.Join(t.TempDir(), "transcript")
	var args []string
	svc := NewService(Config{HFToken: "hf"})
	svc.WithCommandRunner(fakeWhisperX(t, &args))

	result, err := svc.Transcribe(context.Background(), audio, outDir, Options{
		Mode:        transcript.ModeBoth,
		Diarize:     true,
		MinSpeakers: 1,
		MaxSpeakers: 3,
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.Language != "en" {
		t.Fatalf("unexpected language %q", result.Language)
	}
	if result.SentencePath != filepath.Join(outDir, "abc123.sentence.json") || result.WordPath != filepath.Join(outDir, "abc123.word.json") {
		t.Fatalf("unexpected result paths %+v", result)
	}

	sentences, err := transcript.Load(result.SentencePath)
	if err != nil {
		t.Fatalf("load sentences: %v", err)
	}
	if sentences.Mode != transcript.ModeSentence || len(sentences.Segments) != 1 || sentences.Segments[0].Text != "Hello there." {
		t.Fatalf("unexpected sentence document %+v", sentences)
	}

	words, err := transcript.Load(result.WordPath)
	if err != nil {
		t.Fatalf("load words: %v", err)
	}
	if len(words.Words) != 2 {
		t.Fatalf("expected untimed token to be dropped, got %+v", words.Words)
	}
	if words.Words[1].Speaker != "SPEAKER_01" {
		t.Fatalf("expected word to inherit segment speaker, got %q", words.Words[1].Speaker)
	}

	joined := strings.Join(args, " ")
	for _, want := range []string{"--diarize", "--min_speakers 1", "--max_speakers 3", "--hf_token hf", "--output_format json"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}
	entries, _ := os.ReadDir(outDir)
	for _, entry := range entries {
		if entry.IsDir() {
			t.Fatalf("expected work dir to be removed, found %s", entry.Name())
		}
	}
}

func TestTranscribeSentenceModeSkipsWords(t *testing.T) {
	audio := writeAudio(t)
	outDir := t.TempDir()
	var args []string
	svc := NewService(Config{})
	svc.WithCommandRunner(fakeWhisperX(t, &args))

	result, err := svc.Transcribe(context.Background(), audio, outDir, Options{Mode: transcript.ModeSentence, Language: "en-US"})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if result.WordPath != "" {
		t.Fatalf("expected no word document, got %q", result.WordPath)
	}
	if _, err := os.Stat(filepath.Join(outDir, "abc123.word.json")); !os.IsNotExist(err) {
		t.Fatalf("word document should not exist: %v", err)
	}
	joined := strings.Join(args, " ")
	if strings.Contains(joined, "--diarize") {
		t.Fatalf("unexpected diarize flag in %q", joined)
	}
	if !strings.Contains(joined, "--language en") {
		t.Fatalf("expected normalized language in %q", joined)
	}
}

func TestTranscribeMissingAudio(t *testing.T) {
	svc := NewService(Config{})
	_, err := svc.Transcribe(context.Background(), filepath.Join(t.TempDir(), "none.mp3"), t.TempDir(), Options{})
	if !errors.Is(err, services.ErrMissingArtifact) {
		t.Fatalf("expected missing artifact, got %v", err)
	}
}

func TestTranscribeDiarizeRequiresToken(t *testing.T) {
	svc := NewService(Config{})
	_, err := svc.Transcribe(context.Background(), writeAudio(t), t.TempDir(), Options{Diarize: true})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestTranscribeRunnerFailure(t *testing.T) {
	svc := NewService(Config{})
	svc.WithCommandRunner(func(context.Context, string, ...string) error { return errors.New("exit 1") })
	_, err := svc.Transcribe(context.Background(), writeAudio(t), t.TempDir(), Options{})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}

func TestNormalizeLanguage(t *testing.T) {
	cases := map[string]string{"": "", "en": "en", "en-US": "en", "eng": "en", "tr": "tr", "pt-BR": "pt", "not a tag": ""}
	for in, want := range cases {
		if got := NormalizeLanguage(in); got != want {
			t.Fatalf("NormalizeLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}
