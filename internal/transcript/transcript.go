package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"reelcut/internal/fileutil"
	"reelcut/internal/services"
)

// Word is a single timed token. An empty Speaker means diarization did not
// attribute the token.
type Word struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// Segment is a sentence-level span of speech.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// Document is the persisted transcript payload. Only one of Segments or
// Words is populated, matching Mode.
type Document struct {
	Language string    `json:"language"`
	Mode     Mode      `json:"mode"`
	Segments []Segment `json:"segments,omitempty"`
	Words    []Word    `json:"words,omitempty"`
}

// Result lists the documents a transcription run wrote.
type Result struct {
	Language     string
	SentencePath string
	WordPath     string
}

// SentenceFileName and WordFileName give the canonical document names for a
// media stem.
func SentenceFileName(stem string) string { return stem + ".sentence.json" }

func WordFileName(stem string) string { return stem + ".word.json" }

// Stem strips the granularity suffix from a transcript file name, so
// "abc.sentence.json" yields "abc".
func Stem(path string) string {
	base := filepath.Base(path)
	if idx := strings.Index(base, "."); idx > 0 {
		return base[:idx]
	}
	return base
}

// Load reads a transcript document from disk.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, services.Wrap(services.ErrMissingArtifact, "transcript", "load", "transcript document not found", err)
		}
		return Document{}, fmt.Errorf("read transcript %q: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, services.Wrap(services.ErrValidation, "transcript", "decode", fmt.Sprintf("parse %s", filepath.Base(path)), err)
	}
	return doc, nil
}

// Write persists doc as indented JSON, replacing any prior content.
func Write(path string, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}

// Window returns the words with start >= from and end <= to. Words that
// straddle either boundary are dropped rather than clipped.
func Window(words []Word, from, to float64) []Word {
	var selected []Word
	for _, w := range words {
		if w.Start >= from && w.End <= to {
			selected = append(selected, w)
		}
	}
	return selected
}
