// Package chapters holds chapter candidates returned by the chaptering
// collaborator, their JSON document, and engagement-based selection.
package chapters

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"reelcut/internal/fileutil"
	"reelcut/internal/services"
)

// DefaultThreshold is the minimum engagement score kept by Select.
const DefaultThreshold = 0.65

// Chapter is a titled time range with an engagement estimate in [0,1].
type Chapter struct {
	Title           string  `json:"title"`
	Start           float64 `json:"start"`
	End             float64 `json:"end"`
	EngagementScore float64 `json:"engagement_score"`
}

// Duration returns End-Start, which may be non-positive for inverted input.
func (c Chapter) Duration() float64 { return c.End - c.Start }

// Document is the persisted chapter payload.
type Document struct {
	Chapters []Chapter `json:"chapters"`
}

// Select returns the chapters scoring at least threshold, in input order.
// The result never aliases chs. An empty result is not an error.
func Select(chs []Chapter, threshold float64) []Chapter {
	selected := make([]Chapter, 0, len(chs))
	for _, ch := range chs {
		if ch.EngagementScore >= threshold {
			selected = append(selected, ch)
		}
	}
	return selected
}

// Candidate is a selected chapter and its position in the chapter document.
// Index stays fixed for a document regardless of the threshold.
type Candidate struct {
	Index int
	Chapter
}

// SelectCandidates applies Playable and Select to chs, keeping each
// chapter's document position.
func SelectCandidates(chs []Chapter, threshold float64) []Candidate {
	out := make([]Candidate, 0, len(chs))
	for i, ch := range chs {
		if ch.Playable() && ch.EngagementScore >= threshold {
			out = append(out, Candidate{Index: i, Chapter: ch})
		}
	}
	return out
}

// Load reads a chapter document.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, services.Wrap(services.ErrMissingArtifact, "chapters", "load", "chapter document not found", err)
		}
		return Document{}, fmt.Errorf("read chapters %q: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, services.Wrap(services.ErrValidation, "chapters", "decode", fmt.Sprintf("parse %s", filepath.Base(path)), err)
	}
	return doc, nil
}

// Write persists doc as indented JSON, replacing prior content.
func Write(path string, doc Document) error {
	if doc.Chapters == nil {
		doc.Chapters = []Chapter{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode chapters: %w", err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}
