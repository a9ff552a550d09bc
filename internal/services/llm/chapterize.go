package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"reelcut/internal/chapters"
	"reelcut/internal/services"
	"reelcut/internal/transcript"
)

const chapterizeTemperature = 0.4

// Chapterizer asks the model to split a transcript into scored chapters.
type Chapterizer struct {
	client *Client
}

// NewChapterizer wraps client.
func NewChapterizer(client *Client) *Chapterizer {
	return &Chapterizer{client: client}
}

// Chapterize sends doc to the model and returns its chapters in response order.
func (c *Chapterizer) Chapterize(ctx context.Context, doc transcript.Document) ([]chapters.Chapter, error) {
	if len(doc.Segments) == 0 && len(doc.Words) == 0 {
		return nil, services.Wrap(services.ErrMissingArtifact, "chapterize", "input", "transcript has no content", nil)
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("chapterize: encode transcript: %w", err)
	}
	content, err := c.client.Complete(ctx, "llm chapterize", Request{
		System:      ChapterizePrompt,
		Parts:       []Part{TextPart(string(encoded))},
		Temperature: chapterizeTemperature,
	})
	if err != nil {
		return nil, classify("chapterize", "complete", err)
	}
	chs, err := ParseChapters(content)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "chapterize", "parse", "unusable model response", err)
	}
	return chs, nil
}

// ParseChapters decodes a {"chapters": [...]} payload. Numeric fields may be
// JSON numbers or numeric strings.
func ParseChapters(content string) ([]chapters.Chapter, error) {
	var payload struct {
		Chapters *[]struct {
			Title           string `json:"title"`
			Start           number `json:"start"`
			End             number `json:"end"`
			EngagementScore number `json:"engagement_score"`
		} `json:"chapters"`
	}
	if err := DecodeLLMJSON(content, &payload); err != nil {
		return nil, err
	}
	if payload.Chapters == nil {
		return nil, errors.New(`response has no "chapters" field`)
	}
	out := make([]chapters.Chapter, 0, len(*payload.Chapters))
	for _, raw := range *payload.Chapters {
		out = append(out, chapters.Chapter{
			Title:           strings.TrimSpace(raw.Title),
			Start:           float64(raw.Start),
			End:             float64(raw.End),
			EngagementScore: float64(raw.EngagementScore),
		})
	}
	return out, nil
}

type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*n = number(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = number(v)
	return nil
}
