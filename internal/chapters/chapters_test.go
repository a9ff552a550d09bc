package chapters

import (
	"errors"
	"math/rand"
	"path/filepath"
	"testing"

	"reelcut/internal/services"
)

func TestSelectSubsetOrderThreshold(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		n := rng.Intn(12)
		input := make([]Chapter, n)
		for i := range input {
			input[i] = Chapter{Title: string(rune('a' + i)), Start: float64(i * 10), End: float64(i*10 + 5), EngagementScore: rng.Float64()}
		}
		threshold := rng.Float64()
		got := Select(input, threshold)

		pos := 0
		for _, ch := range got {
			if ch.EngagementScore < threshold {
				t.Fatalf("trial %d: %q scored %.3f below %.3f", trial, ch.Title, ch.EngagementScore, threshold)
			}
			for pos < len(input) && input[pos] != ch {
				pos++
			}
			if pos == len(input) {
				t.Fatalf("trial %d: %q not in input order", trial, ch.Title)
			}
			pos++
		}
	}
}

func TestSelectBoundaryAndEmpty(t *testing.T) {
	input := []Chapter{{Title: "edge", EngagementScore: 0.65}, {Title: "low", EngagementScore: 0.2}}
	got := Select(input, DefaultThreshold)
	if len(got) != 1 || got[0].Title != "edge" {
		t.Fatalf("expected boundary chapter kept, got %+v", got)
	}
	none := Select(input, 0.9)
	if none == nil || len(none) != 0 {
		t.Fatalf("expected empty non-nil selection, got %#v", none)
	}
}

func TestSelectDoesNotAlias(t *testing.T) {
	input := []Chapter{{Title: "a", EngagementScore: 1}}
	got := Select(input, 0)
	got[0].Title = "changed"
	if input[0].Title != "a" {
		t.Fatal("Select result aliases input")
	}
}

func TestWriteLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abc.json")
	doc := Document{Chapters: []Chapter{{Title: "Intro", Start: 30, End: 90, EngagementScore: 0.8}}}
	if err := Write(path, doc); err != nil {
		t.Fatalf("Write: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Chapters) != 1 || loaded.Chapters[0] != doc.Chapters[0] {
		t.Fatalf("unexpected chapters: %+v", loaded.Chapters)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.json"))
	if !errors.Is(err, services.ErrMissingArtifact) {
		t.Fatalf("expected ErrMissingArtifact, got %v", err)
	}
}

func TestInspectReportsWithoutChanging(t *testing.T) {
	input := []Chapter{
		{Title: "a", Start: 10, End: 40, EngagementScore: 0.7},
		{Title: "b", Start: 30, End: 60, EngagementScore: 0.7},
		{Title: "c", Start: 5, End: 8, EngagementScore: 1.2},
		{Title: "d", Start: 90, End: 90, EngagementScore: 0.5},
	}
	issues := Inspect(input)
	kinds := map[IssueKind]int{}
	for _, issue := range issues {
		kinds[issue.Kind]++
	}
	if kinds[IssueOverlap] != 1 || kinds[IssueUnordered] != 1 || kinds[IssueScoreRange] != 1 || kinds[IssueInverted] != 1 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if input[2].Start != 5 {
		t.Fatal("Inspect modified its input")
	}
	if got := Playable(input); len(got) != 3 {
		t.Fatalf("expected inverted chapter dropped, got %+v", got)
	}
}

func TestSelectCandidatesKeepsDocumentIndex(t *testing.T) {
	doc := []Chapter{
		{Title: "a", Start: 30, End: 90, EngagementScore: 0.4},
		{Title: "inverted", Start: 100, End: 95, EngagementScore: 0.9},
		{Title: "b", Start: 90, End: 150, EngagementScore: 0.8},
	}

	high := SelectCandidates(doc, 0.65)
	if len(high) != 1 || high[0].Index != 2 || high[0].Title != "b" {
		t.Fatalf("unexpected candidates at 0.65: %+v", high)
	}
	low := SelectCandidates(doc, 0.3)
	if len(low) != 2 || low[0].Index != 0 || low[1].Index != 2 {
		t.Fatalf("unexpected candidates at 0.3: %+v", low)
	}
	if low[1].Chapter != doc[2] {
		t.Fatalf("candidate chapter changed: %+v", low[1].Chapter)
	}
}
