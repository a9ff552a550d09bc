package speakers

import (
	"testing"

	"reelcut/internal/transcript"
)

func words(spec ...string) []transcript.Word {
	out := make([]transcript.Word, len(spec))
	for i, s := range spec {
		out[i] = transcript.Word{Start: float64(i), End: float64(i) + 0.5, Text: "w", Speaker: s}
	}
	return out
}

func TestRankByCount(t *testing.T) {
	m := Rank(words("B", "A", "A", "C", "A", "B"))
	want := []string{"A", "B", "C"}
	for i, id := range want {
		if m.Ranked[i] != id {
			t.Fatalf("rank %d = %q, want %q (ranked %v)", i, m.Ranked[i], id, m.Ranked)
		}
	}
	if m.Colors["A"] != Palette[0] {
		t.Fatalf("most frequent speaker got %q", m.Colors["A"])
	}
	if m.Colors["C"] != Palette[2] {
		t.Fatalf("third speaker got %q", m.Colors["C"])
	}
}

func TestRankTieBreaksOnFirstUtterance(t *testing.T) {
	input := []transcript.Word{
		{Start: 5, End: 6, Speaker: "LATE"},
		{Start: 1, End: 2, Speaker: "EARLY"},
		{Start: 7, End: 8, Speaker: "LATE"},
		{Start: 9, End: 10, Speaker: "EARLY"},
	}
	m := Rank(input)
	if m.Ranked[0] != "EARLY" {
		t.Fatalf("expected earliest speaker first, got %v", m.Ranked)
	}

	same := []transcript.Word{
		{Start: 1, End: 2, Speaker: "X"},
		{Start: 1, End: 2, Speaker: "Y"},
	}
	if got := Rank(same).Ranked; got[0] != "X" || got[1] != "Y" {
		t.Fatalf("expected encounter order for identical starts, got %v", got)
	}
}

func TestRankMissingSpeakerAndFallbackColour(t *testing.T) {
	m := Rank(words("", "", "A", "B", "C", "D"))
	if m.Ranked[0] != Fallback {
		t.Fatalf("expected %s first, got %v", Fallback, m.Ranked)
	}
	if len(m.Ranked) != 5 {
		t.Fatalf("expected 5 speakers, got %v", m.Ranked)
	}
	if m.Colors[m.Ranked[4]] != FallbackColor {
		t.Fatalf("rank 4 should use fallback colour, got %q", m.Colors[m.Ranked[4]])
	}
	if m.Color("unknown") != FallbackColor {
		t.Fatal("unknown speakers should resolve to fallback colour")
	}
}

func TestRankEmpty(t *testing.T) {
	m := Rank(nil)
	if len(m.Ranked) != 0 || len(m.Colors) != 0 {
		t.Fatalf("expected empty map, got %+v", m)
	}
}
