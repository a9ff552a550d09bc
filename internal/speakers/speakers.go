// Package speakers ranks diarized speakers by how much they say in a window
// and assigns each a caption colour.
package speakers

import (
	"sort"

	"reelcut/internal/transcript"
)

// Fallback is the identifier used for tokens without a speaker.
const Fallback = "SPEAKER_00"

// Palette holds ASS colours (&HAABBGGRR) assigned by rank.
var Palette = []string{
	"&H20FFFFFF", // white
	"&H2032C9FF", // amber
	"&H206060FF", // salmon
	"&H20FFC080", // sky blue
}

// FallbackColor is used for ranks beyond the palette.
const FallbackColor = "&H20FFFFFF"

// ColorMap is the ranked speaker list and the colour of each speaker.
type ColorMap struct {
	Ranked []string
	Colors map[string]string
}

// Color returns the colour for speaker, or FallbackColor when unknown.
func (m ColorMap) Color(speaker string) string {
	if c, ok := m.Colors[speaker]; ok {
		return c
	}
	return FallbackColor
}

// ID normalizes a token speaker, substituting Fallback when absent.
func ID(w transcript.Word) string {
	if w.Speaker == "" {
		return Fallback
	}
	return w.Speaker
}

type tally struct {
	id    string
	count int
	first float64
	order int
}

// Rank orders speakers by descending token count. Equal counts go to the
// speaker who spoke first; equal first utterances keep encounter order.
func Rank(words []transcript.Word) ColorMap {
	m := ColorMap{Ranked: []string{}, Colors: map[string]string{}}
	if len(words) == 0 {
		return m
	}

	index := make(map[string]int)
	var tallies []tally
	for _, w := range words {
		id := ID(w)
		i, ok := index[id]
		if !ok {
			index[id] = len(tallies)
			tallies = append(tallies, tally{id: id, first: w.Start, order: len(tallies)})
			i = len(tallies) - 1
		}
		tallies[i].count++
		if w.Start < tallies[i].first {
			tallies[i].first = w.Start
		}
	}

	sort.Slice(tallies, func(a, b int) bool {
		ta, tb := tallies[a], tallies[b]
		if ta.count != tb.count {
			return ta.count > tb.count
		}
		if ta.first != tb.first {
			return ta.first < tb.first
		}
		return ta.order < tb.order
	})

	for rank, t := range tallies {
		m.Ranked = append(m.Ranked, t.id)
		if rank < len(Palette) {
			m.Colors[t.id] = Palette[rank]
		} else {
			m.Colors[t.id] = FallbackColor
		}
	}
	return m
}
