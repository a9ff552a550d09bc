package subtitles

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reelcut/internal/fileutil"
	"reelcut/internal/services"
	"reelcut/internal/speakers"
	"reelcut/internal/transcript"
)

// Window is the absolute time range of a clip in the source.
type Window struct {
	Start float64
	End   float64
}

// Duration returns End-Start.
func (w Window) Duration() float64 { return w.End - w.Start }

// Options controls caption rendering. Style supplies the shared style fields;
// its Name and PrimaryColour are replaced per speaker.
type Options struct {
	Style     Style
	PlayResX  int
	PlayResY  int
	FadeInMS  int
	FadeOutMS int
	Uppercase bool
	// Language is a BCP 47 tag used for locale-aware upper-casing.
	Language string
}

// DefaultOptions returns the caption style used for vertical shorts.
func DefaultOptions() Options {
	return Options{
		Style: Style{
			Name:          "Default",
			FontName:      "Montserrat Black",
			FontSize:      90,
			PrimaryColour: speakers.Palette[0],
			OutlineColour: "&H00000000",
			BackColour:    "&H00000000",
			Outline:       3,
			Shadow:        1,
			Alignment:     5,
			MarginL:       40,
			MarginR:       40,
			MarginV:       60,
		},
		PlayResX:  1080,
		PlayResY:  1920,
		FadeInMS:  150,
		FadeOutMS: 150,
		Uppercase: true,
	}
}

// Synthesize builds a caption script for the words strictly inside win.
// An empty selection returns an error marked services.ErrEmptySelection and
// callers must not write a file.
func Synthesize(words []transcript.Word, win Window, opts Options) (Document, error) {
	if win.End <= win.Start {
		return Document{}, services.Wrap(services.ErrValidation, "subtitle", "window", fmt.Sprintf("window %.2f-%.2f is empty", win.Start, win.End), nil)
	}
	selected := transcript.Window(words, win.Start, win.End)
	if len(selected) == 0 {
		return Document{}, services.Wrap(services.ErrEmptySelection, "subtitle", "select", fmt.Sprintf("no words within %.2f-%.2f", win.Start, win.End), nil)
	}

	colours := speakers.Rank(selected)
	doc := Document{PlayResX: opts.PlayResX, PlayResY: opts.PlayResY}
	for _, id := range colours.Ranked {
		style := opts.Style
		style.Name = id
		style.PrimaryColour = colours.Color(id)
		doc.Styles = append(doc.Styles, style)
	}

	upper := upperCaser(opts.Language)
	for _, w := range selected {
		text := strings.TrimSpace(w.Text)
		if opts.Uppercase {
			text = upper.String(text)
		}
		doc.Events = append(doc.Events, Event{
			Start:   w.Start - win.Start,
			End:     w.End - win.Start,
			Style:   speakers.ID(w),
			MarginL: opts.Style.MarginL,
			MarginR: opts.Style.MarginR,
			MarginV: opts.Style.MarginV,
			FadeIn:  opts.FadeInMS,
			FadeOut: opts.FadeOutMS,
			Text:    text,
		})
	}
	return doc, nil
}

func upperCaser(tag string) cases.Caser {
	parsed, err := language.Parse(strings.TrimSpace(tag))
	if err != nil {
		parsed = language.Und
	}
	return cases.Upper(parsed)
}

// WriteFile replaces path with the rendered document.
func WriteFile(path string, doc Document) error {
	if err := fileutil.WriteFileAtomic(path, doc.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write subtitle: %w", err)
	}
	return nil
}
