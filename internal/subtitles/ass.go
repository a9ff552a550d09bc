package subtitles

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	styleFormat = "Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding"
	eventFormat = "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text"

	secondaryColour = "&H000000FF"
)

// Style is one record of the [V4+ Styles] table.
type Style struct {
	Name          string
	FontName      string
	FontSize      int
	PrimaryColour string
	OutlineColour string
	BackColour    string
	Bold          bool
	Italic        bool
	Outline       int
	Shadow        int
	Alignment     int
	MarginL       int
	MarginR       int
	MarginV       int
}

// Event is one Dialogue record. Times are relative to the clip start.
type Event struct {
	Start   float64
	End     float64
	Style   string
	MarginL int
	MarginR int
	MarginV int
	FadeIn  int
	FadeOut int
	Text    string
}

// Document is a complete ASS script.
type Document struct {
	PlayResX int
	PlayResY int
	Styles   []Style
	Events   []Event
}

// Bytes renders the script with "\n" separators and no trailing newline.
func (d Document) Bytes() []byte {
	lines := []string{
		"[Script Info]",
		"ScriptType: v4.00+",
		"PlayResX: " + strconv.Itoa(d.PlayResX),
		"PlayResY: " + strconv.Itoa(d.PlayResY),
		"ScaledBorderAndShadow: yes",
		"",
		"[V4+ Styles]",
		styleFormat,
	}
	for _, s := range d.Styles {
		lines = append(lines, s.line())
	}
	lines = append(lines, "", "[Events]", eventFormat)
	for _, e := range d.Events {
		lines = append(lines, e.line())
	}
	return []byte(strings.Join(lines, "\n"))
}

func (s Style) line() string {
	return fmt.Sprintf("Style: %s,%s,%d,%s,%s,%s,%s,%s,%s,0,0,100,100,0,0,1,%d,%d,%d,%d,%d,%d,1",
		s.Name, s.FontName, s.FontSize,
		s.PrimaryColour, secondaryColour, s.OutlineColour, s.BackColour,
		assBool(s.Bold), assBool(s.Italic),
		s.Outline, s.Shadow, s.Alignment, s.MarginL, s.MarginR, s.MarginV)
}

func (e Event) line() string {
	return fmt.Sprintf("Dialogue: 0,%s,%s,%s,,%d,%d,%d,,{\\fad(%d,%d)}%s",
		FormatTimestamp(e.Start), FormatTimestamp(e.End), e.Style,
		e.MarginL, e.MarginR, e.MarginV,
		e.FadeIn, e.FadeOut, e.Text)
}

func assBool(v bool) string {
	if v {
		return "-1"
	}
	return "0"
}

// FormatTimestamp renders seconds as H:MM:SS.cc, truncating to centiseconds.
// Negative input clamps to zero.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	// 1e-6 absorbs binary representation error such as 0.29*100 = 28.999...
	cs := int64(math.Floor(seconds*100 + 1e-6))
	hours := cs / 360_000
	cs %= 360_000
	minutes := cs / 6_000
	cs %= 6_000
	secs := cs / 100
	cs %= 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, cs)
}
