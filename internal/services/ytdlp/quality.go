package ytdlp

import (
	"fmt"
	"strconv"
	"strings"
)

// Quality caps the downloaded video height.
type Quality int

const (
	Quality480  Quality = 480
	Quality720  Quality = 720
	Quality1080 Quality = 1080
	Quality1440 Quality = 1440
	Quality2160 Quality = 2160
)

// Qualities lists the supported ladder in ascending order.
var Qualities = []Quality{Quality480, Quality720, Quality1080, Quality1440, Quality2160}

// ParseQuality accepts "1080", "1080p", or "1080P".
func ParseQuality(raw string) (Quality, error) {
	trimmed := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(raw)), "p")
	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid quality %q", raw)
	}
	q := Quality(value)
	if !q.Valid() {
		return 0, fmt.Errorf("unsupported quality %q (want 480, 720, 1080, 1440, or 2160)", raw)
	}
	return q, nil
}

// Valid reports whether q is on the ladder.
func (q Quality) Valid() bool {
	for _, candidate := range Qualities {
		if q == candidate {
			return true
		}
	}
	return false
}

// MaxHeight returns the pixel height cap.
func (q Quality) MaxHeight() int { return int(q) }

// FormatSelector returns the yt-dlp format expression. Higher frame-rate
// variants at the same height are accepted.
func (q Quality) FormatSelector() string {
	return fmt.Sprintf("bestvideo[height<=%d]/best", q.MaxHeight())
}

func (q Quality) String() string { return fmt.Sprintf("%dp", int(q)) }
