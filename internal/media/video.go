package media

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"reelcut/internal/media/ffprobe"
	"reelcut/internal/services"
)

// Prober inspects a media file.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Result, error)
}

// Info is the probed subset of a video's properties.
type Info struct {
	Width    int
	Height   int
	Duration float64
}

// Video is a media file whose Info is probed on first use. The resolved flag
// and cached value are explicit so callers can tell a probed zero from an
// unprobed video.
type Video struct {
	Path string

	mu       sync.Mutex
	info     Info
	resolved bool
}

// NewVideo returns an unresolved video.
func NewVideo(path string) *Video {
	return &Video{Path: path}
}

// Resolved reports whether Info has been probed.
func (v *Video) Resolved() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.resolved
}

// Resolve returns the stored Info or probes the file and stores the result.
// A failed probe leaves the video unresolved.
func (v *Video) Resolve(ctx context.Context, prober Prober) (Info, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.resolved {
		return v.info, nil
	}
	result, err := prober.Inspect(ctx, v.Path)
	if err != nil {
		return Info{}, services.Wrap(services.ErrExternalTool, "probe", "inspect", v.Path, err)
	}
	width, height, err := result.VideoSize()
	if err != nil {
		return Info{}, services.Wrap(services.ErrValidation, "probe", "video size", v.Path, err)
	}
	duration := result.DurationSeconds()
	if math.IsNaN(duration) || duration < 0 {
		duration = 0
	}
	v.info = Info{Width: width, Height: height, Duration: duration}
	v.resolved = true
	return v.info, nil
}

// SampleTimestamps returns n random instants from the middle 60% of a video,
// or from the whole duration when that window is empty.
func SampleTimestamps(duration float64, n int, rng *rand.Rand) ([]float64, error) {
	if duration <= 0 || math.IsNaN(duration) {
		return nil, fmt.Errorf("cannot sample frames from duration %.3f", duration)
	}
	if n <= 0 {
		return nil, nil
	}
	lo, hi := duration*0.2, duration*0.8
	if hi <= lo {
		lo, hi = 0, duration
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + rng.Float64()*(hi-lo)
	}
	return out, nil
}
