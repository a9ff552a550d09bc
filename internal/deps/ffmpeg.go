package deps

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// RequiredFilters are the ffmpeg filters the clip pipeline renders with.
var RequiredFilters = []string{"ass", "crop", "scale", "vstack"}

// CheckFFmpegFilters reports whether binary was built with every filter in
// RequiredFilters. Builds without libass lack "ass" and cannot burn captions.
func CheckFFmpegFilters(ctx context.Context, binary string) Status {
	result := Status{
		Name:        "FFmpeg filters",
		Command:     strings.TrimSpace(binary),
		Description: "libass captions and split-screen stacking",
	}
	if result.Command == "" {
		result.Command = "ffmpeg"
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	output, err := exec.CommandContext(ctx, result.Command, "-hide_banner", "-filters").Output() //nolint:gosec
	if err != nil {
		result.Detail = fmt.Sprintf("list filters: %v", err)
		return result
	}
	available := parseFilterNames(string(output))
	var missing []string
	for _, name := range RequiredFilters {
		if !available[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		result.Detail = "missing filters: " + strings.Join(missing, ", ")
		return result
	}
	result.Available = true
	return result
}

// parseFilterNames reads `ffmpeg -filters` output, whose rows look like
// " TSC ass               V->V       Render ASS subtitles".
func parseFilterNames(output string) map[string]bool {
	names := make(map[string]bool)
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 || !strings.Contains(fields[2], "->") {
			continue
		}
		names[fields[1]] = true
	}
	return names
}
