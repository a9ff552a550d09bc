package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ffmpeggo "github.com/u2takey/ffmpeg-go"

	"reelcut/internal/fileutil"
	"reelcut/internal/reframe"
	"reelcut/internal/services"
)

// DefaultBinary is the ffmpeg executable name.
const DefaultBinary = "ffmpeg"

// Runner executes a command to completion.
type Runner func(ctx context.Context, name string, args ...string) error

// Gateway runs ffmpeg graphs.
type Gateway struct {
	binary  string
	timeout time.Duration
	runner  Runner
}

// New creates a Gateway. A zero timeout disables the per-call deadline.
func New(binary string, timeout time.Duration) *Gateway {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	return &Gateway{binary: binary, timeout: timeout, runner: execRunner}
}

// WithCommandRunner sets a custom command runner (for testing).
func (g *Gateway) WithCommandRunner(runner Runner) {
	if runner != nil {
		g.runner = runner
	}
}

// Trim copies the [start, end] span of src into dst without re-encoding.
func (g *Gateway) Trim(ctx context.Context, src, dst string, start, end float64) error {
	if end <= start {
		return services.Wrap(services.ErrValidation, "ffmpeg", "trim",
			fmt.Sprintf("empty span %.3f-%.3f", start, end), nil)
	}
	return g.produce(ctx, "trim", dst, func(out string) *ffmpeggo.Stream {
		return ffmpeggo.Input(src, ffmpeggo.KwArgs{
			"ss": seconds(start),
			"to": seconds(end),
		}).Output(out, ffmpeggo.KwArgs{"c": "copy"})
	})
}

// Reframe renders src into the vertical layout described by plan. Audio is
// copied when present.
func (g *Gateway) Reframe(ctx context.Context, src, dst string, plan reframe.Plan) error {
	return g.produce(ctx, "reframe", dst, func(out string) *ffmpeggo.Stream {
		in := ffmpeggo.Input(src)
		video := layoutStream(in, plan)
		return ffmpeggo.Output([]*ffmpeggo.Stream{video, in.Get("a?")}, out, ffmpeggo.KwArgs{
			"c:v":     "libx264",
			"preset":  "veryfast",
			"crf":     "18",
			"pix_fmt": "yuv420p",
			"c:a":     "copy",
		})
	})
}

func layoutStream(in *ffmpeggo.Stream, plan reframe.Plan) *ffmpeggo.Stream {
	switch plan.Layout {
	case reframe.LayoutCrop:
		return cropScale(in.Video(), plan.Crop, plan.Target)
	case reframe.LayoutSplit:
		top := cropScale(in.Video(), plan.Top, plan.TopSize())
		bottom := cropScale(in.Video(), plan.Bottom, plan.BottomSize())
		return ffmpeggo.Filter([]*ffmpeggo.Stream{top, bottom}, "vstack", nil, ffmpeggo.KwArgs{"inputs": "2"})
	default:
		return scale(in.Video(), plan.Target)
	}
}

func cropScale(s *ffmpeggo.Stream, r reframe.Rect, size reframe.Size) *ffmpeggo.Stream {
	cropped := s.Filter("crop", ffmpeggo.Args{
		strconv.Itoa(r.Width), strconv.Itoa(r.Height), strconv.Itoa(r.X), strconv.Itoa(r.Y),
	})
	return scale(cropped, size)
}

func scale(s *ffmpeggo.Stream, size reframe.Size) *ffmpeggo.Stream {
	return s.Filter("scale", ffmpeggo.Args{strconv.Itoa(size.Width), strconv.Itoa(size.Height)})
}

// Mux combines the first video stream of video with the first audio stream
// of audio, re-encoding audio to AAC.
func (g *Gateway) Mux(ctx context.Context, video, audio, dst string) error {
	return g.produce(ctx, "mux", dst, func(out string) *ffmpeggo.Stream {
		v := ffmpeggo.Input(video).Get("v:0")
		a := ffmpeggo.Input(audio).Get("a:0")
		return ffmpeggo.Output([]*ffmpeggo.Stream{v, a}, out, ffmpeggo.KwArgs{
			"c:v": "copy",
			"c:a": "aac",
		})
	})
}

// BurnSubtitles renders an ASS file onto src. Fonts are resolved from fontsDir.
func (g *Gateway) BurnSubtitles(ctx context.Context, src, subtitle, fontsDir, dst string) error {
	if !fileutil.Exists(subtitle) {
		return services.Wrap(services.ErrMissingArtifact, "ffmpeg", "burn", subtitle, nil)
	}
	return g.produce(ctx, "burn", dst, func(out string) *ffmpeggo.Stream {
		in := ffmpeggo.Input(src)
		var kw []ffmpeggo.KwArgs
		if strings.TrimSpace(fontsDir) != "" {
			kw = append(kw, ffmpeggo.KwArgs{"fontsdir": fontsDir})
		}
		video := in.Video().Filter("ass", ffmpeggo.Args{subtitle}, kw...)
		return ffmpeggo.Output([]*ffmpeggo.Stream{video, in.Get("a?")}, out, ffmpeggo.KwArgs{
			"c:v":       "libx264",
			"crf":       "18",
			"preset":    "slow",
			"pix_fmt":   "yuv420p",
			"profile:v": "high",
			"level":     "4.2",
			"movflags":  "+faststart",
			"c:a":       "copy",
		})
	})
}

// ExtractFrame writes a single still taken at the given offset in seconds.
func (g *Gateway) ExtractFrame(ctx context.Context, src string, at float64, dst string) error {
	return g.produce(ctx, "frame", dst, func(out string) *ffmpeggo.Stream {
		return ffmpeggo.Input(src, ffmpeggo.KwArgs{"ss": seconds(at)}).
			Output(out, ffmpeggo.KwArgs{"vframes": "1", "q:v": "2"})
	})
}

func (g *Gateway) produce(ctx context.Context, op, dst string, build func(out string) *ffmpeggo.Stream) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", op, "create output directory", err)
	}
	partial := partialPath(dst)
	args := build(partial).OverWriteOutput().GetArgs()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	if err := g.runner(ctx, g.binary, args...); err != nil {
		_ = os.Remove(partial)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "ffmpeg", op, dst, err)
		}
		return services.Wrap(services.ErrExternalTool, "ffmpeg", op, dst, err)
	}
	if !fileutil.Exists(partial) {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", op, "no output written for "+dst, nil)
	}
	if err := os.Rename(partial, dst); err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", op, "finalize output", err)
	}
	return nil
}

// partialPath keeps the extension so ffmpeg can infer the container.
func partialPath(dst string) string {
	ext := filepath.Ext(dst)
	return strings.TrimSuffix(dst, ext) + ".partial" + ext
}

func seconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func execRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, tail(string(output), 2000))
	}
	return nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
