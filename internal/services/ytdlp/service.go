package ytdlp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"reelcut/internal/fileutil"
	"reelcut/internal/services"
)

const (
	// DefaultBinary is the yt-dlp executable name.
	DefaultBinary = "yt-dlp"
	// DefaultAudioBitrate is the mp3 bitrate in kbps.
	DefaultAudioBitrate = 192
	outputTemplate      = "%(id)s.%(ext)s"
)

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Config controls yt-dlp invocations.
type Config struct {
	Binary       string
	AudioBitrate int
	Timeout      time.Duration
}

// Service wraps the yt-dlp CLI.
type Service struct {
	cfg    Config
	runner Runner
}

// NewService creates a Service with defaults filled in.
func NewService(cfg Config) *Service {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.AudioBitrate <= 0 {
		cfg.AudioBitrate = DefaultAudioBitrate
	}
	return &Service{cfg: cfg, runner: execRunner}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner Runner) {
	if runner != nil {
		s.runner = runner
	}
}

// IsRemote reports whether source should be fetched rather than read from disk.
func IsRemote(source string) bool {
	lower := strings.ToLower(strings.TrimSpace(source))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// ResolveID asks yt-dlp for the media id without downloading.
func (s *Service) ResolveID(ctx context.Context, url string) (string, error) {
	out, err := s.run(ctx, "resolve", "--skip-download", "--no-playlist", "--no-warnings", "--print", "id", url)
	if err != nil {
		return "", err
	}
	id := lastLine(out)
	if id == "" {
		return "", services.Wrap(services.ErrExternalTool, "acquire", "resolve", "yt-dlp returned no id for "+url, nil)
	}
	return id, nil
}

// DownloadAudio fetches the best audio stream into dir as {id}.mp3.
func (s *Service) DownloadAudio(ctx context.Context, url, dir string) (string, error) {
	args := []string{
		"-f", "bestaudio/best",
		"-x", "--audio-format", "mp3",
		"--audio-quality", strconv.Itoa(s.cfg.AudioBitrate) + "K",
		"-o", filepath.Join(dir, outputTemplate),
		"--no-playlist", "--no-warnings",
		"--print", "after_move:filepath",
		url,
	}
	return s.download(ctx, "download_audio", args)
}

// DownloadVideo fetches video no taller than quality into dir as {id}.mp4.
func (s *Service) DownloadVideo(ctx context.Context, url, dir string, quality Quality) (string, error) {
	if !quality.Valid() {
		return "", services.Wrap(services.ErrConfiguration, "acquire", "download_video",
			fmt.Sprintf("unsupported quality %d", int(quality)), nil)
	}
	args := []string{
		"-f", quality.FormatSelector(),
		"--merge-output-format", "mp4",
		"-o", filepath.Join(dir, outputTemplate),
		"--no-playlist", "--no-warnings",
		"--print", "after_move:filepath",
		url,
	}
	return s.download(ctx, "download_video", args)
}

func (s *Service) download(ctx context.Context, op string, args []string) (string, error) {
	out, err := s.run(ctx, op, args...)
	if err != nil {
		return "", err
	}
	path := lastLine(out)
	if path == "" || !fileutil.Exists(path) {
		return "", services.Wrap(services.ErrExternalTool, "acquire", op,
			fmt.Sprintf("yt-dlp produced no file (reported %q)", path), nil)
	}
	return path, nil
}

func (s *Service) run(ctx context.Context, op string, args ...string) ([]byte, error) {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	out, err := s.runner(ctx, s.cfg.Binary, args...)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, services.Wrap(services.ErrTimeout, "acquire", op, "yt-dlp timed out", err)
		}
		return nil, services.Wrap(services.ErrExternalTool, "acquire", op, "yt-dlp failed", err)
	}
	return out, nil
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
