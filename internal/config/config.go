package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"reelcut/internal/services"
	"reelcut/internal/services/ytdlp"
	"reelcut/internal/transcript"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains working and output directory configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	FinalDir string `toml:"final_dir"`
	LogDir   string `toml:"log_dir"`
	FontsDir string `toml:"fonts_dir"`
}

// LLM contains the chat-completions connection used for chaptering and
// subject detection.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RetryAttempts  int    `toml:"retry_attempts"`
}

// Transcription contains WhisperX settings.
type Transcription struct {
	Mode        transcript.Mode `toml:"mode"`
	Model       string          `toml:"model"`
	CUDAEnabled bool            `toml:"cuda_enabled"`
	VADMethod   string          `toml:"vad_method"`
	HFToken     string          `toml:"hf_token"`
	Diarize     bool            `toml:"diarize"`
	MinSpeakers int             `toml:"min_speakers"`
	MaxSpeakers int             `toml:"max_speakers"`
	Language    string          `toml:"language"`
}

// Selection contains chapter selection settings.
type Selection struct {
	EngagementThreshold float64 `toml:"engagement_threshold"`
}

// Acquisition contains yt-dlp download settings.
type Acquisition struct {
	Quality      ytdlp.Quality `toml:"quality"`
	AudioBitrate int           `toml:"audio_bitrate"`
	YtDlpBinary  string        `toml:"ytdlp_binary"`
}

// Reframe contains vertical layout settings.
type Reframe struct {
	TargetWidth   int     `toml:"target_width"`
	TargetHeight  int     `toml:"target_height"`
	TopRatio      float64 `toml:"top_ratio"`
	DetectSubject bool    `toml:"detect_subject"`
	FrameSamples  int     `toml:"frame_samples"`
}

// Subtitles contains caption style settings. Primary colours come from the
// speaker palette and are not configurable.
type Subtitles struct {
	FontName      string `toml:"font_name"`
	FontSize      int    `toml:"font_size"`
	OutlineColour string `toml:"outline_colour"`
	BackColour    string `toml:"back_colour"`
	Bold          bool   `toml:"bold"`
	Italic        bool   `toml:"italic"`
	Outline       int    `toml:"outline"`
	Shadow        int    `toml:"shadow"`
	Alignment     int    `toml:"alignment"`
	MarginL       int    `toml:"margin_l"`
	MarginR       int    `toml:"margin_r"`
	MarginV       int    `toml:"margin_v"`
	FadeInMS      int    `toml:"fade_in_ms"`
	FadeOutMS     int    `toml:"fade_out_ms"`
	Uppercase     bool   `toml:"uppercase"`
}

// Workflow contains run orchestration settings.
type Workflow struct {
	Workers            int  `toml:"workers"`
	Cleanup            bool `toml:"cleanup"`
	Publish            bool `toml:"publish"`
	ToolTimeoutSeconds int  `toml:"tool_timeout_seconds"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for reelcut. A loaded Config
// is treated as immutable for the lifetime of a run.
//
// Configuration sections by subsystem:
//   - Paths: data root, publish target, logs, and caption fonts
//   - LLM: chat-completions endpoint for chaptering and subject detection
//   - Transcription: WhisperX model, granularity, and diarization
//   - Selection: engagement threshold for chapter selection
//   - Acquisition: yt-dlp quality ladder and audio bitrate
//   - Reframe: vertical target and split-screen ratio
//   - Subtitles: caption style and fades
//   - Workflow: parallelism, publish and cleanup, tool timeouts
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	LLM           LLM           `toml:"llm"`
	Transcription Transcription `toml:"transcription"`
	Selection     Selection     `toml:"selection"`
	Acquisition   Acquisition   `toml:"acquisition"`
	Reframe       Reframe       `toml:"reframe"`
	Subtitles     Subtitles     `toml:"subtitles"`
	Workflow      Workflow      `toml:"workflow"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelcut/config.toml")
}

// Load locates, parses, and validates a configuration file. A .env file in
// the working directory is loaded first so its variables act as env
// fallbacks. The returned config has all path fields expanded.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, "", false, fmt.Errorf("load .env: %w", err)
	}

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelcut.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// RequireCredentials reports missing secrets needed by a full run. It is kept
// out of Validate so inspection commands work without credentials.
func (c *Config) RequireCredentials() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/reelcut/config.toml"
		}
		return services.Wrap(services.ErrConfiguration, "config", "credentials",
			fmt.Sprintf("llm.api_key is required. Set GEMINI_API_KEY or edit %s (create with 'reelcut config init')", defaultPath), nil)
	}
	if c.Transcription.Diarize && strings.TrimSpace(c.Transcription.HFToken) == "" {
		return services.Wrap(services.ErrConfiguration, "config", "credentials",
			"transcription.hf_token is required when transcription.diarize is true. Set HF_TOKEN", nil)
	}
	return nil
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Workflow.Publish && strings.TrimSpace(c.Paths.FinalDir) != "" {
		if err := os.MkdirAll(c.Paths.FinalDir, 0o755); err != nil {
			return fmt.Errorf("create final directory %q: %w", c.Paths.FinalDir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
