package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reelcut/internal/config"
	"reelcut/internal/services"
	"reelcut/internal/services/ytdlp"
	"reelcut/internal/transcript"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GEMINI_API_KEY", "GEMINI_MODEL", "HF_TOKEN", "HUGGING_FACE_HUB_TOKEN", "ENGAGEMENT_THRESHOLD"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	chdir(t, t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) || filepath.Base(cfg.Paths.DataDir) != "data" {
		t.Fatalf("unexpected data dir: %q", cfg.Paths.DataDir)
	}
	wantLogs := filepath.Join(tempHome, ".local", "share", "reelcut", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.Selection.EngagementThreshold != 0.65 {
		t.Fatalf("unexpected threshold default: %v", cfg.Selection.EngagementThreshold)
	}
	if cfg.Transcription.Mode != transcript.ModeBoth {
		t.Fatalf("unexpected transcript mode: %v", cfg.Transcription.Mode)
	}
	if cfg.Acquisition.Quality != ytdlp.Quality1080 {
		t.Fatalf("unexpected quality: %d", cfg.Acquisition.Quality)
	}
	if cfg.LLM.Model != "gemini-3-flash-preview" {
		t.Fatalf("unexpected model: %q", cfg.LLM.Model)
	}
	if cfg.LLM.RetryAttempts != 1 {
		t.Fatalf("expected no llm retries by default, got %d attempts", cfg.LLM.RetryAttempts)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "reelcut.toml")

	type payload struct {
		Transcription struct {
			Mode string `toml:"mode"`
		} `toml:"transcription"`
		Acquisition struct {
			Quality int `toml:"quality"`
		} `toml:"acquisition"`
		Reframe struct {
			TopRatio float64 `toml:"top_ratio"`
		} `toml:"reframe"`
		Workflow struct {
			Workers int `toml:"workers"`
		} `toml:"workflow"`
		LLM struct {
			RetryAttempts int `toml:"retry_attempts"`
		} `toml:"llm"`
	}
	custom := payload{}
	custom.Transcription.Mode = "word"
	custom.Acquisition.Quality = 720
	custom.Reframe.TopRatio = 0.5
	custom.Workflow.Workers = 3
	custom.LLM.RetryAttempts = 3
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.Transcription.Mode != transcript.ModeWord {
		t.Fatalf("expected word mode, got %v", cfg.Transcription.Mode)
	}
	if cfg.Acquisition.Quality != ytdlp.Quality720 {
		t.Fatalf("expected quality 720, got %d", cfg.Acquisition.Quality)
	}
	if cfg.Reframe.TopRatio != 0.5 {
		t.Fatalf("expected top ratio 0.5, got %v", cfg.Reframe.TopRatio)
	}
	if cfg.Workflow.Workers != 3 {
		t.Fatalf("expected 3 workers, got %d", cfg.Workflow.Workers)
	}
	if cfg.LLM.RetryAttempts != 3 {
		t.Fatalf("expected 3 llm retry attempts, got %d", cfg.LLM.RetryAttempts)
	}
	if cfg.Subtitles.FontSize != config.Default().Subtitles.FontSize {
		t.Fatalf("expected untouched sections to keep defaults")
	}
}

func TestEnvVarOverridesConfigFileForAPIKeys(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "reelcut.toml")
	body := `
[llm]
api_key = "file-gemini"
model = "file-model"

[transcription]
hf_token = "file-hf"

[selection]
engagement_threshold = 0.9
`
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("GEMINI_API_KEY", "env-gemini")
	t.Setenv("GEMINI_MODEL", "GEMINI_2_5_PRO")
	t.Setenv("HF_TOKEN", "env-hf")
	t.Setenv("ENGAGEMENT_THRESHOLD", "0.4")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "env-gemini" {
		t.Fatalf("expected env api key, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.Model != "gemini-2.5-pro" {
		t.Fatalf("expected alias resolved model, got %q", cfg.LLM.Model)
	}
	if cfg.Transcription.HFToken != "env-hf" {
		t.Fatalf("expected env hf token, got %q", cfg.Transcription.HFToken)
	}
	if cfg.Selection.EngagementThreshold != 0.4 {
		t.Fatalf("expected env threshold, got %v", cfg.Selection.EngagementThreshold)
	}
}

func TestFileValuesUsedWhenEnvUnset(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "reelcut.toml")
	body := "[llm]\napi_key = \"file-gemini\"\n[transcription]\nhf_token = \"file-hf\"\n"
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "file-gemini" || cfg.Transcription.HFToken != "file-hf" {
		t.Fatalf("expected file credentials, got %q / %q", cfg.LLM.APIKey, cfg.Transcription.HFToken)
	}
	if err := cfg.RequireCredentials(); err != nil {
		t.Fatalf("RequireCredentials: %v", err)
	}
}

func TestInvalidEngagementThresholdEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENGAGEMENT_THRESHOLD", "high")
	_, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "ENGAGEMENT_THRESHOLD") {
		t.Fatalf("expected threshold parse error, got %v", err)
	}
}

func TestRequireCredentials(t *testing.T) {
	cfg := config.Default()
	err := cfg.RequireCredentials()
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	cfg.LLM.APIKey = "key"
	cfg.Transcription.Diarize = true
	cfg.Transcription.HFToken = ""
	if err := cfg.RequireCredentials(); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected hf token requirement, got %v", err)
	}
	cfg.Transcription.Diarize = false
	if err := cfg.RequireCredentials(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	cfg := config.Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config does not decode: %v", err)
	}
	if cfg.LLM.APIKey != "your_gemini_api_key_here" {
		t.Fatalf("unexpected sample api key: %q", cfg.LLM.APIKey)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config does not validate: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"threshold", func(c *config.Config) { c.Selection.EngagementThreshold = 1.5 }, "engagement_threshold"},
		{"mode", func(c *config.Config) { c.Transcription.Mode = 0 }, "transcription.mode"},
		{"quality", func(c *config.Config) { c.Acquisition.Quality = 999 }, "acquisition.quality"},
		{"ratio", func(c *config.Config) { c.Reframe.TopRatio = 1 }, "top_ratio"},
		{"odd target", func(c *config.Config) { c.Reframe.TargetWidth = 1081 }, "even"},
		{"samples", func(c *config.Config) { c.Reframe.FrameSamples = 0 }, "frame_samples"},
		{"retries", func(c *config.Config) { c.LLM.RetryAttempts = 0 }, "llm.retry_attempts"},
		{"colour", func(c *config.Config) { c.Subtitles.OutlineColour = "black" }, "outline_colour"},
		{"workers", func(c *config.Config) { c.Workflow.Workers = 0 }, "workers"},
		{"speakers", func(c *config.Config) { c.Transcription.MinSpeakers = 3; c.Transcription.MaxSpeakers = 2 }, "max_speakers"},
		{"format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"publish", func(c *config.Config) { c.Workflow.Publish = true; c.Paths.FinalDir = "" }, "final_dir"},
		{"cleanup without publish", func(c *config.Config) { c.Workflow.Cleanup = true; c.Workflow.Publish = false }, "cleanup"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}
