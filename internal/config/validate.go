package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var assColourPattern = regexp.MustCompile(`^&H[0-9A-F]{8}$`)

// Validate ensures the configuration is usable. Credentials are checked
// separately by RequireCredentials.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	if err := c.validateSelection(); err != nil {
		return err
	}
	if err := c.validateAcquisition(); err != nil {
		return err
	}
	if err := c.validateReframe(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if c.Workflow.Publish && strings.TrimSpace(c.Paths.FinalDir) == "" {
		return errors.New("paths.final_dir must be set when workflow.publish is true")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if !strings.HasPrefix(c.LLM.BaseURL, "http://") && !strings.HasPrefix(c.LLM.BaseURL, "https://") {
		return fmt.Errorf("llm.base_url must be an http(s) URL, got %q", c.LLM.BaseURL)
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	if c.LLM.RetryAttempts < 1 || c.LLM.RetryAttempts > maxLLMRetryAttempts {
		return fmt.Errorf("llm.retry_attempts must be between 1 and %d, got %d", maxLLMRetryAttempts, c.LLM.RetryAttempts)
	}
	return nil
}

func (c *Config) validateTranscription() error {
	if _, err := c.Transcription.Mode.MarshalText(); err != nil {
		return fmt.Errorf("transcription.mode: %w", err)
	}
	switch c.Transcription.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("transcription.vad_method must be silero or pyannote, got %q", c.Transcription.VADMethod)
	}
	if c.Transcription.MinSpeakers < 0 || c.Transcription.MaxSpeakers < 0 {
		return errors.New("transcription speaker bounds must be non-negative")
	}
	if c.Transcription.MinSpeakers > 0 && c.Transcription.MaxSpeakers > 0 &&
		c.Transcription.MaxSpeakers < c.Transcription.MinSpeakers {
		return errors.New("transcription.max_speakers must be >= transcription.min_speakers")
	}
	return nil
}

func (c *Config) validateSelection() error {
	t := c.Selection.EngagementThreshold
	if t < 0 || t > 1 {
		return fmt.Errorf("selection.engagement_threshold must be within [0, 1], got %v", t)
	}
	return nil
}

func (c *Config) validateAcquisition() error {
	if !c.Acquisition.Quality.Valid() {
		return fmt.Errorf("acquisition.quality must be one of 480, 720, 1080, 1440, 2160, got %d", int(c.Acquisition.Quality))
	}
	return nil
}

func (c *Config) validateReframe() error {
	if c.Reframe.TargetWidth <= 0 || c.Reframe.TargetHeight <= 0 {
		return errors.New("reframe target dimensions must be positive")
	}
	if c.Reframe.TargetWidth%2 != 0 || c.Reframe.TargetHeight%2 != 0 {
		return errors.New("reframe target dimensions must be even")
	}
	if c.Reframe.TopRatio <= 0 || c.Reframe.TopRatio >= 1 {
		return fmt.Errorf("reframe.top_ratio must be within (0, 1), got %v", c.Reframe.TopRatio)
	}
	if c.Reframe.FrameSamples < 1 {
		return errors.New("reframe.frame_samples must be at least 1")
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	if c.Subtitles.FontName == "" {
		return errors.New("subtitles.font_name must be set")
	}
	if c.Subtitles.FontSize <= 0 {
		return errors.New("subtitles.font_size must be positive")
	}
	if !assColourPattern.MatchString(c.Subtitles.OutlineColour) {
		return fmt.Errorf("subtitles.outline_colour must look like &HAABBGGRR, got %q", c.Subtitles.OutlineColour)
	}
	if !assColourPattern.MatchString(c.Subtitles.BackColour) {
		return fmt.Errorf("subtitles.back_colour must look like &HAABBGGRR, got %q", c.Subtitles.BackColour)
	}
	if c.Subtitles.Alignment < 1 || c.Subtitles.Alignment > 9 {
		return errors.New("subtitles.alignment must be within 1..9")
	}
	if c.Subtitles.FadeInMS < 0 || c.Subtitles.FadeOutMS < 0 {
		return errors.New("subtitles fade durations must be non-negative")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.Workers < 1 {
		return errors.New("workflow.workers must be at least 1")
	}
	if c.Workflow.ToolTimeoutSeconds <= 0 {
		return errors.New("workflow.tool_timeout_seconds must be positive")
	}
	if c.Workflow.Cleanup && !c.Workflow.Publish {
		return errors.New("workflow.cleanup requires workflow.publish; cleanup would delete unpublished clips")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
