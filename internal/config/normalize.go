package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// modelAliases maps the enum-style names accepted in GEMINI_MODEL onto API
// model identifiers.
var modelAliases = map[string]string{
	"GEMINI_3_FLASH":   "gemini-3-flash-preview",
	"GEMINI_3_PRO":     "gemini-3-pro-preview",
	"GEMINI_2_5_FLASH": "gemini-2.5-flash",
	"GEMINI_2_5_PRO":   "gemini-2.5-pro",
}

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeTranscription()
	if err := c.normalizeSelection(); err != nil {
		return err
	}
	c.normalizeAcquisition()
	c.normalizeSubtitles()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.FinalDir, err = expandPath(c.Paths.FinalDir); err != nil {
		return fmt.Errorf("paths.final_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.FontsDir) == "" {
		c.Paths.FontsDir = defaultFontsDir
	}
	if c.Paths.FontsDir, err = expandPath(c.Paths.FontsDir); err != nil {
		return fmt.Errorf("paths.fonts_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok && strings.TrimSpace(value) != "" {
		c.LLM.APIKey = strings.TrimSpace(value)
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if value, ok := os.LookupEnv("GEMINI_MODEL"); ok && strings.TrimSpace(value) != "" {
		c.LLM.Model = value
	}
	c.LLM.Model = resolveModel(c.LLM.Model)
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func resolveModel(raw string) string {
	model := strings.TrimSpace(raw)
	if model == "" {
		return defaultLLMModel
	}
	if alias, ok := modelAliases[strings.ToUpper(model)]; ok {
		return alias
	}
	return model
}

func (c *Config) normalizeTranscription() {
	c.Transcription.HFToken = strings.TrimSpace(c.Transcription.HFToken)
	for _, key := range []string{"HF_TOKEN", "HUGGING_FACE_HUB_TOKEN"} {
		if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
			c.Transcription.HFToken = strings.TrimSpace(value)
			break
		}
	}
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	if c.Transcription.Model == "" {
		c.Transcription.Model = defaultWhisperXModel
	}
	c.Transcription.VADMethod = strings.ToLower(strings.TrimSpace(c.Transcription.VADMethod))
	if c.Transcription.VADMethod == "" {
		c.Transcription.VADMethod = defaultVADMethod
	}
	c.Transcription.Language = strings.ToLower(strings.TrimSpace(c.Transcription.Language))
}

func (c *Config) normalizeSelection() error {
	value, ok := os.LookupEnv("ENGAGEMENT_THRESHOLD")
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	threshold, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Errorf("ENGAGEMENT_THRESHOLD: %w", err)
	}
	c.Selection.EngagementThreshold = threshold
	return nil
}

func (c *Config) normalizeAcquisition() {
	c.Acquisition.YtDlpBinary = strings.TrimSpace(c.Acquisition.YtDlpBinary)
	if c.Acquisition.YtDlpBinary == "" {
		c.Acquisition.YtDlpBinary = defaultYtDlpBinary
	}
	if c.Acquisition.AudioBitrate <= 0 {
		c.Acquisition.AudioBitrate = defaultAudioBitrate
	}
}

func (c *Config) normalizeSubtitles() {
	c.Subtitles.FontName = strings.TrimSpace(c.Subtitles.FontName)
	c.Subtitles.OutlineColour = strings.ToUpper(strings.TrimSpace(c.Subtitles.OutlineColour))
	c.Subtitles.BackColour = strings.ToUpper(strings.TrimSpace(c.Subtitles.BackColour))
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
