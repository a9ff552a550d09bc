package config

import (
	"reelcut/internal/services/ytdlp"
	"reelcut/internal/transcript"
)

const (
	defaultDataDir             = "data"
	defaultFinalDir            = "final"
	defaultLogDir              = "~/.local/share/reelcut/logs"
	defaultFontsDir            = "assets/fonts"
	defaultLLMBaseURL          = "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions"
	defaultLLMModel            = "gemini-3-flash-preview"
	defaultLLMTimeoutSeconds   = 120
	defaultLLMRetryAttempts    = 1
	maxLLMRetryAttempts        = 10
	defaultWhisperXModel       = "large-v3"
	defaultVADMethod           = "silero"
	defaultEngagementThreshold = 0.65
	defaultAudioBitrate        = 192
	defaultYtDlpBinary         = "yt-dlp"
	defaultTargetWidth         = 1080
	defaultTargetHeight        = 1920
	defaultTopRatio            = 6.0 / 16.0
	defaultFrameSamples        = 2
	defaultWorkers             = 1
	defaultToolTimeoutSeconds  = 3600
	defaultNotifyTimeout       = 10
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			FinalDir: defaultFinalDir,
			LogDir:   defaultLogDir,
			FontsDir: defaultFontsDir,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
			RetryAttempts:  defaultLLMRetryAttempts,
		},
		Transcription: Transcription{
			Mode:      transcript.ModeBoth,
			Model:     defaultWhisperXModel,
			VADMethod: defaultVADMethod,
			Diarize:   true,
		},
		Selection: Selection{
			EngagementThreshold: defaultEngagementThreshold,
		},
		Acquisition: Acquisition{
			Quality:      ytdlp.Quality1080,
			AudioBitrate: defaultAudioBitrate,
			YtDlpBinary:  defaultYtDlpBinary,
		},
		Reframe: Reframe{
			TargetWidth:   defaultTargetWidth,
			TargetHeight:  defaultTargetHeight,
			TopRatio:      defaultTopRatio,
			DetectSubject: true,
			FrameSamples:  defaultFrameSamples,
		},
		Subtitles: Subtitles{
			FontName:      "Montserrat Black",
			FontSize:      90,
			OutlineColour: "&H00000000",
			BackColour:    "&H00000000",
			Outline:       3,
			Shadow:        1,
			Alignment:     5,
			MarginL:       40,
			MarginR:       40,
			MarginV:       60,
			FadeInMS:      150,
			FadeOutMS:     150,
			Uppercase:     true,
		},
		Workflow: Workflow{
			Workers:            defaultWorkers,
			ToolTimeoutSeconds: defaultToolTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
