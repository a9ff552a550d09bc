package whisperx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/language"

	"reelcut/internal/fileutil"
	"reelcut/internal/services"
	"reelcut/internal/transcript"
)

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg           Config
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// CUDAEnabled returns whether CUDA is enabled.
func (s *Service) CUDAEnabled() bool {
	return s.cfg.CUDAEnabled
}

// Options selects what a transcription produces.
type Options struct {
	Mode        transcript.Mode
	Diarize     bool
	MinSpeakers int
	MaxSpeakers int
	// Language is a BCP 47 tag or name hint. Empty lets WhisperX detect it.
	Language string
}

// run executes a command, using the custom runner if set.
func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec

	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Transcribe runs WhisperX on audioPath and writes the transcript documents
// selected by opts.Mode into outDir, named after the audio stem.
func (s *Service) Transcribe(ctx context.Context, audioPath, outDir string, opts Options) (transcript.Result, error) {
	var result transcript.Result

	if !fileutil.Exists(audioPath) {
		return result, services.Wrap(services.ErrMissingArtifact, "transcribe", "input", audioPath, nil)
	}
	if opts.Mode == 0 {
		opts.Mode = transcript.ModeBoth
	}
	if opts.Diarize && strings.TrimSpace(s.cfg.HFToken) == "" {
		return result, services.Wrap(services.ErrConfiguration, "transcribe", "diarize", "hf token required for diarization", nil)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return result, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}
	workDir, err := os.MkdirTemp(outDir, ".whisperx-")
	if err != nil {
		return result, fmt.Errorf("transcribe: create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	args := s.buildArgs(audioPath, workDir, opts)
	if err := s.run(ctx, UVXCommand, args...); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return result, services.Wrap(services.ErrTimeout, "transcribe", "whisperx", "transcription timed out", err)
		}
		return result, services.Wrap(services.ErrExternalTool, "transcribe", "whisperx", "transcription failed", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	payload, err := loadPayload(filepath.Join(workDir, baseName+".json"))
	if err != nil {
		return result, services.Wrap(services.ErrExternalTool, "transcribe", "parse", "unusable whisperx output", err)
	}

	lang := payload.Language
	if lang == "" {
		lang = NormalizeLanguage(opts.Language)
	}
	result.Language = lang
	stem := transcript.Stem(audioPath)

	if opts.Mode.Sentences() {
		result.SentencePath = filepath.Join(outDir, transcript.SentenceFileName(stem))
		doc := transcript.Document{Language: lang, Mode: transcript.ModeSentence, Segments: payload.sentences()}
		if err := transcript.Write(result.SentencePath, doc); err != nil {
			return result, err
		}
	}
	if opts.Mode.Words() {
		result.WordPath = filepath.Join(outDir, transcript.WordFileName(stem))
		doc := transcript.Document{Language: lang, Mode: transcript.ModeWord, Words: payload.words()}
		if err := transcript.Write(result.WordPath, doc); err != nil {
			return result, err
		}
	}
	return result, nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (s *Service) buildArgs(source, outputDir string, opts Options) []string {
	args := make([]string, 0, 48)

	// Index URLs
	if s.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", s.Model(),
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
		"--segment_resolution", SegmentResolution,
		"--chunk_size", ChunkSize,
		"--vad_onset", VADOnset,
		"--vad_offset", VADOffset,
		"--beam_size", BeamSize,
		"--best_of", BestOf,
		"--temperature", Temperature,
		"--patience", Patience,
	)

	// VAD method
	vadMethod := s.cfg.VADMethod
	if vadMethod == "" {
		vadMethod = VADMethodSilero
	}
	args = append(args, "--vad_method", vadMethod)

	needsToken := vadMethod == VADMethodPyannote || opts.Diarize
	if needsToken && s.cfg.HFToken != "" {
		args = append(args, "--hf_token", s.cfg.HFToken)
	}
	if opts.Diarize {
		args = append(args, "--diarize")
		if opts.MinSpeakers > 0 {
			args = append(args, "--min_speakers", strconv.Itoa(opts.MinSpeakers))
		}
		if opts.MaxSpeakers > 0 {
			args = append(args, "--max_speakers", strconv.Itoa(opts.MaxSpeakers))
		}
	}

	if lang := NormalizeLanguage(opts.Language); lang != "" {
		args = append(args, "--language", lang)
	}

	// Device
	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}

	return args
}

// NormalizeLanguage reduces a BCP 47 or ISO 639 code to the two-letter base
// language WhisperX expects. Unknown input yields "".
func NormalizeLanguage(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return ""
	}
	return base.String()
}

// rawWord is one token of WhisperX output. Timing is absent for tokens the
// aligner could not place.
type rawWord struct {
	Word    string   `json:"word"`
	Start   *float64 `json:"start"`
	End     *float64 `json:"end"`
	Speaker string   `json:"speaker"`
}

type rawSegment struct {
	Text    string    `json:"text"`
	Start   float64   `json:"start"`
	End     float64   `json:"end"`
	Speaker string    `json:"speaker"`
	Words   []rawWord `json:"words"`
}

// whisperXPayload is the JSON structure from WhisperX output.
type whisperXPayload struct {
	Language string       `json:"language"`
	Segments []rawSegment `json:"segments"`
}

func loadPayload(jsonPath string) (whisperXPayload, error) {
	var payload whisperXPayload
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return payload, err
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, fmt.Errorf("parse whisperx json: %w", err)
	}
	return payload, nil
}

func (p whisperXPayload) sentences() []transcript.Segment {
	out := make([]transcript.Segment, 0, len(p.Segments))
	for _, seg := range p.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		out = append(out, transcript.Segment{Start: seg.Start, End: seg.End, Text: text, Speaker: seg.Speaker})
	}
	return out
}

// words flattens segment words in order. Untimed tokens are dropped; a token
// without its own speaker inherits the segment's.
func (p whisperXPayload) words() []transcript.Word {
	var out []transcript.Word
	for _, seg := range p.Segments {
		for _, w := range seg.Words {
			text := strings.TrimSpace(w.Word)
			if text == "" || w.Start == nil || w.End == nil {
				continue
			}
			speaker := w.Speaker
			if speaker == "" {
				speaker = seg.Speaker
			}
			out = append(out, transcript.Word{Start: *w.Start, End: *w.End, Text: text, Speaker: speaker})
		}
	}
	if out == nil {
		out = []transcript.Word{}
	}
	return out
}
