// Package whisperx runs WhisperX through uvx and converts its JSON output
// into sentence and word transcript documents.
//
// Diarization adds speaker labels to segments and words and requires a
// Hugging Face token. Configuration options (model, CUDA, VAD method) are
// passed via Config; per-call choices via Options.
package whisperx
