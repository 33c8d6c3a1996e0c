package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/codebuildervaibhav/video-translator-bot/internal/media"
	"github.com/codebuildervaibhav/video-translator-bot/internal/types"
)

// Transcriber turns a 16kHz mono WAV file into timed source-language segments.
// An empty result means no speech was detected and is not an error.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, language string) ([]types.Segment, error)
}

// WhisperTranscriber wraps Python's OpenAI Whisper for transcription
type WhisperTranscriber struct {
	command string
	model   string
	device  string
	timeout time.Duration
	runner  media.CommandRunner
	logger  *slog.Logger
	mu      sync.Mutex // one model in memory at a time
}

// NewWhisperTranscriber creates a transcriber that shells out to
// `<command> -m whisper`. model is a Whisper model name such as "base".
func NewWhisperTranscriber(command, model, device string, logger *slog.Logger) *WhisperTranscriber {
	if command == "" {
		command = "python"
	}
	logger = logger.With("component", "whisper")
	logger.Info("whisper CLI engine configured", "command", command, "model", model, "device", device)

	return &WhisperTranscriber{
		command: command,
		model:   model,
		device:  device,
		runner:  media.ExecRunner{},
		logger:  logger,
	}
}

// WithRunner replaces the command runner (tests).
func (wt *WhisperTranscriber) WithRunner(r media.CommandRunner) *WhisperTranscriber {
	if r != nil {
		wt.runner = r
	}
	return wt
}

// WithTimeout bounds a single Whisper run; zero means no limit.
func (wt *WhisperTranscriber) WithTimeout(d time.Duration) *WhisperTranscriber {
	wt.timeout = d
	return wt
}

// Transcribe runs Whisper once over audioPath. Calls are serialised.
func (wt *WhisperTranscriber) Transcribe(ctx context.Context, audioPath, language string) ([]types.Segment, error) {
	wt.mu.Lock()
	defer wt.mu.Unlock()

	if wt.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, wt.timeout)
		defer cancel()
	}

	absAudioPath, err := filepath.Abs(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	// Whisper names its output after the input; a private dir keeps jobs apart
	outDir, err := os.MkdirTemp(filepath.Dir(absAudioPath), "whisper-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create whisper output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	args := buildWhisperArgs(absAudioPath, outDir, wt.model, language, wt.device)
	wt.logger.Debug("transcribing", "audio", absAudioPath)

	stderr, code, err := wt.runner.Run(ctx, wt.command, args...)
	if err != nil {
		return nil, &media.ToolError{
			Tool:     "whisper",
			Args:     args,
			ExitCode: code,
			Stderr:   stderr,
			Err:      err,
		}
	}

	baseName := strings.TrimSuffix(filepath.Base(absAudioPath), filepath.Ext(absAudioPath))
	jsonData, err := os.ReadFile(filepath.Join(outDir, baseName+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read whisper output: %w", err)
	}

	var out WhisperOutput
	if err := json.Unmarshal(jsonData, &out); err != nil {
		return nil, fmt.Errorf("failed to parse whisper JSON: %w", err)
	}

	segments := convertSegments(out.Segments)
	wt.logger.Info("transcription completed", "segments", len(segments), "language", out.Language)
	return segments, nil
}

func buildWhisperArgs(audioPath, outDir, model, language, device string) []string {
	args := []string{"-m", "whisper",
		audioPath,
		"--model", model,
		"--output_dir", outDir,
		"--output_format", "json",
		"--verbose", "False",
		"--fp16", "False", // CPU hosts reject fp16
	}
	if language != "" {
		args = append(args, "--language", language)
	}
	if device != "" {
		args = append(args, "--device", device)
	}
	return args
}

// WhisperOutput matches Python Whisper's JSON output format
type WhisperOutput struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
	Segments []WhisperSegment `json:"segments"`
}

// WhisperSegment represents a timestamped segment from Whisper
type WhisperSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// convertSegments drops blank segments and clamps malformed times.
func convertSegments(in []WhisperSegment) []types.Segment {
	segments := make([]types.Segment, 0, len(in))
	for _, seg := range in {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		start := seg.Start
		if start < 0 {
			start = 0
		}
		end := seg.End
		if end < start {
			end = start
		}
		segments = append(segments, types.Segment{Start: start, End: end, Text: text})
	}
	return segments
}
