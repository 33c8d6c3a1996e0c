package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
)

// ToolError is a failed external tool invocation with its captured stderr.
// The diagnostic is meant for operators, not end users.
type ToolError struct {
	Tool     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("%s exited with code %d: %v", e.Tool, e.ExitCode, e.Err)
	}
	return fmt.Sprintf("%s exited with code %d: %s", e.Tool, e.ExitCode, stderr)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// CommandRunner abstracts process execution for testability.
// It returns captured stderr and the exit code.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stderr string, exitCode int, err error)
}

// ExecRunner executes commands via os/exec.
type ExecRunner struct{}

// Run executes one command to completion, capturing stderr.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, int, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return stderr.String(), code, err
	}
	return stderr.String(), 0, nil
}

// Style is the fixed look of burned-in subtitles.
type Style struct {
	FontName      string
	FontSize      int
	PrimaryColour string
	OutlineColour string
	Outline       int
	Bold          bool
}

// ForceStyle renders the style as an ASS force_style value.
func (s Style) ForceStyle() string {
	bold := 0
	if s.Bold {
		bold = 1
	}
	return fmt.Sprintf("FontName=%s,FontSize=%d,PrimaryColour=%s,OutlineColour=%s,Outline=%d,Bold=%d",
		s.FontName, s.FontSize, s.PrimaryColour, s.OutlineColour, s.Outline, bold)
}

// FFmpeg extracts audio from and burns subtitles into videos.
type FFmpeg struct {
	path   string
	preset string
	style  Style
	runner CommandRunner
	logger *slog.Logger
}

// NewFFmpeg creates the adapter. path is the ffmpeg binary.
func NewFFmpeg(path, preset string, style Style, logger *slog.Logger) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpeg{
		path:   path,
		preset: preset,
		style:  style,
		runner: ExecRunner{},
		logger: logger.With("component", "ffmpeg"),
	}
}

// WithRunner replaces the command runner (tests).
func (f *FFmpeg) WithRunner(r CommandRunner) *FFmpeg {
	if r != nil {
		f.runner = r
	}
	return f
}

// ExtractAudio writes the video's audio track to audioPath as mono 16kHz
// 16-bit PCM WAV, discarding video.
func (f *FFmpeg) ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	return f.run(ctx, extractAudioArgs(videoPath, audioPath))
}

// BurnSubtitles re-encodes the video stream of videoPath with subtitlePath
// rendered on top and copies the audio stream unchanged into outputPath.
func (f *FFmpeg) BurnSubtitles(ctx context.Context, videoPath, subtitlePath, outputPath string) error {
	return f.run(ctx, burnSubtitlesArgs(videoPath, subtitlePath, outputPath, f.preset, f.style))
}

func (f *FFmpeg) run(ctx context.Context, args []string) error {
	f.logger.Debug("executing ffmpeg", "args", strings.Join(args, " "))
	stderr, code, err := f.runner.Run(ctx, f.path, args...)
	if err != nil {
		return &ToolError{
			Tool:     filepath.Base(f.path),
			Args:     args,
			ExitCode: code,
			Stderr:   stderr,
			Err:      err,
		}
	}
	return nil
}

func extractAudioArgs(videoPath, audioPath string) []string {
	return []string{
		"-nostdin",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		"-loglevel", "error",
		audioPath,
	}
}

func burnSubtitlesArgs(videoPath, subtitlePath, outputPath, preset string, style Style) []string {
	filter := "subtitles=" + EscapeFilterPath(subtitlePath) +
		":force_style='" + style.ForceStyle() + "'"
	args := []string{
		"-nostdin",
		"-i", videoPath,
		"-vf", filter,
		"-c:a", "copy",
	}
	if preset != "" {
		args = append(args, "-preset", preset)
	}
	return append(args, "-y", "-loglevel", "error", outputPath)
}

// EscapeFilterPath escapes a file path for use as a filter option value inside
// an ffmpeg filtergraph. Backslashes become forward slashes first, then both
// escaping levels (option value, then filtergraph) are applied.
func EscapeFilterPath(path string) string {
	path = filepath.ToSlash(strings.ReplaceAll(path, `\`, "/"))

	// option value level
	var level1 strings.Builder
	for _, r := range path {
		switch r {
		case '\\', ':', '\'':
			level1.WriteByte('\\')
		}
		level1.WriteRune(r)
	}

	// filtergraph level
	var level2 strings.Builder
	for _, r := range level1.String() {
		switch r {
		case '\\', '\'', '[', ']', ',', ';':
			level2.WriteByte('\\')
		}
		level2.WriteRune(r)
	}
	return level2.String()
}
