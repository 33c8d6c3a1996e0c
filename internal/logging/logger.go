package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// New returns a structured logger writing to w.
// level: "debug", "info", "warn", "error" (default "info").
// format: "json", "text" or "auto" (text on a terminal, json otherwise).
func New(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if useText(format) {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}

	return slog.New(h)
}

func useText(format string) bool {
	switch strings.ToLower(format) {
	case "text":
		return true
	case "json":
		return false
	default:
		fd := os.Stdout.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// LogBuffer captures logs in memory
type LogBuffer struct {
	lines []string
	limit int
	mu    sync.Mutex
}

// NewLogBuffer keeps the most recent limit lines.
func NewLogBuffer(limit int) *LogBuffer {
	if limit <= 0 {
		limit = 1000
	}
	return &LogBuffer{
		lines: make([]string, 0, limit),
		limit: limit,
	}
}

func (lb *LogBuffer) Write(p []byte) (n int, err error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.lines = append(lb.lines, strings.TrimRight(string(p), "\n"))
	if len(lb.lines) > lb.limit {
		lb.lines = lb.lines[len(lb.lines)-lb.limit:]
	}

	return len(p), nil
}

// Lines returns a copy of the buffered lines, oldest first.
func (lb *LogBuffer) Lines() []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	logs := make([]string, len(lb.lines))
	copy(logs, lb.lines)
	return logs
}
