package storage

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"

	"github.com/codebuildervaibhav/video-translator-bot/internal/types"
)

// LockFileName is the instance lock kept inside the temp directory.
const LockFileName = ".bot.lock"

// ErrLocked is returned when another process holds the instance lock.
var ErrLocked = errors.New("another bot instance is already running")

// Workspace owns the shared temp directory and hands out per-job file paths
type Workspace struct {
	dir    string
	logger *slog.Logger
	lock   *flock.Flock
}

// NewWorkspace creates a workspace rooted at dir. Call Ensure before use.
func NewWorkspace(dir string, logger *slog.Logger) *Workspace {
	return &Workspace{
		dir:    dir,
		logger: logger.With("component", "workspace"),
		lock:   flock.New(filepath.Join(dir, LockFileName)),
	}
}

// Dir returns the temp directory.
func (w *Workspace) Dir() string {
	return w.dir
}

// Ensure creates the temp directory if it doesn't exist
func (w *Workspace) Ensure() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	w.logger.Info("temp directory ready", "dir", w.dir)
	return nil
}

// Paths returns the four files of one job. Names are derived from the
// requester, chat and message ids; message ids are only unique within a
// chat, so the chat id is part of the name.
func (w *Workspace) Paths(requesterID, chatID int64, requestID int) types.JobPaths {
	name := func(prefix, ext string) string {
		return filepath.Join(w.dir, fmt.Sprintf("%s_%d_%d_%d.%s", prefix, requesterID, chatID, requestID, ext))
	}
	return types.JobPaths{
		Video:    name("video", "mp4"),
		Audio:    name("audio", "wav"),
		Subtitle: name("subs", "srt"),
		Output:   name("output", "mp4"),
	}
}

// Remove deletes every path that exists. Failures are logged and skipped;
// the number of files removed is returned.
func (w *Workspace) Remove(paths types.JobPaths) int {
	removed := 0
	for _, path := range paths.All() {
		info, err := os.Stat(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				w.logger.Warn("could not stat temp file", "path", path, "error", err)
			}
			continue
		}
		if err := os.Remove(path); err != nil {
			w.logger.Warn("could not delete temp file", "path", path, "error", err)
			continue
		}
		removed++
		w.logger.Debug("deleted temp file", "path", filepath.Base(path), "size", humanize.IBytes(uint64(info.Size())))
	}
	return removed
}

// Lock takes the single-instance lock. It fails fast with ErrLocked.
func (w *Workspace) Lock() error {
	ok, err := w.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	w.logger.Debug("instance lock acquired", "lock", w.lock.Path())
	return nil
}

// Unlock releases the instance lock.
func (w *Workspace) Unlock() error {
	return w.lock.Unlock()
}
