package cleanup

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// Sweeper removes job files left behind by a crash. Regular jobs delete
// their own files; anything older than maxAge is an orphan.
type Sweeper struct {
	tempDir  string
	interval time.Duration
	maxAge   time.Duration
	logger   *slog.Logger
	now      func() time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewSweeper creates a new cleanup sweeper
func NewSweeper(tempDir string, interval, maxAge time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Sweeper{
		tempDir:  tempDir,
		interval: interval,
		maxAge:   maxAge,
		logger:   logger.With("component", "sweeper"),
		now:      time.Now,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs one sweep immediately, then one per interval until Stop.
func (s *Sweeper) Start() {
	s.logger.Info("running initial temp file cleanup")
	s.Sweep()

	ticker := time.NewTicker(s.interval)
	go func() {
		defer close(s.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Sweep()
			case <-s.stopChan:
				return
			}
		}
	}()

	s.logger.Info("cleanup sweeper started", "interval", s.interval, "max_age", s.maxAge)
}

// Stop stops the sweeper and waits for the loop to exit.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		<-s.done
		s.logger.Info("cleanup sweeper stopped")
	})
}

// Sweep removes files older than maxAge from the temp directory and returns
// how many were deleted. Lock files and subdirectories are left alone.
func (s *Sweeper) Sweep() int {
	now := s.now()

	var deletedCount int
	var deletedSize int64

	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		s.logger.Warn("error during cleanup", "error", err)
		return 0
	}

	for _, entry := range entries {
		if entry.IsDir() || strings.HasSuffix(entry.Name(), ".lock") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // removed meanwhile
		}

		age := now.Sub(info.ModTime())
		if age <= s.maxAge {
			continue
		}
		path := filepath.Join(s.tempDir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to delete old file", "path", path, "error", err)
			continue
		}
		deletedCount++
		deletedSize += info.Size()
		s.logger.Info("deleted old temp file",
			"file", entry.Name(),
			"age", age.Round(time.Minute),
			"size", humanize.IBytes(uint64(info.Size())))
	}

	if deletedCount > 0 {
		s.logger.Info("cleanup complete", "files", deletedCount, "freed", humanize.IBytes(uint64(deletedSize)))
	}
	return deletedCount
}
