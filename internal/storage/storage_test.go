package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/codebuildervaibhav/video-translator-bot/internal/logging"
	"github.com/codebuildervaibhav/video-translator-bot/internal/types"
)

func TestWorkspacePathsAreNamespaced(t *testing.T) {
	ws := NewWorkspace("temp_files", logging.Discard())
	p := ws.Paths(42, 42, 7)

	want := types.JobPaths{
		Video:    filepath.Join("temp_files", "video_42_42_7.mp4"),
		Audio:    filepath.Join("temp_files", "audio_42_42_7.wav"),
		Subtitle: filepath.Join("temp_files", "subs_42_42_7.srt"),
		Output:   filepath.Join("temp_files", "output_42_42_7.mp4"),
	}
	if p != want {
		t.Fatalf("Paths = %+v, want %+v", p, want)
	}

	seen := map[string]bool{}
	jobs := []types.JobPaths{
		ws.Paths(42, 42, 7),
		ws.Paths(42, 42, 8),
		ws.Paths(43, 43, 7),
		// same user, same message id, two group chats
		ws.Paths(42, -1001, 7),
		ws.Paths(42, -1002, 7),
	}
	for _, jp := range jobs {
		for _, path := range jp.All() {
			if seen[path] {
				t.Fatalf("path %s shared between jobs", path)
			}
			seen[path] = true
		}
	}
}

func TestWorkspaceRemoveIsBestEffort(t *testing.T) {
	dir := t.TempDir()
	ws := NewWorkspace(dir, logging.Discard())
	if err := ws.Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	p := ws.Paths(1, 1, 2)
	// only two of four files exist
	for _, path := range []string{p.Video, p.Audio} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if n := ws.Remove(p); n != 2 {
		t.Errorf("removed %d files, want 2", n)
	}
	for _, path := range p.All() {
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s still present", path)
		}
	}
}

func TestWorkspaceEnsureCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "temp")
	if err := NewWorkspace(dir, logging.Discard()).Ensure(); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("dir not created: %v", err)
	}
}

func TestWorkspaceLockIsExclusive(t *testing.T) {
	dir := t.TempDir()
	first := NewWorkspace(dir, logging.Discard())
	if err := first.Lock(); err != nil {
		t.Fatalf("first Lock: %v", err)
	}
	defer first.Unlock()

	second := NewWorkspace(dir, logging.Discard())
	if err := second.Lock(); !errors.Is(err, ErrLocked) {
		t.Fatalf("second Lock = %v, want ErrLocked", err)
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if err := second.Lock(); err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	second.Unlock()
}

func newTestStore(t *testing.T) *JobStore {
	t.Helper()
	store, err := NewJobStore(filepath.Join(t.TempDir(), "db", "jobs.db"))
	if err != nil {
		t.Fatalf("NewJobStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestJobStoreSaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	job := &types.Job{
		ID:          "job-1",
		RequesterID: 42,
		Requester:   "alice",
		RequestID:   7,
		ChatID:      42,
		VideoSize:   1024,
		State:       types.StateFailed,
		Segments:    3,
		Error:       errors.New("mux: ffmpeg exited with code 1"),
		CreatedAt:   created,
		FinishedAt:  created.Add(90 * time.Second),
	}
	if err := store.SaveJob(ctx, RecordFromJob(job)); err != nil {
		t.Fatalf("SaveJob: %v", err)
	}

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.State != types.StateFailed || got.Segments != 3 || got.Requester != "alice" || got.VideoBytes != 1024 {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.Error != "mux: ffmpeg exited with code 1" {
		t.Errorf("Error = %q", got.Error)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	if got.Duration() != 90*time.Second {
		t.Errorf("Duration = %v", got.Duration())
	}
}

func TestJobStoreSaveReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	rec := JobRecord{ID: "a", State: types.StateReceived, CreatedAt: time.Now()}
	if err := store.SaveJob(ctx, rec); err != nil {
		t.Fatal(err)
	}
	rec.State = types.StateDelivered
	if err := store.SaveJob(ctx, rec); err != nil {
		t.Fatal(err)
	}
	jobs, err := store.ListJobs(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 || jobs[0].State != types.StateDelivered {
		t.Fatalf("jobs = %+v", jobs)
	}
}

func TestJobStoreGetMissing(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetJob(context.Background(), "nope"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("GetJob = %v, want ErrJobNotFound", err)
	}
}

func TestJobStoreListNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		rec := JobRecord{ID: id, State: types.StateDelivered, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.SaveJob(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	jobs, err := store.ListJobs(ctx, 2)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(jobs) != 2 || jobs[0].ID != "new" || jobs[1].ID != "mid" {
		t.Fatalf("unexpected order: %+v", jobs)
	}
}
