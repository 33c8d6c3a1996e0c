package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/codebuildervaibhav/video-translator-bot/internal/storage"
	"github.com/codebuildervaibhav/video-translator-bot/internal/types"
)

func TestStripMarkdown(t *testing.T) {
	got := stripMarkdown("📥 *מוריד את הסרטון...*\n⏳ _כמעט_ `x`")
	want := "📥 מוריד את הסרטון...\n⏳ כמעט x"
	if got != want {
		t.Errorf("stripMarkdown = %q, want %q", got, want)
	}
}

func TestLocalDownloaderCopies(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.mp4")
	dest := filepath.Join(dir, "video_0_1.mp4")
	if err := os.WriteFile(src, []byte("video bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := (localDownloader{}).Download(context.Background(), src, dest); err != nil {
		t.Fatalf("Download: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "video bytes" {
		t.Errorf("dest = %q, %v", data, err)
	}

	if err := (localDownloader{}).Download(context.Background(), filepath.Join(dir, "missing"), dest); err == nil {
		t.Error("expected error for missing source")
	}
}

func TestConsoleMessenger(t *testing.T) {
	dir := t.TempDir()
	rendered := filepath.Join(dir, "output_0_1.mp4")
	if err := os.WriteFile(rendered, []byte("result"), 0644); err != nil {
		t.Fatal(err)
	}
	target := filepath.Join(dir, "final.mp4")

	var out bytes.Buffer
	m := newConsoleMessenger(&out, target)
	ctx := context.Background()

	h1, _ := m.Reply(ctx, 0, 1, "*one*")
	h2, _ := m.Reply(ctx, 0, 1, "two")
	if !h1.Valid() || !h2.Valid() || h1 == h2 {
		t.Errorf("handles = %+v %+v", h1, h2)
	}
	if err := m.Edit(ctx, h1, "_edited_"); err != nil {
		t.Fatal(err)
	}
	if m.Delivered() {
		t.Error("delivered before SendVideo")
	}

	if err := m.SendVideo(ctx, 0, 1, rendered, "*done*"); err != nil {
		t.Fatalf("SendVideo: %v", err)
	}
	if !m.Delivered() {
		t.Error("SendVideo did not mark delivery")
	}
	data, err := os.ReadFile(target)
	if err != nil || string(data) != "result" {
		t.Errorf("target = %q, %v", data, err)
	}

	text := out.String()
	for _, want := range []string{"one", "two", "edited", "done", target} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "*") {
		t.Errorf("markdown leaked into output:\n%s", text)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	if got := defaultOutputPath("clips/talk.mov"); got != "clips/talk_subtitled.mp4" {
		t.Errorf("got %q", got)
	}
}

func TestRenderJobs(t *testing.T) {
	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	out := renderJobs([]storage.JobRecord{
		{
			ID:          "0123456789abcdef",
			RequesterID: 42,
			RequestID:   7,
			State:       types.StateDelivered,
			Segments:    12,
			VideoBytes:  3 * 1024 * 1024,
			CreatedAt:   created,
			FinishedAt:  created.Add(95 * time.Second),
		},
		{
			ID:        "fedcba",
			Requester: "dana",
			State:     types.StateFailed,
			Error:     strings.Repeat("x", 60),
			CreatedAt: created,
		},
	})

	for _, want := range []string{"01234567", "42", "DELIVERED", "3.0 MiB", "1m35s", "dana", "FAILED", "…"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "0123456789abcdef") {
		t.Error("job id not shortened")
	}
}
