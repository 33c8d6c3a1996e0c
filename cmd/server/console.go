package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/codebuildervaibhav/video-translator-bot/internal/types"
)

// localDownloader "downloads" a video by copying a local file.
type localDownloader struct{}

func (localDownloader) Download(ctx context.Context, src, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return copyFile(src, dest)
}

// consoleMessenger prints status messages and writes the delivered video to
// output.
type consoleMessenger struct {
	out    io.Writer
	output string

	mu        sync.Mutex
	nextID    int
	delivered bool
}

func newConsoleMessenger(out io.Writer, output string) *consoleMessenger {
	return &consoleMessenger{out: out, output: output}
}

func (m *consoleMessenger) Reply(_ context.Context, chatID int64, _ int, text string) (types.StatusHandle, error) {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.mu.Unlock()

	m.print(text)
	return types.StatusHandle{ChatID: chatID, MessageID: id}, nil
}

func (m *consoleMessenger) Edit(_ context.Context, _ types.StatusHandle, text string) error {
	m.print(text)
	return nil
}

func (m *consoleMessenger) Delete(context.Context, types.StatusHandle) error {
	return nil
}

func (m *consoleMessenger) SendVideo(_ context.Context, _ int64, _ int, path, caption string) error {
	if err := copyFile(path, m.output); err != nil {
		return err
	}
	m.mu.Lock()
	m.delivered = true
	m.mu.Unlock()

	m.print(caption)
	fmt.Fprintf(m.out, "📁 %s\n", m.output)
	return nil
}

func (m *consoleMessenger) Delivered() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.delivered
}

func (m *consoleMessenger) print(text string) {
	fmt.Fprintln(m.out, stripMarkdown(text))
	fmt.Fprintln(m.out)
}

var markdownReplacer = strings.NewReplacer("*", "", "_", "", "`", "")

// stripMarkdown removes Telegram Markdown emphasis markers.
func stripMarkdown(s string) string {
	return markdownReplacer.Replace(s)
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy to %s: %w", dest, err)
	}
	return out.Close()
}
