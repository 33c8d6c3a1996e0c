package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/codebuildervaibhav/video-translator-bot/internal/types"
)

// Document is an ordered SRT subtitle track.
type Document struct {
	Entries []types.SubtitleEntry
}

// Len returns the number of cues.
func (d *Document) Len() int {
	return len(d.Entries)
}

// WriteTo serializes the document as SRT. Text is written as-is (UTF-8).
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	for _, e := range d.Entries {
		n, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n\n", e.Index, e.Start, e.End, strings.TrimSpace(e.Text))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}

// String returns the SRT serialization.
func (d *Document) String() string {
	var sb strings.Builder
	_, _ = d.WriteTo(&sb)
	return sb.String()
}

// Save writes the document to path, replacing any existing file.
func (d *Document) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create subtitle file: %w", err)
	}
	if _, err := d.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write subtitle file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close subtitle file: %w", err)
	}
	return nil
}
