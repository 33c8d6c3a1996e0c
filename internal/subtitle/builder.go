package subtitle

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/codebuildervaibhav/video-translator-bot/internal/types"
)

// Translator turns source-language text into target-language text. It never
// fails: implementations fall back to the input on error.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) string
}

// Builder assembles translated, numbered cues from transcription segments.
type Builder struct {
	translator  Translator
	source      string
	target      string
	concurrency int
}

// NewBuilder creates a builder issuing at most concurrency translation calls at once.
func NewBuilder(translator Translator, source, target string, concurrency int) *Builder {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Builder{
		translator:  translator,
		source:      source,
		target:      target,
		concurrency: concurrency,
	}
}

// Build translates every segment (one call per segment) and numbers the
// resulting entries 1..n in input order.
func (b *Builder) Build(ctx context.Context, segments []types.Segment) *Document {
	texts := make([]string, len(segments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, seg := range segments {
		i, seg := i, seg
		g.Go(func() error {
			texts[i] = b.translator.Translate(gctx, strings.TrimSpace(seg.Text), b.source, b.target)
			return nil
		})
	}
	_ = g.Wait()

	doc := &Document{Entries: make([]types.SubtitleEntry, 0, len(segments))}
	for i, seg := range segments {
		doc.Entries = append(doc.Entries, types.SubtitleEntry{
			Index: i + 1,
			Start: FormatTimestamp(seg.Start),
			End:   FormatTimestamp(seg.End),
			Text:  texts[i],
		})
	}
	return doc
}
