package translation

import (
	"context"
	"errors"
	"testing"

	"github.com/codebuildervaibhav/video-translator-bot/internal/logging"
)

type stubProvider struct {
	out   string
	err   error
	calls int
}

func (s *stubProvider) Translate(_ context.Context, text, source, target string) (string, error) {
	s.calls++
	return s.out, s.err
}

func TestFallbackReturnsTranslation(t *testing.T) {
	p := &stubProvider{out: "שלום עולם"}
	f := NewFallback(p, logging.Discard(), nil)
	if got := f.Translate(context.Background(), "hello world", "en", "he"); got != "שלום עולם" {
		t.Fatalf("got %q", got)
	}
}

func TestFallbackKeepsSourceOnError(t *testing.T) {
	p := &stubProvider{err: errors.New("quota exceeded")}
	fallbacks := 0
	f := NewFallback(p, logging.Discard(), func() { fallbacks++ })

	if got := f.Translate(context.Background(), "hello world", "en", "he"); got != "hello world" {
		t.Fatalf("got %q, want source text", got)
	}
	if fallbacks != 1 {
		t.Errorf("fallbacks = %d, want 1", fallbacks)
	}
}

func TestFallbackKeepsSourceOnEmptyTranslation(t *testing.T) {
	p := &stubProvider{out: "  "}
	f := NewFallback(p, logging.Discard(), nil)
	if got := f.Translate(context.Background(), "hello", "en", "he"); got != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestFallbackSkipsBlankInput(t *testing.T) {
	p := &stubProvider{out: "x"}
	f := NewFallback(p, logging.Discard(), nil)
	f.Translate(context.Background(), "   ", "en", "he")
	if p.calls != 0 {
		t.Errorf("blank text should not reach the provider, calls = %d", p.calls)
	}
}

func TestPassthrough(t *testing.T) {
	got, err := Passthrough{}.Translate(context.Background(), "same", "en", "he")
	if err != nil || got != "same" {
		t.Fatalf("got %q, %v", got, err)
	}
}

func TestUnavailableFallsBackToSource(t *testing.T) {
	initErr := errors.New("could not find default credentials")
	fallbacks := 0
	f := NewFallback(Unavailable{Err: initErr}, logging.Discard(), func() { fallbacks++ })

	if got := f.Translate(context.Background(), "hello world", "en", "he"); got != "hello world" {
		t.Fatalf("got %q, want source text", got)
	}
	if fallbacks != 1 {
		t.Errorf("fallbacks = %d, want 1", fallbacks)
	}

	_, err := Unavailable{Err: initErr}.Translate(context.Background(), "x", "en", "he")
	if !errors.Is(err, initErr) {
		t.Errorf("err = %v, want wrapped init error", err)
	}
}
