package translation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Provider is a translation backend that may fail.
type Provider interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Passthrough returns the source text unchanged. Used when no provider is
// configured, so subtitles come out in the source language.
type Passthrough struct{}

// Translate returns text.
func (Passthrough) Translate(_ context.Context, text, _, _ string) (string, error) {
	return text, nil
}

// Unavailable stands in for a provider whose client could not be created.
// Every call fails with Err, so a Fallback keeps the source text.
type Unavailable struct {
	Err error
}

// Translate returns Err.
func (u Unavailable) Translate(context.Context, string, string, string) (string, error) {
	return "", fmt.Errorf("translation unavailable: %w", u.Err)
}

// Fallback wraps a Provider so a failed call yields the original text.
// A partially translated track is preferable to a failed job.
type Fallback struct {
	provider   Provider
	logger     *slog.Logger
	onFallback func()
}

// NewFallback wraps provider. onFallback, when non-nil, runs once per failed call.
func NewFallback(provider Provider, logger *slog.Logger, onFallback func()) *Fallback {
	return &Fallback{
		provider:   provider,
		logger:     logger,
		onFallback: onFallback,
	}
}

// Translate never fails; on provider error it logs a warning and returns text.
func (f *Fallback) Translate(ctx context.Context, text, source, target string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	translated, err := f.provider.Translate(ctx, text, source, target)
	if err == nil && strings.TrimSpace(translated) != "" {
		return translated
	}
	if err == nil {
		f.logger.Warn("translation returned empty text, keeping source",
			"source", source, "target", target)
	} else {
		f.logger.Warn("translation failed, keeping source",
			"source", source, "target", target, "error", err)
	}
	if f.onFallback != nil {
		f.onFallback()
	}
	return text
}
