package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/codebuildervaibhav/video-translator-bot/internal/config"
	"github.com/codebuildervaibhav/video-translator-bot/internal/logging"
	"github.com/codebuildervaibhav/video-translator-bot/internal/media"
	"github.com/codebuildervaibhav/video-translator-bot/internal/metrics"
	"github.com/codebuildervaibhav/video-translator-bot/internal/pipeline"
	"github.com/codebuildervaibhav/video-translator-bot/internal/subtitle"
	"github.com/codebuildervaibhav/video-translator-bot/internal/transcription"
	"github.com/codebuildervaibhav/video-translator-bot/internal/translation"
)

// newLogger tees log output to stderr and an in-memory buffer for /logs.
func newLogger(cfg *config.Config) (*slog.Logger, *logging.LogBuffer) {
	logs := logging.NewLogBuffer(1000)
	w := io.MultiWriter(os.Stderr, logs)
	return logging.New(cfg.Log.Level, cfg.Log.Format, w), logs
}

// stages are the process-wide pipeline collaborators, built once at startup.
type stages struct {
	media       *media.FFmpeg
	transcriber pipeline.Transcriber
	subtitles   *subtitle.Builder
}

// buildStages never fails: a translation client that cannot be created only
// leaves subtitles in the source language.
func buildStages(ctx context.Context, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) *stages {
	style := cfg.Subtitles.Style
	ff := media.NewFFmpeg(cfg.FFmpeg.Path, cfg.FFmpeg.Preset, media.Style{
		FontName:      style.FontName,
		FontSize:      style.FontSize,
		PrimaryColour: style.PrimaryColour,
		OutlineColour: style.OutlineColour,
		Outline:       style.Outline,
		Bold:          style.Bold,
	}, logger)

	timeout := time.Duration(cfg.Whisper.TimeoutMinutes) * time.Minute
	var transcriber pipeline.Transcriber
	switch cfg.Whisper.Engine {
	case "http":
		transcriber = transcription.NewHTTPTranscriber(cfg.Whisper.APIURL, cfg.Whisper.APIKey, cfg.Whisper.Model, timeout, logger)
	default:
		transcriber = transcription.NewWhisperTranscriber(cfg.Whisper.Command, cfg.Whisper.Model, cfg.Whisper.Device, logger).
			WithTimeout(timeout)
	}

	var provider translation.Provider
	switch cfg.Translation.Provider {
	case "none":
		logger.Warn("translation disabled, subtitles stay in the source language")
		provider = translation.Passthrough{}
	default:
		g, err := translation.NewGoogle(ctx, translation.GoogleOptions{
			APIKey:          cfg.Translation.APIKey,
			CredentialsFile: cfg.Translation.CredentialsFile,
		})
		if err != nil {
			logger.Warn("translation client unavailable, subtitles stay in the source language",
				"error", err,
				"hint", "set GOOGLE_TRANSLATE_API_KEY or GOOGLE_APPLICATION_CREDENTIALS")
			provider = translation.Unavailable{Err: err}
		} else {
			provider = g
		}
	}
	translator := translation.NewFallback(provider, logger.With("component", "translation"), m.IncTranslationFallback)

	return &stages{
		media:       ff,
		transcriber: transcriber,
		subtitles: subtitle.NewBuilder(translator,
			cfg.Translation.SourceLanguage,
			cfg.Translation.TargetLanguage,
			cfg.Translation.Concurrency),
	}
}
