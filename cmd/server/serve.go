package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/codebuildervaibhav/video-translator-bot/internal/bot"
	"github.com/codebuildervaibhav/video-translator-bot/internal/cleanup"
	"github.com/codebuildervaibhav/video-translator-bot/internal/config"
	"github.com/codebuildervaibhav/video-translator-bot/internal/events"
	"github.com/codebuildervaibhav/video-translator-bot/internal/handlers"
	"github.com/codebuildervaibhav/video-translator-bot/internal/metrics"
	"github.com/codebuildervaibhav/video-translator-bot/internal/pipeline"
	"github.com/codebuildervaibhav/video-translator-bot/internal/queue"
	"github.com/codebuildervaibhav/video-translator-bot/internal/storage"
)

// drainTimeout bounds how long shutdown waits for queued and running jobs.
const drainTimeout = 30 * time.Minute

func runServe(parent context.Context, configPath string) error {
	if parent == nil {
		parent = context.Background()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, logs := newLogger(cfg)
	logger.Info("video translator bot starting", "version", version)

	// Ensure directories exist
	workspace := storage.NewWorkspace(cfg.Storage.TempDir, logger)
	if err := workspace.Ensure(); err != nil {
		return err
	}
	if err := workspace.Lock(); err != nil {
		return err
	}
	defer workspace.Unlock()

	store, err := storage.NewJobStore(cfg.Storage.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	m := metrics.New()
	bus := events.NewBus(500)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := buildStages(ctx, cfg, logger, m)

	api, err := newBotAPI(cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("authorized on telegram", "bot", api.Self.UserName)

	coordinator := pipeline.New(pipeline.Options{
		Workspace:      workspace,
		Downloader:     bot.NewDownloader(api, &http.Client{Timeout: 10 * time.Minute}),
		Media:          st.media,
		Transcriber:    st.transcriber,
		Subtitles:      st.subtitles,
		Messenger:      bot.NewMessenger(api),
		Store:          store,
		Events:         bus,
		Metrics:        m,
		Logger:         logger,
		SourceLanguage: cfg.Translation.SourceLanguage,
		MaxVideoBytes:  cfg.MaxVideoBytes(),
	})

	// jobs run to completion even after a shutdown signal
	pool := queue.NewWorkerPool(cfg.Workers.Count, cfg.Workers.QueueSize, coordinator, logger)
	pool.Start(context.WithoutCancel(ctx))

	sweeper := cleanup.NewSweeper(cfg.Storage.TempDir,
		time.Duration(cfg.Cleanup.IntervalMinutes)*time.Minute,
		time.Duration(cfg.Cleanup.MaxAgeHours)*time.Hour,
		logger)
	sweeper.Start()
	defer sweeper.Stop()

	b := bot.New(api, coordinator, pool, cfg.Telegram.PollTimeout, cfg.MaxVideoBytes(), logger)

	var webhook *handlers.WebhookHandler
	webhookMode := cfg.Telegram.Mode == "webhook"
	if webhookMode {
		url := strings.TrimRight(cfg.Telegram.WebhookURL, "/") + "/telegram/" + cfg.Telegram.WebhookSecret
		if err := b.RegisterWebhook(url); err != nil {
			return err
		}
		webhook = handlers.NewWebhookHandler(b, cfg.Telegram.WebhookSecret, logger)
		if !cfg.Server.Enabled {
			logger.Warn("webhook mode needs the HTTP server, enabling it")
			cfg.Server.Enabled = true
		}
	}

	errCh := make(chan error, 2)

	var shutdownHTTP func() error
	if cfg.Server.Enabled {
		app := handlers.NewApp(handlers.Deps{
			Jobs:    store,
			Pool:    pool,
			Events:  bus,
			Metrics: m,
			Logs:    logs,
			Webhook: webhook,
			Logger:  logger,
			Version: version,
		})
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		logEndpoints(logger, addr, webhookMode)
		go func() {
			if err := app.Listen(addr); err != nil {
				errCh <- fmt.Errorf("server failed: %w", err)
			}
		}()
		shutdownHTTP = func() error { return app.ShutdownWithTimeout(10 * time.Second) }
	}

	if !webhookMode {
		go func() {
			if err := b.Run(ctx); err != nil {
				errCh <- fmt.Errorf("polling failed: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down gracefully")
	case runErr = <-errCh:
		logger.Error("fatal error", "error", runErr)
		stop()
	}

	if shutdownHTTP != nil {
		if err := shutdownHTTP(); err != nil {
			logger.Warn("http shutdown", "error", err)
		}
	}

	logger.Info("waiting for jobs to finish", "active", pool.Active(), "queued", pool.QueueDepth())
	drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	if err := pool.Stop(drainCtx); err != nil {
		logger.Warn("jobs still running at exit", "error", err)
	}

	logger.Info("bot stopped")
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

func newBotAPI(cfg *config.Config, logger *slog.Logger) (*tgbotapi.BotAPI, error) {
	if err := tgbotapi.SetLogger(slog.NewLogLogger(logger.With("component", "telegram").Handler(), slog.LevelDebug)); err != nil {
		return nil, err
	}

	var (
		api *tgbotapi.BotAPI
		err error
	)
	if cfg.Telegram.APIEndpoint != "" {
		api, err = tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Telegram.Token, cfg.Telegram.APIEndpoint)
	} else {
		api, err = tgbotapi.NewBotAPI(cfg.Telegram.Token)
	}
	if err != nil {
		return nil, fmt.Errorf("telegram login failed: %w", err)
	}
	return api, nil
}

func logEndpoints(logger *slog.Logger, addr string, webhook bool) {
	logger.Info("server starting", "addr", addr)
	endpoints := []string{
		"GET  /health      - Health check",
		"GET  /jobs        - Recent jobs",
		"GET  /jobs/:id    - One job",
		"GET  /logs        - View server logs",
		"GET  /metrics     - Prometheus metrics",
		"GET  /ws/events   - WebSocket job events",
	}
	if webhook {
		endpoints = append(endpoints, "POST /telegram/:secret - Telegram webhook")
	}
	for _, e := range endpoints {
		logger.Debug("endpoint", "route", e)
	}
}
