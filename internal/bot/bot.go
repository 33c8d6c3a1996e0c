package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/codebuildervaibhav/video-translator-bot/internal/pipeline"
	"github.com/codebuildervaibhav/video-translator-bot/internal/types"
)

// API is the subset of *tgbotapi.BotAPI the bot needs.
type API interface {
	Sender
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Coordinator accepts inbound videos.
type Coordinator interface {
	Receive(ctx context.Context, req pipeline.Request) (*types.Job, error)
	Reject(ctx context.Context, job *types.Job, reason error)
}

// Scheduler queues accepted jobs.
type Scheduler interface {
	Enqueue(job *types.Job) error
}

// Bot routes Telegram updates: /start, /help and video messages.
type Bot struct {
	api         API
	messenger   *Messenger
	coordinator Coordinator
	scheduler   Scheduler
	logger      *slog.Logger
	pollTimeout int
	maxBytes    int64
}

// New creates a Bot. pollTimeout is the long-polling timeout in seconds;
// maxVideoBytes is the size ceiling quoted in the /start and /help texts.
func New(api API, coordinator Coordinator, scheduler Scheduler, pollTimeout int, maxVideoBytes int64, logger *slog.Logger) *Bot {
	if pollTimeout <= 0 {
		pollTimeout = 60
	}
	return &Bot{
		api:         api,
		messenger:   NewMessenger(api),
		coordinator: coordinator,
		scheduler:   scheduler,
		logger:      logger.With("component", "bot"),
		pollTimeout: pollTimeout,
		maxBytes:    maxVideoBytes,
	}
}

// Run long-polls for updates until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	// getUpdates is refused while a webhook is registered
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot is live and waiting for videos")
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("stopped polling")
			return nil
		case update, ok := <-updates:
			if !ok {
				return errors.New("update channel closed")
			}
			b.Handle(ctx, update)
		}
	}
}

// RegisterWebhook points Telegram at url for update delivery.
func (b *Bot) RegisterWebhook(url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if _, err := b.api.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	b.logger.Info("webhook registered")
	return nil
}

// HandleWebhook decodes one update pushed by Telegram and handles it.
func (b *Bot) HandleWebhook(ctx context.Context, body []byte) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		return fmt.Errorf("decode update: %w", err)
	}
	b.Handle(ctx, update)
	return nil
}

// Handle dispatches one update. Video jobs are queued, not run inline.
func (b *Bot) Handle(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}

	switch {
	case msg.IsCommand():
		b.handleCommand(ctx, msg)
	case msg.Video != nil:
		b.handleVideo(ctx, msg)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	var text string
	switch msg.Command() {
	case "start":
		text = WelcomeText(b.maxBytes)
	case "help":
		text = HelpText(b.maxBytes)
	default:
		return
	}
	if _, err := b.messenger.Reply(ctx, msg.Chat.ID, 0, text); err != nil {
		b.logger.Warn("failed to answer command", "command", msg.Command(), "error", err)
	}
}

func (b *Bot) handleVideo(ctx context.Context, msg *tgbotapi.Message) {
	req := pipeline.Request{
		RequesterID: msg.Chat.ID,
		Requester:   "unknown",
		RequestID:   msg.MessageID,
		ChatID:      msg.Chat.ID,
		FileID:      msg.Video.FileID,
		VideoSize:   int64(msg.Video.FileSize),
	}
	if msg.From != nil {
		req.RequesterID = msg.From.ID
		if msg.From.UserName != "" {
			req.Requester = msg.From.UserName
		}
	}

	job, err := b.coordinator.Receive(ctx, req)
	if err != nil {
		// the coordinator has already answered the requester
		return
	}
	if err := b.scheduler.Enqueue(job); err != nil {
		b.coordinator.Reject(ctx, job, err)
	}
}
