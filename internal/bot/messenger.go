package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/codebuildervaibhav/video-translator-bot/internal/types"
)

// Sender is the part of *tgbotapi.BotAPI used to talk to chats.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Messenger sends Markdown messages and videos through the Bot API.
type Messenger struct {
	api Sender
}

// NewMessenger creates a Messenger.
func NewMessenger(api Sender) *Messenger {
	return &Messenger{api: api}
}

// Reply sends text as a reply to message replyTo and returns its handle.
func (m *Messenger) Reply(_ context.Context, chatID int64, replyTo int, text string) (types.StatusHandle, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyToMessageID = replyTo

	sent, err := m.api.Send(msg)
	if err != nil {
		return types.StatusHandle{}, fmt.Errorf("send message: %w", err)
	}
	return types.StatusHandle{ChatID: chatID, MessageID: sent.MessageID}, nil
}

// Edit replaces the text of a sent message.
func (m *Messenger) Edit(_ context.Context, status types.StatusHandle, text string) error {
	edit := tgbotapi.NewEditMessageText(status.ChatID, status.MessageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	if _, err := m.api.Request(edit); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// Delete removes a sent message.
func (m *Messenger) Delete(_ context.Context, status types.StatusHandle) error {
	if _, err := m.api.Request(tgbotapi.NewDeleteMessage(status.ChatID, status.MessageID)); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// SendVideo uploads the file at path as a streamable video reply.
func (m *Messenger) SendVideo(_ context.Context, chatID int64, replyTo int, path, caption string) error {
	video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(path))
	video.Caption = caption
	video.ParseMode = tgbotapi.ModeMarkdown
	video.ReplyToMessageID = replyTo
	video.SupportsStreaming = true

	if _, err := m.api.Send(video); err != nil {
		return fmt.Errorf("send video: %w", err)
	}
	return nil
}

// Downloader fetches inbound files from the Bot API file endpoint.
type Downloader struct {
	api    Sender
	client *http.Client
}

// NewDownloader creates a Downloader. A nil client uses http.DefaultClient.
func NewDownloader(api Sender, client *http.Client) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Downloader{api: api, client: client}
}

// Download writes the file identified by fileID to dest.
func (d *Downloader) Download(ctx context.Context, fileID, dest string) error {
	url, err := d.api.GetFileDirectURL(fileID)
	if err != nil {
		return fmt.Errorf("resolve file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return f.Close()
}
