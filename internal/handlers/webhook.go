package handlers

import (
	"context"
	"crypto/subtle"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// UpdateHandler consumes a raw Telegram update.
type UpdateHandler interface {
	HandleWebhook(ctx context.Context, body []byte) error
}

// WebhookHandler accepts updates pushed by Telegram
type WebhookHandler struct {
	updates UpdateHandler
	secret  string
	logger  *slog.Logger
}

// NewWebhookHandler creates a webhook handler. Requests must carry secret
// as the last path segment.
func NewWebhookHandler(updates UpdateHandler, secret string, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		updates: updates,
		secret:  secret,
		logger:  logger.With("component", "webhook"),
	}
}

// Handle processes one update request
func (h *WebhookHandler) Handle(c *fiber.Ctx) error {
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(c.Params("secret")), []byte(h.secret)) != 1 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not found",
			"code":  "ERR_NOT_FOUND",
		})
	}

	// fiber reuses the body buffer after the handler returns
	body := append([]byte(nil), c.Body()...)
	if err := h.updates.HandleWebhook(c.UserContext(), body); err != nil {
		h.logger.Warn("rejected webhook update", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Malformed update",
			"code":  "ERR_BAD_UPDATE",
		})
	}

	return c.JSON(fiber.Map{"ok": true})
}
