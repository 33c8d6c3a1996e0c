package handlers

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/codebuildervaibhav/video-translator-bot/internal/events"
)

// EventsHandler streams job events over a WebSocket
type EventsHandler struct {
	bus      *events.Bus
	interval time.Duration
	logger   *slog.Logger
}

// NewEventsHandler creates a handler polling bus every interval.
func NewEventsHandler(bus *events.Bus, interval time.Duration, logger *slog.Logger) *EventsHandler {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &EventsHandler{
		bus:      bus,
		interval: interval,
		logger:   logger.With("component", "events_ws"),
	}
}

// Upgrade rejects plain HTTP requests to the WebSocket route.
func (h *EventsHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Handle sends every event after ?since=<seq> as one JSON text message each,
// then keeps following the bus until the client goes away.
func (h *EventsHandler) Handle(c *websocket.Conn) {
	defer c.Close()

	last, _ := strconv.ParseInt(c.Query("since", "0"), 10, 64)
	h.logger.Debug("event subscriber connected", "since", last)

	// the client never sends; reading only detects the close
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		for _, ev := range h.bus.Since(last) {
			if err := c.WriteJSON(ev); err != nil {
				h.logger.Debug("event subscriber write failed", "error", err)
				return
			}
			last = ev.Seq
		}

		select {
		case <-closed:
			h.logger.Debug("event subscriber disconnected")
			return
		case <-ticker.C:
		}
	}
}
