package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/codebuildervaibhav/video-translator-bot/internal/events"
	"github.com/codebuildervaibhav/video-translator-bot/internal/logging"
	"github.com/codebuildervaibhav/video-translator-bot/internal/metrics"
)

// PoolStats reports worker pool load.
type PoolStats interface {
	QueueDepth() int
	Active() int
}

// Deps are the collaborators behind the operator routes. Webhook is nil in
// polling mode.
type Deps struct {
	Jobs    JobReader
	Pool    PoolStats
	Events  *events.Bus
	Metrics *metrics.Metrics
	Logs    *logging.LogBuffer
	Webhook *WebhookHandler
	Logger  *slog.Logger
	Version string
}

// NewApp builds the fiber app with all routes.
func NewApp(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		// Telegram updates are small; nothing else is uploaded
		BodyLimit: 1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Output: slogWriter{d.Logger.With("component", "http")},
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":      "healthy",
			"version":     d.Version,
			"queue_depth": d.Pool.QueueDepth(),
			"active_jobs": d.Pool.Active(),
		})
	})

	jobs := NewJobsHandler(d.Jobs)
	app.Get("/jobs", jobs.List)
	app.Get("/jobs/:id", jobs.Get)

	app.Get("/logs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"logs": d.Logs.Lines(),
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler(func() {
		d.Metrics.SetQueueDepth(d.Pool.QueueDepth())
	})))

	if d.Webhook != nil {
		app.Post("/telegram/:secret", d.Webhook.Handle)
	}

	stream := NewEventsHandler(d.Events, 0, d.Logger)
	app.Use("/ws", stream.Upgrade)
	app.Get("/ws/events", websocket.New(stream.Handle))

	return app
}

// slogWriter feeds fiber's access log lines into slog.
type slogWriter struct {
	logger *slog.Logger
}

func (w slogWriter) Write(p []byte) (int, error) {
	line := string(p)
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	w.logger.Info(line)
	return len(p), nil
}
