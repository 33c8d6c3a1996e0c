package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/video-translator-bot/internal/storage"
)

// JobReader reads the job history.
type JobReader interface {
	GetJob(ctx context.Context, id string) (storage.JobRecord, error)
	ListJobs(ctx context.Context, limit int) ([]storage.JobRecord, error)
}

// JobsHandler serves the job history
type JobsHandler struct {
	store JobReader
}

// NewJobsHandler creates a jobs handler
func NewJobsHandler(store JobReader) *JobsHandler {
	return &JobsHandler{store: store}
}

// List returns the most recent jobs, ?limit=N (default 50, max 500).
func (h *JobsHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 500 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be between 1 and 500",
			"code":  "ERR_BAD_LIMIT",
		})
	}

	jobs, err := h.store.ListJobs(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(jobs)
}

// Get returns one job by id
func (h *JobsHandler) Get(c *fiber.Ctx) error {
	job, err := h.store.GetJob(c.UserContext(), c.Params("id"))
	if errors.Is(err, storage.ErrJobNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Job not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(job)
}
