package analysis

import (
	"context"
	"errors"

	"scholarscan/internal/core/job"
	"scholarscan/internal/core/tracker"

	"github.com/gofiber/fiber/v2"
)

// Tracker is the part of the job controller the HTTP layer drives.
type Tracker interface {
	Start(ctx context.Context, author string) error
	Reset()
	Snapshot() job.State
}

type Handler struct {
	tracker Tracker
}

func NewHandler(t Tracker) *Handler {
	return &Handler{tracker: t}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HandleStart starts tracking a new analysis for ?author=. It blocks until
// the gateway accepts or rejects the scan, then returns the current snapshot.
func (h *Handler) HandleStart(c *fiber.Ctx) error {
	author := c.Query("author")
	err := h.tracker.Start(c.UserContext(), author)
	switch {
	case errors.Is(err, tracker.ErrEmptyAuthor):
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: err.Error()})
	case errors.Is(err, tracker.ErrSuperseded):
		return c.Status(fiber.StatusConflict).JSON(errorResponse{Error: err.Error()})
	case errors.Is(err, tracker.ErrClosed):
		return c.Status(fiber.StatusServiceUnavailable).JSON(errorResponse{Error: err.Error()})
	case err != nil:
		// the snapshot already carries the failure
		return c.Status(fiber.StatusBadGateway).JSON(h.tracker.Snapshot())
	}
	return c.Status(fiber.StatusAccepted).JSON(h.tracker.Snapshot())
}

func (h *Handler) HandleGet(c *fiber.Ctx) error {
	return c.JSON(h.tracker.Snapshot())
}

func (h *Handler) HandleReset(c *fiber.Ctx) error {
	h.tracker.Reset()
	return c.JSON(h.tracker.Snapshot())
}
