package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// CacheSweeper empties the identity cache in one step.
type CacheSweeper interface {
	SweepAll()
}

// SweepHandler forces a full cache flush. Mounted under the shared-secret
// protected internal group; intended for operational drift cleanup.
type SweepHandler struct {
	sweeper CacheSweeper
}

// NewSweepHandler creates a new sweep handler.
func NewSweepHandler(sweeper CacheSweeper) *SweepHandler {
	return &SweepHandler{sweeper: sweeper}
}

// Handle processes POST /internal/sweep.
func (h *SweepHandler) Handle(c echo.Context) error {
	h.sweeper.SweepAll()
	slog.InfoContext(c.Request().Context(), "identity cache flushed via internal endpoint")

	return c.JSON(http.StatusOK, map[string]string{
		"status": "swept",
	})
}
