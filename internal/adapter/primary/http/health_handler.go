package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cashflow/notification-relay/internal/core"
	"github.com/cashflow/notification-relay/internal/metrics"
)

// HealthHandler reports the broker consumer state of the notifier
type HealthHandler struct {
	state *core.ConnectionState
}

// NewHealthHandler creates a health handler over the shared connection state
func NewHealthHandler(state *core.ConnectionState) *HealthHandler {
	return &HealthHandler{state: state}
}

// Register mounts /health and /metrics on e
func (h *HealthHandler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// Health answers 200 while the consumer is consuming and 503 otherwise
func (h *HealthHandler) Health(c echo.Context) error {
	snap := h.state.Snapshot()
	code := http.StatusServiceUnavailable
	if h.state.Phase() == core.PhaseConsuming {
		code = http.StatusOK
	}
	return c.JSON(code, snap)
}
