package resume

import "github.com/labstack/echo/v4"

func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/jarvis/internal/runs/:run_id/resume", h.Webhook)
}
