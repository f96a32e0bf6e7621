package stream

import (
	"github.com/labstack/echo/v4"

	"github.com/cipher982/zerg/pkg/auth"
)

func RegisterRoutes(e *echo.Echo, h *Handler, verifier *auth.Verifier) {
	e.GET("/stream/runs/:run_id", h.StreamRun, auth.RequireAuth(verifier))
	e.GET("/supervisor/events", h.StreamLegacy, auth.RequireAuth(verifier))
}
