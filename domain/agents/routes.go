package agents

import (
	"github.com/labstack/echo/v4"

	"github.com/cipher982/zerg/pkg/auth"
)

// RegisterRoutes mounts read-only agent endpoints under /api/agents.
func RegisterRoutes(e *echo.Echo, h *Handler, verifier *auth.Verifier) {
	g := e.Group("/api/agents", auth.RequireAuth(verifier))
	g.GET("/:id", h.Get)
}
