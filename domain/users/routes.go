package users

import (
	"github.com/labstack/echo/v4"

	"github.com/cipher982/zerg/pkg/auth"
)

// RegisterRoutes mounts the current-user endpoints under /api/users.
func RegisterRoutes(e *echo.Echo, h *Handler, verifier *auth.Verifier) {
	g := e.Group("/api/users", auth.RequireAuth(verifier))
	g.GET("/me", h.Me)
	g.PATCH("/me/config", h.UpdateConfig)
}
