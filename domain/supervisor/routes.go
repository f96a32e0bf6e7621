package supervisor

import (
	"github.com/labstack/echo/v4"

	"github.com/cipher982/zerg/pkg/auth"
)

func RegisterRoutes(e *echo.Echo, h *Handler, verifier *auth.Verifier) {
	g := e.Group("/supervisor", auth.RequireAuth(verifier))
	g.POST("", h.Dispatch)
	g.POST("/:run_id/cancel", h.Cancel)
}
