package agents

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cipher982/zerg/pkg/apperror"
	"github.com/cipher982/zerg/pkg/auth"
)

// Handler exposes read access to the caller's own agents.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Get returns an agent owned by the caller, or 404 if it does not exist
// or belongs to someone else.
func (h *Handler) Get(c echo.Context) error {
	user := auth.GetUser(c)
	if user == nil {
		return apperror.ErrUnauthorized
	}

	id := c.Param("id")
	a, err := h.svc.Get(c.Request().Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperror.NewNotFound("agent", id)
		}
		return apperror.NewInternal("get agent", err)
	}
	return c.JSON(http.StatusOK, a)
}
