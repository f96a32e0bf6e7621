package users

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cipher982/zerg/pkg/apperror"
	"github.com/cipher982/zerg/pkg/auth"
)

// Handler exposes the authenticated caller's own user record.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Me returns the user record for the authenticated caller, creating it on
// first contact.
func (h *Handler) Me(c echo.Context) error {
	authUser := auth.GetUser(c)
	if authUser == nil {
		return apperror.ErrUnauthorized
	}

	u, err := h.svc.GetOrCreate(c.Request().Context(), authUser.Email)
	if err != nil {
		return apperror.NewInternal("resolve user", err)
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateConfig updates the config bag for the authenticated caller.
func (h *Handler) UpdateConfig(c echo.Context) error {
	authUser := auth.GetUser(c)
	if authUser == nil {
		return apperror.ErrUnauthorized
	}

	u, err := h.svc.GetOrCreate(c.Request().Context(), authUser.Email)
	if err != nil {
		return apperror.NewInternal("resolve user", err)
	}

	var body struct {
		Config map[string]any `json:"config"`
	}
	if err := c.Bind(&body); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}

	updated, err := h.svc.UpdateConfig(c.Request().Context(), u.ID, body.Config)
	if err != nil {
		return apperror.NewInternal("update user config", err)
	}
	return c.JSON(http.StatusOK, updated)
}
