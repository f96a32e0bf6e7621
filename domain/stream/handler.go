package stream

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cipher982/zerg/pkg/apperror"
	"github.com/cipher982/zerg/pkg/auth"
	"github.com/cipher982/zerg/pkg/sse"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// StreamRun handles GET /stream/runs/:run_id, the resumable endpoint.
// Last-Event-ID may arrive as a header (standard EventSource reconnect
// behavior) or a query parameter (for clients that can't set headers).
func (h *Handler) StreamRun(c echo.Context) error {
	user := auth.GetUser(c)
	if user == nil {
		return apperror.ErrUnauthorized
	}

	runID := c.Param("run_id")
	lastEventID := parseLastEventID(c)

	w := sse.NewWriter(c.Response().Writer)
	if err := h.svc.Stream(c.Request().Context(), w, user.ID, runID, lastEventID, false); err != nil {
		return err
	}
	return nil
}

// StreamLegacy handles GET /supervisor/events?run_id=..., the
// non-resumable predecessor endpoint. No replay: a reconnecting client
// simply misses whatever happened while it was disconnected.
func (h *Handler) StreamLegacy(c echo.Context) error {
	user := auth.GetUser(c)
	if user == nil {
		return apperror.ErrUnauthorized
	}

	runID := c.QueryParam("run_id")
	if runID == "" {
		return apperror.NewBadRequest("run_id is required")
	}

	w := sse.NewWriter(c.Response().Writer)
	if err := h.svc.Stream(c.Request().Context(), w, user.ID, runID, 0, true); err != nil {
		return err
	}
	return nil
}

func parseLastEventID(c echo.Context) int64 {
	raw := c.Request().Header.Get("Last-Event-ID")
	if raw == "" {
		raw = c.QueryParam("last_event_id")
	}
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}
