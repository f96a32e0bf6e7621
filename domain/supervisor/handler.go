package supervisor

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cipher982/zerg/pkg/apperror"
	"github.com/cipher982/zerg/pkg/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Dispatch handles POST /supervisor.
func (h *Handler) Dispatch(c echo.Context) error {
	user := auth.GetUser(c)
	if user == nil {
		return apperror.ErrUnauthorized
	}

	var req DispatchRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if req.Task == "" {
		return apperror.NewBadRequest("task is required")
	}

	idempotencyKey := c.Request().Header.Get("Idempotency-Key")

	result, err := h.svc.Dispatch(c.Request().Context(), user.ID, req.Task, idempotencyKey)
	if errors.Is(err, ErrRateLimited) {
		return apperror.NewRateLimited("too many supervisor requests, slow down")
	}
	if err != nil {
		return apperror.NewInternal("failed to dispatch task", err)
	}

	return c.JSON(http.StatusOK, DispatchResponse{
		RunID:     result.RunID,
		ThreadID:  result.ThreadID,
		Status:    "running",
		StreamURL: fmt.Sprintf("/stream/runs/%s", result.RunID),
	})
}

// Cancel handles POST /supervisor/{run_id}/cancel.
func (h *Handler) Cancel(c echo.Context) error {
	user := auth.GetUser(c)
	if user == nil {
		return apperror.ErrUnauthorized
	}

	runID := c.Param("run_id")
	result, err := h.svc.Cancel(c.Request().Context(), runID, user.ID)
	if err != nil {
		return apperror.NewNotFound("run", runID)
	}

	return c.JSON(http.StatusOK, CancelResponse{
		RunID:   result.RunID,
		Status:  string(result.Status),
		Message: "run cancelled",
	})
}
