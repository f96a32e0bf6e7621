package resume

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cipher982/zerg/pkg/apperror"
)

type webhookRequest struct {
	JobID         string `json:"job_id"`
	WorkerID      string `json:"worker_id"`
	Status        string `json:"status"`
	ResultSummary string `json:"result_summary"`
}

type webhookResponse struct {
	Status string `json:"status"`
	RunID  string `json:"run_id"`
	Reason string `json:"reason,omitempty"`
}

type Handler struct {
	ctrl *Controller
}

func NewHandler(ctrl *Controller) *Handler {
	return &Handler{ctrl: ctrl}
}

// Webhook handles POST /jarvis/internal/runs/{run_id}/resume.
func (h *Handler) Webhook(c echo.Context) error {
	runID := c.Param("run_id")

	var req webhookRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request body")
	}
	if req.JobID == "" {
		return apperror.NewBadRequest("job_id is required")
	}

	_, resumed, err := h.ctrl.Resume(c.Request().Context(), runID, WorkerResult{
		JobID:   req.JobID,
		Status:  req.Status,
		Summary: req.ResultSummary,
	})
	if err != nil {
		return apperror.NewInternal("resume failed", err)
	}

	if !resumed {
		return c.JSON(http.StatusOK, webhookResponse{Status: "skipped", RunID: runID, Reason: "run was not waiting"})
	}

	return c.JSON(http.StatusOK, webhookResponse{Status: "resumed", RunID: runID})
}
