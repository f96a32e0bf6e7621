package supervisor

import "github.com/cipher982/zerg/domain/runs"

// Result is the outcome of one RunSupervisor invocation. It is never an
// error for DEFERRED/CANCELLED/WAITING — those are legitimate resting
// states, distinguished from the definitive FAILED by Status alone.
type Result struct {
	RunID     string
	ThreadID  string
	Status    runs.Status
	Response  string
	Suspended bool
}

// DispatchRequest is the decoded body of POST /supervisor.
type DispatchRequest struct {
	Task        string         `json:"task"`
	Context     map[string]any `json:"context,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// DispatchResponse is the wire shape returned immediately after dispatch,
// before the run necessarily completes.
type DispatchResponse struct {
	RunID     string `json:"run_id"`
	ThreadID  string `json:"thread_id"`
	Status    string `json:"status"`
	StreamURL string `json:"stream_url"`
}

// CancelResponse is the wire shape returned by POST /supervisor/{run_id}/cancel.
type CancelResponse struct {
	RunID   string `json:"run_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}
