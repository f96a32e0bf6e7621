package runs

import (
	"context"
	"log/slog"

	"github.com/cipher982/zerg/pkg/logger"
)

// Service is the Run Registry: a thin persistence wrapper on AgentRun
// that enforces the terminal-status rule.
type Service struct {
	repo *Repository
	log  *slog.Logger
}

func NewService(repo *Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log.With(logger.Scope("runs"))}
}

// Create starts a new run in RUNNING status.
func (s *Service) Create(ctx context.Context, agentID, threadID, ownerID string, trigger Trigger) (*AgentRun, error) {
	run := &AgentRun{
		AgentID: agentID,
		ThreadID: threadID,
		OwnerID:  ownerID,
		Status:   StatusRunning,
		Trigger:  trigger,
	}
	if err := s.repo.Create(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// Get fetches a run by id.
func (s *Service) Get(ctx context.Context, id string) (*AgentRun, error) {
	return s.repo.GetByID(ctx, id)
}

// GetOwned fetches a run scoped to its owner.
func (s *Service) GetOwned(ctx context.Context, id, ownerID string) (*AgentRun, error) {
	return s.repo.GetOwnedBy(ctx, id, ownerID)
}

// Transition moves a run to newStatus, unless it is already terminal —
// in which case this is a no-op that returns the current (unchanged) run.
func (s *Service) Transition(ctx context.Context, runID string, newStatus Status, errMsg string) (*AgentRun, error) {
	current, err := s.repo.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		s.log.Debug("ignoring transition on terminal run",
			slog.String("run_id", runID),
			slog.String("current_status", string(current.Status)),
			slog.String("requested_status", string(newStatus)),
		)
		return current, nil
	}
	return s.repo.UpdateStatus(ctx, runID, newStatus, errMsg)
}
