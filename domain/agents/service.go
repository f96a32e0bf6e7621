package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cipher982/zerg/internal/config"
	"github.com/cipher982/zerg/pkg/logger"
)

// Service is the domain-facing API for agent resolution, including
// lazy, per-owner creation of the singleton supervisor agent.
type Service struct {
	repo *Repository
	cfg  *config.Config
	log  *slog.Logger

	// ownerLocks serializes GetOrCreateSupervisor per owner so two
	// concurrent first-contact requests never race each other into
	// creating two supervisor agents for the same owner.
	ownerLocks sync.Map // map[string]*sync.Mutex
}

func NewService(repo *Repository, cfg *config.Config, log *slog.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log.With(logger.Scope("agents"))}
}

func (s *Service) lockFor(ownerID string) *sync.Mutex {
	v, _ := s.ownerLocks.LoadOrStore(ownerID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// GetOrCreateSupervisor returns the owner's singleton supervisor agent,
// lazily creating it under a per-owner lock on first contact.
func (s *Service) GetOrCreateSupervisor(ctx context.Context, ownerID string) (*Agent, error) {
	lock := s.lockFor(ownerID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.repo.GetSupervisorForOwner(ctx, ownerID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	a := &Agent{
		OwnerID:           ownerID,
		Kind:              KindSupervisor,
		Model:             s.cfg.LLM.Model,
		SystemInstruction: defaultSupervisorSystemPrompt,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create supervisor agent: %w", err)
	}

	s.log.Info("created supervisor agent", slog.String("owner_id", ownerID), slog.String("agent_id", a.ID))
	return a, nil
}

// Get fetches an agent scoped to its owner, returning ErrNotFound if it
// belongs to someone else (callers translate that into a 404, never 403).
func (s *Service) Get(ctx context.Context, id, ownerID string) (*Agent, error) {
	return s.repo.GetOwnedBy(ctx, id, ownerID)
}

const defaultSupervisorSystemPrompt = "You are the supervisor agent. Break incoming tasks into worker jobs when they require background execution, and answer directly when you can."
