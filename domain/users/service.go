package users

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cipher982/zerg/pkg/logger"
)

// Service is the domain-facing API for user resolution used by the
// users HTTP handlers.
type Service struct {
	repo *Repository
	log  *slog.Logger
}

func NewService(repo *Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log.With(logger.Scope("users"))}
}

// GetOrCreate resolves the user for an authenticated email, creating the
// row on first contact so downstream owner-scoped lookups (supervisor
// agent, supervisor thread, worker jobs) always have a stable User.ID.
func (s *Service) GetOrCreate(ctx context.Context, email string) (*User, error) {
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	u, err := s.repo.GetOrCreateByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Get fetches a user by id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateConfig replaces a user's config bag (notification prefs, default
// model, timezone, etc).
func (s *Service) UpdateConfig(ctx context.Context, id string, config map[string]any) (*User, error) {
	if config == nil {
		config = map[string]any{}
	}
	u, err := s.repo.UpdateConfig(ctx, id, config)
	if err != nil {
		return nil, err
	}
	s.log.Info("user config updated", slog.String("user_id", id))
	return u, nil
}
