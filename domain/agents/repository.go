package agents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

var ErrNotFound = errors.New("agent not found")

// Repository persists Agent records.
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Agent, error) {
	a := new(Agent)
	err := r.db.NewSelect().Model(a).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get agent by id: %w", err)
	}
	return a, nil
}

// GetSupervisorForOwner returns the owner's singleton supervisor agent,
// or ErrNotFound if one has not been created yet.
func (r *Repository) GetSupervisorForOwner(ctx context.Context, ownerID string) (*Agent, error) {
	a := new(Agent)
	err := r.db.NewSelect().
		Model(a).
		Where("owner_id = ?", ownerID).
		Where("kind = ?", KindSupervisor).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get supervisor agent for owner: %w", err)
	}
	return a, nil
}

func (r *Repository) Create(ctx context.Context, a *Agent) error {
	if _, err := r.db.NewInsert().Model(a).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("create agent: %w", err)
	}
	return nil
}

func (r *Repository) GetOwnedBy(ctx context.Context, id, ownerID string) (*Agent, error) {
	a := new(Agent)
	err := r.db.NewSelect().
		Model(a).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get agent owned by: %w", err)
	}
	return a, nil
}
