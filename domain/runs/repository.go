package runs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

var ErrNotFound = errors.New("run not found")

// Repository persists AgentRun records.
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, run *AgentRun) error {
	if _, err := r.db.NewInsert().Model(run).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*AgentRun, error) {
	run := new(AgentRun)
	err := r.db.NewSelect().Model(run).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run by id: %w", err)
	}
	return run, nil
}

func (r *Repository) GetOwnedBy(ctx context.Context, id, ownerID string) (*AgentRun, error) {
	run := new(AgentRun)
	err := r.db.NewSelect().
		Model(run).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run owned by: %w", err)
	}
	return run, nil
}

// UpdateStatus transitions a run's status, writing error on every call
// and stamping finished_at when the new status is terminal. The caller is responsible for
// enforcing the no-op-on-terminal rule (see Service.Transition).
func (r *Repository) UpdateStatus(ctx context.Context, id string, status Status, errMsg string) (*AgentRun, error) {
	run := &AgentRun{ID: id, Status: status, Error: errMsg}
	q := r.db.NewUpdate().Model(run).Column("status", "error").Where("id = ?", id)
	if status.IsTerminal() {
		now := time.Now().UTC()
		run.FinishedAt = &now
		q = q.Column("finished_at")
	}
	res, err := q.Returning("*").Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update run status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return run, nil
}
