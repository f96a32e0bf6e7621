package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

var ErrNotFound = errors.New("user not found")

// Repository persists User records against the tenant's bun.IDB.
type Repository struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) *Repository {
	return &Repository{db: db}
}

// GetByID fetches a user by primary key.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	u := new(User)
	err := r.db.NewSelect().Model(u).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByEmail fetches a user by exact email match.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u := new(User)
	err := r.db.NewSelect().Model(u).Where("email = ?", email).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// GetOrCreateByEmail returns the existing user for email, creating one
// with role USER and an empty config bag if none exists yet. Supervisor
// and worker job owners are resolved this way on first contact.
func (r *Repository) GetOrCreateByEmail(ctx context.Context, email string) (*User, error) {
	u, err := r.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	u = &User{
		Email:  email,
		Role:   RoleUser,
		Config: map[string]any{},
	}
	if _, err := r.db.NewInsert().
		Model(u).
		On("CONFLICT (email) DO NOTHING").
		Returning("*").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	if u.ID == "" {
		// Lost the race to a concurrent insert; fetch the winner's row.
		return r.GetByEmail(ctx, email)
	}
	return u, nil
}

// UpdateConfig replaces a user's config bag.
func (r *Repository) UpdateConfig(ctx context.Context, id string, config map[string]any) (*User, error) {
	u := &User{ID: id, Config: config}
	res, err := r.db.NewUpdate().
		Model(u).
		Column("config").
		Where("id = ?", id).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update user config: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return u, nil
}
