// Package tenant resolves an inbound request's tenant id to its own
// Postgres schema and connection pool, creating and migrating that
// schema on first use. Single-tenant deployments (MULTI_TENANT_SCHEMAS=false,
// the default) never leave the "public" schema.
package tenant

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"github.com/cipher982/zerg/internal/config"
	"github.com/cipher982/zerg/internal/database"
	"github.com/cipher982/zerg/internal/migrate"
	"github.com/cipher982/zerg/pkg/apperror"
	"github.com/cipher982/zerg/pkg/logger"

	"github.com/jackc/pgx/v5/stdlib"
)

// Router resolves a tenant id to its *bun.DB, caching one connection
// pool per tenant behind a per-tenant sync.Mutex so concurrent first
// requests for the same new tenant don't race to create the schema
// twice.
type Router struct {
	cfg       *config.Config
	defaultDB *bun.DB
	log       *slog.Logger

	locks sync.Map // tenantID -> *sync.Mutex
	dbs   sync.Map // tenantID -> *bun.DB
}

func NewRouter(cfg *config.Config, defaultDB *bun.DB, log *slog.Logger) *Router {
	return &Router{cfg: cfg, defaultDB: defaultDB, log: log.With(logger.Scope("tenant"))}
}

// ForRequest resolves tenantID to a *bun.DB, lazily creating the schema
// and running migrations against it on first use. In single-schema mode
// tenantID is ignored and the default "public" pool is always returned.
func (r *Router) ForRequest(ctx context.Context, tenantID string) (*bun.DB, error) {
	if !r.cfg.MultiTenantSchemas {
		return r.defaultDB, nil
	}
	if tenantID == "" {
		return nil, apperror.NewBadRequest("tenant id is required")
	}

	if db, ok := r.dbs.Load(tenantID); ok {
		return db.(*bun.DB), nil
	}

	lockIface, _ := r.locks.LoadOrStore(tenantID, &sync.Mutex{})
	lock := lockIface.(*sync.Mutex)
	lock.Lock()
	defer lock.Unlock()

	if db, ok := r.dbs.Load(tenantID); ok {
		return db.(*bun.DB), nil
	}

	db, err := r.provision(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	r.dbs.Store(tenantID, db)
	return db, nil
}

func (r *Router) provision(ctx context.Context, tenantID string) (*bun.DB, error) {
	schema := pgx.Identifier{tenantID}.Sanitize()

	if _, err := r.defaultDB.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema)); err != nil {
		return nil, fmt.Errorf("create tenant schema %s: %w", tenantID, err)
	}

	pool, err := database.NewPoolForSchema(ctx, r.cfg, tenantID)
	if err != nil {
		return nil, fmt.Errorf("connect tenant pool %s: %w", tenantID, err)
	}

	sqldb := stdlib.OpenDBFromPool(pool)
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := migrate.RunWithDB(ctx, sqldb); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate tenant %s: %w", tenantID, err)
	}

	r.log.Info("tenant schema provisioned", slog.String("tenant_id", tenantID))
	return db, nil
}
