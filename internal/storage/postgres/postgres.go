// Package postgres stores roll history in PostgreSQL using pgx v5, so a shared
// roll can be listed, replayed, and pushed again later.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/yzdice/internal/config"
)

// ErrSchemaNotMigrated is returned by Health when the database answers but the
// rolls table has not been created.
var ErrSchemaNotMigrated = errors.New("rolls table missing; run cmd/migrate")

// Pool is the roll-history database: one pgx pool and the repositories that
// share it.
type Pool struct {
	db    *pgxpool.Pool
	rolls *RollRepository
}

// NewPool connects to the roll-history database described by cfg.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a Pool whose database answered a ping, or a non-nil
// error. The schema is not checked; call Health for that.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	pgCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing roll store config: %w", err)
	}
	pgCfg.MaxConns = cfg.MaxConns
	pgCfg.MinConns = cfg.MinConns
	pgCfg.MaxConnLifetime = cfg.MaxConnLifetime

	db, err := pgxpool.NewWithConfig(ctx, pgCfg)
	if err != nil {
		return nil, fmt.Errorf("opening roll store: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("reaching roll store at %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return &Pool{db: db, rolls: NewRollRepository(db)}, nil
}

// Rolls returns the repository of saved rolls.
func (p *Pool) Rolls() *RollRepository { return p.rolls }

// Health reports whether the roll store is usable: the database must answer
// within timeout and the rolls table must exist.
//
// Postcondition: Returns nil, ErrSchemaNotMigrated, or the connection error.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var migrated bool
	if err := p.db.QueryRow(ctx, `SELECT to_regclass('rolls') IS NOT NULL`).Scan(&migrated); err != nil {
		return fmt.Errorf("checking roll store: %w", err)
	}
	if !migrated {
		return ErrSchemaNotMigrated
	}
	return nil
}

// Close releases every connection. The Pool and its repositories are unusable
// afterwards.
func (p *Pool) Close() { p.db.Close() }

// DB returns the underlying pgx pool.
func (p *Pool) DB() *pgxpool.Pool { return p.db }
