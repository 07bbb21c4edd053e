package store

import (
	"context"
	"fmt"
	"time"

	"github.com/arvindnk/dataforge/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// connectTimeout bounds the startup ping so a wedged database fails the
// boot quickly instead of hanging until the caller's context expires.
const connectTimeout = 10 * time.Second

// poolConfig translates our database settings onto pgxpool's knobs.
// MaxIdleConns maps to MinConns: pgxpool keeps that many connections
// warm rather than capping an idle set the way database/sql does.
func poolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		pc.MaxConns = int32(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		pc.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pc.MaxConnLifetime = cfg.ConnMaxLifetime
	}

	return pc, nil
}

// Connect opens a pgx connection pool and verifies it with a bounded ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}
