package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultMaxConns = 16

// Connect opens a pgx connection pool sized for the storefront workload and
// verifies connectivity with a ping. maxConns <= 0 falls back to the
// default; a couple of connections stay warm for the cart hot path.
func Connect(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	if maxConns <= 0 {
		maxConns = defaultMaxConns
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 10 * time.Minute
	cfg.MaxConnLifetime = time.Hour
	cfg.ConnConfig.RuntimeParams["application_name"] = "storefront"

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}
