package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/virtual-card-service/internal/config"
)

const snapshotSchema = `
    CREATE TABLE IF NOT EXISTS snapshots (
        key        TEXT PRIMARY KEY,
        blob       BYTEA NOT NULL,
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`

// PostgresBlobStore persists the ledger snapshot as a single row keyed by
// the fixed snapshot key.
type PostgresBlobStore struct {
	pool *pgxpool.Pool
	key  string
}

// NewPostgresBlobStore establishes a connection pool and ensures the
// snapshot table exists.
func NewPostgresBlobStore(ctx context.Context, cfg config.PostgresConfig, key string, logger *zap.Logger) (*PostgresBlobStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, snapshotSchema); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres", zap.String("snapshot_key", key))
	return &PostgresBlobStore{pool: pool, key: key}, nil
}

// Load fetches the snapshot row, returning (nil, nil) when absent.
func (p *PostgresBlobStore) Load(ctx context.Context) ([]byte, error) {
	const query = `SELECT blob FROM snapshots WHERE key=$1`

	var blob []byte
	err := p.pool.QueryRow(ctx, query, p.key).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return blob, nil
}

// Save upserts the snapshot row.
func (p *PostgresBlobStore) Save(ctx context.Context, blob []byte) error {
	const query = `
        INSERT INTO snapshots (key, blob, updated_at) VALUES ($1, $2, NOW())
        ON CONFLICT (key) DO UPDATE SET blob=EXCLUDED.blob, updated_at=NOW()`

	_, err := p.pool.Exec(ctx, query, p.key, blob)
	return err
}

// Reset deletes the snapshot row.
func (p *PostgresBlobStore) Reset(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM snapshots WHERE key=$1`, p.key)
	return err
}

// Ping verifies database connectivity.
func (p *PostgresBlobStore) Ping(ctx context.Context) error {
	if p == nil || p.pool == nil {
		return errors.New("postgres pool not configured")
	}
	return p.pool.Ping(ctx)
}

// Close releases pool resources.
func (p *PostgresBlobStore) Close() {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
}
