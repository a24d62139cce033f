package kv

import (
	"context"

	perr "gittracker/internal/platform/errors"
	"gittracker/internal/platform/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgStore is a Postgres-backed Store for server deployments where several
// renderer instances share one cache
type pgStore struct {
	pool *pgxpool.Pool
	log  logger.Logger
}

var newPool = pgxpool.NewWithConfig // seam

func openPostgres(ctx context.Context, cfg Config, s settings) (Store, error) {
	if cfg.URL == "" {
		return nil, perr.InvalidArgf("postgres backend requires a url")
	}
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeStore, "parsing postgres url")
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeStore, "opening postgres pool")
	}

	st := &pgStore{pool: pool, log: s.log}
	if err := st.init(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return st, nil
}

func (s *pgStore) init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tracker_kv (
			key        text PRIMARY KEY,
			value      bytea NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeStore, "initializing tracker_kv schema")
	}
	return nil
}

// Get implements Store
func (s *pgStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM tracker_kv WHERE key = $1`, key).Scan(&v)
	if err == pgx.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, perr.Wrapf(err, perr.ErrorCodeStore, "kv get %q", key)
	}
	return v, true, nil
}

// Set implements Store
func (s *pgStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tracker_kv (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`, key, value)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeStore, "kv set %q", key)
	}
	return nil
}

// Delete implements Store
func (s *pgStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM tracker_kv WHERE key = $1`, key)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeStore, "kv delete %q", key)
	}
	return nil
}

// Purge implements Store
func (s *pgStore) Purge(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE tracker_kv`)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeStore, "kv purge")
	}
	s.log.Debug().Msg("kv purged")
	return nil
}

// Ping reports backend readiness
func (s *pgStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close implements Store
func (s *pgStore) Close(_ context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
