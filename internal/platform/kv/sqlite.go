package kv

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	perr "gittracker/internal/platform/errors"
	"gittracker/internal/platform/logger"

	_ "modernc.org/sqlite"
)

// sqliteStore is a file-backed Store for single-host use.
// Separate read and write handles; the write handle is capped at one
// connection because sqlite allows a single writer
type sqliteStore struct {
	readDB  *sql.DB
	writeDB *sql.DB
	log     logger.Logger
}

func openSQLite(ctx context.Context, cfg Config, s settings) (Store, error) {
	if cfg.Path == "" {
		return nil, perr.InvalidArgf("sqlite backend requires a path")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeStore, "creating kv dir")
	}

	writeDB, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeStore, "opening write db")
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", "file:"+cfg.Path+"?mode=ro")
	if err != nil {
		_ = writeDB.Close()
		return nil, perr.Wrapf(err, perr.ErrorCodeStore, "opening read db")
	}

	st := &sqliteStore{readDB: readDB, writeDB: writeDB, log: s.log}
	if err := st.init(ctx); err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	return st, nil
}

func (s *sqliteStore) init(ctx context.Context) error {
	_, err := s.writeDB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      BLOB NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeStore, "initializing kv schema")
	}
	return nil
}

// Get implements Store
func (s *sqliteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := s.readDB.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, perr.Wrapf(err, perr.ErrorCodeStore, "kv get %q", key)
	}
	return v, true, nil
}

// Set implements Store
func (s *sqliteStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.writeDB.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeStore, "kv set %q", key)
	}
	return nil
}

// Delete implements Store
func (s *sqliteStore) Delete(ctx context.Context, key string) error {
	_, err := s.writeDB.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeStore, "kv delete %q", key)
	}
	return nil
}

// Purge implements Store
func (s *sqliteStore) Purge(ctx context.Context) error {
	_, err := s.writeDB.ExecContext(ctx, `DELETE FROM kv`)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeStore, "kv purge")
	}
	s.log.Debug().Msg("kv purged")
	return nil
}

// Close implements Store
func (s *sqliteStore) Close(_ context.Context) error {
	var first error
	if s.readDB != nil {
		if err := s.readDB.Close(); err != nil {
			first = err
		}
	}
	if s.writeDB != nil {
		if err := s.writeDB.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
