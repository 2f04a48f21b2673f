package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgxpool.Pool used by KVStore.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// KVStore keeps preferences as flat key/value rows in PostgreSQL.
type KVStore struct {
	db Querier
}

func NewKVStore(db Querier) *KVStore {
	return &KVStore{db: db}
}

// Init creates the preferences table if it does not exist yet.
func (s *KVStore) Init(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS preferences (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`

	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("create preferences table: %w", err)
	}

	return nil
}

// Get returns the value stored under key. The boolean is false when the key is absent.
func (s *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM preferences WHERE key = $1`

	var value string
	err := s.db.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}

	return value, true, nil
}

// Set stores value under key, replacing the previous value.
func (s *KVStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO preferences (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = excluded.value, updated_at = NOW()
	`

	if _, err := s.db.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	return nil
}

// Delete removes the given keys. Missing keys are ignored.
func (s *KVStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	query := `DELETE FROM preferences WHERE key = ANY($1)`

	if _, err := s.db.Exec(ctx, query, keys); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}
