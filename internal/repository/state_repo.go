package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"recipe-admin/internal/model"
)

// StateRepository persists client state rows keyed by name.
type StateRepository struct {
	pool *pgxpool.Pool
}

func NewStateRepository(pool *pgxpool.Pool) *StateRepository {
	return &StateRepository{pool: pool}
}

func (r *StateRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.pool.QueryRow(ctx,
		`SELECT value FROM client_state WHERE key = $1`, key).Scan(&value)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load client state: %w", err)
	}
	return value, nil
}

func (r *StateRepository) Save(ctx context.Context, key string, value []byte) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO client_state (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	if err != nil {
		return fmt.Errorf("save client state: %w", err)
	}
	return nil
}

func (r *StateRepository) Delete(ctx context.Context, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM client_state WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete client state: %w", err)
	}
	return nil
}
