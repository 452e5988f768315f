package postgres_adapter

import (
	"context"
	"errors"
	"fmt"

	"real-estate-marketplace/internal/contextkeys"
	"real-estate-marketplace/internal/core/domain"
	"real-estate-marketplace/internal/core/port"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresFavoritesStorage - key-value хранилище избранного в таблице favorites_storage.
type PostgresFavoritesStorage struct {
	pool *pgxpool.Pool
}

func NewPostgresFavoritesStorage(pool *pgxpool.Pool) (*PostgresFavoritesStorage, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &PostgresFavoritesStorage{pool: pool}, nil
}

func (r *PostgresFavoritesStorage) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.pool.QueryRow(ctx, `SELECT value FROM favorites_storage WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrKeyNotFound
		}
		contextkeys.LoggerFromContext(ctx).Error("Failed to load favorites value", err, port.Fields{
			"component": "PostgresFavoritesStorage",
			"key":       key,
		})
		return nil, fmt.Errorf("failed to load key %s: %w", key, err)
	}
	return value, nil
}

func (r *PostgresFavoritesStorage) Save(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO favorites_storage (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := r.pool.Exec(ctx, query, key, value); err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Failed to save favorites value", err, port.Fields{
			"component": "PostgresFavoritesStorage",
			"key":       key,
		})
		return fmt.Errorf("failed to save key %s: %w", key, err)
	}
	return nil
}
