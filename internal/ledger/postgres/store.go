package postgres

import (
	"context"
	"fmt"

	"github.com/dejobratic/wspay/internal/payments/ports"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists processed notifications in the processed_notifications table.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Claim inserts the key. The primary key makes a concurrent second insert affect no rows.
func (s *Store) Claim(ctx context.Context, key string, record ports.ProcessedNotification) (bool, error) {
	query := `
		INSERT INTO processed_notifications (key, provider, cart_id, order_id, processed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO NOTHING
	`

	result, err := s.pool.Exec(ctx, query, key, record.Provider, record.CartID, record.OrderID, record.ProcessedAt)
	if err != nil {
		return false, fmt.Errorf("claim processed notification: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

func (s *Store) Release(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM processed_notifications WHERE key = $1`, key); err != nil {
		return fmt.Errorf("release processed notification: %w", err)
	}
	return nil
}
