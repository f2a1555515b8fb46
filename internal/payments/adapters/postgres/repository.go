package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dejobratic/wspay/internal/payments/domain"
	"github.com/dejobratic/wspay/internal/payments/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id, name, status, amount_total, currency, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts an order and lets the sequence assign its ID.
func (r *Repository) Create(ctx context.Context, order domain.Order) (*domain.Order, error) {
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}
	if order.Status == "" {
		order.Status = domain.StatusDraft
	}

	query := `
		INSERT INTO sale_orders (name, status, amount_total, currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		order.Name,
		order.Status,
		order.AmountTotal,
		order.Currency,
		order.CreatedAt,
		order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	return &order, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM sale_orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	return order, nil
}

func (r *Repository) FindByName(ctx context.Context, name string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM sale_orders WHERE name = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus writes the new status. With from set, the status check is part of
// the UPDATE itself so two concurrent callers cannot both move the order.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus, from ...domain.OrderStatus) error {
	query := `
		UPDATE sale_orders
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	args := []any{status, time.Now().UTC(), id}

	if len(from) > 0 {
		expected := make([]string, len(from))
		for i, s := range from {
			expected[i] = string(s)
		}
		query += ` AND status = ANY($4)`
		args = append(args, expected)
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if result.RowsAffected() == 0 {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: order %d is %s", ports.ErrStatusConflict, id, current.Status)
	}

	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	if err := row.Scan(
		&order.ID,
		&order.Name,
		&order.Status,
		&order.AmountTotal,
		&order.Currency,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &order, nil
}
