package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("order not found")

// Executor matches the methods from *pgxpool.Pool and pgx.Tx that we use.
type Executor interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, orderID int64) (*Order, error)
}

type PostgresRepository struct {
	db Executor
}

func NewPostgresRepository(db Executor) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) WithExecutor(exec Executor) *PostgresRepository {
	return &PostgresRepository{db: exec}
}

// Create inserts the order and its lines and sets o.ID. It does not open a
// transaction of its own; run it through a Transactor to keep the writes atomic.
func (r *PostgresRepository) Create(ctx context.Context, o *Order) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO orders (created_at, total)
		VALUES ($1, $2)
		RETURNING id
	`, o.CreatedAt, o.Total).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, l := range o.Lines {
		_, err := r.db.Exec(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, o.ID, l.ProductID, l.ProductName, l.Quantity, l.UnitPrice, l.LineTotal)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, orderID int64) (*Order, error) {
	var o Order
	err := r.db.QueryRow(ctx, `
		SELECT id, created_at, total
		FROM orders WHERE id = $1
	`, orderID).Scan(&o.ID, &o.CreatedAt, &o.Total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT product_id, product_name, quantity, unit_price, line_total
		FROM order_items WHERE order_id = $1
		ORDER BY id
	`, o.ID)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice, &l.LineTotal); err != nil {
			return nil, fmt.Errorf("scan order_item: %w", err)
		}
		o.Lines = append(o.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return &o, nil
}
