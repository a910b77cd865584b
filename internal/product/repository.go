package product

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrVersionConflict is returned when a stock write loses the race against a
// concurrent writer of the same product.
var ErrVersionConflict = errors.New("product version conflict")

// Executor matches the methods shared by *pgxpool.Pool and pgx.Tx that we use.
// This allows us to mock the database in tests and to bind the repository to a transaction.
type Executor interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	FindActiveByIDs(ctx context.Context, ids []int64) ([]Product, error)
	UpdateStock(ctx context.Context, p Product) error
	FindActive(ctx context.Context, search string, page, size int) (Page, error)
}

type PostgresRepository struct {
	db Executor
}

func NewPostgresRepository(db Executor) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// WithExecutor returns a copy of the repository that runs its statements on exec,
// typically a pgx.Tx.
func (r *PostgresRepository) WithExecutor(exec Executor) *PostgresRepository {
	return &PostgresRepository{db: exec}
}

// FindActiveByIDs returns the active products among ids. Unknown and inactive
// ids are silently left out.
func (r *PostgresRepository) FindActiveByIDs(ctx context.Context, ids []int64) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, name, price, stock, active, version
		FROM products
		WHERE id = ANY($1) AND active
		ORDER BY id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.Active, &p.Version); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return products, nil
}

// UpdateStock writes p.Stock only if the stored version still equals p.Version.
func (r *PostgresRepository) UpdateStock(ctx context.Context, p Product) error {
	if p.Stock < 0 {
		return fmt.Errorf("update stock for product %d: negative stock %d", p.ID, p.Stock)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET stock = $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $3
	`, p.ID, p.Stock, p.Version)
	if err != nil {
		return fmt.Errorf("update stock for product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update stock for product %d: %w", p.ID, ErrVersionConflict)
	}
	return nil
}

// FindActive pages through active products whose name contains search,
// ignoring case. The term is matched literally, so % and _ have no special meaning.
func (r *PostgresRepository) FindActive(ctx context.Context, search string, page, size int) (Page, error) {
	if page < 0 || size <= 0 {
		return Page{}, fmt.Errorf("invalid page request: page=%d size=%d", page, size)
	}

	var total int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM products
		WHERE active AND ($1 = '' OR strpos(lower(name), lower($1)) > 0)
	`, search).Scan(&total)
	if err != nil {
		return Page{}, fmt.Errorf("count products: %w", err)
	}

	offset, ok := pageOffset(page, size)
	if !ok || offset >= total {
		return newPage(nil, page, size, total), nil
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, name, price, stock, active
		FROM products
		WHERE active AND ($1 = '' OR strpos(lower(name), lower($1)) > 0)
		ORDER BY name ASC, id ASC
		LIMIT $2 OFFSET $3
	`, search, size, offset)
	if err != nil {
		return Page{}, fmt.Errorf("select products page: %w", err)
	}
	defer rows.Close()

	var content []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.Price, &s.Stock, &s.Active); err != nil {
			return Page{}, fmt.Errorf("scan product summary: %w", err)
		}
		content = append(content, s)
	}
	if err := rows.Err(); err != nil {
		return Page{}, fmt.Errorf("rows: %w", err)
	}

	return newPage(content, page, size, total), nil
}

// pageOffset reports false when page*size does not fit in an int64.
func pageOffset(page, size int) (int64, bool) {
	if int64(page) > math.MaxInt64/int64(size) {
		return 0, false
	}
	return int64(page) * int64(size), true
}
