package order

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/andreasstove999/ecommerce-system/services/catalog-service-go/internal/product"
)

// Stores are the repositories bound to one transaction.
type Stores struct {
	Products product.Repository
	Orders   Repository
}

type Transactor interface {
	// WithinTx runs fn in a transaction that is committed only if fn returns nil.
	WithinTx(ctx context.Context, fn func(Stores) error) error
}

// TxBeginner matches *pgxpool.Pool.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type PgTransactor struct {
	db       TxBeginner
	products *product.PostgresRepository
	orders   *PostgresRepository
}

func NewPgTransactor(db TxBeginner, products *product.PostgresRepository, orders *PostgresRepository) *PgTransactor {
	return &PgTransactor{db: db, products: products, orders: orders}
}

func (t *PgTransactor) WithinTx(ctx context.Context, fn func(Stores) error) error {
	tx, err := t.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	stores := Stores{
		Products: t.products.WithExecutor(tx),
		Orders:   t.orders.WithExecutor(tx),
	}

	if err := fn(stores); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
