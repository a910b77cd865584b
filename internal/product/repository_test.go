package product

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepository_FindActiveByIDs(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	rows := mock.NewRows([]string{"id", "name", "price", "stock", "active", "version"}).
		AddRow(int64(1), "Caneca", decimal.RequireFromString("10.33"), 5, true, 0).
		AddRow(int64(3), "Camiseta", decimal.RequireFromString("59.90"), 0, true, 4)

	mock.ExpectQuery(`WHERE id = ANY\(\$1\) AND active`).
		WithArgs([]int64{1, 2, 3}).
		WillReturnRows(rows)

	products, err := repo.FindActiveByIDs(context.Background(), []int64{1, 2, 3})
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, int64(1), products[0].ID)
	assert.Equal(t, "Caneca", products[0].Name)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("10.33")))
	assert.Equal(t, 5, products[0].Stock)
	assert.Equal(t, 4, products[1].Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_FindActiveByIDs_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	products, err := NewPostgresRepository(mock).FindActiveByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, products)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_FindActiveByIDs_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM products`).
		WithArgs([]int64{9}).
		WillReturnError(errors.New("connection reset"))

	_, err = NewPostgresRepository(mock).FindActiveByIDs(context.Background(), []int64{9})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_UpdateStock(t *testing.T) {
	tests := map[string]struct {
		affected int64
		execErr  error
		wantErr  error
	}{
		"version matches": {affected: 1},
		"stale version":   {affected: 0, wantErr: ErrVersionConflict},
		"driver error":    {execErr: errors.New("deadlock detected")},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			exp := mock.ExpectExec(`UPDATE products`).WithArgs(int64(7), 3, 2)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))
			}

			err = NewPostgresRepository(mock).UpdateStock(context.Background(), Product{ID: 7, Stock: 3, Version: 2})

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.execErr != nil:
				require.Error(t, err)
				require.NotErrorIs(t, err, ErrVersionConflict)
			default:
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepository_UpdateStock_RejectsNegative(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	err = NewPostgresRepository(mock).UpdateStock(context.Background(), Product{ID: 1, Stock: -1})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_WithExecutor(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectBegin()
	pool.ExpectExec(`UPDATE products`).
		WithArgs(int64(1), 0, 0).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	pool.ExpectCommit()

	ctx := context.Background()
	tx, err := pool.Begin(ctx)
	require.NoError(t, err)

	repo := NewPostgresRepository(pool).WithExecutor(tx)
	require.NoError(t, repo.UpdateStock(ctx, Product{ID: 1, Stock: 0, Version: 0}))
	require.NoError(t, tx.Commit(ctx))
	require.NoError(t, pool.ExpectationsWereMet())
}

func TestPostgresRepository_FindActive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("can").
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectQuery(`LIMIT \$2 OFFSET \$3`).
		WithArgs("can", 2, int64(2)).
		WillReturnRows(mock.NewRows([]string{"id", "name", "price", "stock", "active"}).
			AddRow(int64(8), "Caneta", decimal.RequireFromString("2.50"), 100, true))

	page, err := NewPostgresRepository(mock).FindActive(context.Background(), "can", 1, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.Size)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)
	assert.False(t, page.First)
	assert.True(t, page.Last)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Caneta", page.Content[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_FindActive_BeyondLastPage(t *testing.T) {
	tests := map[string]int{
		"just past the end":      2,
		"offset overflows int64": math.MaxInt,
	}

	for name, page := range tests {
		t.Run(name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectQuery(`SELECT COUNT\(\*\)`).
				WithArgs("").
				WillReturnRows(mock.NewRows([]string{"count"}).AddRow(int64(15)))

			got, err := NewPostgresRepository(mock).FindActive(context.Background(), "", page, 10)
			require.NoError(t, err)

			assert.Empty(t, got.Content)
			assert.NotNil(t, got.Content)
			assert.Equal(t, page, got.Page)
			assert.Equal(t, int64(15), got.TotalElements)
			assert.Equal(t, 2, got.TotalPages)
			assert.False(t, got.First)
			assert.True(t, got.Last)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepository_FindActive_InvalidRequest(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	_, err = repo.FindActive(context.Background(), "", -1, 10)
	require.Error(t, err)
	_, err = repo.FindActive(context.Background(), "", 0, 0)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPage(t *testing.T) {
	tests := map[string]struct {
		page, size      int
		total           int64
		wantPages       int
		wantFirst, last bool
	}{
		"empty result":   {page: 0, size: 10, total: 0, wantPages: 0, wantFirst: true, last: true},
		"single page":    {page: 0, size: 10, total: 7, wantPages: 1, wantFirst: true, last: true},
		"middle page":    {page: 1, size: 10, total: 25, wantPages: 3, wantFirst: false, last: false},
		"exact boundary": {page: 1, size: 10, total: 20, wantPages: 2, wantFirst: false, last: true},
		"past the end":   {page: 5, size: 10, total: 20, wantPages: 2, wantFirst: false, last: true},
		"largest page":   {page: math.MaxInt, size: 10, total: 20, wantPages: 2, wantFirst: false, last: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			p := newPage(nil, tt.page, tt.size, tt.total)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantFirst, p.First)
			assert.Equal(t, tt.last, p.Last)
			assert.NotNil(t, p.Content)
		})
	}
}
