package repository

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"catalog-api/internal/model"
)

var productRowColumns = []string{"id", "name", "description", "price", "stock", "created_at", "updated_at"}

func TestProductRepository_FindPage(t *testing.T) {
	pool := newMockPool(t)
	repo := NewProductRepository(pool)
	now := time.Now().UTC()

	pool.ExpectQuery("SELECT (.+) FROM products ORDER BY id LIMIT \\$1 OFFSET \\$2").
		WithArgs(2, 2).
		WillReturnRows(pgxmock.NewRows(productRowColumns).
			AddRow(int64(3), "Laptop", "fast", 999.99, 5, now, now).
			AddRow(int64(4), "Mouse", "small", 19.5, 40, now, now))
	pool.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))

	products, total, err := repo.FindPage(context.Background(), 2, 2)
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, products, 2)
	require.Equal(t, "Laptop", products[0].Name)
	require.Equal(t, 40, products[1].Stock)
	require.NoError(t, pool.ExpectationsWereMet())
}

func TestProductRepository_FindPage_PageBeyondRange(t *testing.T) {
	pool := newMockPool(t)
	repo := NewProductRepository(pool)

	pool.ExpectQuery("SELECT (.+) FROM products ORDER BY id LIMIT \\$1 OFFSET \\$2").
		WithArgs(10, math.MaxInt).
		WillReturnRows(pgxmock.NewRows(productRowColumns))
	pool.ExpectQuery("SELECT COUNT\\(\\*\\) FROM products").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))

	products, total, err := repo.FindPage(context.Background(), 1<<60+1, 10)
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Empty(t, products)
	require.NoError(t, pool.ExpectationsWereMet())
}

func TestProductRepository_Update(t *testing.T) {
	t.Run("returns updated row", func(t *testing.T) {
		pool := newMockPool(t)
		repo := NewProductRepository(pool)
		now := time.Now().UTC()
		name := "Renamed"

		pool.ExpectQuery("UPDATE products SET").
			WithArgs(int64(1), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows(productRowColumns).
				AddRow(int64(1), "Renamed", "desc", 10.0, 1, now, now))

		updated, err := repo.Update(context.Background(), 1, model.ProductPatch{Name: &name})
		require.NoError(t, err)
		require.Equal(t, "Renamed", updated.Name)
		require.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		pool := newMockPool(t)
		repo := NewProductRepository(pool)

		pool.ExpectQuery("UPDATE products SET").
			WithArgs(int64(99), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.Update(context.Background(), 99, model.ProductPatch{})
		require.ErrorIs(t, err, model.ErrProductNotFound)
	})
}

func TestProductRepository_Delete(t *testing.T) {
	t.Run("returns deleted row", func(t *testing.T) {
		pool := newMockPool(t)
		repo := NewProductRepository(pool)
		now := time.Now().UTC()

		pool.ExpectQuery("DELETE FROM products WHERE id = \\$1 RETURNING").
			WithArgs(int64(2)).
			WillReturnRows(pgxmock.NewRows(productRowColumns).
				AddRow(int64(2), "Gone", "desc", 1.0, 0, now, now))

		deleted, err := repo.Delete(context.Background(), 2)
		require.NoError(t, err)
		require.Equal(t, int64(2), deleted.ID)
	})

	t.Run("wraps driver errors", func(t *testing.T) {
		pool := newMockPool(t)
		repo := NewProductRepository(pool)
		boom := errors.New("connection reset")

		pool.ExpectQuery("DELETE FROM products").
			WithArgs(int64(2)).
			WillReturnError(boom)

		_, err := repo.Delete(context.Background(), 2)
		require.ErrorIs(t, err, boom)
		require.NotErrorIs(t, err, model.ErrProductNotFound)
	})
}
