package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"catalog-api/internal/model"
	"catalog-api/internal/repository"
)

func ptr[T any](v T) *T {
	return &v
}

func TestProductService_List(t *testing.T) {
	t.Parallel()

	t.Run("builds page metadata", func(t *testing.T) {
		products := &repository.MockProductRepository{}
		svc := NewProductService(products)
		items := []model.Product{{ID: 11}, {ID: 12}, {ID: 13}}
		products.On("FindPage", mock.Anything, 2, 10).Return(items, 23, nil).Once()

		page, err := svc.List(context.Background(), 2, 10)

		require.NoError(t, err)
		require.Len(t, page.Data, 3)
		require.Equal(t, model.PageMeta{TotalItems: 23, ItemCount: 3, ItemsPerPage: 10, TotalPages: 3, CurrentPage: 2}, page.Meta)
	})

	t.Run("clamps limit", func(t *testing.T) {
		products := &repository.MockProductRepository{}
		svc := NewProductService(products)
		products.On("FindPage", mock.Anything, 1, MaxLimit).Return(nil, 0, nil).Once()

		page, err := svc.List(context.Background(), 1, 5000)

		require.NoError(t, err)
		require.NotNil(t, page.Data)
		require.Empty(t, page.Data)
		require.Equal(t, MaxLimit, page.Meta.ItemsPerPage)
		require.Zero(t, page.Meta.TotalPages)
	})

	t.Run("rejects non positive bounds", func(t *testing.T) {
		svc := NewProductService(&repository.MockProductRepository{})

		_, err := svc.List(context.Background(), 0, 10)
		require.ErrorIs(t, err, model.ErrInvalidInput)

		_, err = svc.List(context.Background(), 1, 0)
		require.ErrorIs(t, err, model.ErrInvalidInput)
	})
}

func TestProductService_Create(t *testing.T) {
	t.Parallel()

	products := &repository.MockProductRepository{}
	svc := NewProductService(products)
	products.On("Create", mock.Anything, mock.MatchedBy(func(p model.Product) bool {
		return p.Name == "Laptop" && p.Price == 999.99 && p.Stock == 0
	})).Return(model.Product{ID: 1, Name: "Laptop", Price: 999.99}, nil).Once()

	created, err := svc.Create(context.Background(), model.CreateProductRequest{
		Name:        " Laptop ",
		Description: "14 inch",
		Price:       ptr(999.99),
		Stock:       ptr(0),
	})

	require.NoError(t, err)
	require.Equal(t, int64(1), created.ID)

	_, err = svc.Create(context.Background(), model.CreateProductRequest{Name: "x", Description: "y", Price: ptr(-1.0), Stock: ptr(1)})
	require.Error(t, err)
	products.AssertNumberOfCalls(t, "Create", 1)
}

func TestProductService_UpdateAndDelete(t *testing.T) {
	t.Parallel()

	t.Run("update of missing product never writes", func(t *testing.T) {
		products := &repository.MockProductRepository{}
		svc := NewProductService(products)
		products.On("FindByID", mock.Anything, int64(404)).Return(model.Product{}, model.ErrProductNotFound).Once()

		_, err := svc.Update(context.Background(), 404, model.UpdateProductRequest{Name: ptr("New")})

		require.ErrorIs(t, err, model.ErrProductNotFound)
		products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("update applies the patch", func(t *testing.T) {
		products := &repository.MockProductRepository{}
		svc := NewProductService(products)
		products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{ID: 1, Name: "Old"}, nil).Once()
		products.On("Update", mock.Anything, int64(1), mock.MatchedBy(func(p model.ProductPatch) bool {
			return p.Name != nil && *p.Name == "New" && p.Price == nil
		})).Return(model.Product{ID: 1, Name: "New"}, nil).Once()

		updated, err := svc.Update(context.Background(), 1, model.UpdateProductRequest{Name: ptr(" New ")})

		require.NoError(t, err)
		require.Equal(t, "New", updated.Name)
		products.AssertExpectations(t)
	})

	t.Run("delete returns the removed record", func(t *testing.T) {
		products := &repository.MockProductRepository{}
		svc := NewProductService(products)
		record := model.Product{ID: 3, Name: "Mouse"}
		products.On("FindByID", mock.Anything, int64(3)).Return(record, nil).Once()
		products.On("Delete", mock.Anything, int64(3)).Return(record, nil).Once()

		deleted, err := svc.Delete(context.Background(), 3)

		require.NoError(t, err)
		require.Equal(t, record, deleted)
	})

	t.Run("delete of missing product", func(t *testing.T) {
		products := &repository.MockProductRepository{}
		svc := NewProductService(products)
		products.On("FindByID", mock.Anything, int64(9)).Return(model.Product{}, model.ErrProductNotFound).Once()

		_, err := svc.Delete(context.Background(), 9)

		require.ErrorIs(t, err, model.ErrProductNotFound)
		products.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
