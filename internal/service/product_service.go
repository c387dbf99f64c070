package service

import (
	"context"

	"catalog-api/internal/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

type productStore interface {
	Create(ctx context.Context, p model.Product) (model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	FindPage(ctx context.Context, page int, limit int) ([]model.Product, int, error)
	Update(ctx context.Context, id int64, patch model.ProductPatch) (model.Product, error)
	Delete(ctx context.Context, id int64) (model.Product, error)
}

type ProductService struct {
	products productStore
}

func NewProductService(products productStore) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) Create(ctx context.Context, req model.CreateProductRequest) (model.Product, error) {
	if err := req.Validate(); err != nil {
		return model.Product{}, err
	}

	return s.products.Create(ctx, req.Product())
}

// List returns one page ordered by id. limit is clamped to MaxLimit.
func (s *ProductService) List(ctx context.Context, page int, limit int) (model.ProductPage, error) {
	if page < 1 || limit < 1 {
		return model.ProductPage{}, model.ErrInvalidInput
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	items, total, err := s.products.FindPage(ctx, page, limit)
	if err != nil {
		return model.ProductPage{}, err
	}
	if items == nil {
		items = []model.Product{}
	}

	return model.ProductPage{
		Data: items,
		Meta: model.NewPageMeta(total, len(items), page, limit),
	}, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (model.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *ProductService) Update(ctx context.Context, id int64, req model.UpdateProductRequest) (model.Product, error) {
	if err := req.Validate(); err != nil {
		return model.Product{}, err
	}

	if _, err := s.products.FindByID(ctx, id); err != nil {
		return model.Product{}, err
	}

	return s.products.Update(ctx, id, req.Patch())
}

// Delete removes the product and returns the removed record.
func (s *ProductService) Delete(ctx context.Context, id int64) (model.Product, error) {
	if _, err := s.products.FindByID(ctx, id); err != nil {
		return model.Product{}, err
	}

	return s.products.Delete(ctx, id)
}
