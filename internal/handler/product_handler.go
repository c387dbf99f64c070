package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"catalog-api/internal/model"
	"catalog-api/internal/service"
	"catalog-api/pkg/apierror"
)

type productService interface {
	Create(ctx context.Context, req model.CreateProductRequest) (model.Product, error)
	List(ctx context.Context, page int, limit int) (model.ProductPage, error)
	Get(ctx context.Context, id int64) (model.Product, error)
	Update(ctx context.Context, id int64, req model.UpdateProductRequest) (model.Product, error)
	Delete(ctx context.Context, id int64) (model.Product, error)
}

type ProductHandler struct {
	service productService
}

func NewProductHandler(service productService) *ProductHandler {
	return &ProductHandler{service: service}
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateProductRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	product, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := positiveQueryInt(r, "page", service.DefaultPage)
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := positiveQueryInt(r, "limit", service.DefaultLimit)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.List(r.Context(), page, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.UpdateProductRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	product, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := productID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	product, err := h.service.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func productID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apierror.BadRequest("invalid product id", raw)
	}

	return id, nil
}

func positiveQueryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return 0, apierror.BadRequest(name+" must be a positive integer", raw)
	}

	return value, nil
}
