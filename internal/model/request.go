package model

import (
	"net/http"
	"strings"

	validation "github.com/jellydator/validation"
	"github.com/jellydator/validation/is"

	"catalog-api/pkg/apierror"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Normalize trims input and applies the default role.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
	if r.Role == "" {
		r.Role = RoleUser
	}
}

func (r *RegisterRequest) Validate() error {
	return wrapValidationError(validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required.Error("email is required"), is.EmailFormat),
		// bcrypt only reads the first 72 bytes
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(6, 72).Error("password must be between 6 and 72 characters"),
		),
		validation.Field(&r.Role, validation.In(RoleUser, RoleAdmin).Error("role must be user or admin")),
	))
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	return wrapValidationError(validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required.Error("email is required"), is.EmailFormat),
		validation.Field(&r.Password, validation.Required.Error("password is required")),
	))
}

type CreateProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
}

func (r *CreateProductRequest) Validate() error {
	return wrapValidationError(validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required.Error("name is required"), validation.Length(1, 255)),
		validation.Field(&r.Description, validation.Required.Error("description is required")),
		validation.Field(&r.Price, validation.NotNil.Error("price is required"), validation.Min(0.0).Error("price must be at least 0")),
		validation.Field(&r.Stock, validation.NotNil.Error("stock is required"), validation.Min(0).Error("stock must be at least 0")),
	))
}

func (r *CreateProductRequest) Product() Product {
	product := Product{
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
	}
	if r.Price != nil {
		product.Price = *r.Price
	}
	if r.Stock != nil {
		product.Stock = *r.Stock
	}

	return product
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
}

func (r *UpdateProductRequest) Validate() error {
	return wrapValidationError(validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.NilOrNotEmpty.Error("name cannot be empty"), validation.Length(1, 255)),
		validation.Field(&r.Description, validation.NilOrNotEmpty.Error("description cannot be empty")),
		validation.Field(&r.Price, validation.Min(0.0).Error("price must be at least 0")),
		validation.Field(&r.Stock, validation.Min(0).Error("stock must be at least 0")),
	))
}

func (r *UpdateProductRequest) Patch() ProductPatch {
	return ProductPatch{
		Name:        trimmedPtr(r.Name),
		Description: trimmedPtr(r.Description),
		Price:       r.Price,
		Stock:       r.Stock,
	}
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}

	return apierror.New("VALIDATION_FAILED", "request validation failed", err.Error(), http.StatusBadRequest)
}
