package dto

import (
	"github.com/mrops-br/products-crud-api/internal/domain"
)

// CreateProductRequest represents the request to create a product. Fields are
// pointers so that a missing field can be told apart from a zero value.
type CreateProductRequest struct {
	Name        *string  `json:"name" validate:"required"`
	Description *string  `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required"`
}

// ToDomain converts a validated request into a domain create input
func (r *CreateProductRequest) ToDomain() domain.ProductCreate {
	return domain.ProductCreate{
		Name:        *r.Name,
		Description: *r.Description,
		Price:       *r.Price,
	}
}

// PatchProductRequest represents a partial update; absent or null fields are
// left untouched
type PatchProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

// ToDomain converts the request into a domain patch
func (r *PatchProductRequest) ToDomain() domain.ProductPatch {
	return domain.ProductPatch{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
	}
}

// ProductResponse represents the product response
type ProductResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
	}
}

// ToProductResponseList converts a list of domain Products to ProductResponse list
func ToProductResponseList(products []*domain.Product) []*ProductResponse {
	responses := make([]*ProductResponse, len(products))
	for i, p := range products {
		responses[i] = ToProductResponse(p)
	}
	return responses
}
