package domain

import (
	"context"
)

// ProductRepository defines the contract for product storage.
//
// FindByID, UpdateByID and DeleteByID return ErrProductNotFound when no row
// matches the id. Every other error wraps ErrPersistence.
type ProductRepository interface {
	Create(ctx context.Context, in ProductCreate) (*Product, error)
	FindAll(ctx context.Context) ([]*Product, error)
	FindByID(ctx context.Context, id int64) (*Product, error)
	UpdateByID(ctx context.Context, id int64, patch ProductPatch) (*Product, error)
	DeleteByID(ctx context.Context, id int64) (*Product, error)
	Close(ctx context.Context) error
}
