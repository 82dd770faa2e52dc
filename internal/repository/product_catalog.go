package repository

import (
	"context"
	"time"

	"github.com/pagewise/bookstore/cart-service/internal/domain/entity"
)

// ProductCatalog is the read-only view of the bookstore catalog. GetByID
// returns ErrNotFound for products removed from the catalog and
// ErrUnavailable when the catalog cannot be reached in time.
type ProductCatalog interface {
	GetByID(ctx context.Context, productID string) (*entity.Product, error)
}

// ProductDetailCache sits in front of the catalog for read-heavy cart views.
type ProductDetailCache interface {
	Get(ctx context.Context, productID string) (*entity.Product, error)
	Set(ctx context.Context, productID string, product *entity.Product, ttl time.Duration) error
	Delete(ctx context.Context, productID string) error
}
