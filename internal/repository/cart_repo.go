package repository

import (
	"context"

	"github.com/pagewise/bookstore/cart-service/internal/domain/entity"
)

// CartRepository is the persistence boundary for cart aggregates. It enforces
// the one-active-cart-per-user invariant at the storage level and detects
// concurrent writers through the cart's version.
type CartRepository interface {
	// GetActiveByUserID returns the user's active cart or ErrNotFound.
	GetActiveByUserID(ctx context.Context, userID string) (*entity.Cart, error)

	// Create inserts a new active cart and fills in its generated ID.
	// Returns ErrDuplicateActiveCart when the user already has one.
	Create(ctx context.Context, cart *entity.Cart) error

	// Save persists mutations to an existing cart. The write is conditional on
	// the cart's version; ErrConflict is returned when another writer got
	// there first (including a concurrent deactivation).
	Save(ctx context.Context, cart *entity.Cart) error

	// Deactivate flips the active flag off, preserving the cart as history.
	// Subject to the same version check as Save.
	Deactivate(ctx context.Context, cart *entity.Cart) error

	GetByID(ctx context.Context, cartID string) (*entity.Cart, error)

	// ListByUserID returns all carts of a user, newest first, active or not.
	ListByUserID(ctx context.Context, userID string) ([]entity.Cart, error)
}
