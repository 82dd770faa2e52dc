package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pagewise/bookstore/cart-service/internal/domain/entity"
	"github.com/pagewise/bookstore/cart-service/internal/repository"
)

// CartRepository is an in-memory implementation of the cart store. It honors
// the same invariants as the Mongo adapter (one active cart per user,
// version-checked writes) and backs tests and local runs without a database.
type CartRepository struct {
	mu     sync.Mutex
	carts  map[string]*entity.Cart
	nextID int
}

func NewCartRepository() *CartRepository {
	return &CartRepository{
		carts:  make(map[string]*entity.Cart),
		nextID: 1,
	}
}

func cloneCart(c *entity.Cart) *entity.Cart {
	cp := *c
	cp.Items = make([]entity.CartItem, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}

func (r *CartRepository) GetActiveByUserID(ctx context.Context, userID string) (*entity.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, cart := range r.carts {
		if cart.UserID == userID && cart.Active {
			return cloneCart(cart), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *CartRepository) Create(ctx context.Context, cart *entity.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart.Active {
		for _, existing := range r.carts {
			if existing.UserID == cart.UserID && existing.Active {
				return repository.ErrDuplicateActiveCart
			}
		}
	}

	cart.ID = fmt.Sprintf("cart-%06d", r.nextID)
	r.nextID++
	r.carts[cart.ID] = cloneCart(cart)
	return nil
}

func (r *CartRepository) Save(ctx context.Context, cart *entity.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[cart.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if !stored.Active || stored.Version != cart.Version {
		return repository.ErrConflict
	}

	stored.Items = make([]entity.CartItem, len(cart.Items))
	copy(stored.Items, cart.Items)
	stored.UpdatedAt = cart.UpdatedAt
	stored.Version++
	cart.Version++
	return nil
}

func (r *CartRepository) Deactivate(ctx context.Context, cart *entity.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[cart.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if !stored.Active || stored.Version != cart.Version {
		return repository.ErrConflict
	}

	stored.Active = false
	stored.UpdatedAt = cart.UpdatedAt
	stored.Version++
	cart.Active = false
	cart.Version++
	return nil
}

func (r *CartRepository) GetByID(ctx context.Context, cartID string) (*entity.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneCart(cart), nil
}

func (r *CartRepository) ListByUserID(ctx context.Context, userID string) ([]entity.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	carts := make([]entity.Cart, 0)
	for _, cart := range r.carts {
		if cart.UserID == userID {
			carts = append(carts, *cloneCart(cart))
		}
	}
	sort.Slice(carts, func(i, j int) bool {
		return carts[i].CreatedAt.After(carts[j].CreatedAt)
	})
	return carts, nil
}
