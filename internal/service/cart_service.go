package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pagewise/bookstore/cart-service/internal/adapter/nats"
	"github.com/pagewise/bookstore/cart-service/internal/domain/entity"
	"github.com/pagewise/bookstore/cart-service/internal/platform/logger"
	"github.com/pagewise/bookstore/cart-service/internal/repository"
)

const (
	defaultProductCacheTTL = 5 * time.Minute

	natsSubjectCartDeactivated = "cart.deactivated"
)

type CartService interface {
	GetCart(ctx context.Context, userID string) (*CartView, error)
	AddItem(ctx context.Context, userID, productID string, quantity int, format entity.Format) (*CartView, error)
	UpdateItemQuantity(ctx context.Context, userID, productID string, format entity.Format, newQuantity int) (*CartView, error)
	RemoveItem(ctx context.Context, userID, productID string, format entity.Format) (*CartView, error)
	ValidateStock(ctx context.Context, userID string) ([]StockIssue, error)
	DeactivateCart(ctx context.Context, userID string) error
	ListCarts(ctx context.Context, userID string) ([]entity.Cart, error)
}

type cartService struct {
	cartRepo        repository.CartRepository
	catalog         repository.ProductCatalog
	productCache    repository.ProductDetailCache
	validator       *StockValidator
	msgPublisher    nats.MessagePublisher
	log             logger.Logger
	productCacheTTL time.Duration
}

type CartServiceConfig struct {
	ProductCacheTTL time.Duration
}

func NewCartService(
	cartRepo repository.CartRepository,
	catalog repository.ProductCatalog,
	productCache repository.ProductDetailCache,
	msgPublisher nats.MessagePublisher,
	log logger.Logger,
	cfg CartServiceConfig,
) CartService {
	productCacheTTL := cfg.ProductCacheTTL
	if productCacheTTL <= 0 {
		productCacheTTL = defaultProductCacheTTL
	}

	return &cartService{
		cartRepo:        cartRepo,
		catalog:         catalog,
		productCache:    productCache,
		validator:       NewStockValidator(catalog, log),
		msgPublisher:    msgPublisher,
		log:             log,
		productCacheTTL: productCacheTTL,
	}
}

// resolveProduct goes through the cache first and falls back to the catalog.
// repository.ErrNotFound means the product was removed from the catalog;
// repository.ErrUnavailable propagates untouched so callers never confuse an
// outage with a missing product.
func (s *cartService) resolveProduct(ctx context.Context, productID string) (*entity.Product, error) {
	cached, cacheErr := s.productCache.Get(ctx, productID)
	if cacheErr == nil && cached != nil {
		return cached, nil
	}
	if cacheErr != nil && !errors.Is(cacheErr, repository.ErrNotFound) {
		s.log.Warnf("Error getting product %s from cache: %v. Fetching from catalog.", productID, cacheErr)
	}

	product, err := s.catalog.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if errSetCache := s.productCache.Set(ctx, productID, product, s.productCacheTTL); errSetCache != nil {
		s.log.Warnf("Failed to set product %s to cache: %v", productID, errSetCache)
	}
	return product, nil
}

// buildView resolves every line item. Items whose product disappeared are
// flagged unresolved rather than dropped; the total uses skip mode so the
// view stays displayable in mixed states.
func (s *cartService) buildView(ctx context.Context, cart *entity.Cart) (*CartView, error) {
	view := &CartView{
		ID:        cart.ID,
		UserID:    cart.UserID,
		Active:    cart.Active,
		Items:     make([]CartItemView, 0, len(cart.Items)),
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}

	for _, item := range cart.Items {
		product, err := s.resolveProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.log.Warnf("Product %s referenced by cart %s is gone from the catalog", item.ProductID, cart.ID)
				view.Items = append(view.Items, CartItemView{
					ProductID:  item.ProductID,
					Format:     item.Format,
					Quantity:   item.Quantity,
					Unresolved: true,
				})
				continue
			}
			return nil, fmt.Errorf("could not resolve product %s: %w", item.ProductID, err)
		}

		unitPrice := product.EffectivePrice()
		view.Items = append(view.Items, CartItemView{
			ProductID:     item.ProductID,
			Title:         product.Title,
			Format:        item.Format,
			Quantity:      item.Quantity,
			Price:         product.Price,
			DiscountPrice: product.DiscountPrice,
			Stock:         product.Stock,
			UnitPrice:     unitPrice,
			LineTotal:     unitPrice * float64(item.Quantity),
		})
	}

	total, err := Total(view.Items, SkipUnresolved)
	if err != nil {
		return nil, err
	}
	view.Total = total
	return view, nil
}

// mutate loads the user's active cart, applies fn and saves the result. When
// no active cart exists one is created; a create that loses the race to
// another device falls back to updating the winner exactly once.
func (s *cartService) mutate(ctx context.Context, userID string, fn func(*entity.Cart) error) (*entity.Cart, error) {
	cart, err := s.cartRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("could not retrieve cart: %w", err)
		}

		cart = entity.NewCart(userID)
		if err := fn(cart); err != nil {
			return nil, err
		}
		err = s.cartRepo.Create(ctx, cart)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, repository.ErrDuplicateActiveCart) {
			return nil, fmt.Errorf("could not create cart: %w", err)
		}
		s.log.Warnf("Concurrent cart creation detected for user %s, updating existing cart", userID)
		cart, err = s.cartRepo.GetActiveByUserID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("could not retrieve cart after create race: %w", err)
		}
		if err := fn(cart); err != nil {
			return nil, err
		}
	} else {
		if err := fn(cart); err != nil {
			return nil, err
		}
	}

	if err := s.cartRepo.Save(ctx, cart); err != nil {
		return nil, fmt.Errorf("could not save cart: %w", err)
	}
	return cart, nil
}

func (s *cartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	cart, err := s.cartRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// No persisted cart yet; the first mutation will create one.
			return s.buildView(ctx, entity.NewCart(userID))
		}
		s.log.Errorf("Error getting cart for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve cart: %w", err)
	}
	return s.buildView(ctx, cart)
}

func (s *cartService) AddItem(ctx context.Context, userID, productID string, quantity int, format entity.Format) (*CartView, error) {
	s.log.Infof("Adding item to cart: UserID=%s, ProductID=%s, Quantity=%d, Format=%s", userID, productID, quantity, format)

	if quantity < 1 {
		return nil, entity.ErrInvalidQuantity
	}
	if _, err := entity.ParseFormat(string(format)); err != nil {
		return nil, err
	}

	// The reference must point at an existing product at write time; price and
	// stock may drift afterwards, the cart stores only the reference.
	if _, err := s.resolveProduct(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("product %s does not exist: %w", productID, err)
		}
		s.log.Errorf("Failed to check product %s before add: %v", productID, err)
		return nil, fmt.Errorf("could not verify product %s: %w", productID, err)
	}

	cart, err := s.mutate(ctx, userID, func(c *entity.Cart) error {
		return c.AddItem(productID, quantity, format)
	})
	if err != nil {
		s.log.Errorf("AddItem failed for user %s: %v", userID, err)
		return nil, err
	}

	s.log.Infof("Item added to cart successfully for user %s", userID)
	return s.buildView(ctx, cart)
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, userID, productID string, format entity.Format, newQuantity int) (*CartView, error) {
	s.log.Infof("Updating item quantity: UserID=%s, ProductID=%s, Format=%s, NewQuantity=%d", userID, productID, format, newQuantity)

	if _, err := entity.ParseFormat(string(format)); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		s.log.Errorf("Error getting cart for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve cart: %w", err)
	}
	if err := cart.UpdateItemQuantity(productID, format, newQuantity); err != nil {
		return nil, fmt.Errorf("could not update item quantity: %w", repository.ErrNotFound)
	}
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		s.log.Errorf("Error saving cart for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not save cart: %w", err)
	}

	s.log.Infof("Item quantity updated successfully for user %s", userID)
	return s.buildView(ctx, cart)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID string, format entity.Format) (*CartView, error) {
	s.log.Infof("Removing item from cart: UserID=%s, ProductID=%s, Format=%s", userID, productID, format)

	cart, err := s.cartRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Nothing to remove from; removal of an absent item is not an error.
			return s.buildView(ctx, entity.NewCart(userID))
		}
		s.log.Errorf("Error getting cart for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve cart: %w", err)
	}

	if item, _ := cart.GetItem(productID, format); item == nil {
		return s.buildView(ctx, cart)
	}

	cart.RemoveItem(productID, format)
	if err := s.cartRepo.Save(ctx, cart); err != nil {
		s.log.Errorf("Error saving cart for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not save cart: %w", err)
	}

	s.log.Infof("Item removed from cart successfully for user %s", userID)
	return s.buildView(ctx, cart)
}

func (s *cartService) ValidateStock(ctx context.Context, userID string) ([]StockIssue, error) {
	cart, err := s.cartRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return []StockIssue{}, nil
		}
		s.log.Errorf("Error getting cart for stock validation, user %s: %v", userID, err)
		return nil, fmt.Errorf("could not retrieve cart: %w", err)
	}
	return s.validator.Validate(ctx, cart)
}

func (s *cartService) DeactivateCart(ctx context.Context, userID string) error {
	s.log.Infof("Deactivating cart for user: UserID=%s", userID)

	cart, err := s.cartRepo.GetActiveByUserID(ctx, userID)
	if err != nil {
		s.log.Errorf("Error getting cart for user %s: %v", userID, err)
		return fmt.Errorf("could not retrieve cart: %w", err)
	}

	if err := s.cartRepo.Deactivate(ctx, cart); err != nil {
		s.log.Errorf("Error deactivating cart %s for user %s: %v", cart.ID, userID, err)
		return fmt.Errorf("could not deactivate cart: %w", err)
	}

	if s.msgPublisher != nil {
		event := map[string]interface{}{
			"cart_id":        cart.ID,
			"user_id":        userID,
			"deactivated_at": time.Now().UTC(),
		}
		if err := s.msgPublisher.Publish(ctx, natsSubjectCartDeactivated, event); err != nil {
			// The cart is already deactivated; event delivery must not undo that.
			s.log.Errorf("Failed to publish %s event for cart %s: %v", natsSubjectCartDeactivated, cart.ID, err)
		}
	}

	s.log.Infof("Cart %s deactivated for user %s", cart.ID, userID)
	return nil
}

func (s *cartService) ListCarts(ctx context.Context, userID string) ([]entity.Cart, error) {
	carts, err := s.cartRepo.ListByUserID(ctx, userID)
	if err != nil {
		s.log.Errorf("Error listing carts for user %s: %v", userID, err)
		return nil, fmt.Errorf("could not list carts: %w", err)
	}
	return carts, nil
}
