package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pagewise/bookstore/cart-service/internal/domain/entity"
	"github.com/pagewise/bookstore/cart-service/internal/platform/logger"
	"github.com/pagewise/bookstore/cart-service/internal/repository"
)

// StockValidator cross-checks physical line items against current catalog
// inventory. The check is advisory: nothing is reserved, and the numbers can
// be stale the instant they are read. Checkout must re-validate inside the
// transaction that decrements stock.
type StockValidator struct {
	catalog repository.ProductCatalog
	log     logger.Logger
}

func NewStockValidator(catalog repository.ProductCatalog, log logger.Logger) *StockValidator {
	return &StockValidator{catalog: catalog, log: log}
}

// Validate returns the full ordered list of issues for the cart; an empty
// list means the cart is fulfillable at this instant. Per-item failures are
// collected, not fail-fast. A catalog timeout aborts the whole run with
// repository.ErrUnavailable so it is never mistaken for a stock-out.
func (v *StockValidator) Validate(ctx context.Context, cart *entity.Cart) ([]StockIssue, error) {
	issues := make([]StockIssue, 0)

	for _, item := range cart.Items {
		if !item.Format.StockLimited() {
			continue
		}

		product, err := v.catalog.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				issues = append(issues, StockIssue{
					ProductID: item.ProductID,
					Requested: item.Quantity,
					Missing:   true,
					Message:   fmt.Sprintf("product %s is no longer available", item.ProductID),
				})
				continue
			}
			v.log.Errorf("Stock validation aborted, catalog lookup failed for product %s: %v", item.ProductID, err)
			return nil, err
		}

		if product.Stock < item.Quantity {
			issues = append(issues, StockIssue{
				ProductID: item.ProductID,
				Title:     product.Title,
				Requested: item.Quantity,
				Available: product.Stock,
				Message: fmt.Sprintf("insufficient stock for %q: requested %d, available %d",
					product.Title, item.Quantity, product.Stock),
			})
		}
	}

	return issues, nil
}
