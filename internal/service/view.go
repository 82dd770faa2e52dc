package service

import (
	"time"

	"github.com/pagewise/bookstore/cart-service/internal/domain/entity"
)

// CartItemView is a cart line with its product reference resolved against the
// catalog. Unresolved marks items whose product no longer exists; they are
// kept in the view so the caller can surface a "no longer available" state
// instead of silently dropping the line.
type CartItemView struct {
	ProductID     string        `json:"product_id"`
	Title         string        `json:"title,omitempty"`
	Format        entity.Format `json:"format"`
	Quantity      int           `json:"quantity"`
	Price         float64       `json:"price"`
	DiscountPrice *float64      `json:"discount_price,omitempty"`
	Stock         int           `json:"stock"`
	UnitPrice     float64       `json:"unit_price"`
	LineTotal     float64       `json:"line_total"`
	Unresolved    bool          `json:"unresolved,omitempty"`
}

type CartView struct {
	ID        string         `json:"id,omitempty"`
	UserID    string         `json:"user_id"`
	Active    bool           `json:"active"`
	Items     []CartItemView `json:"items"`
	Total     float64        `json:"total"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// StockIssue reports one fulfillment problem found by stock validation.
// Missing is set when the product is gone from the catalog entirely.
type StockIssue struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title,omitempty"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	Missing   bool   `json:"missing,omitempty"`
	Message   string `json:"message"`
}
