package entity

import "time"

// Product is the catalog record as seen by the cart engine. The catalog is an
// external read-only source of truth; price and stock may change at any time
// after an item referencing the product was added to a cart.
type Product struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	Title         string    `bson:"title" json:"title"`
	Price         float64   `bson:"price" json:"price"`
	DiscountPrice *float64  `bson:"discount_price,omitempty" json:"discount_price,omitempty"`
	Stock         int       `bson:"stock" json:"stock"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}

// EffectivePrice applies discount-price precedence: a non-nil discount price
// wins over the base price.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}
