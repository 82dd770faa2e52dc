package service

import "errors"

// ErrUnresolvedReference is returned by Total in RejectUnresolved mode when
// the cart contains items whose product could not be resolved, so a checkout
// total cannot be computed for the full cart.
var ErrUnresolvedReference = errors.New("cart contains items with unresolved product references")

type PricingMode int

const (
	// SkipUnresolved excludes unresolved items from the total; the default
	// for display.
	SkipUnresolved PricingMode = iota
	// RejectUnresolved fails the computation instead; used at checkout where
	// a partial total would be wrong.
	RejectUnresolved
)

// Total derives the payable total from resolved cart items. The effective
// unit price already carries discount-price precedence (see
// entity.Product.EffectivePrice). Pure: no side effects on the items.
func Total(items []CartItemView, mode PricingMode) (float64, error) {
	var total float64
	for _, item := range items {
		if item.Unresolved {
			if mode == RejectUnresolved {
				return 0, ErrUnresolvedReference
			}
			continue
		}
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total, nil
}
