package entity

import (
	"errors"
	"time"
)

var (
	ErrInvalidQuantity = errors.New("cart item quantity must be at least 1")
	ErrInvalidFormat   = errors.New("unknown item format")
)

type Format string

const (
	FormatPhysical  Format = "physical"
	FormatDigital   Format = "digital"
	FormatAudiobook Format = "audiobook"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatPhysical, FormatDigital, FormatAudiobook:
		return Format(s), nil
	default:
		return "", ErrInvalidFormat
	}
}

// StockLimited reports whether the format is fulfilled from physical inventory.
// Digital and audiobook copies are treated as unlimited.
func (f Format) StockLimited() bool {
	return f == FormatPhysical
}

type CartItem struct {
	ProductID string `bson:"product_id" json:"product_id"`
	Quantity  int    `bson:"quantity" json:"quantity"`
	Format    Format `bson:"format" json:"format"`
}

func NewCartItem(productID string, quantity int, format Format) (*CartItem, error) {
	if productID == "" {
		return nil, errors.New("product ID cannot be empty for cart item")
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	return &CartItem{ProductID: productID, Quantity: quantity, Format: format}, nil
}

// Cart stores product references and quantities only; prices are resolved
// through the catalog at read time and never cached on the cart.
type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"id"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Items     []CartItem `bson:"items" json:"items"`
	Active    bool       `bson:"active" json:"active"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	Version   int        `bson:"version" json:"-"`
}

func NewCart(userID string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		UserID:    userID,
		Items:     make([]CartItem, 0),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// GetItem matches on the (productID, format) pair: the same title in physical
// and digital form occupies two distinct lines.
func (c *Cart) GetItem(productID string, format Format) (*CartItem, int) {
	for i, item := range c.Items {
		if item.ProductID == productID && item.Format == format {
			return &c.Items[i], i
		}
	}
	return nil, -1
}

func (c *Cart) AddItem(productID string, quantity int, format Format) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	item, _ := c.GetItem(productID, format)
	if item != nil {
		item.Quantity += quantity
	} else {
		newItem, err := NewCartItem(productID, quantity, format)
		if err != nil {
			return err
		}
		c.Items = append(c.Items, *newItem)
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateItemQuantity sets the quantity directly. A quantity below 1 removes
// the item; zero-quantity lines are never stored.
func (c *Cart) UpdateItemQuantity(productID string, format Format, newQuantity int) error {
	item, index := c.GetItem(productID, format)
	if item == nil {
		return errors.New("item not found in cart")
	}

	if newQuantity < 1 {
		c.Items = append(c.Items[:index], c.Items[index+1:]...)
	} else {
		item.Quantity = newQuantity
	}
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// RemoveItem is a no-op when the item is absent.
func (c *Cart) RemoveItem(productID string, format Format) {
	_, index := c.GetItem(productID, format)
	if index == -1 {
		return
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
	c.UpdatedAt = time.Now().UTC()
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) Deactivate() {
	c.Active = false
	c.UpdatedAt = time.Now().UTC()
}
