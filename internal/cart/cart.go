// internal/cart/cart.go
package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/giftcraft/storefront/internal/strapi"
)

// Pricing constants for the storefront: fixed-rate tax and a flat
// shipping fee waived above the free-shipping threshold.
var (
	TaxRate               = decimal.NewFromFloat(0.08)
	ShippingFee           = decimal.NewFromFloat(9.99)
	FreeShippingThreshold = decimal.NewFromInt(75)
)

// Customization is the per-line personalization chosen at add time
// (engraving text, color, size and the like).
type Customization map[string]string

// Item is one cart line: a product snapshot, a quantity and the computed
// line total.
type Item struct {
	Product       strapi.Product `json:"product"`
	Quantity      int            `json:"quantity"`
	Customization Customization  `json:"customization,omitempty"`
	TotalPrice    float64        `json:"totalPrice"`
}

// Totals are the derived aggregates, recomputed on every mutation.
type Totals struct {
	TotalItems int     `json:"totalItems"`
	Subtotal   float64 `json:"subtotal"`
	Tax        float64 `json:"tax"`
	Shipping   float64 `json:"shipping"`
	Total      float64 `json:"total"`
}

// Cart is the client-side cart store. It lives for the session only and
// is reset explicitly; there is no persistence layer.
type Cart struct {
	mu     sync.Mutex
	items  []Item
	totals Totals
}

func New() *Cart {
	return &Cart{}
}

// AddToCart adds a product line. Adding a product id already in the cart
// increments that line instead of creating a duplicate.
func (c *Cart) AddToCart(product strapi.Product, quantity int, customization Customization) {
	if quantity < 1 {
		quantity = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].Product.ID == product.ID {
			c.items[i].Quantity += quantity
			c.items[i].TotalPrice = lineTotal(product.Price, c.items[i].Quantity)
			c.recalc()
			return
		}
	}

	c.items = append(c.items, Item{
		Product:       product,
		Quantity:      quantity,
		Customization: customization,
		TotalPrice:    lineTotal(product.Price, quantity),
	})
	c.recalc()
}

// UpdateQuantity sets a line's quantity and recalculates its total and
// the aggregates. A quantity of zero or less removes the line.
func (c *Cart) UpdateQuantity(productID string, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity < 1 {
		c.removeLocked(productID)
		c.recalc()
		return
	}

	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items[i].Quantity = quantity
			c.items[i].TotalPrice = lineTotal(c.items[i].Product.Price, quantity)
			break
		}
	}
	c.recalc()
}

// RemoveFromCart drops a line entirely.
func (c *Cart) RemoveFromCart(productID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeLocked(productID)
	c.recalc()
}

// Reset empties the cart.
func (c *Cart) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	c.recalc()
}

// Items returns a copy of the cart lines.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Totals() Totals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totals
}

func (c *Cart) removeLocked(productID string) {
	for i := range c.items {
		if c.items[i].Product.ID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

func (c *Cart) recalc() {
	if len(c.items) == 0 {
		c.totals = Totals{}
		return
	}

	subtotal := decimal.Zero
	totalItems := 0
	for _, item := range c.items {
		subtotal = subtotal.Add(decimal.NewFromFloat(item.Product.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
		totalItems += item.Quantity
	}

	tax := subtotal.Mul(TaxRate).Round(2)

	shipping := ShippingFee
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	c.totals = Totals{
		TotalItems: totalItems,
		Subtotal:   subtotal.Round(2).InexactFloat64(),
		Tax:        tax.InexactFloat64(),
		Shipping:   shipping.InexactFloat64(),
		Total:      subtotal.Add(tax).Add(shipping).Round(2).InexactFloat64(),
	}
}

func lineTotal(price float64, quantity int) float64 {
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(int64(quantity))).
		Round(2).
		InexactFloat64()
}
