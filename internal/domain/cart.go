package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartState enumerates the cart lifecycle.
type CartState string

const (
	CartActive      CartState = "ACTIVE"
	CartCheckingOut CartState = "CHECKING_OUT"
	CartCompleted   CartState = "COMPLETED"
	CartAbandoned   CartState = "ABANDONED"
)

// cartTransitions is the full transition table; states missing a target
// list are terminal.
var cartTransitions = map[CartState][]CartState{
	CartActive:      {CartCheckingOut},
	CartCheckingOut: {CartCompleted, CartAbandoned},
	CartCompleted:   {},
	CartAbandoned:   {},
}

// MaxDistinctCartItems caps the number of distinct product lines per cart.
const MaxDistinctCartItems = 20

// minCheckoutSubtotal is the minimum subtotal required to start checkout,
// in the cart's currency.
var minCheckoutSubtotal = decimal.NewFromInt(50)

// Cart is the shopping cart aggregate root. Items can only be edited while
// the cart is ACTIVE; checkout freezes it until it is completed or
// abandoned, both terminal. All lines share one currency.
type Cart struct {
	id        CartID
	clientID  ClientID
	items     []CartItem
	discount  *AppliedDiscount
	state     CartState
	createdAt time.Time
	updatedAt time.Time
}

// NewCart opens an empty active cart for the given client.
func NewCart(clientID ClientID) (*Cart, error) {
	if clientID.IsZero() {
		return nil, NewValidationError("cart client id is required")
	}
	now := time.Now().UTC()
	return &Cart{
		id:        NewCartID(),
		clientID:  clientID,
		state:     CartActive,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstituteCart rebuilds a persisted cart with full validation.
func ReconstituteCart(
	id CartID,
	clientID ClientID,
	items []CartItem,
	discount *AppliedDiscount,
	state CartState,
	createdAt, updatedAt time.Time,
) (*Cart, error) {
	if id.IsZero() {
		return nil, NewValidationError("cart id is required")
	}
	if clientID.IsZero() {
		return nil, NewValidationError("cart client id is required")
	}
	if _, ok := cartTransitions[state]; !ok {
		return nil, NewValidationError("unknown cart state %q", state)
	}
	if len(items) > MaxDistinctCartItems {
		return nil, NewBusinessRuleError("cart cannot hold more than %d distinct products", MaxDistinctCartItems)
	}
	c := &Cart{
		id:        id,
		clientID:  clientID,
		items:     append([]CartItem(nil), items...),
		state:     state,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
	for _, item := range c.items {
		if item.UnitPrice().Currency() != c.currency() {
			return nil, NewBusinessRuleError("cart lines must share one currency")
		}
	}
	if discount != nil {
		d := *discount
		c.discount = &d
	}
	return c, nil
}

func (c *Cart) ID() CartID           { return c.id }
func (c *Cart) ClientID() ClientID   { return c.clientID }
func (c *Cart) State() CartState     { return c.state }
func (c *Cart) CreatedAt() time.Time { return c.createdAt }
func (c *Cart) UpdatedAt() time.Time { return c.updatedAt }

// Items returns a read-only snapshot of the cart lines.
func (c *Cart) Items() []CartItem {
	return append([]CartItem(nil), c.items...)
}

// Discount returns a copy of the applied discount, or nil.
func (c *Cart) Discount() *AppliedDiscount {
	if c.discount == nil {
		return nil
	}
	d := *c.discount
	return &d
}

// currency returns the cart-wide currency: the first line's currency, or
// the shop default while the cart is empty.
func (c *Cart) currency() string {
	if len(c.items) == 0 {
		return DefaultCurrency
	}
	return c.items[0].UnitPrice().Currency()
}

func (c *Cart) requireActive(op string) error {
	if c.state != CartActive {
		return NewIllegalStateError("cannot %s: cart %s is %s", op, c.id, c.state)
	}
	return nil
}

// AddItem adds a product line or, when the product already has a line,
// increments its quantity. The merged quantity must stay within the line
// cap and a new line must not push the cart over the distinct-product cap.
func (c *Cart) AddItem(product ProductRef, quantity int, unitPrice Money) error {
	if err := c.requireActive("add item"); err != nil {
		return err
	}
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	if len(c.items) > 0 && unitPrice.Currency() != c.currency() {
		return NewBusinessRuleError("cart lines must share one currency: cart is %s, item is %s", c.currency(), unitPrice.Currency())
	}
	for i, item := range c.items {
		if item.Product().ProductID() == product.ProductID() {
			merged := item.quantity + quantity
			if err := validateQuantity(merged); err != nil {
				return err
			}
			c.items[i].quantity = merged
			c.touch()
			return nil
		}
	}
	if len(c.items) >= MaxDistinctCartItems {
		return NewBusinessRuleError("cart %s already holds the maximum of %d distinct products", c.id, MaxDistinctCartItems)
	}
	item, err := newCartItem(product, quantity, unitPrice)
	if err != nil {
		return err
	}
	c.items = append(c.items, item)
	c.touch()
	return nil
}

// ModifyQuantity sets the quantity of an existing line. Quantities outside
// [1, 10] are rejected; zero never removes the line, that is what
// RemoveItem is for.
func (c *Cart) ModifyQuantity(productID ProductID, quantity int) error {
	if err := c.requireActive("modify quantity"); err != nil {
		return err
	}
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	for i, item := range c.items {
		if item.Product().ProductID() == productID {
			c.items[i].quantity = quantity
			c.touch()
			return nil
		}
	}
	return NewNotFoundError("product %s is not in cart %s", productID, c.id)
}

// RemoveItem drops the line for the given product.
func (c *Cart) RemoveItem(productID ProductID) error {
	if err := c.requireActive("remove item"); err != nil {
		return err
	}
	for i, item := range c.items {
		if item.Product().ProductID() == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.touch()
			return nil
		}
	}
	return NewNotFoundError("product %s is not in cart %s", productID, c.id)
}

// Clear removes every line.
func (c *Cart) Clear() error {
	if err := c.requireActive("clear"); err != nil {
		return err
	}
	c.items = nil
	c.touch()
	return nil
}

// ApplyDiscount attaches the single allowed discount.
func (c *Cart) ApplyDiscount(discount AppliedDiscount) error {
	if err := c.requireActive("apply discount"); err != nil {
		return err
	}
	if c.discount != nil {
		return NewBusinessRuleError("cart %s already has discount %q applied", c.id, c.discount.Code())
	}
	c.discount = &discount
	c.touch()
	return nil
}

// Subtotal sums the line subtotals.
func (c *Cart) Subtotal() Money {
	subtotal := ZeroMoney(c.currency())
	for _, item := range c.items {
		// Lines share one currency by construction, Add cannot fail.
		subtotal, _ = subtotal.Add(item.Subtotal())
	}
	return subtotal
}

// Total applies the discount, if any, to the subtotal.
func (c *Cart) Total() Money {
	subtotal := c.Subtotal()
	if c.discount == nil {
		return subtotal
	}
	total, _ := subtotal.Subtract(c.discount.AmountFor(subtotal))
	return total
}

// Checkout freezes the cart pending order creation. It requires an active
// cart with at least one line and a subtotal at or above the minimum.
func (c *Cart) Checkout() error {
	if err := c.requireActive("checkout"); err != nil {
		return err
	}
	if len(c.items) == 0 {
		return NewBusinessRuleError("cart %s cannot be checked out empty", c.id)
	}
	subtotal := c.Subtotal()
	minimum := Money{amount: minCheckoutSubtotal, currency: subtotal.Currency()}
	if cmp, _ := subtotal.Cmp(minimum); cmp < 0 {
		return NewBusinessRuleError("cart subtotal %s is below the checkout minimum of %s", subtotal, minimum)
	}
	return c.transition(CartCheckingOut)
}

// Complete marks the checked-out cart as converted into an order.
func (c *Cart) Complete() error {
	return c.transition(CartCompleted)
}

// Abandon marks the checked-out cart as given up.
func (c *Cart) Abandon() error {
	return c.transition(CartAbandoned)
}

func (c *Cart) transition(to CartState) error {
	for _, allowed := range cartTransitions[c.state] {
		if allowed == to {
			c.state = to
			c.touch()
			return nil
		}
	}
	return NewIllegalStateError("cart %s cannot go from %s to %s", c.id, c.state, to)
}

func (c *Cart) touch() {
	c.updatedAt = time.Now().UTC()
}
