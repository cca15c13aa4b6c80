package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MinItemQuantity and MaxItemQuantity bound a single cart line.
	MinItemQuantity = 1
	MaxItemQuantity = 10
)

// ProductRef is the denormalized product snapshot a cart line carries, so
// the line survives later catalog edits.
type ProductRef struct {
	productID ProductID
	name      string
	sku       string
}

// NewProductRef validates and builds a product reference.
func NewProductRef(productID ProductID, name, sku string) (ProductRef, error) {
	if productID.IsZero() {
		return ProductRef{}, NewValidationError("product reference requires a product id")
	}
	if strings.TrimSpace(name) == "" {
		return ProductRef{}, NewValidationError("product reference requires a name")
	}
	if strings.TrimSpace(sku) == "" {
		return ProductRef{}, NewValidationError("product reference requires a sku")
	}
	return ProductRef{productID: productID, name: name, sku: sku}, nil
}

func (r ProductRef) ProductID() ProductID { return r.productID }
func (r ProductRef) Name() string         { return r.name }
func (r ProductRef) SKU() string          { return r.sku }

// CartItem is one line of a cart: a product reference, a quantity in
// [1, 10] and the unit price captured when the line was added.
type CartItem struct {
	id        ItemID
	product   ProductRef
	quantity  int
	unitPrice Money
}

func newCartItem(product ProductRef, quantity int, unitPrice Money) (CartItem, error) {
	if err := validateQuantity(quantity); err != nil {
		return CartItem{}, err
	}
	if !unitPrice.IsPositive() {
		return CartItem{}, NewBusinessRuleError("cart item unit price must be positive, got %s", unitPrice)
	}
	return CartItem{
		id:        NewItemID(),
		product:   product,
		quantity:  quantity,
		unitPrice: unitPrice,
	}, nil
}

// ReconstituteCartItem rebuilds a persisted cart line with full validation.
func ReconstituteCartItem(id ItemID, product ProductRef, quantity int, unitPrice Money) (CartItem, error) {
	if id.IsZero() {
		return CartItem{}, NewValidationError("cart item id is required")
	}
	item, err := newCartItem(product, quantity, unitPrice)
	if err != nil {
		return CartItem{}, err
	}
	item.id = id
	return item, nil
}

func validateQuantity(quantity int) error {
	if quantity < MinItemQuantity || quantity > MaxItemQuantity {
		return NewBusinessRuleError("item quantity must be between %d and %d, got %d", MinItemQuantity, MaxItemQuantity, quantity)
	}
	return nil
}

func (ci CartItem) ID() ItemID          { return ci.id }
func (ci CartItem) Product() ProductRef { return ci.product }
func (ci CartItem) Quantity() int       { return ci.quantity }
func (ci CartItem) UnitPrice() Money    { return ci.unitPrice }

// Subtotal is unit price × quantity.
func (ci CartItem) Subtotal() Money {
	return ci.unitPrice.Multiply(decimal.NewFromInt(int64(ci.quantity)))
}
