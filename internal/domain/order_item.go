package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// OrderItem is one immutable line of an order, captured from the cart at
// order creation time.
type OrderItem struct {
	id          ItemID
	productID   ProductID
	productName string
	sku         string
	quantity    int
	unitPrice   Money
}

// NewOrderItem validates and builds an order line.
func NewOrderItem(productID ProductID, productName, sku string, quantity int, unitPrice Money) (OrderItem, error) {
	if productID.IsZero() {
		return OrderItem{}, NewValidationError("order item product id is required")
	}
	if strings.TrimSpace(productName) == "" {
		return OrderItem{}, NewValidationError("order item product name is required")
	}
	if strings.TrimSpace(sku) == "" {
		return OrderItem{}, NewValidationError("order item sku is required")
	}
	if quantity <= 0 {
		return OrderItem{}, NewBusinessRuleError("order item quantity must be positive, got %d", quantity)
	}
	if !unitPrice.IsPositive() {
		return OrderItem{}, NewBusinessRuleError("order item unit price must be positive, got %s", unitPrice)
	}
	return OrderItem{
		id:          NewItemID(),
		productID:   productID,
		productName: productName,
		sku:         sku,
		quantity:    quantity,
		unitPrice:   unitPrice,
	}, nil
}

// ReconstituteOrderItem rebuilds a persisted order line with full validation.
func ReconstituteOrderItem(id ItemID, productID ProductID, productName, sku string, quantity int, unitPrice Money) (OrderItem, error) {
	if id.IsZero() {
		return OrderItem{}, NewValidationError("order item id is required")
	}
	item, err := NewOrderItem(productID, productName, sku, quantity, unitPrice)
	if err != nil {
		return OrderItem{}, err
	}
	item.id = id
	return item, nil
}

func (oi OrderItem) ID() ItemID           { return oi.id }
func (oi OrderItem) ProductID() ProductID { return oi.productID }
func (oi OrderItem) ProductName() string  { return oi.productName }
func (oi OrderItem) SKU() string          { return oi.sku }
func (oi OrderItem) Quantity() int        { return oi.quantity }
func (oi OrderItem) UnitPrice() Money     { return oi.unitPrice }

// Subtotal is unit price × quantity.
func (oi OrderItem) Subtotal() Money {
	return oi.unitPrice.Multiply(decimal.NewFromInt(int64(oi.quantity)))
}
