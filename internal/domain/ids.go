package domain

import "github.com/google/uuid"

// Typed identifiers wrap a UUID so cross-aggregate references cannot be
// mixed up. Construction from a string validates UUID format; equality is
// value equality of the wrapped UUID.

func parseUUID(s, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, NewValidationError("invalid %s identifier %q", what, s)
	}
	return id, nil
}

// ProductID identifies a catalog product.
type ProductID struct{ id uuid.UUID }

// NewProductID generates a fresh random ProductID.
func NewProductID() ProductID { return ProductID{id: uuid.New()} }

// ParseProductID validates and wraps a UUID string.
func ParseProductID(s string) (ProductID, error) {
	id, err := parseUUID(s, "product")
	if err != nil {
		return ProductID{}, err
	}
	return ProductID{id: id}, nil
}

func (p ProductID) String() string  { return p.id.String() }
func (p ProductID) UUID() uuid.UUID { return p.id }
func (p ProductID) IsZero() bool    { return p.id == uuid.Nil }

// CategoryID identifies a catalog category.
type CategoryID struct{ id uuid.UUID }

func NewCategoryID() CategoryID { return CategoryID{id: uuid.New()} }

func ParseCategoryID(s string) (CategoryID, error) {
	id, err := parseUUID(s, "category")
	if err != nil {
		return CategoryID{}, err
	}
	return CategoryID{id: id}, nil
}

func (c CategoryID) String() string  { return c.id.String() }
func (c CategoryID) UUID() uuid.UUID { return c.id }
func (c CategoryID) IsZero() bool    { return c.id == uuid.Nil }

// CartID identifies a shopping cart.
type CartID struct{ id uuid.UUID }

func NewCartID() CartID { return CartID{id: uuid.New()} }

func ParseCartID(s string) (CartID, error) {
	id, err := parseUUID(s, "cart")
	if err != nil {
		return CartID{}, err
	}
	return CartID{id: id}, nil
}

func (c CartID) String() string  { return c.id.String() }
func (c CartID) UUID() uuid.UUID { return c.id }
func (c CartID) IsZero() bool    { return c.id == uuid.Nil }

// OrderID identifies an order.
type OrderID struct{ id uuid.UUID }

func NewOrderID() OrderID { return OrderID{id: uuid.New()} }

func ParseOrderID(s string) (OrderID, error) {
	id, err := parseUUID(s, "order")
	if err != nil {
		return OrderID{}, err
	}
	return OrderID{id: id}, nil
}

func (o OrderID) String() string  { return o.id.String() }
func (o OrderID) UUID() uuid.UUID { return o.id }
func (o OrderID) IsZero() bool    { return o.id == uuid.Nil }

// ClientID identifies the client who owns carts and orders.
type ClientID struct{ id uuid.UUID }

func NewClientID() ClientID { return ClientID{id: uuid.New()} }

func ParseClientID(s string) (ClientID, error) {
	id, err := parseUUID(s, "client")
	if err != nil {
		return ClientID{}, err
	}
	return ClientID{id: id}, nil
}

func (c ClientID) String() string  { return c.id.String() }
func (c ClientID) UUID() uuid.UUID { return c.id }
func (c ClientID) IsZero() bool    { return c.id == uuid.Nil }

// ItemID identifies a line item inside a cart or an order.
type ItemID struct{ id uuid.UUID }

func NewItemID() ItemID { return ItemID{id: uuid.New()} }

func ParseItemID(s string) (ItemID, error) {
	id, err := parseUUID(s, "item")
	if err != nil {
		return ItemID{}, err
	}
	return ItemID{id: id}, nil
}

func (i ItemID) String() string  { return i.id.String() }
func (i ItemID) UUID() uuid.UUID { return i.id }
func (i ItemID) IsZero() bool    { return i.id == uuid.Nil }
