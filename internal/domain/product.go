package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	minNameLength        = 3
	maxNameLength        = 100
	maxDescriptionLength = 500

	// MaxProductImages caps the image gallery per product.
	MaxProductImages = 5
)

// maxPriceIncreaseFactor caps a single price change at +50%.
var maxPriceIncreaseFactor = decimal.NewFromFloat(1.5)

// Product is the catalog aggregate root. It is always created unavailable
// and can only be published once it has at least one image and a positive
// price. Every mutation re-validates the touched invariants; on failure the
// aggregate is left unchanged.
type Product struct {
	id          ProductID
	name        string
	description string
	price       Money
	categoryID  CategoryID
	images      []Image
	available   bool
	createdAt   time.Time
	updatedAt   time.Time
}

// NewProduct builds a new catalog product. The product starts unavailable
// regardless of how it will be published later.
func NewProduct(name, description string, price Money, categoryID CategoryID) (*Product, error) {
	if err := validateProductInfo(name, description); err != nil {
		return nil, err
	}
	if !price.IsPositive() {
		return nil, NewBusinessRuleError("product price must be positive, got %s", price)
	}
	if categoryID.IsZero() {
		return nil, NewValidationError("product category id is required")
	}
	now := time.Now().UTC()
	return &Product{
		id:          NewProductID(),
		name:        name,
		description: description,
		price:       price,
		categoryID:  categoryID,
		available:   false,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstituteProduct rebuilds a persisted product, re-running every
// construction invariant so storage cannot hand out an invalid aggregate.
func ReconstituteProduct(
	id ProductID,
	name, description string,
	price Money,
	categoryID CategoryID,
	images []Image,
	available bool,
	createdAt, updatedAt time.Time,
) (*Product, error) {
	if id.IsZero() {
		return nil, NewValidationError("product id is required")
	}
	if err := validateProductInfo(name, description); err != nil {
		return nil, err
	}
	if !price.IsPositive() {
		return nil, NewBusinessRuleError("product price must be positive, got %s", price)
	}
	if categoryID.IsZero() {
		return nil, NewValidationError("product category id is required")
	}
	if len(images) > MaxProductImages {
		return nil, NewBusinessRuleError("product cannot have more than %d images", MaxProductImages)
	}
	if available && len(images) == 0 {
		return nil, NewBusinessRuleError("an available product must have at least one image")
	}
	return &Product{
		id:          id,
		name:        name,
		description: description,
		price:       price,
		categoryID:  categoryID,
		images:      append([]Image(nil), images...),
		available:   available,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func validateProductInfo(name, description string) error {
	if len(name) < minNameLength || len(name) > maxNameLength {
		return NewValidationError("product name must be between %d and %d characters", minNameLength, maxNameLength)
	}
	if len(description) > maxDescriptionLength {
		return NewValidationError("product description must not exceed %d characters", maxDescriptionLength)
	}
	return nil
}

func (p *Product) ID() ProductID          { return p.id }
func (p *Product) Name() string           { return p.name }
func (p *Product) Description() string    { return p.description }
func (p *Product) Price() Money           { return p.price }
func (p *Product) CategoryID() CategoryID { return p.categoryID }
func (p *Product) Available() bool        { return p.available }
func (p *Product) CreatedAt() time.Time   { return p.createdAt }
func (p *Product) UpdatedAt() time.Time   { return p.updatedAt }

// Images returns a copy of the image gallery; mutation goes through
// AddImage and RemoveImage only.
func (p *Product) Images() []Image {
	return append([]Image(nil), p.images...)
}

// UpdateInfo renames and redescribes the product, re-validating the length
// constraints on every call.
func (p *Product) UpdateInfo(name, description string) error {
	if err := validateProductInfo(name, description); err != nil {
		return err
	}
	p.name = name
	p.description = description
	p.touch()
	return nil
}

// ChangePrice sets a new price. The new price must be positive, share the
// current currency and not exceed the prior price by more than 50%.
func (p *Product) ChangePrice(newPrice Money) error {
	if !newPrice.IsPositive() {
		return NewBusinessRuleError("product price must be positive, got %s", newPrice)
	}
	ceiling := p.price.Multiply(maxPriceIncreaseFactor)
	cmp, err := newPrice.Cmp(ceiling)
	if err != nil {
		return err
	}
	if cmp > 0 {
		return NewBusinessRuleError("price change from %s to %s exceeds the 50%% increase cap", p.price, newPrice)
	}
	p.price = newPrice
	p.touch()
	return nil
}

// Activate publishes the product. It requires at least one image and a
// positive price.
func (p *Product) Activate() error {
	if p.available {
		return NewIllegalStateError("product %s is already active", p.id)
	}
	if len(p.images) == 0 {
		return NewBusinessRuleError("product %s cannot be activated without images", p.id)
	}
	if !p.price.IsPositive() {
		return NewBusinessRuleError("product %s cannot be activated with a non-positive price", p.id)
	}
	p.available = true
	p.touch()
	return nil
}

// Deactivate unpublishes the product.
func (p *Product) Deactivate() error {
	if !p.available {
		return NewIllegalStateError("product %s is already inactive", p.id)
	}
	p.available = false
	p.touch()
	return nil
}

// AddImage appends an image to the gallery, capped at MaxProductImages.
func (p *Product) AddImage(img Image) error {
	if len(p.images) >= MaxProductImages {
		return NewBusinessRuleError("product %s already has the maximum of %d images", p.id, MaxProductImages)
	}
	p.images = append(p.images, img)
	p.touch()
	return nil
}

// RemoveImage drops an image by id. The last remaining image cannot be
// removed.
func (p *Product) RemoveImage(imageID uuid.UUID) error {
	idx := -1
	for i, img := range p.images {
		if img.ID() == imageID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return NewNotFoundError("image %s not found on product %s", imageID, p.id)
	}
	if len(p.images) == 1 {
		return NewBusinessRuleError("product %s must keep at least one image", p.id)
	}
	p.images = append(p.images[:idx], p.images[idx+1:]...)
	p.touch()
	return nil
}

func (p *Product) touch() {
	p.updatedAt = time.Now().UTC()
}
