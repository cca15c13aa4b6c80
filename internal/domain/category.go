package domain

import "time"

// Category is a hierarchical catalog classification. A category may point
// at a parent category but never at itself; deeper cycle detection is the
// responsibility of whoever resolves ancestry chains.
type Category struct {
	id          CategoryID
	name        string
	description string
	parentID    *CategoryID
	createdAt   time.Time
	updatedAt   time.Time
}

// NewCategory builds a new root-level category.
func NewCategory(name, description string) (*Category, error) {
	if err := validateCategoryInfo(name, description); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Category{
		id:          NewCategoryID(),
		name:        name,
		description: description,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstituteCategory rebuilds a persisted category with full validation.
func ReconstituteCategory(id CategoryID, name, description string, parentID *CategoryID, createdAt, updatedAt time.Time) (*Category, error) {
	if id.IsZero() {
		return nil, NewValidationError("category id is required")
	}
	if err := validateCategoryInfo(name, description); err != nil {
		return nil, err
	}
	if parentID != nil && *parentID == id {
		return nil, NewBusinessRuleError("category %s cannot be its own parent", id)
	}
	c := &Category{
		id:          id,
		name:        name,
		description: description,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
	if parentID != nil {
		pid := *parentID
		c.parentID = &pid
	}
	return c, nil
}

func validateCategoryInfo(name, description string) error {
	if len(name) < minNameLength || len(name) > maxNameLength {
		return NewValidationError("category name must be between %d and %d characters", minNameLength, maxNameLength)
	}
	if len(description) > maxDescriptionLength {
		return NewValidationError("category description must not exceed %d characters", maxDescriptionLength)
	}
	return nil
}

func (c *Category) ID() CategoryID      { return c.id }
func (c *Category) Name() string        { return c.name }
func (c *Category) Description() string { return c.description }
func (c *Category) CreatedAt() time.Time { return c.createdAt }
func (c *Category) UpdatedAt() time.Time { return c.updatedAt }

// ParentID returns a copy of the optional parent reference.
func (c *Category) ParentID() *CategoryID {
	if c.parentID == nil {
		return nil
	}
	pid := *c.parentID
	return &pid
}

// Update renames and redescribes the category, re-validating both fields.
func (c *Category) Update(name, description string) error {
	if err := validateCategoryInfo(name, description); err != nil {
		return err
	}
	c.name = name
	c.description = description
	c.updatedAt = time.Now().UTC()
	return nil
}

// AssignParent sets or clears the parent. Passing the category's own id is
// rejected; passing nil clears the parent unconditionally.
func (c *Category) AssignParent(parentID *CategoryID) error {
	if parentID == nil {
		c.parentID = nil
		c.updatedAt = time.Now().UTC()
		return nil
	}
	if *parentID == c.id {
		return NewBusinessRuleError("category %s cannot be its own parent", c.id)
	}
	pid := *parentID
	c.parentID = &pid
	c.updatedAt = time.Now().UTC()
	return nil
}
