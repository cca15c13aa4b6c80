package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Image is an immutable value object describing one product picture.
// It is fully validated at construction.
type Image struct {
	id      uuid.UUID
	url     string
	altText string
	order   int
}

// NewImage validates and builds an Image. The URL must be http(s) and the
// alt text must not be blank.
func NewImage(url, altText string, order int) (Image, error) {
	return newImageWithID(uuid.New(), url, altText, order)
}

// ReconstituteImage rebuilds a persisted Image, re-running all validations.
func ReconstituteImage(id uuid.UUID, url, altText string, order int) (Image, error) {
	if id == uuid.Nil {
		return Image{}, NewValidationError("image id must not be nil")
	}
	return newImageWithID(id, url, altText, order)
}

func newImageWithID(id uuid.UUID, url, altText string, order int) (Image, error) {
	url = strings.TrimSpace(url)
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return Image{}, NewValidationError("image url must start with http:// or https://, got %q", url)
	}
	if strings.TrimSpace(altText) == "" {
		return Image{}, NewValidationError("image alt text must not be blank")
	}
	return Image{id: id, url: url, altText: altText, order: order}, nil
}

func (i Image) ID() uuid.UUID   { return i.id }
func (i Image) URL() string     { return i.url }
func (i Image) AltText() string { return i.altText }
func (i Image) Order() int      { return i.order }
