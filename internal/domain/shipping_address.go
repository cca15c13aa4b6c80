package domain

import (
	"regexp"
	"strings"
)

var (
	postalCodePattern = regexp.MustCompile(`^\d{5}$`)
	phonePattern      = regexp.MustCompile(`^\d{10}$`)
)

// ShippingAddress is an immutable, fully validated delivery address.
type ShippingAddress struct {
	recipientName string
	street        string
	city          string
	region        string
	postalCode    string
	country       string
	phone         string
	instructions  string
}

// NewShippingAddress validates and builds an address. The postal code must
// be exactly five digits and the phone exactly ten.
func NewShippingAddress(recipientName, street, city, region, postalCode, country, phone, instructions string) (ShippingAddress, error) {
	required := []struct {
		field, value string
	}{
		{"recipient name", recipientName},
		{"street", street},
		{"city", city},
		{"region", region},
		{"country", country},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return ShippingAddress{}, NewValidationError("shipping address %s is required", f.field)
		}
	}
	if !postalCodePattern.MatchString(postalCode) {
		return ShippingAddress{}, NewValidationError("shipping address postal code must be exactly 5 digits, got %q", postalCode)
	}
	if !phonePattern.MatchString(phone) {
		return ShippingAddress{}, NewValidationError("shipping address phone must be exactly 10 digits, got %q", phone)
	}
	return ShippingAddress{
		recipientName: recipientName,
		street:        street,
		city:          city,
		region:        region,
		postalCode:    postalCode,
		country:       country,
		phone:         phone,
		instructions:  instructions,
	}, nil
}

func (a ShippingAddress) RecipientName() string { return a.recipientName }
func (a ShippingAddress) Street() string        { return a.street }
func (a ShippingAddress) City() string          { return a.city }
func (a ShippingAddress) Region() string        { return a.region }
func (a ShippingAddress) PostalCode() string    { return a.postalCode }
func (a ShippingAddress) Country() string       { return a.country }
func (a ShippingAddress) Phone() string         { return a.phone }
func (a ShippingAddress) Instructions() string  { return a.instructions }
