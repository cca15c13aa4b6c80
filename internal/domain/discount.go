package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DiscountKind enumerates the supported discount campaigns.
type DiscountKind string

const (
	DiscountPercentage DiscountKind = "PERCENTAGE"
	DiscountSeasonal   DiscountKind = "SEASONAL"
	DiscountPromotion  DiscountKind = "PROMOTION"
)

// maxDiscountPercent caps any discount at 30%.
var maxDiscountPercent = decimal.NewFromInt(30)

var oneHundred = decimal.NewFromInt(100)

// AppliedDiscount is an immutable value object describing the single
// discount a cart may carry. It is fully validated at construction; the
// percent must lie in (0, 30].
type AppliedDiscount struct {
	code    string
	kind    DiscountKind
	percent decimal.Decimal
}

// NewAppliedDiscount validates and builds a discount.
func NewAppliedDiscount(code string, kind DiscountKind, percent decimal.Decimal) (AppliedDiscount, error) {
	if strings.TrimSpace(code) == "" {
		return AppliedDiscount{}, NewValidationError("discount code must not be blank")
	}
	switch kind {
	case DiscountPercentage, DiscountSeasonal, DiscountPromotion:
	default:
		return AppliedDiscount{}, NewValidationError("unknown discount kind %q", kind)
	}
	if !percent.IsPositive() {
		return AppliedDiscount{}, NewBusinessRuleError("discount percent must be positive, got %s", percent)
	}
	if percent.GreaterThan(maxDiscountPercent) {
		return AppliedDiscount{}, NewBusinessRuleError("discount percent must not exceed %s, got %s", maxDiscountPercent, percent)
	}
	return AppliedDiscount{code: code, kind: kind, percent: percent}, nil
}

func (d AppliedDiscount) Code() string             { return d.code }
func (d AppliedDiscount) Kind() DiscountKind       { return d.kind }
func (d AppliedDiscount) Percent() decimal.Decimal { return d.percent }

// AmountFor returns the discount amount for the given subtotal:
// subtotal × percent / 100, or zero when the subtotal is not positive.
func (d AppliedDiscount) AmountFor(subtotal Money) Money {
	if !subtotal.IsPositive() {
		return ZeroMoney(subtotal.Currency())
	}
	return subtotal.Multiply(d.percent.Div(oneHundred))
}
