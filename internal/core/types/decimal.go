// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Quantity is a product quantity with full decimal precision.
// Uses decimal.Decimal because weighted-average cost derivation divides
// running totals and must not accumulate floating-point error.
type Quantity = decimal.Decimal

// Weight is a physical weight (kilograms) with full decimal precision.
type Weight = decimal.Decimal

// Money represents a monetary value with full precision.
type Money = decimal.Decimal

// Zero returns the zero decimal value.
func Zero() decimal.Decimal {
	return decimal.Zero
}

// NewFromFloat creates a decimal from a float.
// WARNING: Use NewFromString for precise values.
func NewFromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// NewFromString creates a decimal from a string.
// This is the preferred method for monetary values.
func NewFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustDecimal creates a decimal from a string, panics on error.
// Use only for constants and tests.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// SafeDiv divides a by b, returning zero when b is zero.
// Average cost of an empty balance is zero, not an error.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}
