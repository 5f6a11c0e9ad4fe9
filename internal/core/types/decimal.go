// Package types provides common type aliases and numeric utilities.
//
// All quantities and monetary values in the platform use decimal arithmetic.
// Averaging a unit cost over thousands of small postings drifts immediately
// under float64, so float is banned from the ledger entirely.
package types

import (
	"github.com/shopspring/decimal"
)

// Quantity is a stock quantity with full decimal precision.
// Maps to Postgres NUMERIC(19,4).
type Quantity = decimal.Decimal

// Money represents a monetary value with full precision.
type Money = decimal.Decimal

// Zero returns the zero decimal value.
func Zero() decimal.Decimal {
	return decimal.Zero
}

// NewFromString parses a decimal from its string form.
// This is the preferred constructor for exact values.
func NewFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// MustDecimal parses a decimal from a string, panics on error.
// Use only for constants and tests.
func MustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewFromInt creates a decimal from an integer.
func NewFromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// IsZero reports whether d equals zero.
func IsZero(d decimal.Decimal) bool {
	return d.IsZero()
}

// IsNegative reports whether d is below zero.
func IsNegative(d decimal.Decimal) bool {
	return d.Sign() < 0
}

// IsPositive reports whether d is above zero.
func IsPositive(d decimal.Decimal) bool {
	return d.Sign() > 0
}

// WeightedAverage blends an existing (qty, cost) pair with an incoming one:
//
//	(currentQty*currentCost + incomingQty*incomingCost) / (currentQty + incomingQty)
//
// Callers must guarantee currentQty + incomingQty > 0.
func WeightedAverage(currentQty, currentCost, incomingQty, incomingCost decimal.Decimal) decimal.Decimal {
	total := currentQty.Add(incomingQty)
	value := currentQty.Mul(currentCost).Add(incomingQty.Mul(incomingCost))
	return value.Div(total)
}
