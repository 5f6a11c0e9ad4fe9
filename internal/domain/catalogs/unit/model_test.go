package unit

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/id"
)

func TestUnit_Validate(t *testing.T) {
	companyID := id.New()

	t.Run("valid base unit", func(t *testing.T) {
		u := NewUnit(companyID, "UN-001", "Kilogram", "kg", TypeWeight)
		assert.NoError(t, u.Validate(context.Background()))
	})

	t.Run("missing symbol", func(t *testing.T) {
		u := NewUnit(companyID, "UN-001", "Kilogram", "", TypeWeight)
		assert.Error(t, u.Validate(context.Background()))
	})

	t.Run("unknown type", func(t *testing.T) {
		u := NewUnit(companyID, "UN-001", "Kilogram", "kg", UnitType("bogus"))
		assert.Error(t, u.Validate(context.Background()))
	})

	t.Run("non-positive conversion factor", func(t *testing.T) {
		u := NewUnit(companyID, "UN-001", "Gram", "g", TypeWeight)
		u.ConversionFactor = decimal.Zero
		assert.Error(t, u.Validate(context.Background()))
	})

	t.Run("derived unit cannot be base", func(t *testing.T) {
		base := id.New()
		u := NewUnit(companyID, "UN-002", "Gram", "g", TypeWeight)
		u.BaseUnitID = &base
		assert.Error(t, u.Validate(context.Background()))

		u.IsBase = false
		assert.NoError(t, u.Validate(context.Background()))
	})
}

func TestUnit_ConvertTo(t *testing.T) {
	companyID := id.New()

	kg := NewUnit(companyID, "UN-001", "Kilogram", "kg", TypeWeight)

	g := NewUnit(companyID, "UN-002", "Gram", "g", TypeWeight)
	g.BaseUnitID = &kg.ID
	g.IsBase = false
	g.ConversionFactor = decimal.RequireFromString("0.001")

	t.Run("derived to base", func(t *testing.T) {
		got, err := g.ConvertTo(decimal.NewFromInt(2500), kg)
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.RequireFromString("2.5")), "got %s", got)
	})

	t.Run("base to derived", func(t *testing.T) {
		got, err := kg.ConvertTo(decimal.RequireFromString("0.75"), g)
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.NewFromInt(750)), "got %s", got)
	})

	t.Run("mismatched types", func(t *testing.T) {
		m := NewUnit(companyID, "UN-003", "Meter", "m", TypeLength)
		_, err := kg.ConvertTo(decimal.NewFromInt(1), m)
		assert.Error(t, err)
	})
}
