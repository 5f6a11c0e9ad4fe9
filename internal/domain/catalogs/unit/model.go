// Package unit provides the Unit catalog: measurement units referenced by
// products and document lines.
package unit

import (
	"context"

	"github.com/shopspring/decimal"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
)

// UnitType defines the unit category.
type UnitType string

const (
	TypePiece  UnitType = "piece"
	TypeWeight UnitType = "weight"
	TypeLength UnitType = "length"
	TypeVolume UnitType = "volume"
	TypePack   UnitType = "pack"
)

// Unit represents a measurement unit.
type Unit struct {
	entity.Catalog

	// Type defines the unit category
	Type UnitType `db:"type" json:"type"`

	// Symbol is the short symbol ("kg", "m", "pcs"), unique within company
	Symbol string `db:"symbol" json:"symbol"`

	// BaseUnitID references the base unit for conversions
	BaseUnitID *id.ID `db:"base_unit_id" json:"baseUnitId,omitempty"`

	// ConversionFactor is the multiplier to the base unit
	// e.g. for "gram" with base "kilogram": factor = 0.001
	ConversionFactor decimal.Decimal `db:"conversion_factor" json:"conversionFactor"`

	// IsBase marks units that are not derived from another
	IsBase bool `db:"is_base" json:"isBase"`

	Description *string `db:"description" json:"description,omitempty"`
}

// NewUnit creates a new Unit with required fields.
func NewUnit(companyID id.ID, code, name, symbol string, unitType UnitType) *Unit {
	return &Unit{
		Catalog:          entity.NewCatalog(companyID, code, name),
		Type:             unitType,
		Symbol:           symbol,
		ConversionFactor: decimal.NewFromInt(1),
		IsBase:           true,
	}
}

// Validate implements entity.Validatable interface.
func (u *Unit) Validate(ctx context.Context) error {
	if err := u.Catalog.Validate(ctx); err != nil {
		return err
	}

	if u.Symbol == "" {
		return apperror.NewValidation("symbol is required").
			WithDetail("field", "symbol")
	}

	if !isValidUnitType(u.Type) {
		return apperror.NewValidation("invalid unit type").
			WithDetail("field", "type").
			WithDetail("value", string(u.Type))
	}

	if !u.ConversionFactor.IsPositive() {
		return apperror.NewValidation("conversion factor must be positive").
			WithDetail("field", "conversionFactor")
	}

	if u.BaseUnitID != nil && u.IsBase {
		return apperror.NewValidation("unit with a base unit reference cannot be marked as base").
			WithDetail("field", "isBase")
	}

	return nil
}

// ConvertTo converts a quantity from this unit to the target unit.
// Both units must share a type.
func (u *Unit) ConvertTo(qty decimal.Decimal, target *Unit) (decimal.Decimal, error) {
	if u.Type != target.Type {
		return decimal.Zero, apperror.NewValidation("cannot convert between different unit types").
			WithDetail("source", string(u.Type)).
			WithDetail("target", string(target.Type))
	}

	// To the base unit first, then to the target
	result := qty.Mul(u.ConversionFactor).Div(target.ConversionFactor)
	return result.Round(3), nil
}

// --- Validation Helpers ---

func isValidUnitType(t UnitType) bool {
	switch t {
	case TypePiece, TypeWeight, TypeLength, TypeVolume, TypePack:
		return true
	}
	return false
}
