package dto

import (
	"github.com/shopspring/decimal"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/catalogs/unit"
)

// CreateUnitRequest creates a new measurement unit.
// Code may be empty; the service assigns the next catalog code.
type CreateUnitRequest struct {
	Code             string           `json:"code"`
	Name             string           `json:"name" binding:"required"`
	Type             string           `json:"type" binding:"required"`
	Symbol           string           `json:"symbol" binding:"required"`
	BaseUnitID       *id.ID           `json:"baseUnitId"`
	ConversionFactor *decimal.Decimal `json:"conversionFactor"`
	IsBase           *bool            `json:"isBase"`
	Description      *string          `json:"description"`
}

// ToEntity maps the request to a domain unit.
func (r CreateUnitRequest) ToEntity(companyID id.ID) *unit.Unit {
	u := unit.NewUnit(companyID, r.Code, r.Name, r.Symbol, unit.UnitType(r.Type))
	u.BaseUnitID = r.BaseUnitID
	if r.ConversionFactor != nil {
		u.ConversionFactor = *r.ConversionFactor
	}
	if r.IsBase != nil {
		u.IsBase = *r.IsBase
	} else if r.BaseUnitID != nil {
		u.IsBase = false
	}
	u.Description = r.Description
	return u
}

// UpdateUnitRequest updates an existing unit.
// Only non-nil fields are applied.
type UpdateUnitRequest struct {
	Name             *string          `json:"name"`
	Type             *string          `json:"type"`
	Symbol           *string          `json:"symbol"`
	BaseUnitID       *id.ID           `json:"baseUnitId"`
	ConversionFactor *decimal.Decimal `json:"conversionFactor"`
	IsBase           *bool            `json:"isBase"`
	Description      *string          `json:"description"`
	IsActive         *bool            `json:"isActive"`
}

// ApplyTo merges the request onto an existing unit.
func (r UpdateUnitRequest) ApplyTo(u *unit.Unit) {
	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.Type != nil {
		u.Type = unit.UnitType(*r.Type)
	}
	if r.Symbol != nil {
		u.Symbol = *r.Symbol
	}
	if r.BaseUnitID != nil {
		u.BaseUnitID = r.BaseUnitID
	}
	if r.ConversionFactor != nil {
		u.ConversionFactor = *r.ConversionFactor
	}
	if r.IsBase != nil {
		u.IsBase = *r.IsBase
	}
	if r.Description != nil {
		u.Description = r.Description
	}
	if r.IsActive != nil {
		u.IsActive = *r.IsActive
	}
}
