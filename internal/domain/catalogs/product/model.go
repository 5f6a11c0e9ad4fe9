// Package product provides the Product catalog.
// Products are the items whose stock the ledger tracks.
package product

import (
	"context"

	"github.com/shopspring/decimal"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
)

// ProductType defines the type of item.
type ProductType string

const (
	TypeGoods    ProductType = "goods"
	TypeMaterial ProductType = "material"
	TypeService  ProductType = "service"
)

// Product represents an item that can be bought, sold, or stored.
type Product struct {
	entity.Catalog

	// Type defines item category
	Type ProductType `db:"type" json:"type"`

	// SKU is the stock keeping unit (unique within company when set)
	SKU *string `db:"sku" json:"sku,omitempty"`

	// Barcode is the item barcode (EAN-13, etc.)
	Barcode *string `db:"barcode" json:"barcode,omitempty"`

	// UnitID references the default measurement unit from the unit catalog
	UnitID *id.ID `db:"unit_id" json:"unitId,omitempty"`

	// Weight in kg (for logistics)
	Weight decimal.Decimal `db:"weight" json:"weight"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(companyID id.ID, code, name string, itemType ProductType) *Product {
	return &Product{
		Catalog: entity.NewCatalog(companyID, code, name),
		Type:    itemType,
		Weight:  decimal.Zero,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	// Base catalog validation
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidProductType(p.Type) {
		return apperror.NewValidation("invalid product type").
			WithDetail("field", "type").
			WithDetail("value", string(p.Type))
	}

	if p.Weight.IsNegative() {
		return apperror.NewValidation("weight cannot be negative").
			WithDetail("field", "weight")
	}

	return nil
}

// IsInventoriable returns true if the item keeps stock balances.
// Services never touch the ledger.
func (p *Product) IsInventoriable() bool {
	return p.Type != TypeService
}

// --- Validation Helpers ---

func isValidProductType(t ProductType) bool {
	switch t {
	case TypeGoods, TypeMaterial, TypeService:
		return true
	}
	return false
}
