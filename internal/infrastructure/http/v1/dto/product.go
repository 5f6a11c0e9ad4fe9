package dto

import (
	"github.com/shopspring/decimal"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/catalogs/product"
)

// CreateProductRequest creates a new product.
// Code may be empty; the service assigns the next catalog code.
type CreateProductRequest struct {
	Code        string           `json:"code"`
	Name        string           `json:"name" binding:"required"`
	Type        string           `json:"type" binding:"required"`
	SKU         *string          `json:"sku"`
	Barcode     *string          `json:"barcode"`
	UnitID      *id.ID           `json:"unitId"`
	Weight      *decimal.Decimal `json:"weight"`
	Description *string          `json:"description"`
}

// ToEntity maps the request to a domain product.
func (r CreateProductRequest) ToEntity(companyID id.ID) *product.Product {
	p := product.NewProduct(companyID, r.Code, r.Name, product.ProductType(r.Type))
	p.SKU = r.SKU
	p.Barcode = r.Barcode
	p.UnitID = r.UnitID
	if r.Weight != nil {
		p.Weight = *r.Weight
	}
	p.Description = r.Description
	return p
}

// UpdateProductRequest updates an existing product.
// Only non-nil fields are applied.
type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Type        *string          `json:"type"`
	SKU         *string          `json:"sku"`
	Barcode     *string          `json:"barcode"`
	UnitID      *id.ID           `json:"unitId"`
	Weight      *decimal.Decimal `json:"weight"`
	Description *string          `json:"description"`
	IsActive    *bool            `json:"isActive"`
}

// ApplyTo merges the request onto an existing product.
func (r UpdateProductRequest) ApplyTo(p *product.Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Type != nil {
		p.Type = product.ProductType(*r.Type)
	}
	if r.SKU != nil {
		p.SKU = r.SKU
	}
	if r.Barcode != nil {
		p.Barcode = r.Barcode
	}
	if r.UnitID != nil {
		p.UnitID = r.UnitID
	}
	if r.Weight != nil {
		p.Weight = *r.Weight
	}
	if r.Description != nil {
		p.Description = r.Description
	}
	if r.IsActive != nil {
		p.IsActive = *r.IsActive
	}
}
