package entity

import (
	"context"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
)

// Catalog is the base type for reference data.
// Examples: Products, Warehouses.
type Catalog struct {
	BaseCatalog

	// CompanyID scopes the record to its owning company
	CompanyID id.ID `db:"company_id" json:"companyId"`

	// Code is a human-readable identifier (unique within company)
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// IsActive controls whether the record may participate in new postings
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewCatalog creates a new Catalog with generated ID, active by default.
func NewCatalog(companyID id.ID, code, name string) Catalog {
	return Catalog{
		BaseCatalog: NewBaseCatalog(),
		CompanyID:   companyID,
		Code:        code,
		Name:        name,
		IsActive:    true,
	}
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	if id.IsNil(c.CompanyID) {
		return apperror.NewValidation("company is required").
			WithDetail("field", "companyId")
	}

	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	// Code can be auto-generated, so it's optional at creation
	// but required at save time

	return nil
}

// Deactivate marks the record unusable for new postings.
// Existing documents that reference it stay valid.
func (c *Catalog) Deactivate() {
	c.IsActive = false
	c.Touch()
}

// Activate re-enables the record for new postings.
func (c *Catalog) Activate() {
	c.IsActive = true
	c.Touch()
}
