// Package warehouse provides the Warehouse catalog.
// Warehouses represent physical locations for storing goods.
package warehouse

import (
	"context"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
)

// WarehouseType defines the type of warehouse.
type WarehouseType string

const (
	TypeMain         WarehouseType = "main"
	TypeDistribution WarehouseType = "distribution"
	TypeRetail       WarehouseType = "retail"
	TypeTransit      WarehouseType = "transit"
)

// Warehouse represents a storage location for goods.
type Warehouse struct {
	entity.Catalog

	// Type defines the warehouse category
	Type WarehouseType `db:"type" json:"type"`

	// BranchID binds the warehouse to a branch (optional)
	BranchID id.ID `db:"branch_id" json:"branchId,omitempty"`

	// Address is the physical address
	Address *string `db:"address" json:"address,omitempty"`

	// IsDefault indicates if this is the default warehouse
	IsDefault bool `db:"is_default" json:"isDefault"`

	// Description
	Description *string `db:"description" json:"description,omitempty"`
}

// NewWarehouse creates a new Warehouse with required fields.
func NewWarehouse(companyID id.ID, code, name string, whType WarehouseType) *Warehouse {
	return &Warehouse{
		Catalog: entity.NewCatalog(companyID, code, name),
		Type:    whType,
	}
}

// Validate implements entity.Validatable interface.
func (w *Warehouse) Validate(ctx context.Context) error {
	// Base catalog validation
	if err := w.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidWarehouseType(w.Type) {
		return apperror.NewValidation("invalid warehouse type").
			WithDetail("field", "type").
			WithDetail("value", string(w.Type))
	}

	return nil
}

// InScope reports whether the warehouse belongs to the given company and,
// when branchID is set, to that branch.
func (w *Warehouse) InScope(companyID, branchID id.ID) bool {
	if w.CompanyID != companyID {
		return false
	}
	if !id.IsNil(branchID) && !id.IsNil(w.BranchID) && w.BranchID != branchID {
		return false
	}
	return true
}

// --- Validation Helpers ---

func isValidWarehouseType(t WarehouseType) bool {
	switch t {
	case TypeMain, TypeDistribution, TypeRetail, TypeTransit:
		return true
	}
	return false
}
