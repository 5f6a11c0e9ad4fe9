package dto

import (
	"stockledger/internal/core/id"
	"stockledger/internal/domain/catalogs/warehouse"
)

// CreateWarehouseRequest creates a new warehouse.
// Code may be empty; the service assigns the next catalog code.
type CreateWarehouseRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	Type        string  `json:"type" binding:"required"`
	BranchID    *id.ID  `json:"branchId"`
	Address     *string `json:"address"`
	IsDefault   bool    `json:"isDefault"`
	Description *string `json:"description"`
}

// ToEntity maps the request to a domain warehouse.
func (r CreateWarehouseRequest) ToEntity(companyID id.ID) *warehouse.Warehouse {
	w := warehouse.NewWarehouse(companyID, r.Code, r.Name, warehouse.WarehouseType(r.Type))
	if r.BranchID != nil {
		w.BranchID = *r.BranchID
	}
	w.Address = r.Address
	w.IsDefault = r.IsDefault
	w.Description = r.Description
	return w
}

// UpdateWarehouseRequest updates an existing warehouse.
// Only non-nil fields are applied.
type UpdateWarehouseRequest struct {
	Name        *string `json:"name"`
	Type        *string `json:"type"`
	BranchID    *id.ID  `json:"branchId"`
	Address     *string `json:"address"`
	IsDefault   *bool   `json:"isDefault"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// ApplyTo merges the request onto an existing warehouse.
func (r UpdateWarehouseRequest) ApplyTo(w *warehouse.Warehouse) {
	if r.Name != nil {
		w.Name = *r.Name
	}
	if r.Type != nil {
		w.Type = warehouse.WarehouseType(*r.Type)
	}
	if r.BranchID != nil {
		w.BranchID = *r.BranchID
	}
	if r.Address != nil {
		w.Address = r.Address
	}
	if r.IsDefault != nil {
		w.IsDefault = *r.IsDefault
	}
	if r.Description != nil {
		w.Description = r.Description
	}
	if r.IsActive != nil {
		w.IsActive = *r.IsActive
	}
}
