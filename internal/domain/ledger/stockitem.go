// Package ledger provides the stock ledger: per-warehouse balances with
// moving-average cost, and the immutable documents that change them.
package ledger

import (
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// StockItem is the balance record for one (product, warehouse) pair.
// QuantityOnHand and AverageUnitCost together are the whole costing state:
// there is no per-lot detail, every unit on hand carries the same cost.
type StockItem struct {
	ID          id.ID `db:"id" json:"id"`
	CompanyID   id.ID `db:"company_id" json:"companyId"`
	ProductID   id.ID `db:"product_id" json:"productId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// QuantityOnHand is the current balance. Never negative.
	QuantityOnHand types.Quantity `db:"quantity_on_hand" json:"quantityOnHand"`

	// AverageUnitCost is the moving-average cost of one unit on hand.
	AverageUnitCost types.Money `db:"average_unit_cost" json:"averageUnitCost"`

	// Optional replenishment bounds for reports
	MinQuantity *types.Quantity `db:"min_quantity" json:"minQuantity,omitempty"`
	MaxQuantity *types.Quantity `db:"max_quantity" json:"maxQuantity,omitempty"`

	// Version for optimistic locking
	Version int `db:"version" json:"version"`

	LastUpdatedAt time.Time `db:"last_updated_at" json:"lastUpdatedAt"`
}

// NewStockItem creates an empty balance record for a pair.
func NewStockItem(companyID, productID, warehouseID id.ID) *StockItem {
	return &StockItem{
		ID:              id.New(),
		CompanyID:       companyID,
		ProductID:       productID,
		WarehouseID:     warehouseID,
		QuantityOnHand:  types.Zero(),
		AverageUnitCost: types.Zero(),
		Version:         1,
	}
}

// ApplyReceipt adds qty units at unitCost and re-weights the average:
//
//	newAvg = (onHand*avg + qty*unitCost) / (onHand + qty)
//
// A zero balance takes the incoming cost as the new average outright,
// so stale cost from a fully depleted position never bleeds into the
// next stocking cycle.
//
// Returns InvalidQuantity for qty <= 0 and InvalidCost for a negative
// unitCost. Request validation rejects these earlier; the aggregate
// enforces them again so no caller can deplete through a receipt.
func (s *StockItem) ApplyReceipt(qty types.Quantity, unitCost types.Money, at time.Time) error {
	if !qty.IsPositive() {
		return apperror.NewInvalidQuantity(qty)
	}
	if unitCost.IsNegative() {
		return apperror.NewInvalidCost(unitCost)
	}

	if s.QuantityOnHand.Sign() <= 0 {
		s.AverageUnitCost = unitCost
	} else {
		s.AverageUnitCost = types.WeightedAverage(s.QuantityOnHand, s.AverageUnitCost, qty, unitCost)
	}

	s.QuantityOnHand = s.QuantityOnHand.Add(qty)
	s.touch(at)
	return nil
}

// Deplete removes qty units and returns the unit cost the issue is valued
// at. Depletion never moves the average: the snapshot taken here is the
// average as it stood before this removal.
//
// Returns InvalidQuantity for qty <= 0 — a non-positive depletion would
// silently add stock — and InsufficientStock when qty exceeds the balance.
func (s *StockItem) Deplete(qty types.Quantity, at time.Time) (types.Money, error) {
	if !qty.IsPositive() {
		return types.Zero(), apperror.NewInvalidQuantity(qty)
	}
	if qty.GreaterThan(s.QuantityOnHand) {
		return types.Zero(), apperror.NewInsufficientStock(
			s.ProductID.String(),
			s.WarehouseID.String(),
			qty,
			s.QuantityOnHand,
		)
	}

	cost := s.AverageUnitCost
	s.QuantityOnHand = s.QuantityOnHand.Sub(qty)
	s.touch(at)

	return cost, nil
}

// StockValue returns the book value of the balance (onHand * avg).
func (s *StockItem) StockValue() types.Money {
	return s.QuantityOnHand.Mul(s.AverageUnitCost)
}

// IsBelowMin reports whether the balance dropped under the replenishment floor.
func (s *StockItem) IsBelowMin() bool {
	return s.MinQuantity != nil && s.QuantityOnHand.LessThan(*s.MinQuantity)
}

func (s *StockItem) touch(at time.Time) {
	s.Version++
	s.LastUpdatedAt = at
}
