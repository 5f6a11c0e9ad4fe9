package ledger

import (
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// Posting requests are plain input shapes. Validate methods check only what
// can be checked without the database; master data and balances are checked
// inside the posting transaction.

// StockInLine is one received position.
type StockInLine struct {
	ProductID   id.ID          `json:"productId"`
	WarehouseID id.ID          `json:"warehouseId"`
	Quantity    types.Quantity `json:"quantity"`
	UnitCost    types.Money    `json:"unitCost"`
	UnitID      *id.ID         `json:"unitId,omitempty"`
	Notes       string         `json:"notes,omitempty"`
}

// StockInRequest records a receipt of goods.
type StockInRequest struct {
	Date       time.Time     `json:"date"`
	Comment    string        `json:"comment,omitempty"`
	SourceType string        `json:"sourceType,omitempty"`
	SourceID   *id.ID        `json:"sourceId,omitempty"`
	Lines      []StockInLine `json:"lines"`
}

// Validate checks request shape.
func (r *StockInRequest) Validate() error {
	if len(r.Lines) == 0 {
		return apperror.NewEmptyRequest()
	}
	for i, line := range r.Lines {
		lineNo := i + 1
		if err := requireRefs(lineNo, line.ProductID, line.WarehouseID); err != nil {
			return err
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewInvalidQuantity(line.Quantity).WithDetail("line_no", lineNo)
		}
		if line.UnitCost.IsNegative() {
			return apperror.NewInvalidCost(line.UnitCost).WithDetail("line_no", lineNo)
		}
	}
	return nil
}

// StockOutLine is one issued position. No cost: issues are valued at the
// balance's average at posting time.
type StockOutLine struct {
	ProductID   id.ID          `json:"productId"`
	WarehouseID id.ID          `json:"warehouseId"`
	Quantity    types.Quantity `json:"quantity"`
	UnitID      *id.ID         `json:"unitId,omitempty"`
	Notes       string         `json:"notes,omitempty"`
}

// StockOutRequest records an issue of goods.
type StockOutRequest struct {
	Date       time.Time      `json:"date"`
	Comment    string         `json:"comment,omitempty"`
	SourceType string         `json:"sourceType,omitempty"`
	SourceID   *id.ID         `json:"sourceId,omitempty"`
	Lines      []StockOutLine `json:"lines"`
}

// Validate checks request shape.
func (r *StockOutRequest) Validate() error {
	if len(r.Lines) == 0 {
		return apperror.NewEmptyRequest()
	}
	for i, line := range r.Lines {
		lineNo := i + 1
		if err := requireRefs(lineNo, line.ProductID, line.WarehouseID); err != nil {
			return err
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewInvalidQuantity(line.Quantity).WithDetail("line_no", lineNo)
		}
	}
	return nil
}

// TransferLine moves a position between two warehouses.
type TransferLine struct {
	ProductID     id.ID          `json:"productId"`
	FromWarehouse id.ID          `json:"fromWarehouseId"`
	ToWarehouse   id.ID          `json:"toWarehouseId"`
	Quantity      types.Quantity `json:"quantity"`
	UnitID        *id.ID         `json:"unitId,omitempty"`
}

// TransferRequest records a movement between warehouses.
type TransferRequest struct {
	Date       time.Time      `json:"date"`
	Comment    string         `json:"comment,omitempty"`
	SourceType string         `json:"sourceType,omitempty"`
	SourceID   *id.ID         `json:"sourceId,omitempty"`
	Lines      []TransferLine `json:"lines"`
}

// Validate checks request shape.
func (r *TransferRequest) Validate() error {
	if len(r.Lines) == 0 {
		return apperror.NewEmptyRequest()
	}
	for i, line := range r.Lines {
		lineNo := i + 1
		if err := requireRefs(lineNo, line.ProductID, line.FromWarehouse); err != nil {
			return err
		}
		if id.IsNil(line.ToWarehouse) {
			return apperror.NewValidation("destination warehouse is required").
				WithDetail("line_no", lineNo)
		}
		if line.FromWarehouse == line.ToWarehouse {
			return apperror.NewSameWarehouseTransfer(line.FromWarehouse.String())
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewInvalidQuantity(line.Quantity).WithDetail("line_no", lineNo)
		}
	}
	return nil
}

// OpeningBalanceLine seeds one position during initial stock load.
type OpeningBalanceLine struct {
	ProductID   id.ID          `json:"productId"`
	WarehouseID id.ID          `json:"warehouseId"`
	Quantity    types.Quantity `json:"quantity"`
	UnitCost    types.Money    `json:"unitCost"`
}

// OpeningBalanceRequest loads initial balances. It posts as a receipt,
// so repeated loads for the same pair blend by weighted average instead
// of silently overwriting.
type OpeningBalanceRequest struct {
	Date    time.Time            `json:"date"`
	Comment string               `json:"comment,omitempty"`
	Lines   []OpeningBalanceLine `json:"lines"`
}

// Validate checks request shape. Zero-quantity lines pass validation and
// are skipped at posting time; sparse import files carry them routinely.
func (r *OpeningBalanceRequest) Validate() error {
	if len(r.Lines) == 0 {
		return apperror.NewEmptyRequest()
	}
	for i, line := range r.Lines {
		lineNo := i + 1
		if err := requireRefs(lineNo, line.ProductID, line.WarehouseID); err != nil {
			return err
		}
		if line.Quantity.IsNegative() {
			return apperror.NewInvalidQuantity(line.Quantity).WithDetail("line_no", lineNo)
		}
		if line.UnitCost.IsNegative() {
			return apperror.NewInvalidCost(line.UnitCost).WithDetail("line_no", lineNo)
		}
	}
	return nil
}

// AdjustmentLine reconciles one position to a counted quantity. The caller
// supplies what was actually counted, not a delta; the posting computes the
// variance against the locked balance.
type AdjustmentLine struct {
	ProductID   id.ID `json:"productId"`
	WarehouseID id.ID `json:"warehouseId"`

	// ActualQuantity is the counted balance, never negative.
	ActualQuantity types.Quantity `json:"actualQuantity"`

	// UnitCost values a counted gain. When nil the balance's current
	// average is used. Ignored for losses, which always deplete at the
	// average.
	UnitCost *types.Money `json:"unitCost,omitempty"`

	UnitID *id.ID `json:"unitId,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// AdjustmentRequest reconciles balances to a physical count. Lines whose
// counted quantity matches the balance produce no movement; a document with
// zero lines is a valid outcome of a clean count.
type AdjustmentRequest struct {
	Date    time.Time        `json:"date"`
	Comment string           `json:"comment,omitempty"`
	Lines   []AdjustmentLine `json:"lines"`
}

// Validate checks request shape.
func (r *AdjustmentRequest) Validate() error {
	if len(r.Lines) == 0 {
		return apperror.NewEmptyRequest()
	}
	for i, line := range r.Lines {
		lineNo := i + 1
		if err := requireRefs(lineNo, line.ProductID, line.WarehouseID); err != nil {
			return err
		}
		if line.ActualQuantity.IsNegative() {
			return apperror.NewInvalidQuantity(line.ActualQuantity).WithDetail("line_no", lineNo)
		}
		if line.UnitCost != nil && line.UnitCost.IsNegative() {
			return apperror.NewInvalidCost(*line.UnitCost).WithDetail("line_no", lineNo)
		}
	}
	return nil
}

func requireRefs(lineNo int, productID, warehouseID id.ID) error {
	if id.IsNil(productID) {
		return apperror.NewValidation("product is required").
			WithDetail("line_no", lineNo)
	}
	if id.IsNil(warehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("line_no", lineNo)
	}
	return nil
}
