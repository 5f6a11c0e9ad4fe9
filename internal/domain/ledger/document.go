package ledger

import (
	"time"

	"stockledger/internal/core/entity"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

// DocumentType identifies the posting operation a document records.
type DocumentType string

const (
	TypeStockIn        DocumentType = "stock_in"
	TypeStockOut       DocumentType = "stock_out"
	TypeTransfer       DocumentType = "transfer"
	TypeOpeningBalance DocumentType = "opening_balance"
	TypeAdjustment     DocumentType = "adjustment"
)

// NumberPrefix returns the document number prefix for the type.
func (t DocumentType) NumberPrefix() string {
	switch t {
	case TypeStockIn:
		return "SI"
	case TypeStockOut:
		return "SO"
	case TypeTransfer:
		return "TR"
	case TypeOpeningBalance:
		return "OB"
	case TypeAdjustment:
		return "ADJ"
	}
	return "DOC"
}

// IsValid reports whether t is a known document type.
func (t DocumentType) IsValid() bool {
	switch t {
	case TypeStockIn, TypeStockOut, TypeTransfer, TypeOpeningBalance, TypeAdjustment:
		return true
	}
	return false
}

// DocumentStatus is the document lifecycle state. Postings commit atomically,
// so every stored document is posted; there is no draft or void state.
type DocumentStatus string

// StatusPosted is the only status inventory documents ever have.
const StatusPosted DocumentStatus = "posted"

// LineDirection tells whether a line added to or removed from a balance.
type LineDirection string

const (
	DirectionIn  LineDirection = "in"
	DirectionOut LineDirection = "out"
)

// InventoryDocument is the immutable record of one posting. Once written
// it is never edited: a mistake is corrected by posting a compensating
// document, so the document history always replays to the current balances.
type InventoryDocument struct {
	entity.Document

	// Type is the posting operation this document records
	Type DocumentType `db:"type" json:"type"`

	Status DocumentStatus `db:"status" json:"status"`

	// Source is an optional back-reference to the business document that
	// triggered the movement (a sales delivery, a purchase order)
	SourceType string `db:"source_type" json:"sourceType,omitempty"`
	SourceID   *id.ID `db:"source_id" json:"sourceId,omitempty"`

	// PostedAt is when the posting transaction wrote the document
	PostedAt time.Time `db:"posted_at" json:"postedAt"`

	// Totals (calculated from lines)
	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   types.Money    `db:"total_amount" json:"totalAmount"`

	// Table part
	Lines []DocumentLine `db:"-" json:"lines"`
}

// DocumentLine is one stock movement inside a document. A transfer request
// line expands into two document lines: an out line at the source and an
// in line at the destination, both valued at the source's snapshot cost.
type DocumentLine struct {
	LineID     id.ID `db:"line_id" json:"lineId"`
	DocumentID id.ID `db:"document_id" json:"documentId"`
	LineNo     int   `db:"line_no" json:"lineNo"`

	ProductID   id.ID `db:"product_id" json:"productId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	Direction LineDirection `db:"direction" json:"direction"`

	// Quantity moved, always positive
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// UnitCost values the movement. In lines carry the declared receipt
	// cost; out lines carry the average snapshot taken just before the
	// line's own mutation.
	UnitCost types.Money `db:"unit_cost" json:"unitCost"`

	// UnitID references the measurement unit catalog, captured at posting time
	UnitID *id.ID `db:"unit_id" json:"unitId,omitempty"`

	Notes string `db:"notes" json:"notes,omitempty"`
}

// Amount returns the line value (quantity * unit cost).
func (l DocumentLine) Amount() types.Money {
	return l.Quantity.Mul(l.UnitCost)
}

// NewInventoryDocument creates a document shell for the given operation.
func NewInventoryDocument(companyID id.ID, docType DocumentType) *InventoryDocument {
	return &InventoryDocument{
		Document:      entity.NewDocument(companyID),
		Type:          docType,
		Status:        StatusPosted,
		TotalQuantity: types.Zero(),
		TotalAmount:   types.Zero(),
		Lines:         make([]DocumentLine, 0),
	}
}

// AddLine appends a movement line and updates totals. The returned pointer
// stays valid until the next AddLine call; use it to set UnitID and Notes.
func (d *InventoryDocument) AddLine(productID, warehouseID id.ID, dir LineDirection, qty types.Quantity, unitCost types.Money) *DocumentLine {
	line := DocumentLine{
		LineID:      id.New(),
		DocumentID:  d.ID,
		LineNo:      len(d.Lines) + 1,
		ProductID:   productID,
		WarehouseID: warehouseID,
		Direction:   dir,
		Quantity:    qty,
		UnitCost:    unitCost,
	}

	d.Lines = append(d.Lines, line)
	d.TotalQuantity = d.TotalQuantity.Add(qty)
	d.TotalAmount = d.TotalAmount.Add(line.Amount())

	return &d.Lines[len(d.Lines)-1]
}
