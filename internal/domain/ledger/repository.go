package ledger

import (
	"context"
	"time"

	"stockledger/internal/core/id"
	"stockledger/internal/domain"
)

// Repository defines persistence for stock items and inventory documents.
// All operations are scoped to the company carried in context.
type Repository interface {
	// Stock item operations

	// GetStockItem returns the balance for a pair, or (nil, nil) when the
	// pair has never been stocked.
	GetStockItem(ctx context.Context, productID, warehouseID id.ID) (*StockItem, error)

	// GetStockItemForUpdate is GetStockItem with a row lock (FOR UPDATE).
	// Must be called inside a transaction. A never-stocked pair gets an
	// empty balance row created and locked, so concurrent first stockings
	// serialize on the row instead of overwriting each other; the zero
	// balance persists only if the transaction commits.
	GetStockItemForUpdate(ctx context.Context, productID, warehouseID id.ID) (*StockItem, error)

	// UpsertStockItem writes the balance, inserting on first stocking.
	UpsertStockItem(ctx context.Context, item *StockItem) error

	// ListStockItems returns balances matching the filter.
	ListStockItems(ctx context.Context, filter StockFilter) ([]StockItem, error)

	// Document operations

	// CreateDocument inserts the document header.
	CreateDocument(ctx context.Context, doc *InventoryDocument) error

	// SaveLines batch inserts document lines.
	SaveLines(ctx context.Context, docID id.ID, lines []DocumentLine) error

	// GetDocument returns the document header without lines.
	GetDocument(ctx context.Context, docID id.ID) (*InventoryDocument, error)

	// GetLines returns document lines ordered by line number.
	GetLines(ctx context.Context, docID id.ID) ([]DocumentLine, error)

	// ListDocuments returns document headers matching the filter.
	ListDocuments(ctx context.Context, filter DocumentFilter) (domain.ListResult[*InventoryDocument], error)
}

// StockFilter narrows stock item queries.
type StockFilter struct {
	ProductIDs   []id.ID
	WarehouseIDs []id.ID

	// ExcludeZero drops fully depleted positions
	ExcludeZero bool

	// BelowMin keeps only positions under their replenishment floor
	BelowMin bool

	Limit  int
	Offset int
}

// DocumentFilter narrows document list queries.
type DocumentFilter struct {
	Types        []DocumentType
	WarehouseID  *id.ID
	ProductID    *id.ID
	FromDate     *time.Time
	ToDate       *time.Time
	NumberSearch string

	Limit  int
	Offset int
}
