// Package reports provides read-side report generation over the stock ledger.
package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"stockledger/internal/core/id"
)

// --- Stock Balance Report ---

// StockBalanceFilter defines the filter for the stock balance report.
type StockBalanceFilter struct {
	// AsOfDate - report date; nil means current balances from stock_items.
	AsOfDate *time.Time

	WarehouseIDs []id.ID
	ProductIDs   []id.ID

	// Exclude zero balances
	ExcludeZero bool

	Limit  int
	Offset int
}

// StockBalanceItem is a single row of the balance report.
// Value is quantity times the moving average unit cost.
type StockBalanceItem struct {
	ProductID     id.ID           `db:"product_id" json:"productId"`
	ProductName   string          `db:"product_name" json:"productName"`
	ProductSKU    string          `db:"product_sku" json:"productSku"`
	Unit          string          `db:"unit" json:"unit"`
	WarehouseID   id.ID           `db:"warehouse_id" json:"warehouseId"`
	WarehouseName string          `db:"warehouse_name" json:"warehouseName"`
	Quantity      decimal.Decimal `db:"quantity" json:"quantity"`
	UnitCost      decimal.Decimal `db:"unit_cost" json:"unitCost"`
	StockValue    decimal.Decimal `db:"stock_value" json:"stockValue"`
}

// StockBalanceReport is the full balance report.
type StockBalanceReport struct {
	AsOfDate   time.Time          `json:"asOfDate"`
	Items      []StockBalanceItem `json:"items"`
	TotalItems int                `json:"totalItems"`

	TotalQuantity decimal.Decimal `json:"totalQuantity"`
	TotalValue    decimal.Decimal `json:"totalValue"`
}

// --- Stock Turnover Report ---

// StockTurnoverFilter defines the filter for the turnover report.
// FromDate and ToDate are required; the period is [FromDate, ToDate).
type StockTurnoverFilter struct {
	FromDate time.Time
	ToDate   time.Time

	WarehouseIDs []id.ID
	ProductIDs   []id.ID

	Limit  int
	Offset int
}

// StockTurnoverItem is a single row of the turnover report:
// opening balance, receipts and expenses within the period, closing balance.
type StockTurnoverItem struct {
	ProductID      id.ID           `db:"product_id" json:"productId"`
	ProductName    string          `db:"product_name" json:"productName"`
	ProductSKU     string          `db:"product_sku" json:"productSku"`
	WarehouseID    id.ID           `db:"warehouse_id" json:"warehouseId"`
	WarehouseName  string          `db:"warehouse_name" json:"warehouseName"`
	OpeningBalance decimal.Decimal `db:"opening_balance" json:"openingBalance"`
	Receipt        decimal.Decimal `db:"receipt" json:"receipt"`
	Expense        decimal.Decimal `db:"expense" json:"expense"`
	ClosingBalance decimal.Decimal `db:"closing_balance" json:"closingBalance"`
}

// StockTurnoverReport is the full turnover report.
type StockTurnoverReport struct {
	FromDate   time.Time           `json:"fromDate"`
	ToDate     time.Time           `json:"toDate"`
	Items      []StockTurnoverItem `json:"items"`
	TotalItems int                 `json:"totalItems"`

	TotalReceipt decimal.Decimal `json:"totalReceipt"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
}

// --- Document Journal ---

// DocumentJournalFilter defines the filter for the document journal.
type DocumentJournalFilter struct {
	FromDate *time.Time
	ToDate   *time.Time

	// Document types filter (stock_in, stock_out, transfer, ...)
	DocumentTypes []string

	// Search by number substring
	NumberContains string

	WarehouseIDs []id.ID

	// Sorting: "date", "number", "type", "amount"
	SortBy    string
	SortOrder string // "asc" or "desc"

	Limit  int
	Offset int
}

// DocumentJournalItem is one document in the journal.
type DocumentJournalItem struct {
	ID            id.ID           `db:"id" json:"id"`
	DocumentType  string          `db:"doc_type" json:"documentType"`
	Number        string          `db:"number" json:"number"`
	Date          time.Time       `db:"date" json:"date"`
	Comment       string          `db:"comment" json:"comment,omitempty"`
	TotalQuantity decimal.Decimal `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"totalAmount"`
	LineCount     int             `db:"line_count" json:"lineCount"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
	CreatedBy     *id.ID          `db:"created_by" json:"createdBy,omitempty"`
}

// DocumentJournal is the journal result.
type DocumentJournal struct {
	Items      []DocumentJournalItem `json:"items"`
	TotalCount int                   `json:"totalCount"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`

	// Summary by document type (only on the first page)
	Summary []DocumentTypeSummary `json:"summary,omitempty"`
}

// DocumentTypeSummary provides counts and totals per document type.
type DocumentTypeSummary struct {
	DocumentType  string          `db:"doc_type" json:"documentType"`
	Count         int             `db:"count" json:"count"`
	TotalQuantity decimal.Decimal `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"totalAmount"`
}
