package reports

import (
	"context"
)

// Repository defines report data access.
type Repository interface {
	// Stock reports
	GetStockBalanceReport(ctx context.Context, filter StockBalanceFilter) (*StockBalanceReport, error)
	GetStockTurnoverReport(ctx context.Context, filter StockTurnoverFilter) (*StockTurnoverReport, error)

	// Document journal
	GetDocumentJournal(ctx context.Context, filter DocumentJournalFilter) (*DocumentJournal, error)
	GetDocumentTypeSummary(ctx context.Context, filter DocumentJournalFilter) ([]DocumentTypeSummary, error)
}
