package reports

import (
	"context"
	"fmt"
	"time"

	"stockledger/internal/core/apperror"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetStockBalance generates the stock balance report.
func (s *Service) GetStockBalance(ctx context.Context, filter StockBalanceFilter) (*StockBalanceReport, error) {
	if filter.AsOfDate != nil && filter.AsOfDate.After(time.Now()) {
		return nil, apperror.NewValidation("asOfDate cannot be in the future")
	}

	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetStockBalanceReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get stock balance report: %w", err)
	}

	return report, nil
}

// GetStockTurnover generates the stock turnover report for a period.
func (s *Service) GetStockTurnover(ctx context.Context, filter StockTurnoverFilter) (*StockTurnoverReport, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, apperror.NewValidation("fromDate and toDate are required")
	}
	if filter.FromDate.After(filter.ToDate) {
		return nil, apperror.NewValidation("fromDate must be before toDate")
	}

	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetStockTurnoverReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get stock turnover report: %w", err)
	}

	return report, nil
}

// GetDocumentJournal returns the posted document journal.
func (s *Service) GetDocumentJournal(ctx context.Context, filter DocumentJournalFilter) (*DocumentJournal, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}

	if filter.SortBy == "" {
		filter.SortBy = "date"
	}
	if filter.SortOrder == "" {
		filter.SortOrder = "desc"
	}

	journal, err := s.repo.GetDocumentJournal(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get document journal: %w", err)
	}

	// Attach the per-type summary on the first page only.
	if filter.Offset == 0 {
		summary, err := s.repo.GetDocumentTypeSummary(ctx, filter)
		if err == nil {
			journal.Summary = summary
		}
	}

	return journal, nil
}
