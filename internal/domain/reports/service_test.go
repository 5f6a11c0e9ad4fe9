package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
)

type fakeReportRepo struct {
	lastBalance  StockBalanceFilter
	lastTurnover StockTurnoverFilter
	lastJournal  DocumentJournalFilter

	summaryCalls int
}

func (r *fakeReportRepo) GetStockBalanceReport(_ context.Context, filter StockBalanceFilter) (*StockBalanceReport, error) {
	r.lastBalance = filter
	return &StockBalanceReport{}, nil
}

func (r *fakeReportRepo) GetStockTurnoverReport(_ context.Context, filter StockTurnoverFilter) (*StockTurnoverReport, error) {
	r.lastTurnover = filter
	return &StockTurnoverReport{}, nil
}

func (r *fakeReportRepo) GetDocumentJournal(_ context.Context, filter DocumentJournalFilter) (*DocumentJournal, error) {
	r.lastJournal = filter
	return &DocumentJournal{}, nil
}

func (r *fakeReportRepo) GetDocumentTypeSummary(_ context.Context, _ DocumentJournalFilter) ([]DocumentTypeSummary, error) {
	r.summaryCalls++
	return []DocumentTypeSummary{{DocumentType: "stock_in"}}, nil
}

func TestGetStockBalance_LimitClamping(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.GetStockBalance(ctx, StockBalanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, 100, repo.lastBalance.Limit, "default limit")

	_, err = svc.GetStockBalance(ctx, StockBalanceFilter{Limit: 5000})
	require.NoError(t, err)
	assert.Equal(t, 1000, repo.lastBalance.Limit, "limit capped")
}

func TestGetStockBalance_FutureAsOfDate(t *testing.T) {
	svc := NewService(&fakeReportRepo{})

	future := time.Now().Add(48 * time.Hour)
	_, err := svc.GetStockBalance(context.Background(), StockBalanceFilter{AsOfDate: &future})
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestGetStockTurnover_PeriodValidation(t *testing.T) {
	svc := NewService(&fakeReportRepo{})
	ctx := context.Background()
	now := time.Now()

	_, err := svc.GetStockTurnover(ctx, StockTurnoverFilter{})
	require.Error(t, err, "period is required")

	_, err = svc.GetStockTurnover(ctx, StockTurnoverFilter{
		FromDate: now,
		ToDate:   now.Add(-time.Hour),
	})
	require.Error(t, err, "inverted period")

	_, err = svc.GetStockTurnover(ctx, StockTurnoverFilter{
		FromDate: now.Add(-time.Hour),
		ToDate:   now,
	})
	require.NoError(t, err)
}

func TestGetDocumentJournal_Defaults(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := NewService(repo)

	journal, err := svc.GetDocumentJournal(context.Background(), DocumentJournalFilter{})
	require.NoError(t, err)

	assert.Equal(t, 50, repo.lastJournal.Limit)
	assert.Equal(t, "date", repo.lastJournal.SortBy)
	assert.Equal(t, "desc", repo.lastJournal.SortOrder)
	require.Len(t, journal.Summary, 1, "first page carries the summary")
}

func TestGetDocumentJournal_NoSummaryPastFirstPage(t *testing.T) {
	repo := &fakeReportRepo{}
	svc := NewService(repo)

	journal, err := svc.GetDocumentJournal(context.Background(), DocumentJournalFilter{Offset: 50})
	require.NoError(t, err)

	assert.Zero(t, repo.summaryCalls)
	assert.Empty(t, journal.Summary)
}
