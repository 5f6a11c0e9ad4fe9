// Package report_repo provides PostgreSQL implementations for report repositories.
// Every query is scoped by company_id taken from the request context.
package report_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"stockledger/internal/core/appctx"
	"stockledger/internal/core/id"
	"stockledger/internal/domain/reports"
	"stockledger/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository on top of the ledger tables.
type ReportRepo struct {
	txManager *postgres.TxManager
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txManager: txManager}
}

// Compile-time interface check.
var _ reports.Repository = (*ReportRepo)(nil)

// GetStockBalanceReport generates the stock balance report.
// Current balances come straight from stock_items; as-of balances are
// reconstructed from document lines, valued by their signed amounts
// (out lines already carry the average cost snapshot taken at posting).
func (r *ReportRepo) GetStockBalanceReport(ctx context.Context, filter reports.StockBalanceFilter) (*reports.StockBalanceReport, error) {
	if filter.AsOfDate != nil {
		return r.stockBalanceAsOf(ctx, filter, *filter.AsOfDate)
	}
	return r.stockBalanceCurrent(ctx, filter)
}

func (r *ReportRepo) stockBalanceCurrent(ctx context.Context, filter reports.StockBalanceFilter) (*reports.StockBalanceReport, error) {
	query := `
		SELECT
			s.product_id,
			p.name as product_name,
			COALESCE(p.sku, '') as product_sku,
			COALESCE(u.symbol, '') as unit,
			s.warehouse_id,
			w.name as warehouse_name,
			s.quantity_on_hand as quantity,
			s.average_unit_cost as unit_cost,
			s.quantity_on_hand * s.average_unit_cost as stock_value
		FROM stock_items s
		JOIN cat_products p ON s.product_id = p.id
		LEFT JOIN cat_units u ON p.unit_id = u.id
		JOIN cat_warehouses w ON s.warehouse_id = w.id
		WHERE s.company_id = $1
	`
	args := []any{appctx.GetCompanyID(ctx)}
	argIndex := 2

	query, args, argIndex = appendIDFilter(query, args, argIndex, "s.warehouse_id", filter.WarehouseIDs)
	query, args, argIndex = appendIDFilter(query, args, argIndex, "s.product_id", filter.ProductIDs)

	if filter.ExcludeZero {
		query += " AND s.quantity_on_hand <> 0"
	}

	query += " ORDER BY w.name, p.name"
	query = appendPaging(query, filter.Limit, filter.Offset)

	var items []reports.StockBalanceItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("stock balance report: %w", err)
	}

	return buildBalanceReport(time.Now().UTC(), items), nil
}

func (r *ReportRepo) stockBalanceAsOf(ctx context.Context, filter reports.StockBalanceFilter, asOf time.Time) (*reports.StockBalanceReport, error) {
	query := `
		WITH balance_data AS (
			SELECT
				l.product_id,
				l.warehouse_id,
				SUM(CASE WHEN l.direction = 'in' THEN l.quantity ELSE -l.quantity END) as quantity,
				SUM(CASE WHEN l.direction = 'in' THEN l.quantity * l.unit_cost ELSE -l.quantity * l.unit_cost END) as stock_value
			FROM doc_inventory_lines l
			JOIN doc_inventory d ON l.document_id = d.id
			WHERE d.company_id = $1 AND d.date <= $2
	`
	args := []any{appctx.GetCompanyID(ctx), asOf}
	argIndex := 3

	query, args, argIndex = appendIDFilter(query, args, argIndex, "l.warehouse_id", filter.WarehouseIDs)
	query, args, argIndex = appendIDFilter(query, args, argIndex, "l.product_id", filter.ProductIDs)

	query += `
			GROUP BY l.product_id, l.warehouse_id
	`
	if filter.ExcludeZero {
		query += " HAVING SUM(CASE WHEN l.direction = 'in' THEN l.quantity ELSE -l.quantity END) <> 0"
	}

	query += `
		)
		SELECT
			bd.product_id,
			p.name as product_name,
			COALESCE(p.sku, '') as product_sku,
			COALESCE(u.symbol, '') as unit,
			bd.warehouse_id,
			w.name as warehouse_name,
			bd.quantity,
			CASE WHEN bd.quantity <> 0 THEN bd.stock_value / bd.quantity ELSE 0 END as unit_cost,
			bd.stock_value
		FROM balance_data bd
		JOIN cat_products p ON bd.product_id = p.id
		LEFT JOIN cat_units u ON p.unit_id = u.id
		JOIN cat_warehouses w ON bd.warehouse_id = w.id
		ORDER BY w.name, p.name
	`
	query = appendPaging(query, filter.Limit, filter.Offset)

	var items []reports.StockBalanceItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("stock balance report as of %s: %w", asOf.Format(time.RFC3339), err)
	}

	return buildBalanceReport(asOf, items), nil
}

func buildBalanceReport(asOf time.Time, items []reports.StockBalanceItem) *reports.StockBalanceReport {
	totalQty := decimal.Zero
	totalValue := decimal.Zero
	for _, item := range items {
		totalQty = totalQty.Add(item.Quantity)
		totalValue = totalValue.Add(item.StockValue)
	}

	return &reports.StockBalanceReport{
		AsOfDate:      asOf,
		Items:         items,
		TotalItems:    len(items),
		TotalQuantity: totalQty,
		TotalValue:    totalValue,
	}
}

// GetStockTurnoverReport generates the turnover report for [FromDate, ToDate).
func (r *ReportRepo) GetStockTurnoverReport(ctx context.Context, filter reports.StockTurnoverFilter) (*reports.StockTurnoverReport, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, fmt.Errorf("from_date and to_date are required")
	}

	companyID := appctx.GetCompanyID(ctx)
	args := []any{companyID, filter.FromDate, filter.ToDate}
	argIndex := 4

	query := `
		WITH movements AS (
			SELECT
				l.product_id,
				l.warehouse_id,
				SUM(CASE WHEN d.date < $2 AND l.direction = 'in' THEN l.quantity
				         WHEN d.date < $2 THEN -l.quantity
				         ELSE 0 END) as opening_balance,
				SUM(CASE WHEN d.date >= $2 AND d.date < $3 AND l.direction = 'in' THEN l.quantity ELSE 0 END) as receipt,
				SUM(CASE WHEN d.date >= $2 AND d.date < $3 AND l.direction = 'out' THEN l.quantity ELSE 0 END) as expense
			FROM doc_inventory_lines l
			JOIN doc_inventory d ON l.document_id = d.id
			WHERE d.company_id = $1 AND d.date < $3
	`

	query, args, argIndex = appendIDFilter(query, args, argIndex, "l.warehouse_id", filter.WarehouseIDs)
	query, args, argIndex = appendIDFilter(query, args, argIndex, "l.product_id", filter.ProductIDs)

	query += `
			GROUP BY l.product_id, l.warehouse_id
		)
		SELECT
			m.product_id,
			p.name as product_name,
			COALESCE(p.sku, '') as product_sku,
			m.warehouse_id,
			w.name as warehouse_name,
			m.opening_balance,
			m.receipt,
			m.expense,
			m.opening_balance + m.receipt - m.expense as closing_balance
		FROM movements m
		JOIN cat_products p ON m.product_id = p.id
		JOIN cat_warehouses w ON m.warehouse_id = w.id
		ORDER BY w.name, p.name
	`
	query = appendPaging(query, filter.Limit, filter.Offset)

	var items []reports.StockTurnoverItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("stock turnover report: %w", err)
	}

	totalReceipt := decimal.Zero
	totalExpense := decimal.Zero
	for _, item := range items {
		totalReceipt = totalReceipt.Add(item.Receipt)
		totalExpense = totalExpense.Add(item.Expense)
	}

	return &reports.StockTurnoverReport{
		FromDate:     filter.FromDate,
		ToDate:       filter.ToDate,
		Items:        items,
		TotalItems:   len(items),
		TotalReceipt: totalReceipt,
		TotalExpense: totalExpense,
	}, nil
}

// GetDocumentJournal retrieves posted documents for the journal view.
func (r *ReportRepo) GetDocumentJournal(ctx context.Context, filter reports.DocumentJournalFilter) (*reports.DocumentJournal, error) {
	where, args, _ := r.journalWhere(ctx, filter)

	countQuery := "SELECT COUNT(*) FROM doc_inventory d " + where

	querier := r.txManager.GetQuerier(ctx)
	var total int
	if err := querier.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("document journal count: %w", err)
	}

	query := `
		SELECT
			d.id,
			d.type as doc_type,
			d.number,
			d.date,
			d.comment,
			d.total_quantity,
			d.total_amount,
			(SELECT COUNT(*) FROM doc_inventory_lines l WHERE l.document_id = d.id) as line_count,
			d.created_at,
			d.created_by
		FROM doc_inventory d
	` + where

	query += " ORDER BY " + journalOrderBy(filter.SortBy, filter.SortOrder)
	query = appendPaging(query, filter.Limit, filter.Offset)

	var items []reports.DocumentJournalItem
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("document journal: %w", err)
	}

	return &reports.DocumentJournal{
		Items:      items,
		TotalCount: total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// GetDocumentTypeSummary returns counts and totals per document type.
func (r *ReportRepo) GetDocumentTypeSummary(ctx context.Context, filter reports.DocumentJournalFilter) ([]reports.DocumentTypeSummary, error) {
	where, args, _ := r.journalWhere(ctx, filter)

	query := `
		SELECT
			d.type as doc_type,
			COUNT(*) as count,
			COALESCE(SUM(d.total_quantity), 0) as total_quantity,
			COALESCE(SUM(d.total_amount), 0) as total_amount
		FROM doc_inventory d
	` + where + `
		GROUP BY d.type
		ORDER BY d.type
	`

	var result []reports.DocumentTypeSummary
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &result, query, args...); err != nil {
		return nil, fmt.Errorf("document type summary: %w", err)
	}

	return result, nil
}

// journalWhere builds the shared WHERE clause for journal queries.
func (r *ReportRepo) journalWhere(ctx context.Context, filter reports.DocumentJournalFilter) (string, []any, int) {
	where := " WHERE d.company_id = $1 AND d.deletion_mark = false"
	args := []any{appctx.GetCompanyID(ctx)}
	argIndex := 2

	if filter.FromDate != nil {
		where += fmt.Sprintf(" AND d.date >= $%d", argIndex)
		args = append(args, *filter.FromDate)
		argIndex++
	}
	if filter.ToDate != nil {
		where += fmt.Sprintf(" AND d.date < $%d", argIndex)
		args = append(args, *filter.ToDate)
		argIndex++
	}
	if len(filter.DocumentTypes) > 0 {
		where += fmt.Sprintf(" AND d.type = ANY($%d)", argIndex)
		args = append(args, filter.DocumentTypes)
		argIndex++
	}
	if filter.NumberContains != "" {
		where += fmt.Sprintf(" AND d.number ILIKE $%d", argIndex)
		args = append(args, "%"+filter.NumberContains+"%")
		argIndex++
	}
	if len(filter.WarehouseIDs) > 0 {
		where += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM doc_inventory_lines l WHERE l.document_id = d.id AND l.warehouse_id = ANY($%d))", argIndex)
		args = append(args, filter.WarehouseIDs)
		argIndex++
	}

	return where, args, argIndex
}

// journalOrderBy validates the sort clause against known columns.
func journalOrderBy(sortBy, sortOrder string) string {
	col := "d.date"
	switch sortBy {
	case "number":
		col = "d.number"
	case "type":
		col = "d.type"
	case "amount":
		col = "d.total_amount"
	}

	dir := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		dir = "ASC"
	}

	// Number is a stable tiebreaker within a day.
	if col == "d.date" {
		return col + " " + dir + ", d.number " + dir
	}
	return col + " " + dir
}

// appendIDFilter adds an "AND col = ANY($n)" clause when ids are present.
func appendIDFilter(query string, args []any, argIndex int, col string, ids []id.ID) (string, []any, int) {
	if len(ids) == 0 {
		return query, args, argIndex
	}
	query += fmt.Sprintf(" AND %s = ANY($%d)", col, argIndex)
	args = append(args, ids)
	return query, args, argIndex + 1
}

// appendPaging adds LIMIT/OFFSET literals (values come from clamped filters,
// never from raw user input).
func appendPaging(query string, limit, offset int) string {
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	if offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", offset)
	}
	return query
}
