// Package ledger_repo provides the PostgreSQL implementation of the stock
// ledger repository: balance rows with pessimistic locking and immutable
// inventory documents.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/appctx"
	"stockledger/internal/core/id"
	"stockledger/internal/domain"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/infrastructure/storage/postgres"
)

const (
	stockItemsTable    = "stock_items"
	documentsTable     = "doc_inventory"
	documentLinesTable = "doc_inventory_lines"
)

var documentCols = postgres.ExtractDBColumns[ledger.InventoryDocument]()

// LedgerRepo implements ledger.Repository.
type LedgerRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
	builder   squirrel.StatementBuilderType
}

// NewLedgerRepo creates a new ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Compile-time interface check.
var _ ledger.Repository = (*LedgerRepo)(nil)

func companyScope(ctx context.Context) squirrel.Eq {
	return squirrel.Eq{"company_id": appctx.GetCompanyID(ctx)}
}

// --- Stock items ---

const stockItemCols = `id, company_id, product_id, warehouse_id,
	quantity_on_hand, average_unit_cost, min_quantity, max_quantity,
	version, last_updated_at`

// GetStockItem returns the balance for a pair, or (nil, nil) when absent.
func (r *LedgerRepo) GetStockItem(ctx context.Context, productID, warehouseID id.ID) (*ledger.StockItem, error) {
	return r.getStockItem(ctx, productID, warehouseID, false)
}

// GetStockItemForUpdate locks the balance row for the posting transaction.
// A never-stocked pair gets its empty row created here first and then
// locked. Without the row there is nothing to lock: two concurrent first
// stockings would both read "no balance" and the later commit would
// overwrite the earlier one through the upsert.
func (r *LedgerRepo) GetStockItemForUpdate(ctx context.Context, productID, warehouseID id.ID) (*ledger.StockItem, error) {
	item, err := r.getStockItem(ctx, productID, warehouseID, true)
	if err != nil || item != nil {
		return item, err
	}

	// ON CONFLICT DO NOTHING resolves the insert race between two first
	// stockings; the re-read then locks whichever row won. A losing insert
	// blocks on the winner's transaction, so the re-read sees its committed
	// row.
	fresh := ledger.NewStockItem(appctx.GetCompanyID(ctx), productID, warehouseID)
	sql := fmt.Sprintf(`
		INSERT INTO %s (id, company_id, product_id, warehouse_id,
			quantity_on_hand, average_unit_cost, version, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (company_id, product_id, warehouse_id) DO NOTHING
	`, stockItemsTable)

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql,
		fresh.ID, fresh.CompanyID, fresh.ProductID, fresh.WarehouseID,
		fresh.QuantityOnHand, fresh.AverageUnitCost, fresh.Version,
	); err != nil {
		return nil, fmt.Errorf("create stock item: %w", err)
	}

	item, err = r.getStockItem(ctx, productID, warehouseID, true)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("stock item %s/%s vanished after insert", productID, warehouseID)
	}
	return item, nil
}

func (r *LedgerRepo) getStockItem(ctx context.Context, productID, warehouseID id.ID, forUpdate bool) (*ledger.StockItem, error) {
	sql := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE company_id = $1 AND product_id = $2 AND warehouse_id = $3
	`, stockItemCols, stockItemsTable)
	if forUpdate {
		sql += " FOR UPDATE"
	}

	var item ledger.StockItem
	querier := r.txManager.GetQuerier(ctx)
	err := pgxscan.Get(ctx, querier, &item, sql, appctx.GetCompanyID(ctx), productID, warehouseID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock item: %w", err)
	}

	return &item, nil
}

// UpsertStockItem writes the balance. By posting time the row always
// exists and is locked by GetStockItemForUpdate, so the conflict branch
// is the one that runs; the insert branch covers direct writes outside
// the posting pipeline, such as seeding thresholds.
func (r *LedgerRepo) UpsertStockItem(ctx context.Context, item *ledger.StockItem) error {
	sql := fmt.Sprintf(`
		INSERT INTO %s (id, company_id, product_id, warehouse_id,
			quantity_on_hand, average_unit_cost, min_quantity, max_quantity,
			version, last_updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (company_id, product_id, warehouse_id) DO UPDATE SET
			quantity_on_hand  = EXCLUDED.quantity_on_hand,
			average_unit_cost = EXCLUDED.average_unit_cost,
			min_quantity      = EXCLUDED.min_quantity,
			max_quantity      = EXCLUDED.max_quantity,
			version           = %s.version + 1,
			last_updated_at   = EXCLUDED.last_updated_at
	`, stockItemsTable, stockItemsTable)

	querier := r.txManager.GetQuerier(ctx)
	_, err := querier.Exec(ctx, sql,
		item.ID, item.CompanyID, item.ProductID, item.WarehouseID,
		item.QuantityOnHand, item.AverageUnitCost, item.MinQuantity, item.MaxQuantity,
		item.Version, item.LastUpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert stock item: %w", err)
	}

	return nil
}

// ListStockItems returns balances matching the filter.
func (r *LedgerRepo) ListStockItems(ctx context.Context, filter ledger.StockFilter) ([]ledger.StockItem, error) {
	q := r.builder.Select(
		"id", "company_id", "product_id", "warehouse_id",
		"quantity_on_hand", "average_unit_cost", "min_quantity", "max_quantity",
		"version", "last_updated_at",
	).From(stockItemsTable).
		Where(companyScope(ctx))

	if len(filter.ProductIDs) > 0 {
		q = q.Where(squirrel.Eq{"product_id": filter.ProductIDs})
	}
	if len(filter.WarehouseIDs) > 0 {
		q = q.Where(squirrel.Eq{"warehouse_id": filter.WarehouseIDs})
	}
	if filter.ExcludeZero {
		q = q.Where("quantity_on_hand <> 0")
	}
	if filter.BelowMin {
		q = q.Where("min_quantity IS NOT NULL AND quantity_on_hand < min_quantity")
	}

	q = q.OrderBy("product_id", "warehouse_id")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []ledger.StockItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock items: %w", err)
	}

	return items, nil
}

// --- Documents ---

// CreateDocument inserts the document header.
func (r *LedgerRepo) CreateDocument(ctx context.Context, doc *ledger.InventoryDocument) error {
	data := postgres.StructToMap(doc)

	filtered := make(map[string]any, len(documentCols))
	for _, col := range documentCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	q := r.builder.Insert(documentsTable).SetMap(filtered)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	return nil
}

var lineColumns = []string{
	"line_id", "document_id", "line_no",
	"product_id", "warehouse_id", "direction", "quantity", "unit_cost",
	"unit_id", "notes",
}

// SaveLines batch inserts document lines. Uses COPY inside a transaction,
// plain multi-row INSERT otherwise.
func (r *LedgerRepo) SaveLines(ctx context.Context, docID id.ID, lines []ledger.DocumentLine) error {
	if len(lines) == 0 {
		return nil
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		rows := make([][]any, 0, len(lines))
		for _, l := range lines {
			rows = append(rows, []any{
				l.LineID, docID, l.LineNo,
				l.ProductID, l.WarehouseID, string(l.Direction), l.Quantity, l.UnitCost,
				l.UnitID, l.Notes,
			})
		}
		if _, err := r.inserter.CopyFromSlice(ctx, documentLinesTable, lineColumns, rows); err != nil {
			return fmt.Errorf("copy lines: %w", err)
		}
		return nil
	}

	q := r.builder.Insert(documentLinesTable).Columns(lineColumns...)
	for _, l := range lines {
		q = q.Values(
			l.LineID, docID, l.LineNo,
			l.ProductID, l.WarehouseID, string(l.Direction), l.Quantity, l.UnitCost,
			l.UnitID, l.Notes,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// GetDocument returns the document header without lines.
func (r *LedgerRepo) GetDocument(ctx context.Context, docID id.ID) (*ledger.InventoryDocument, error) {
	q := r.builder.Select(documentCols...).
		From(documentsTable).
		Where(squirrel.Eq{"id": docID}).
		Where(companyScope(ctx)).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var doc ledger.InventoryDocument
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("document", docID.String())
		}
		return nil, fmt.Errorf("get document: %w", err)
	}

	return &doc, nil
}

// GetLines returns document lines ordered by line number.
func (r *LedgerRepo) GetLines(ctx context.Context, docID id.ID) ([]ledger.DocumentLine, error) {
	q := r.builder.Select(lineColumns...).
		From(documentLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []ledger.DocumentLine
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("select lines: %w", err)
	}

	return lines, nil
}

// ListDocuments returns document headers matching the filter.
func (r *LedgerRepo) ListDocuments(ctx context.Context, filter ledger.DocumentFilter) (domain.ListResult[*ledger.InventoryDocument], error) {
	result := domain.ListResult[*ledger.InventoryDocument]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder.Select(documentCols...).
		From(documentsTable).
		Where(companyScope(ctx)).
		Where(squirrel.Eq{"deletion_mark": false})

	if len(filter.Types) > 0 {
		q = q.Where(squirrel.Eq{"type": filter.Types})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.ToDate})
	}
	if filter.NumberSearch != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.NumberSearch + "%"})
	}

	// Line-level filters go through an EXISTS so headers stay deduplicated
	if filter.ProductID != nil || filter.WarehouseID != nil {
		sub := fmt.Sprintf("EXISTS (SELECT 1 FROM %s l WHERE l.document_id = %s.id",
			documentLinesTable, documentsTable)
		args := []any{}
		if filter.ProductID != nil {
			sub += " AND l.product_id = ?"
			args = append(args, *filter.ProductID)
		}
		if filter.WarehouseID != nil {
			sub += " AND l.warehouse_id = ?"
			args = append(args, *filter.WarehouseID)
		}
		sub += ")"
		q = q.Where(squirrel.Expr(sub, args...))
	}

	countQ := r.builder.Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("date DESC", "number DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list documents: %w", err)
	}

	return result, nil
}
