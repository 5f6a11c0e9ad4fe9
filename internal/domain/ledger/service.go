package ledger

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/appctx"
	"stockledger/internal/core/id"
	"stockledger/internal/core/numerator"
	"stockledger/internal/core/tx"
	"stockledger/internal/core/types"
	"stockledger/internal/domain"
	"stockledger/internal/domain/catalogs/product"
	"stockledger/internal/domain/catalogs/warehouse"
	"stockledger/pkg/logger"
)

// ProductGetter is the slice of the product catalog the ledger needs.
type ProductGetter interface {
	GetByID(ctx context.Context, productID id.ID) (*product.Product, error)
}

// WarehouseGetter is the slice of the warehouse catalog the ledger needs.
type WarehouseGetter interface {
	GetByID(ctx context.Context, warehouseID id.ID) (*warehouse.Warehouse, error)
}

// Service posts inventory documents and maintains stock balances.
//
// Every posting runs as one transaction: master data checks, row locks on
// the touched balances, the mutations, document numbering and persistence
// all commit or roll back together. A failed line fails the whole document.
type Service struct {
	repo       Repository
	txManager  tx.Manager
	numerator  numerator.Generator
	products   ProductGetter
	warehouses WarehouseGetter
}

// NewService creates a new ledger service.
func NewService(
	repo Repository,
	txManager tx.Manager,
	numGen numerator.Generator,
	products ProductGetter,
	warehouses WarehouseGetter,
) *Service {
	return &Service{
		repo:       repo,
		txManager:  txManager,
		numerator:  numGen,
		products:   products,
		warehouses: warehouses,
	}
}

// pair identifies one balance.
type pair struct {
	product   id.ID
	warehouse id.ID
}

// stockMap holds the balances locked for the current posting. The
// repository materializes an empty row for a never-stocked pair before
// locking it, so entries are normally non-nil; nil is tolerated as a
// fallback for repositories that report absence instead.
type stockMap map[pair]*StockItem

// ensure returns the balance for p, creating an empty one on first stocking.
func (m stockMap) ensure(companyID id.ID, p pair) *StockItem {
	if item := m[p]; item != nil {
		return item
	}
	item := NewStockItem(companyID, p.product, p.warehouse)
	m[p] = item
	return item
}

// --- Posting operations ---

// PostStockIn records a receipt of goods and re-weights average costs.
func (s *Service) PostStockIn(ctx context.Context, req *StockInRequest) (*InventoryDocument, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	header := docHeader{req.Date, req.Comment, req.SourceType, req.SourceID}

	return s.post(ctx, TypeStockIn, header, func(ctx context.Context, doc *InventoryDocument, items stockMap) error {
		for _, line := range req.Lines {
			item := items.ensure(doc.CompanyID, pair{line.ProductID, line.WarehouseID})
			if err := item.ApplyReceipt(line.Quantity, line.UnitCost, doc.Date); err != nil {
				return err
			}

			dl := doc.AddLine(line.ProductID, line.WarehouseID, DirectionIn, line.Quantity, line.UnitCost)
			dl.UnitID, dl.Notes = line.UnitID, line.Notes
		}
		return nil
	}, func() []pair {
		pairs := make([]pair, 0, len(req.Lines))
		for _, line := range req.Lines {
			pairs = append(pairs, pair{line.ProductID, line.WarehouseID})
		}
		return pairs
	}, s.stockInRefs(req))
}

// PostStockOut records an issue of goods valued at the current average.
func (s *Service) PostStockOut(ctx context.Context, req *StockOutRequest) (*InventoryDocument, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	header := docHeader{req.Date, req.Comment, req.SourceType, req.SourceID}

	return s.post(ctx, TypeStockOut, header, func(ctx context.Context, doc *InventoryDocument, items stockMap) error {
		for _, line := range req.Lines {
			item := items[pair{line.ProductID, line.WarehouseID}]
			if item == nil {
				return apperror.NewInsufficientStock(
					line.ProductID.String(), line.WarehouseID.String(),
					line.Quantity, types.Zero())
			}
			cost, err := item.Deplete(line.Quantity, doc.Date)
			if err != nil {
				return err
			}

			dl := doc.AddLine(line.ProductID, line.WarehouseID, DirectionOut, line.Quantity, cost)
			dl.UnitID, dl.Notes = line.UnitID, line.Notes
		}
		return nil
	}, func() []pair {
		pairs := make([]pair, 0, len(req.Lines))
		for _, line := range req.Lines {
			pairs = append(pairs, pair{line.ProductID, line.WarehouseID})
		}
		return pairs
	}, s.stockOutRefs(req))
}

// PostTransfer moves stock between warehouses. The destination receives at
// the source's average snapshot, so a transfer never creates or destroys
// value, it only moves it.
func (s *Service) PostTransfer(ctx context.Context, req *TransferRequest) (*InventoryDocument, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	header := docHeader{req.Date, req.Comment, req.SourceType, req.SourceID}

	return s.post(ctx, TypeTransfer, header, func(ctx context.Context, doc *InventoryDocument, items stockMap) error {
		for _, line := range req.Lines {
			source := items[pair{line.ProductID, line.FromWarehouse}]
			if source == nil {
				return apperror.NewInsufficientStock(
					line.ProductID.String(), line.FromWarehouse.String(),
					line.Quantity, types.Zero())
			}
			cost, err := source.Deplete(line.Quantity, doc.Date)
			if err != nil {
				return err
			}

			dest := items.ensure(doc.CompanyID, pair{line.ProductID, line.ToWarehouse})
			if err := dest.ApplyReceipt(line.Quantity, cost, doc.Date); err != nil {
				return err
			}

			out := doc.AddLine(line.ProductID, line.FromWarehouse, DirectionOut, line.Quantity, cost)
			out.UnitID = line.UnitID
			in := doc.AddLine(line.ProductID, line.ToWarehouse, DirectionIn, line.Quantity, cost)
			in.UnitID = line.UnitID
		}
		return nil
	}, func() []pair {
		pairs := make([]pair, 0, 2*len(req.Lines))
		for _, line := range req.Lines {
			pairs = append(pairs, pair{line.ProductID, line.FromWarehouse})
			pairs = append(pairs, pair{line.ProductID, line.ToWarehouse})
		}
		return pairs
	}, s.transferRefs(req))
}

// PostOpeningBalance loads initial balances. Semantically a receipt with
// its own document type, so migrations stay distinguishable in history.
func (s *Service) PostOpeningBalance(ctx context.Context, req *OpeningBalanceRequest) (*InventoryDocument, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Opening documents are tagged with their own source so history reads
	// distinguish migrated balances from physical receipts.
	header := docHeader{date: req.Date, comment: req.Comment, sourceType: "opening"}

	return s.post(ctx, TypeOpeningBalance, header, func(ctx context.Context, doc *InventoryDocument, items stockMap) error {
		for _, line := range req.Lines {
			if line.Quantity.IsZero() {
				continue
			}
			item := items.ensure(doc.CompanyID, pair{line.ProductID, line.WarehouseID})
			if err := item.ApplyReceipt(line.Quantity, line.UnitCost, doc.Date); err != nil {
				return err
			}
			doc.AddLine(line.ProductID, line.WarehouseID, DirectionIn, line.Quantity, line.UnitCost)
		}
		return nil
	}, func() []pair {
		pairs := make([]pair, 0, len(req.Lines))
		for _, line := range req.Lines {
			if line.Quantity.IsZero() {
				continue
			}
			pairs = append(pairs, pair{line.ProductID, line.WarehouseID})
		}
		return pairs
	}, s.openingBalanceRefs(req))
}

// PostAdjustment reconciles balances to counted quantities after a physical
// inventory. Each line's variance against the locked balance becomes a gain
// (receipt at the supplied cost, or the current average when none is given)
// or a loss (depletion at the average). A clean count posts a document with
// no lines.
func (s *Service) PostAdjustment(ctx context.Context, req *AdjustmentRequest) (*InventoryDocument, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	header := docHeader{date: req.Date, comment: req.Comment}

	return s.post(ctx, TypeAdjustment, header, func(ctx context.Context, doc *InventoryDocument, items stockMap) error {
		for _, line := range req.Lines {
			p := pair{line.ProductID, line.WarehouseID}

			current := types.Zero()
			if item := items[p]; item != nil {
				current = item.QuantityOnHand
			}
			diff := line.ActualQuantity.Sub(current)
			if diff.IsZero() {
				continue
			}

			if diff.IsPositive() {
				item := items.ensure(doc.CompanyID, p)
				cost := item.AverageUnitCost
				if line.UnitCost != nil {
					cost = *line.UnitCost
				}
				if err := item.ApplyReceipt(diff, cost, doc.Date); err != nil {
					return err
				}

				dl := doc.AddLine(line.ProductID, line.WarehouseID, DirectionIn, diff, cost)
				dl.UnitID, dl.Notes = line.UnitID, line.Notes
				continue
			}

			// A shortfall needs an existing balance to deplete. Unreachable
			// through the counted arithmetic alone, kept as a contract guard.
			item := items[p]
			if item == nil {
				return apperror.NewAdjustNonexistentStock(
					line.ProductID.String(), line.WarehouseID.String())
			}
			qty := diff.Neg()
			cost, err := item.Deplete(qty, doc.Date)
			if err != nil {
				return err
			}

			dl := doc.AddLine(line.ProductID, line.WarehouseID, DirectionOut, qty, cost)
			dl.UnitID, dl.Notes = line.UnitID, line.Notes
		}
		return nil
	}, func() []pair {
		pairs := make([]pair, 0, len(req.Lines))
		for _, line := range req.Lines {
			pairs = append(pairs, pair{line.ProductID, line.WarehouseID})
		}
		return pairs
	}, s.adjustmentRefs(req))
}

// --- Posting skeleton ---

// lineRef is one (product, warehouse) reference to check against master data,
// in request line order so the first bad line fails the posting.
type lineRef struct {
	lineNo      int
	productID   id.ID
	warehouseID id.ID
}

// docHeader carries request header fields into the posting skeleton.
type docHeader struct {
	date       time.Time
	comment    string
	sourceType string
	sourceID   *id.ID
}

// post runs the shared posting pipeline:
//
//  1. open a transaction
//  2. check master data for every referenced product and warehouse
//  3. lock the touched balances in stable (product, warehouse) order
//  4. apply the operation's mutations in request line order
//  5. number the document and persist header, lines and balances
func (s *Service) post(
	ctx context.Context,
	docType DocumentType,
	header docHeader,
	apply func(ctx context.Context, doc *InventoryDocument, items stockMap) error,
	collectPairs func() []pair,
	refs []lineRef,
) (*InventoryDocument, error) {
	companyID := appctx.GetCompanyID(ctx)
	if id.IsNil(companyID) {
		return nil, apperror.NewUnauthorized("company scope is required")
	}

	var doc *InventoryDocument

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.checkMasterData(ctx, refs); err != nil {
			return err
		}

		pairs := dedupeSorted(collectPairs())
		items, err := s.lockStock(ctx, pairs)
		if err != nil {
			return err
		}

		doc = NewInventoryDocument(companyID, docType)
		doc.Date = normalizeDate(header.date)
		doc.Comment = header.comment
		doc.SourceType = header.sourceType
		doc.SourceID = header.sourceID
		doc.BranchID = appctx.GetBranchID(ctx)
		doc.CreatedBy = appctx.GetUserID(ctx)
		doc.PostedAt = time.Now().UTC()

		if err := apply(ctx, doc, items); err != nil {
			return err
		}

		return s.persist(ctx, doc, items, pairs)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "document posted",
		"type", string(doc.Type),
		"number", doc.Number,
		"lines", len(doc.Lines),
		"total_amount", doc.TotalAmount.String(),
	)

	return doc, nil
}

// checkMasterData validates every referenced product and warehouse.
// Each ID is checked once; results are memoized across lines.
func (s *Service) checkMasterData(ctx context.Context, refs []lineRef) error {
	companyID := appctx.GetCompanyID(ctx)
	branchID := appctx.GetBranchID(ctx)

	seenProducts := make(map[id.ID]bool)
	seenWarehouses := make(map[id.ID]bool)

	for _, ref := range refs {
		if !seenProducts[ref.productID] {
			if err := s.checkProduct(ctx, ref.productID); err != nil {
				return err
			}
			seenProducts[ref.productID] = true
		}
		if !seenWarehouses[ref.warehouseID] {
			if err := s.checkWarehouse(ctx, ref.warehouseID, companyID, branchID); err != nil {
				return err
			}
			seenWarehouses[ref.warehouseID] = true
		}
	}

	return nil
}

func (s *Service) checkProduct(ctx context.Context, productID id.ID) error {
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewProductNotFound(productID.String())
		}
		return err
	}
	if p.DeletionMark || !p.IsActive {
		return apperror.NewProductInactive(productID.String())
	}
	if !p.IsInventoriable() {
		return apperror.NewValidation("product does not keep stock").
			WithDetail("product_id", productID.String()).
			WithDetail("type", string(p.Type))
	}
	return nil
}

func (s *Service) checkWarehouse(ctx context.Context, warehouseID, companyID, branchID id.ID) error {
	w, err := s.warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewWarehouseNotFound(warehouseID.String())
		}
		return err
	}
	if w.DeletionMark || !w.IsActive {
		return apperror.NewWarehouseInactive(warehouseID.String())
	}
	if !w.InScope(companyID, branchID) {
		return apperror.NewWarehouseScopeMismatch(warehouseID.String())
	}
	return nil
}

// lockStock acquires row locks on all touched balances. Pairs must already
// be deduplicated and sorted; every posting locking in the same order is
// what keeps concurrent cross-cutting documents deadlock-free. First
// stockings get their row created here, under the same lock, so two
// concurrent first stockings of one pair serialize instead of both
// computing from an empty balance.
func (s *Service) lockStock(ctx context.Context, pairs []pair) (stockMap, error) {
	items := make(stockMap, len(pairs))
	for _, p := range pairs {
		item, err := s.repo.GetStockItemForUpdate(ctx, p.product, p.warehouse)
		if err != nil {
			return nil, fmt.Errorf("lock stock %s/%s: %w", p.product, p.warehouse, err)
		}
		items[p] = item
	}
	return items, nil
}

// persist numbers the document and writes header, lines and balances.
func (s *Service) persist(ctx context.Context, doc *InventoryDocument, items stockMap, pairs []pair) error {
	cfg := numerator.DefaultConfig(doc.Type.NumberPrefix())
	number, err := s.numerator.GetNextNumber(ctx, cfg, numerator.DefaultOptions(), doc.Date)
	if err != nil {
		return fmt.Errorf("generate number: %w", err)
	}
	doc.Number = number

	if err := s.repo.CreateDocument(ctx, doc); err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
		return fmt.Errorf("save lines: %w", err)
	}

	for _, p := range pairs {
		item := items[p]
		if item == nil {
			continue
		}
		if err := s.repo.UpsertStockItem(ctx, item); err != nil {
			return fmt.Errorf("upsert stock %s/%s: %w", p.product, p.warehouse, err)
		}
	}

	return nil
}

// --- Queries ---

// GetDocumentByID returns a document with its lines.
func (s *Service) GetDocumentByID(ctx context.Context, docID id.ID) (*InventoryDocument, error) {
	doc, err := s.repo.GetDocument(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// ListDocuments returns document headers matching the filter.
func (s *Service) ListDocuments(ctx context.Context, filter DocumentFilter) (domain.ListResult[*InventoryDocument], error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.ListDocuments(ctx, filter)
}

// GetStock returns the balance for a pair. A pair that was never stocked
// reads as an empty balance, not an error.
func (s *Service) GetStock(ctx context.Context, productID, warehouseID id.ID) (*StockItem, error) {
	item, err := s.repo.GetStockItem(ctx, productID, warehouseID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return NewStockItem(appctx.GetCompanyID(ctx), productID, warehouseID), nil
	}
	return item, nil
}

// ListStock returns balances matching the filter.
func (s *Service) ListStock(ctx context.Context, filter StockFilter) ([]StockItem, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	return s.repo.ListStockItems(ctx, filter)
}

// --- Helpers ---

func (s *Service) stockInRefs(req *StockInRequest) []lineRef {
	refs := make([]lineRef, 0, len(req.Lines))
	for i, line := range req.Lines {
		refs = append(refs, lineRef{i + 1, line.ProductID, line.WarehouseID})
	}
	return refs
}

func (s *Service) stockOutRefs(req *StockOutRequest) []lineRef {
	refs := make([]lineRef, 0, len(req.Lines))
	for i, line := range req.Lines {
		refs = append(refs, lineRef{i + 1, line.ProductID, line.WarehouseID})
	}
	return refs
}

func (s *Service) transferRefs(req *TransferRequest) []lineRef {
	refs := make([]lineRef, 0, 2*len(req.Lines))
	for i, line := range req.Lines {
		refs = append(refs, lineRef{i + 1, line.ProductID, line.FromWarehouse})
		refs = append(refs, lineRef{i + 1, line.ProductID, line.ToWarehouse})
	}
	return refs
}

func (s *Service) openingBalanceRefs(req *OpeningBalanceRequest) []lineRef {
	refs := make([]lineRef, 0, len(req.Lines))
	for i, line := range req.Lines {
		if line.Quantity.IsZero() {
			continue
		}
		refs = append(refs, lineRef{i + 1, line.ProductID, line.WarehouseID})
	}
	return refs
}

func (s *Service) adjustmentRefs(req *AdjustmentRequest) []lineRef {
	refs := make([]lineRef, 0, len(req.Lines))
	for i, line := range req.Lines {
		refs = append(refs, lineRef{i + 1, line.ProductID, line.WarehouseID})
	}
	return refs
}

// dedupeSorted removes duplicate pairs and orders them by product then
// warehouse UUID bytes. The order itself is arbitrary; what matters is
// that it is total and every posting uses the same one.
func dedupeSorted(pairs []pair) []pair {
	seen := make(map[pair]bool, len(pairs))
	out := pairs[:0]
	for _, p := range pairs {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		if c := bytes.Compare(out[i].product[:], out[j].product[:]); c != 0 {
			return c < 0
		}
		return bytes.Compare(out[i].warehouse[:], out[j].warehouse[:]) < 0
	})

	return out
}

func normalizeDate(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
