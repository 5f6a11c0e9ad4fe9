package ledger

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/appctx"
	"stockledger/internal/core/id"
	"stockledger/internal/core/numerator"
	"stockledger/internal/core/types"
	"stockledger/internal/domain"
	"stockledger/internal/domain/catalogs/product"
	"stockledger/internal/domain/catalogs/warehouse"
)

// --- Test doubles ---

type stockKey struct {
	product   id.ID
	warehouse id.ID
}

// fakeLedgerRepo keeps everything in memory. Locked reads hand out copies
// and UpsertStockItem writes back, so a posting that fails mid-apply leaves
// the stored balances untouched, the same way a rolled back transaction would.
type fakeLedgerRepo struct {
	items map[stockKey]*StockItem
	docs  []*InventoryDocument
	lines map[id.ID][]DocumentLine

	lockOrder []stockKey
	created   []stockKey
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{
		items: make(map[stockKey]*StockItem),
		lines: make(map[id.ID][]DocumentLine),
	}
}

func (r *fakeLedgerRepo) GetStockItem(_ context.Context, productID, warehouseID id.ID) (*StockItem, error) {
	item, ok := r.items[stockKey{productID, warehouseID}]
	if !ok {
		return nil, nil
	}
	cp := *item
	return &cp, nil
}

// GetStockItemForUpdate mirrors the SQL repository: a never-stocked pair
// gets an empty row materialized under the lock. The row only reaches
// items through UpsertStockItem, so a failed posting leaves no trace,
// the same as a rolled back insert.
func (r *fakeLedgerRepo) GetStockItemForUpdate(ctx context.Context, productID, warehouseID id.ID) (*StockItem, error) {
	key := stockKey{productID, warehouseID}
	r.lockOrder = append(r.lockOrder, key)
	if item, ok := r.items[key]; ok {
		cp := *item
		return &cp, nil
	}
	r.created = append(r.created, key)
	return NewStockItem(appctx.GetCompanyID(ctx), productID, warehouseID), nil
}

func (r *fakeLedgerRepo) UpsertStockItem(_ context.Context, item *StockItem) error {
	cp := *item
	r.items[stockKey{item.ProductID, item.WarehouseID}] = &cp
	return nil
}

func (r *fakeLedgerRepo) ListStockItems(_ context.Context, _ StockFilter) ([]StockItem, error) {
	out := make([]StockItem, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, *item)
	}
	return out, nil
}

func (r *fakeLedgerRepo) CreateDocument(_ context.Context, doc *InventoryDocument) error {
	r.docs = append(r.docs, doc)
	return nil
}

func (r *fakeLedgerRepo) SaveLines(_ context.Context, docID id.ID, lines []DocumentLine) error {
	r.lines[docID] = append([]DocumentLine(nil), lines...)
	return nil
}

func (r *fakeLedgerRepo) GetDocument(_ context.Context, docID id.ID) (*InventoryDocument, error) {
	for _, doc := range r.docs {
		if doc.ID == docID {
			return doc, nil
		}
	}
	return nil, apperror.NewNotFound("document", docID.String())
}

func (r *fakeLedgerRepo) GetLines(_ context.Context, docID id.ID) ([]DocumentLine, error) {
	return r.lines[docID], nil
}

func (r *fakeLedgerRepo) ListDocuments(_ context.Context, _ DocumentFilter) (domain.ListResult[*InventoryDocument], error) {
	return domain.ListResult[*InventoryDocument]{
		Items:      r.docs,
		TotalCount: int64(len(r.docs)),
	}, nil
}

func (r *fakeLedgerRepo) balance(productID, warehouseID id.ID) *StockItem {
	return r.items[stockKey{productID, warehouseID}]
}

type fakeProductGetter struct {
	products map[id.ID]*product.Product
}

func (g *fakeProductGetter) GetByID(_ context.Context, productID id.ID) (*product.Product, error) {
	p, ok := g.products[productID]
	if !ok {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

type fakeWarehouseGetter struct {
	warehouses map[id.ID]*warehouse.Warehouse
}

func (g *fakeWarehouseGetter) GetByID(_ context.Context, warehouseID id.ID) (*warehouse.Warehouse, error) {
	w, ok := g.warehouses[warehouseID]
	if !ok {
		return nil, apperror.NewNotFound("warehouse", warehouseID.String())
	}
	return w, nil
}

// fakeTxManager runs the function directly. Rollback is simulated by the
// repo's copy-on-lock behavior.
type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- Fixture ---

type fixture struct {
	service    *Service
	repo       *fakeLedgerRepo
	products   *fakeProductGetter
	warehouses *fakeWarehouseGetter

	ctx       context.Context
	companyID id.ID

	productID   id.ID
	warehouseA  id.ID
	warehouseB  id.ID
	numberCalls int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	fx := &fixture{
		repo:      newFakeLedgerRepo(),
		companyID: id.New(),
	}

	p := product.NewProduct(fx.companyID, "P-001", "Widget", product.TypeGoods)
	wa := warehouse.NewWarehouse(fx.companyID, "WH-A", "Main", warehouse.TypeMain)
	wb := warehouse.NewWarehouse(fx.companyID, "WH-B", "Retail", warehouse.TypeRetail)

	fx.productID = p.ID
	fx.warehouseA = wa.ID
	fx.warehouseB = wb.ID

	fx.products = &fakeProductGetter{products: map[id.ID]*product.Product{p.ID: p}}
	fx.warehouses = &fakeWarehouseGetter{warehouses: map[id.ID]*warehouse.Warehouse{
		wa.ID: wa,
		wb.ID: wb,
	}}

	numGen := &numerator.MockGenerator{
		GetNextNumberFunc: func(_ context.Context, cfg numerator.Config, _ *numerator.Options, _ time.Time) (string, error) {
			fx.numberCalls++
			return cfg.Prefix + "-2026-00001", nil
		},
	}

	fx.service = NewService(fx.repo, fakeTxManager{}, numGen, fx.products, fx.warehouses)
	fx.ctx = appctx.WithScope(context.Background(), &appctx.RequestScope{
		UserID:    "tester",
		CompanyID: fx.companyID,
	})

	return fx
}

// seed puts a balance into the repo directly, bypassing the posting pipeline.
func (fx *fixture) seed(t *testing.T, productID, warehouseID id.ID, qty, cost string) {
	t.Helper()
	item := NewStockItem(fx.companyID, productID, warehouseID)
	require.NoError(t, item.ApplyReceipt(types.MustDecimal(qty), types.MustDecimal(cost), time.Now()))
	require.NoError(t, fx.repo.UpsertStockItem(context.Background(), item))
}

// --- Stock in ---

func TestPostStockIn(t *testing.T) {
	fx := newFixture(t)

	doc, err := fx.service.PostStockIn(fx.ctx, &StockInRequest{
		Lines: []StockInLine{
			{ProductID: fx.productID, WarehouseID: fx.warehouseA, Quantity: types.MustDecimal("10"), UnitCost: types.MustDecimal("5")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, TypeStockIn, doc.Type)
	assert.Equal(t, "SI-2026-00001", doc.Number)
	assert.Equal(t, "tester", doc.CreatedBy)
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, DirectionIn, doc.Lines[0].Direction)
	assert.True(t, doc.TotalQuantity.Equal(types.MustDecimal("10")))
	assert.True(t, doc.TotalAmount.Equal(types.MustDecimal("50")))

	// Header, lines and balance are all persisted, one number consumed
	require.Len(t, fx.repo.docs, 1)
	require.Len(t, fx.repo.lines[doc.ID], 1)
	assert.Equal(t, 1, fx.numberCalls)

	item := fx.repo.balance(fx.productID, fx.warehouseA)
	require.NotNil(t, item)
	assert.True(t, item.QuantityOnHand.Equal(types.MustDecimal("10")))
	assert.True(t, item.AverageUnitCost.Equal(types.MustDecimal("5")))
}

func TestPostStockIn_BlendsAverageAcrossPostings(t *testing.T) {
	fx := newFixture(t)

	receive := func(qty, cost string) {
		_, err := fx.service.PostStockIn(fx.ctx, &StockInRequest{
			Lines: []StockInLine{
				{ProductID: fx.productID, WarehouseID: fx.warehouseA, Quantity: types.MustDecimal(qty), UnitCost: types.MustDecimal(cost)},
			},
		})
		require.NoError(t, err)
	}

	receive("10", "5")
	receive("5", "8")

	item := fx.repo.balance(fx.productID, fx.warehouseA)
	require.NotNil(t, item)
	assert.True(t, item.QuantityOnHand.Equal(types.MustDecimal("15")))
	assert.True(t, item.AverageUnitCost.Equal(types.MustDecimal("6")),
		"expected blended average 6, got %s", item.AverageUnitCost)
	assert.Len(t, fx.repo.docs, 2)
}

func TestPostStockIn_FirstStockingCreatesRowUnderLock(t *testing.T) {
	fx := newFixture(t)

	// The first stocking of a pair has no row to lock, so the repository
	// materializes one before handing it out. A concurrent first stocking
	// then blocks on that row instead of also computing from an empty
	// balance and overwriting the earlier commit.
	_, err := fx.service.PostStockIn(fx.ctx, &StockInRequest{
		Lines: []StockInLine{
			{ProductID: fx.productID, WarehouseID: fx.warehouseA, Quantity: types.MustDecimal("10"), UnitCost: types.MustDecimal("5")},
		},
	})
	require.NoError(t, err)

	key := stockKey{fx.productID, fx.warehouseA}
	require.Equal(t, []stockKey{key}, fx.repo.created)
	require.Equal(t, []stockKey{key}, fx.repo.lockOrder)

	// The next receipt finds the committed row and accumulates onto it.
	_, err = fx.service.PostStockIn(fx.ctx, &StockInRequest{
		Lines: []StockInLine{
			{ProductID: fx.productID, WarehouseID: fx.warehouseA, Quantity: types.MustDecimal("5"), UnitCost: types.MustDecimal("5")},
		},
	})
	require.NoError(t, err)

	assert.Len(t, fx.repo.created, 1, "the row is created once, then reused")
	item := fx.repo.balance(fx.productID, fx.warehouseA)
	require.NotNil(t, item)
	assert.True(t, item.QuantityOnHand.Equal(types.MustDecimal("15")),
		"both receipts must land in one row, got %s", item.QuantityOnHand)
}

func TestPostStockIn_CarriesLineUnit(t *testing.T) {
	fx := newFixture(t)
	unitID := id.New()

	doc, err := fx.service.PostStockIn(fx.ctx, &StockInRequest{
		Lines: []StockInLine{
			{ProductID: fx.productID, WarehouseID: fx.warehouseA, UnitID: &unitID, Quantity: types.MustDecimal("3"), UnitCost: types.MustDecimal("2")},
		},
	})
	require.NoError(t, err)

	require.Len(t, doc.Lines, 1)
	require.NotNil(t, doc.Lines[0].UnitID)
	assert.Equal(t, unitID, *doc.Lines[0].UnitID)

	saved := fx.repo.lines[doc.ID]
	require.Len(t, saved, 1)
	require.NotNil(t, saved[0].UnitID)
	assert.Equal(t, unitID, *saved[0].UnitID)
}

func TestPostStockIn_RequiresCompanyScope(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.service.PostStockIn(context.Background(), &StockInRequest{
		Lines: []StockInLine{
			{ProductID: fx.productID, WarehouseID: fx.warehouseA, Quantity: types.MustDecimal("1"), UnitCost: types.Zero()},
		},
	})
	assertCode(t, err, apperror.CodeUnauthorized)
}

// --- Master data checks ---

func TestPost_MasterDataErrors(t *testing.T) {
	line := func(fx *fixture, productID, warehouseID id.ID) *StockInRequest {
		return &StockInRequest{Lines: []StockInLine{
			{ProductID: productID, WarehouseID: warehouseID, Quantity: types.MustDecimal("1"), UnitCost: types.MustDecimal("1")},
		}}
	}

	t.Run("unknown product", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.service.PostStockIn(fx.ctx, line(fx, id.New(), fx.warehouseA))
		assertCode(t, err, apperror.CodeProductNotFound)
	})

	t.Run("inactive product", func(t *testing.T) {
		fx := newFixture(t)
		fx.products.products[fx.productID].IsActive = false
		_, err := fx.service.PostStockIn(fx.ctx, line(fx, fx.productID, fx.warehouseA))
		assertCode(t, err, apperror.CodeProductInactive)
	})

	t.Run("deletion-marked product", func(t *testing.T) {
		fx := newFixture(t)
		fx.products.products[fx.productID].DeletionMark = true
		_, err := fx.service.PostStockIn(fx.ctx, line(fx, fx.productID, fx.warehouseA))
		assertCode(t, err, apperror.CodeProductInactive)
	})

	t.Run("service product keeps no stock", func(t *testing.T) {
		fx := newFixture(t)
		fx.products.products[fx.productID].Type = product.TypeService
		_, err := fx.service.PostStockIn(fx.ctx, line(fx, fx.productID, fx.warehouseA))
		assertCode(t, err, apperror.CodeValidation)
	})

	t.Run("unknown warehouse", func(t *testing.T) {
		fx := newFixture(t)
		_, err := fx.service.PostStockIn(fx.ctx, line(fx, fx.productID, id.New()))
		assertCode(t, err, apperror.CodeWarehouseNotFound)
	})

	t.Run("inactive warehouse", func(t *testing.T) {
		fx := newFixture(t)
		fx.warehouses.warehouses[fx.warehouseA].IsActive = false
		_, err := fx.service.PostStockIn(fx.ctx, line(fx, fx.productID, fx.warehouseA))
		assertCode(t, err, apperror.CodeWarehouseInactive)
	})

	t.Run("warehouse of another company", func(t *testing.T) {
		fx := newFixture(t)
		foreign := warehouse.NewWarehouse(id.New(), "WH-X", "Foreign", warehouse.TypeMain)
		fx.warehouses.warehouses[foreign.ID] = foreign
		_, err := fx.service.PostStockIn(fx.ctx, line(fx, fx.productID, foreign.ID))
		assertCode(t, err, apperror.CodeWarehouseScopeMismatch)
	})

	t.Run("warehouse of another branch", func(t *testing.T) {
		fx := newFixture(t)
		fx.warehouses.warehouses[fx.warehouseA].BranchID = id.New()
		ctx := appctx.WithScope(context.Background(), &appctx.RequestScope{
			UserID:    "tester",
			CompanyID: fx.companyID,
			BranchID:  id.New(),
		})
		_, err := fx.service.PostStockIn(ctx, line(fx, fx.productID, fx.warehouseA))
		assertCode(t, err, apperror.CodeWarehouseScopeMismatch)
	})
}

// --- Stock out ---

func TestPostStockOut(t *testing.T) {
	fx := newFixture(t)
	fx.seed(t, fx.productID, fx.warehouseA, "10", "6")

	doc, err := fx.service.PostStockOut(fx.ctx, &StockOutRequest{
		Lines: []StockOutLine{
			{ProductID: fx.productID, WarehouseID: fx.warehouseA, Quantity: types.MustDecimal("4")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, TypeStockOut, doc.Type)
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, DirectionOut, doc.Lines[0].Direction)
	// The line carries the average snapshot
	assert.True(t, doc.Lines[0].UnitCost.Equal(types.MustDecimal("6")))
	assert.True(t, doc.TotalAmount.Equal(types.MustDecimal("24")))

	item := fx.repo.balance(fx.productID, fx.warehouseA)
	assert.True(t, item.QuantityOnHand.Equal(types.MustDecimal("6")))
	assert.True(t, item.AverageUnitCost.Equal(types.MustDecimal("6")))
}

func TestPostStockOut_NeverStockedPair(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.service.PostStockOut(fx.ctx, &StockOutRequest{
		Lines: []StockOutLine{
			{ProductID: fx.productID, WarehouseID: fx.warehouseA, Quantity: types.MustDecimal("1")},
		},
	})
	assertCode(t, err, apperror.CodeInsufficientStock)
	assert.Empty(t, fx.repo.docs)
	assert.Nil(t, fx.repo.balance(fx.productID, fx.warehouseA),
		"the row materialized for locking dies with the failed posting")
	assert.Zero(t, fx.numberCalls, "a refused posting consumes no number")
}

func TestPostStockOut_InsufficientLeavesBalanceUntouched(t *testing.T) {
	fx := newFixture(t)
	fx.seed(t, fx.productID, fx.warehouseA, "3", "5")

	_, err := fx.service.PostStockOut(fx.ctx, &StockOutRequest{
		Lines: []StockOutLine{
			{ProductID: fx.productID, WarehouseID: fx.warehouseA, Quantity: types.MustDecimal("5")},
		},
	})
	assertCode(t, err, apperror.CodeInsufficientStock)

	item := fx.repo.balance(fx.productID, fx.warehouseA)
	require.NotNil(t, item)
	assert.True(t, item.QuantityOnHand.Equal(types.MustDecimal("3")))
	assert.Empty(t, fx.repo.docs)
	assert.Empty(t, fx.repo.lines)
}

// --- Transfer ---

func TestPostTransfer(t *testing.T) {
	fx := newFixture(t)
	fx.seed(t, fx.productID, fx.warehouseA, "10", "5")

	doc, err := fx.service.PostTransfer(fx.ctx, &TransferRequest{
		Lines: []TransferLine{
			{ProductID: fx.productID, FromWarehouse: fx.warehouseA, ToWarehouse: fx.warehouseB, Quantity: types.MustDecimal("4")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, TypeTransfer, doc.Type)
	require.Len(t, doc.Lines, 2)
	assert.Equal(t, DirectionOut, doc.Lines[0].Direction)
	assert.Equal(t, fx.warehouseA, doc.Lines[0].WarehouseID)
	assert.Equal(t, DirectionIn, doc.Lines[1].Direction)
	assert.Equal(t, fx.warehouseB, doc.Lines[1].WarehouseID)
	// Both legs are valued at the source snapshot
	assert.True(t, doc.Lines[0].UnitCost.Equal(types.MustDecimal("5")))
	assert.True(t, doc.Lines[1].UnitCost.Equal(types.MustDecimal("5")))

	source := fx.repo.balance(fx.productID, fx.warehouseA)
	dest := fx.repo.balance(fx.productID, fx.warehouseB)
	require.NotNil(t, source)
	require.NotNil(t, dest)
	assert.True(t, source.QuantityOnHand.Equal(types.MustDecimal("6")))
	assert.True(t, dest.QuantityOnHand.Equal(types.MustDecimal("4")))
	assert.True(t, dest.AverageUnitCost.Equal(types.MustDecimal("5")))

	// A transfer moves value, never creates or destroys it
	total := source.StockValue().Add(dest.StockValue())
	assert.True(t, total.Equal(types.MustDecimal("50")), "expected total value 50, got %s", total)
}

func TestPostTransfer_EmptySource(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.service.PostTransfer(fx.ctx, &TransferRequest{
		Lines: []TransferLine{
			{ProductID: fx.productID, FromWarehouse: fx.warehouseA, ToWarehouse: fx.warehouseB, Quantity: types.MustDecimal("1")},
		},
	})
	assertCode(t, err, apperror.CodeInsufficientStock)
	assert.Empty(t, fx.repo.docs)
	assert.Nil(t, fx.repo.balance(fx.productID, fx.warehouseB))
}

// --- Opening balance ---

func TestPostOpeningBalance(t *testing.T) {
	fx := newFixture(t)

	doc, err := fx.service.PostOpeningBalance(fx.ctx, &OpeningBalanceRequest{
		Lines: []OpeningBalanceLine{
			{ProductID: fx.productID, WarehouseID: fx.warehouseA, Quantity: types.MustDecimal("100"), UnitCost: types.MustDecimal("2.5")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, TypeOpeningBalance, doc.Type)
	assert.Equal(t, "OB-2026-00001", doc.Number)

	item := fx.repo.balance(fx.productID, fx.warehouseA)
	require.NotNil(t, item)
	assert.True(t, item.QuantityOnHand.Equal(types.MustDecimal("100")))
	assert.True(t, item.AverageUnitCost.Equal(types.MustDecimal("2.5")))
}

func TestPostOpeningBalance_ZeroQuantityLineSkipped(t *testing.T) {
	fx := newFixture(t)

	doc, err := fx.service.PostOpeningBalance(fx.ctx, &OpeningBalanceRequest{
		Lines: []OpeningBalanceLine{
			{ProductID: fx.productID, WarehouseID: fx.warehouseA, Quantity: types.Zero(), UnitCost: types.Zero()},
			{ProductID: fx.productID, WarehouseID: fx.warehouseB, Quantity: types.MustDecimal("5"), UnitCost: types.MustDecimal("1")},
		},
	})
	require.NoError(t, err)

	require.Len(t, doc.Lines, 1)
	assert.Nil(t, fx.repo.balance(fx.productID, fx.warehouseA))
	require.NotNil(t, fx.repo.balance(fx.productID, fx.warehouseB))
}

// --- Adjustment ---

func TestPostAdjustment(t *testing.T) {
	fx := newFixture(t)
	fx.seed(t, fx.productID, fx.warehouseA, "10", "4")

	cost := types.MustDecimal("2")
	doc, err := fx.service.PostAdjustment(fx.ctx, &AdjustmentRequest{
		Lines: []AdjustmentLine{
			{ProductID: fx.productID, WarehouseID: fx.warehouseA, ActualQuantity: types.MustDecimal("7")},
			{ProductID: fx.productID, WarehouseID: fx.warehouseB, ActualQuantity: types.MustDecimal("5"), UnitCost: &cost},
		},
	})
	require.NoError(t, err)

	require.Len(t, doc.Lines, 2)
	assert.Equal(t, DirectionOut, doc.Lines[0].Direction)
	assert.True(t, doc.Lines[0].Quantity.Equal(types.MustDecimal("3")), "write-off is the shortfall against the count")
	assert.True(t, doc.Lines[0].UnitCost.Equal(types.MustDecimal("4")))
	assert.Equal(t, DirectionIn, doc.Lines[1].Direction)
	assert.True(t, doc.Lines[1].Quantity.Equal(types.MustDecimal("5")))
	assert.True(t, doc.Lines[1].UnitCost.Equal(types.MustDecimal("2")))

	assert.True(t, fx.repo.balance(fx.productID, fx.warehouseA).QuantityOnHand.Equal(types.MustDecimal("7")))
	assert.True(t, fx.repo.balance(fx.productID, fx.warehouseB).QuantityOnHand.Equal(types.MustDecimal("5")))
}

func TestPostAdjustment_CleanCountProducesEmptyDocument(t *testing.T) {
	fx := newFixture(t)
	fx.seed(t, fx.productID, fx.warehouseA, "10", "4")

	doc, err := fx.service.PostAdjustment(fx.ctx, &AdjustmentRequest{
		Lines: []AdjustmentLine{
			{ProductID: fx.productID, WarehouseID: fx.warehouseA, ActualQuantity: types.MustDecimal("10")},
		},
	})
	require.NoError(t, err)

	// The count matched the book balance: the document is the audit trail
	// that the count happened, even with nothing to correct. It still
	// consumes exactly one number.
	assert.Empty(t, doc.Lines)
	assert.Len(t, fx.repo.docs, 1)
	assert.Equal(t, 1, fx.numberCalls)
	assert.True(t, fx.repo.balance(fx.productID, fx.warehouseA).QuantityOnHand.Equal(types.MustDecimal("10")))
}

func TestPostAdjustment_GainWithoutCostUsesAverage(t *testing.T) {
	fx := newFixture(t)
	fx.seed(t, fx.productID, fx.warehouseA, "10", "4")

	doc, err := fx.service.PostAdjustment(fx.ctx, &AdjustmentRequest{
		Lines: []AdjustmentLine{
			{ProductID: fx.productID, WarehouseID: fx.warehouseA, ActualQuantity: types.MustDecimal("12")},
		},
	})
	require.NoError(t, err)

	require.Len(t, doc.Lines, 1)
	assert.Equal(t, DirectionIn, doc.Lines[0].Direction)
	assert.True(t, doc.Lines[0].Quantity.Equal(types.MustDecimal("2")))
	assert.True(t, doc.Lines[0].UnitCost.Equal(types.MustDecimal("4")), "surplus without a supplied cost is valued at the running average")

	item := fx.repo.balance(fx.productID, fx.warehouseA)
	assert.True(t, item.QuantityOnHand.Equal(types.MustDecimal("12")))
	assert.True(t, item.AverageUnitCost.Equal(types.MustDecimal("4")))
}

func TestPostAdjustment_NeverStockedPair(t *testing.T) {
	fx := newFixture(t)

	t.Run("counting zero is a no-op line", func(t *testing.T) {
		doc, err := fx.service.PostAdjustment(fx.ctx, &AdjustmentRequest{
			Lines: []AdjustmentLine{
				{ProductID: fx.productID, WarehouseID: fx.warehouseA, ActualQuantity: types.Zero()},
			},
		})
		require.NoError(t, err)
		assert.Empty(t, doc.Lines)

		// The pair was locked, so its materialized empty row commits with
		// the document.
		item := fx.repo.balance(fx.productID, fx.warehouseA)
		require.NotNil(t, item)
		assert.True(t, item.QuantityOnHand.IsZero())
	})

	t.Run("counting a surplus creates the position", func(t *testing.T) {
		cost := types.MustDecimal("3")
		doc, err := fx.service.PostAdjustment(fx.ctx, &AdjustmentRequest{
			Lines: []AdjustmentLine{
				{ProductID: fx.productID, WarehouseID: fx.warehouseA, ActualQuantity: types.MustDecimal("4"), UnitCost: &cost},
			},
		})
		require.NoError(t, err)
		require.Len(t, doc.Lines, 1)

		item := fx.repo.balance(fx.productID, fx.warehouseA)
		require.NotNil(t, item)
		assert.True(t, item.QuantityOnHand.Equal(types.MustDecimal("4")))
		assert.True(t, item.AverageUnitCost.Equal(types.MustDecimal("3")))
	})
}

// --- Atomicity ---

func TestPost_FailedLineFailsWholeDocument(t *testing.T) {
	fx := newFixture(t)
	fx.seed(t, fx.productID, fx.warehouseA, "10", "5")

	// First line is fine, second references an unknown product.
	_, err := fx.service.PostStockOut(fx.ctx, &StockOutRequest{
		Lines: []StockOutLine{
			{ProductID: fx.productID, WarehouseID: fx.warehouseA, Quantity: types.MustDecimal("2")},
			{ProductID: id.New(), WarehouseID: fx.warehouseA, Quantity: types.MustDecimal("1")},
		},
	})
	assertCode(t, err, apperror.CodeProductNotFound)

	// Nothing from the first line survives
	assert.Empty(t, fx.repo.docs)
	assert.True(t, fx.repo.balance(fx.productID, fx.warehouseA).QuantityOnHand.Equal(types.MustDecimal("10")))
}

// --- Lock ordering ---

func TestPost_LocksDedupedPairsInStableOrder(t *testing.T) {
	fx := newFixture(t)

	// Same pair twice plus a second warehouse, in deliberately "wrong" order.
	_, err := fx.service.PostStockIn(fx.ctx, &StockInRequest{
		Lines: []StockInLine{
			{ProductID: fx.productID, WarehouseID: fx.warehouseB, Quantity: types.MustDecimal("1"), UnitCost: types.MustDecimal("1")},
			{ProductID: fx.productID, WarehouseID: fx.warehouseA, Quantity: types.MustDecimal("1"), UnitCost: types.MustDecimal("1")},
			{ProductID: fx.productID, WarehouseID: fx.warehouseB, Quantity: types.MustDecimal("2"), UnitCost: types.MustDecimal("1")},
		},
	})
	require.NoError(t, err)

	require.Len(t, fx.repo.lockOrder, 2, "duplicate pairs are locked once")
	for i := 1; i < len(fx.repo.lockOrder); i++ {
		prev, cur := fx.repo.lockOrder[i-1], fx.repo.lockOrder[i]
		if c := bytes.Compare(prev.product[:], cur.product[:]); c != 0 {
			assert.Negative(t, c)
			continue
		}
		assert.Negative(t, bytes.Compare(prev.warehouse[:], cur.warehouse[:]))
	}
}

// --- Queries ---

func TestGetStock_NeverStockedPairReadsAsEmpty(t *testing.T) {
	fx := newFixture(t)

	item, err := fx.service.GetStock(fx.ctx, fx.productID, fx.warehouseA)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.True(t, item.QuantityOnHand.IsZero())
	assert.True(t, item.AverageUnitCost.IsZero())
	assert.Equal(t, fx.companyID, item.CompanyID)
}

func TestGetDocumentByID_AttachesLines(t *testing.T) {
	fx := newFixture(t)

	posted, err := fx.service.PostStockIn(fx.ctx, &StockInRequest{
		Lines: []StockInLine{
			{ProductID: fx.productID, WarehouseID: fx.warehouseA, Quantity: types.MustDecimal("2"), UnitCost: types.MustDecimal("3")},
		},
	})
	require.NoError(t, err)

	doc, err := fx.service.GetDocumentByID(fx.ctx, posted.ID)
	require.NoError(t, err)
	require.Len(t, doc.Lines, 1)
	assert.Equal(t, posted.Lines[0].LineID, doc.Lines[0].LineID)
}
