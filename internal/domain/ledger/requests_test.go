package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok, "expected AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}

func TestStockInRequest_Validate(t *testing.T) {
	productID := id.New()
	warehouseID := id.New()

	t.Run("empty request", func(t *testing.T) {
		req := &StockInRequest{}
		assertCode(t, req.Validate(), apperror.CodeEmptyRequest)
	})

	t.Run("zero quantity", func(t *testing.T) {
		req := &StockInRequest{Lines: []StockInLine{
			{ProductID: productID, WarehouseID: warehouseID, Quantity: types.Zero(), UnitCost: types.MustDecimal("1")},
		}}
		assertCode(t, req.Validate(), apperror.CodeInvalidQuantity)
	})

	t.Run("negative quantity", func(t *testing.T) {
		req := &StockInRequest{Lines: []StockInLine{
			{ProductID: productID, WarehouseID: warehouseID, Quantity: types.MustDecimal("-2"), UnitCost: types.MustDecimal("1")},
		}}
		assertCode(t, req.Validate(), apperror.CodeInvalidQuantity)
	})

	t.Run("negative cost", func(t *testing.T) {
		req := &StockInRequest{Lines: []StockInLine{
			{ProductID: productID, WarehouseID: warehouseID, Quantity: types.MustDecimal("2"), UnitCost: types.MustDecimal("-1")},
		}}
		assertCode(t, req.Validate(), apperror.CodeInvalidCost)
	})

	t.Run("zero cost is allowed", func(t *testing.T) {
		req := &StockInRequest{Lines: []StockInLine{
			{ProductID: productID, WarehouseID: warehouseID, Quantity: types.MustDecimal("2"), UnitCost: types.Zero()},
		}}
		assert.NoError(t, req.Validate())
	})

	t.Run("missing product", func(t *testing.T) {
		req := &StockInRequest{Lines: []StockInLine{
			{WarehouseID: warehouseID, Quantity: types.MustDecimal("2"), UnitCost: types.Zero()},
		}}
		assertCode(t, req.Validate(), apperror.CodeValidation)
	})
}

func TestStockOutRequest_Validate(t *testing.T) {
	t.Run("empty request", func(t *testing.T) {
		req := &StockOutRequest{}
		assertCode(t, req.Validate(), apperror.CodeEmptyRequest)
	})

	t.Run("valid", func(t *testing.T) {
		req := &StockOutRequest{Lines: []StockOutLine{
			{ProductID: id.New(), WarehouseID: id.New(), Quantity: types.MustDecimal("1")},
		}}
		assert.NoError(t, req.Validate())
	})
}

func TestTransferRequest_Validate(t *testing.T) {
	productID := id.New()
	from := id.New()
	to := id.New()

	t.Run("same warehouse", func(t *testing.T) {
		req := &TransferRequest{Lines: []TransferLine{
			{ProductID: productID, FromWarehouse: from, ToWarehouse: from, Quantity: types.MustDecimal("1")},
		}}
		assertCode(t, req.Validate(), apperror.CodeSameWarehouseTransfer)
	})

	t.Run("missing destination", func(t *testing.T) {
		req := &TransferRequest{Lines: []TransferLine{
			{ProductID: productID, FromWarehouse: from, Quantity: types.MustDecimal("1")},
		}}
		assertCode(t, req.Validate(), apperror.CodeValidation)
	})

	t.Run("valid", func(t *testing.T) {
		req := &TransferRequest{Lines: []TransferLine{
			{ProductID: productID, FromWarehouse: from, ToWarehouse: to, Quantity: types.MustDecimal("1")},
		}}
		assert.NoError(t, req.Validate())
	})
}

func TestAdjustmentRequest_Validate(t *testing.T) {
	productID := id.New()
	warehouseID := id.New()

	t.Run("empty request", func(t *testing.T) {
		req := &AdjustmentRequest{}
		assertCode(t, req.Validate(), apperror.CodeEmptyRequest)
	})

	t.Run("negative counted quantity", func(t *testing.T) {
		req := &AdjustmentRequest{Lines: []AdjustmentLine{
			{ProductID: productID, WarehouseID: warehouseID, ActualQuantity: types.MustDecimal("-1")},
		}}
		assertCode(t, req.Validate(), apperror.CodeInvalidQuantity)
	})

	t.Run("counting a position to zero is valid", func(t *testing.T) {
		req := &AdjustmentRequest{Lines: []AdjustmentLine{
			{ProductID: productID, WarehouseID: warehouseID, ActualQuantity: types.Zero()},
		}}
		assert.NoError(t, req.Validate())
	})

	t.Run("negative supplied cost", func(t *testing.T) {
		cost := types.MustDecimal("-1")
		req := &AdjustmentRequest{Lines: []AdjustmentLine{
			{ProductID: productID, WarehouseID: warehouseID, ActualQuantity: types.MustDecimal("2"), UnitCost: &cost},
		}}
		assertCode(t, req.Validate(), apperror.CodeInvalidCost)
	})

	t.Run("cost is optional", func(t *testing.T) {
		req := &AdjustmentRequest{Lines: []AdjustmentLine{
			{ProductID: productID, WarehouseID: warehouseID, ActualQuantity: types.MustDecimal("2")},
		}}
		assert.NoError(t, req.Validate())
	})
}

func TestOpeningBalanceRequest_Validate(t *testing.T) {
	t.Run("empty request", func(t *testing.T) {
		req := &OpeningBalanceRequest{}
		assertCode(t, req.Validate(), apperror.CodeEmptyRequest)
	})

	t.Run("zero-quantity line passes", func(t *testing.T) {
		// Sparse import files carry zero lines; they are skipped at
		// posting time, not rejected.
		req := &OpeningBalanceRequest{Lines: []OpeningBalanceLine{
			{ProductID: id.New(), WarehouseID: id.New(), Quantity: types.Zero(), UnitCost: types.Zero()},
		}}
		assert.NoError(t, req.Validate())
	})

	t.Run("negative quantity", func(t *testing.T) {
		req := &OpeningBalanceRequest{Lines: []OpeningBalanceLine{
			{ProductID: id.New(), WarehouseID: id.New(), Quantity: types.MustDecimal("-1"), UnitCost: types.Zero()},
		}}
		assertCode(t, req.Validate(), apperror.CodeInvalidQuantity)
	})

	t.Run("valid", func(t *testing.T) {
		req := &OpeningBalanceRequest{Lines: []OpeningBalanceLine{
			{ProductID: id.New(), WarehouseID: id.New(), Quantity: types.MustDecimal("10"), UnitCost: types.MustDecimal("3")},
		}}
		assert.NoError(t, req.Validate())
	})
}
