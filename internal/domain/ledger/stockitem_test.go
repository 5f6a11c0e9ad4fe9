package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/core/apperror"
	"stockledger/internal/core/id"
	"stockledger/internal/core/types"
)

func newTestItem() *StockItem {
	return NewStockItem(id.New(), id.New(), id.New())
}

func TestApplyReceipt_FirstStocking(t *testing.T) {
	item := newTestItem()
	now := time.Now()

	item.ApplyReceipt(types.MustDecimal("10"), types.MustDecimal("5"), now)

	assert.True(t, item.QuantityOnHand.Equal(types.MustDecimal("10")))
	assert.True(t, item.AverageUnitCost.Equal(types.MustDecimal("5")))
}

func TestApplyReceipt_WeightedAverage(t *testing.T) {
	item := newTestItem()
	now := time.Now()

	// 10 @ 5.00 + 5 @ 8.00 = 15 @ 6.00
	item.ApplyReceipt(types.MustDecimal("10"), types.MustDecimal("5"), now)
	item.ApplyReceipt(types.MustDecimal("5"), types.MustDecimal("8"), now)

	assert.True(t, item.QuantityOnHand.Equal(types.MustDecimal("15")))
	assert.True(t, item.AverageUnitCost.Equal(types.MustDecimal("6")),
		"expected average 6, got %s", item.AverageUnitCost)
}

func TestApplyReceipt_FractionalAverage(t *testing.T) {
	item := newTestItem()
	now := time.Now()

	// 3 @ 1.00 + 1 @ 2.00 = 4 @ 1.25
	item.ApplyReceipt(types.MustDecimal("3"), types.MustDecimal("1"), now)
	item.ApplyReceipt(types.MustDecimal("1"), types.MustDecimal("2"), now)

	assert.True(t, item.AverageUnitCost.Equal(types.MustDecimal("1.25")),
		"expected average 1.25, got %s", item.AverageUnitCost)
}

func TestApplyReceipt_RejectsNonPositiveQuantity(t *testing.T) {
	item := newTestItem()
	now := time.Now()

	require.NoError(t, item.ApplyReceipt(types.MustDecimal("10"), types.MustDecimal("5"), now))

	// A negative receipt would bypass the insufficient-stock check on the
	// depletion path and drain the balance.
	err := item.ApplyReceipt(types.MustDecimal("-6"), types.MustDecimal("100"), now)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidQuantity, appErr.Code)
	assert.True(t, item.QuantityOnHand.Equal(types.MustDecimal("10")))
	assert.True(t, item.AverageUnitCost.Equal(types.MustDecimal("5")))

	err = item.ApplyReceipt(types.Zero(), types.MustDecimal("1"), now)
	require.Error(t, err)
	assert.True(t, item.QuantityOnHand.Equal(types.MustDecimal("10")))
}

func TestApplyReceipt_RejectsNegativeCost(t *testing.T) {
	item := newTestItem()
	now := time.Now()

	err := item.ApplyReceipt(types.MustDecimal("1"), types.MustDecimal("-1"), now)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidCost, appErr.Code)
	assert.True(t, item.QuantityOnHand.IsZero())
}

func TestDeplete_RejectsNonPositiveQuantity(t *testing.T) {
	item := newTestItem()
	now := time.Now()

	require.NoError(t, item.ApplyReceipt(types.MustDecimal("10"), types.MustDecimal("5"), now))

	// A negative depletion would silently add stock.
	_, err := item.Deplete(types.MustDecimal("-4"), now)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidQuantity, appErr.Code)
	assert.True(t, item.QuantityOnHand.Equal(types.MustDecimal("10")))

	_, err = item.Deplete(types.Zero(), now)
	require.Error(t, err)
	assert.True(t, item.QuantityOnHand.Equal(types.MustDecimal("10")))
}

func TestDeplete_PreservesAverage(t *testing.T) {
	item := newTestItem()
	now := time.Now()

	item.ApplyReceipt(types.MustDecimal("10"), types.MustDecimal("5"), now)
	item.ApplyReceipt(types.MustDecimal("5"), types.MustDecimal("8"), now)

	cost, err := item.Deplete(types.MustDecimal("7"), now)
	require.NoError(t, err)

	// Depletion is valued at the average and does not change it
	assert.True(t, cost.Equal(types.MustDecimal("6")))
	assert.True(t, item.QuantityOnHand.Equal(types.MustDecimal("8")))
	assert.True(t, item.AverageUnitCost.Equal(types.MustDecimal("6")))
}

func TestDeplete_InsufficientStock(t *testing.T) {
	item := newTestItem()
	now := time.Now()

	item.ApplyReceipt(types.MustDecimal("3"), types.MustDecimal("5"), now)

	_, err := item.Deplete(types.MustDecimal("4"), now)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInsufficientStock, appErr.Code)

	// Balance untouched after the refused depletion
	assert.True(t, item.QuantityOnHand.Equal(types.MustDecimal("3")))
}

func TestDeplete_ExactBalance(t *testing.T) {
	item := newTestItem()
	now := time.Now()

	item.ApplyReceipt(types.MustDecimal("3"), types.MustDecimal("5"), now)

	cost, err := item.Deplete(types.MustDecimal("3"), now)
	require.NoError(t, err)
	assert.True(t, cost.Equal(types.MustDecimal("5")))
	assert.True(t, item.QuantityOnHand.IsZero())
}

func TestApplyReceipt_ResetsCostAfterFullDepletion(t *testing.T) {
	item := newTestItem()
	now := time.Now()

	item.ApplyReceipt(types.MustDecimal("10"), types.MustDecimal("5"), now)
	_, err := item.Deplete(types.MustDecimal("10"), now)
	require.NoError(t, err)

	// A restock of an empty position takes the incoming cost outright,
	// the stale average from the previous cycle does not blend in.
	item.ApplyReceipt(types.MustDecimal("4"), types.MustDecimal("9"), now)

	assert.True(t, item.QuantityOnHand.Equal(types.MustDecimal("4")))
	assert.True(t, item.AverageUnitCost.Equal(types.MustDecimal("9")))
}

func TestStockValue(t *testing.T) {
	item := newTestItem()
	now := time.Now()

	item.ApplyReceipt(types.MustDecimal("12"), types.MustDecimal("2.5"), now)

	assert.True(t, item.StockValue().Equal(types.MustDecimal("30")))
}

func TestTouch_IncrementsVersion(t *testing.T) {
	item := newTestItem()
	now := time.Now()

	v := item.Version
	item.ApplyReceipt(types.MustDecimal("1"), types.MustDecimal("1"), now)
	assert.Equal(t, v+1, item.Version)

	_, err := item.Deplete(types.MustDecimal("1"), now)
	require.NoError(t, err)
	assert.Equal(t, v+2, item.Version)
}

func TestIsBelowMin(t *testing.T) {
	item := newTestItem()
	now := time.Now()

	assert.False(t, item.IsBelowMin(), "no floor set")

	min := types.MustDecimal("5")
	item.MinQuantity = &min
	assert.True(t, item.IsBelowMin(), "empty balance is below a floor of 5")

	item.ApplyReceipt(types.MustDecimal("5"), types.MustDecimal("1"), now)
	assert.False(t, item.IsBelowMin())
}
