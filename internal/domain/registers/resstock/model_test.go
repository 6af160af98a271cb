package resstock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opstock/internal/core/id"
	"opstock/internal/core/types"
	"opstock/internal/domain/catalogs/material"
)

func supplierRef() *id.ID {
	v := id.New()
	return &v
}

func newTestStock(t *testing.T, minLevel float64) *ResStock {
	t.Helper()
	m := material.NewMaterial("MAT-2026-00001", "Rice", "kg")
	m.ID = id.New()
	m.MinLevel = types.NewQuantityFromFloat64(minLevel)
	return New(m)
}

func TestResStock_ApplyPurchase(t *testing.T) {
	now := time.Now().UTC()
	supplierID := id.New()
	locationID := id.New()

	stock := newTestStock(t, 10)

	stock.ApplyPurchase(&supplierID, locationID,
		types.NewQuantityFromFloat64(50), types.MustMoney("40"), "SIR-2026-00001", now)

	assert.Equal(t, types.NewQuantityFromFloat64(50), stock.TotalPurchased)
	assert.Equal(t, types.NewQuantityFromFloat64(50), stock.Remaining)
	assert.True(t, stock.TotalValue.Equal(types.MustMoney("2000")))
	assert.True(t, stock.AvgPrice.Equal(types.MustMoney("40")))
	assert.Equal(t, material.StatusOK, stock.Status)
	require.Len(t, stock.PurchaseHistory, 1)
	require.Len(t, stock.LocationHistory, 1)
	assert.Equal(t, "SIR-2026-00001", stock.PurchaseHistory[0].Reference)
}

func TestResStock_WeightedAveragePrice(t *testing.T) {
	now := time.Now().UTC()
	supplierID := id.New()
	locationID := id.New()

	stock := newTestStock(t, 10)
	stock.ApplyPurchase(&supplierID, locationID,
		types.NewQuantityFromFloat64(50), types.MustMoney("40"), "SIR-2026-00001", now)
	stock.ApplyPurchase(&supplierID, locationID,
		types.NewQuantityFromFloat64(20), types.MustMoney("50"), "SIR-2026-00002", now)

	// (50*40 + 20*50) / 70
	assert.Equal(t, types.NewQuantityFromFloat64(70), stock.TotalPurchased)
	assert.True(t, stock.TotalValue.Equal(types.MustMoney("3000")))

	want := types.MustMoney("3000").Div(types.NewQuantityFromFloat64(70).Decimal())
	assert.True(t, stock.AvgPrice.Equal(want))
	assert.InDelta(t, 42.857142, stock.AvgPrice.InexactFloat64(), 0.0001)
}

func TestResStock_ConsumeClampsAndDerivesStatus(t *testing.T) {
	now := time.Now().UTC()
	stock := newTestStock(t, 10)
	stock.ApplyPurchase(supplierRef(), id.New(),
		types.NewQuantityFromFloat64(50), types.MustMoney("40"), "SIR-2026-00001", now)

	consumed := stock.Consume(types.NewQuantityFromFloat64(45), "batch 7", now)
	assert.Equal(t, types.NewQuantityFromFloat64(45), consumed)
	assert.Equal(t, types.NewQuantityFromFloat64(5), stock.Remaining)
	assert.Equal(t, material.StatusLow, stock.Status)

	// over-consumption clamps at zero, never negative
	consumed = stock.Consume(types.NewQuantityFromFloat64(10), "batch 8", now)
	assert.Equal(t, types.NewQuantityFromFloat64(5), consumed)
	assert.True(t, stock.Remaining.IsZero())
	assert.Equal(t, material.StatusOut, stock.Status)
}

func TestResStock_ConsumeKeepsPurchaseFigures(t *testing.T) {
	now := time.Now().UTC()
	stock := newTestStock(t, 10)
	stock.ApplyPurchase(supplierRef(), id.New(),
		types.NewQuantityFromFloat64(50), types.MustMoney("40"), "SIR-2026-00001", now)

	avgBefore := stock.AvgPrice
	valueBefore := stock.TotalValue
	purchasedBefore := stock.TotalPurchased

	stock.Consume(types.NewQuantityFromFloat64(5), "", now)
	stock.Consume(types.NewQuantityFromFloat64(20), "", now)
	stock.Consume(types.NewQuantityFromFloat64(100), "", now)

	assert.True(t, stock.AvgPrice.Equal(avgBefore))
	assert.True(t, stock.TotalValue.Equal(valueBefore))
	assert.Equal(t, purchasedBefore, stock.TotalPurchased)
}

func TestResStock_ConsumeAppendsNegativeLocationEntry(t *testing.T) {
	now := time.Now().UTC()
	stock := newTestStock(t, 10)
	stock.ApplyPurchase(supplierRef(), id.New(),
		types.NewQuantityFromFloat64(50), types.MustMoney("40"), "SIR-2026-00001", now)

	stock.Consume(types.NewQuantityFromFloat64(12), "mix line 2", now)

	require.Len(t, stock.LocationHistory, 2)
	last := stock.LocationHistory[1]
	assert.Nil(t, last.LocationID)
	assert.Equal(t, types.NewQuantityFromFloat64(-12), last.Quantity)
	assert.Equal(t, "mix line 2", last.Note)
}

func TestResStock_RemainingNeverExceedsPurchased(t *testing.T) {
	now := time.Now().UTC()
	stock := newTestStock(t, 10)

	stock.ApplyPurchase(supplierRef(), id.New(),
		types.NewQuantityFromFloat64(10), types.MustMoney("5"), "SIR-2026-00001", now)
	stock.Consume(types.NewQuantityFromFloat64(4), "", now)
	stock.ApplyPurchase(supplierRef(), id.New(),
		types.NewQuantityFromFloat64(10), types.MustMoney("5"), "SIR-2026-00002", now)

	assert.True(t, stock.Remaining <= stock.TotalPurchased)
	assert.Equal(t, types.NewQuantityFromFloat64(16), stock.Remaining)
	assert.Equal(t, types.NewQuantityFromFloat64(20), stock.TotalPurchased)
}
