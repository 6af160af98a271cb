package consumption

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opstock/internal/core/apperror"
	"opstock/internal/core/id"
	"opstock/internal/core/types"
	"opstock/internal/domain"
	"opstock/internal/domain/catalogs/material"
	"opstock/internal/domain/registers/ledger"
	"opstock/internal/domain/registers/resstock"
)

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeStockRepo struct {
	items map[id.ID]*resstock.ResStock
}

func (r *fakeStockRepo) Upsert(ctx context.Context, stock *resstock.ResStock) error {
	r.items[stock.MaterialID] = stock
	return nil
}

func (r *fakeStockRepo) GetByMaterial(ctx context.Context, materialID id.ID) (*resstock.ResStock, error) {
	stock, ok := r.items[materialID]
	if !ok {
		return nil, apperror.NewNotFound("stock aggregate", materialID.String())
	}
	return stock, nil
}

func (r *fakeStockRepo) GetForUpdate(ctx context.Context, materialID id.ID) (*resstock.ResStock, error) {
	return r.GetByMaterial(ctx, materialID)
}

func (r *fakeStockRepo) List(ctx context.Context, filter resstock.ListFilter) (domain.ListResult[*resstock.ResStock], error) {
	return domain.ListResult[*resstock.ResStock]{}, nil
}

type fakeLedgerRepo struct {
	transactions []*ledger.StockTransaction
}

func (r *fakeLedgerRepo) Append(ctx context.Context, tx *ledger.StockTransaction) error {
	r.transactions = append(r.transactions, tx)
	return nil
}

func (r *fakeLedgerRepo) GetByID(ctx context.Context, txID id.ID) (*ledger.StockTransaction, error) {
	return nil, apperror.NewNotFound("stock transaction", txID.String())
}

func (r *fakeLedgerRepo) List(ctx context.Context, filter ledger.TransactionFilter) (domain.ListResult[*ledger.StockTransaction], error) {
	return domain.ListResult[*ledger.StockTransaction]{}, nil
}

func (r *fakeLedgerRepo) IncrementInventory(ctx context.Context, upd ledger.InventoryUpdate) error {
	return nil
}

func (r *fakeLedgerRepo) GetInventory(ctx context.Context, materialID, locationID id.ID) (*ledger.LocationInventory, error) {
	return nil, apperror.NewNotFound("location inventory", materialID.String())
}

func (r *fakeLedgerRepo) ListInventoryByMaterial(ctx context.Context, materialID id.ID) ([]*ledger.LocationInventory, error) {
	return nil, nil
}

type stubMaterialRepo struct {
	items map[id.ID]*material.Material
}

func (r *stubMaterialRepo) GetByID(ctx context.Context, materialID id.ID) (*material.Material, error) {
	m, ok := r.items[materialID]
	if !ok {
		return nil, apperror.NewNotFound("material", materialID.String())
	}
	return m, nil
}

func (r *stubMaterialRepo) GetByCode(ctx context.Context, code string) (*material.Material, error) {
	return nil, apperror.NewNotFound("material", code)
}

func (r *stubMaterialRepo) GetForUpdate(ctx context.Context, materialID id.ID) (*material.Material, error) {
	return r.GetByID(ctx, materialID)
}

func (r *stubMaterialRepo) FindByNameFold(ctx context.Context, name string) (*material.Material, error) {
	return nil, apperror.NewNotFound("material", name)
}

func (r *stubMaterialRepo) Create(ctx context.Context, m *material.Material) error { return nil }
func (r *stubMaterialRepo) Update(ctx context.Context, m *material.Material) error { return nil }
func (r *stubMaterialRepo) Delete(ctx context.Context, materialID id.ID) error     { return nil }

func (r *stubMaterialRepo) SetDeletionMark(ctx context.Context, materialID id.ID, marked bool) error {
	return nil
}

func (r *stubMaterialRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*material.Material], error) {
	return domain.ListResult[*material.Material]{}, nil
}

func (r *stubMaterialRepo) ListFiltered(ctx context.Context, filter material.ListFilter) (domain.ListResult[*material.Material], error) {
	return domain.ListResult[*material.Material]{}, nil
}

func (r *stubMaterialRepo) Exists(ctx context.Context, materialID id.ID) (bool, error) {
	_, ok := r.items[materialID]
	return ok, nil
}

func (r *stubMaterialRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return false, nil
}

func newStockedFixture(t *testing.T, policy MissingStockPolicy, qty float64) (*Service, *fakeStockRepo, *fakeLedgerRepo, id.ID) {
	t.Helper()

	m := material.NewMaterial("MAT-2026-00001", "Rice", "kg")
	m.ID = id.New()
	m.MinLevel = types.NewQuantityFromFloat64(10)

	stock := resstock.New(m)
	supplierID := id.New()
	stock.ApplyPurchase(&supplierID, id.New(),
		types.NewQuantityFromFloat64(qty), types.MustMoney("40"), "SIR-2026-00001", time.Now().UTC())

	stocks := &fakeStockRepo{items: map[id.ID]*resstock.ResStock{m.ID: stock}}
	movements := &fakeLedgerRepo{}
	materials := &stubMaterialRepo{items: map[id.ID]*material.Material{m.ID: m}}
	return NewService(stocks, movements, materials, fakeTxManager{}, policy), stocks, movements, m.ID
}

func TestConsume_DrawsDownAndDerivesStatus(t *testing.T) {
	svc, stocks, movements, materialID := newStockedFixture(t, PolicyFail, 50)
	ctx := context.Background()

	res, err := svc.Consume(ctx, materialID, types.NewQuantityFromFloat64(45), "batch 7")
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(45), res.Consumed)
	assert.Equal(t, types.NewQuantityFromFloat64(5), res.Remaining)

	stock := stocks.items[materialID]
	assert.Equal(t, material.StatusLow, stock.Status)
	// cost basis untouched
	assert.True(t, stock.AvgPrice.Equal(types.MustMoney("40")))
	assert.True(t, stock.TotalValue.Equal(types.MustMoney("2000")))

	require.Len(t, movements.transactions, 1)
	assert.Equal(t, ledger.TypeOutward, movements.transactions[0].Type)
	assert.Equal(t, types.NewQuantityFromFloat64(45), movements.transactions[0].Quantity)
	assert.Equal(t, "batch 7", movements.transactions[0].Comment)
}

func TestConsume_ClampsAtZero(t *testing.T) {
	svc, stocks, movements, materialID := newStockedFixture(t, PolicyFail, 50)
	ctx := context.Background()

	_, err := svc.Consume(ctx, materialID, types.NewQuantityFromFloat64(45), "")
	require.NoError(t, err)

	res, err := svc.Consume(ctx, materialID, types.NewQuantityFromFloat64(10), "")
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(5), res.Consumed)
	assert.True(t, res.Remaining.IsZero())
	assert.Equal(t, material.StatusOut, stocks.items[materialID].Status)

	// a fully clamped draw moves nothing and books nothing
	res, err = svc.Consume(ctx, materialID, types.NewQuantityFromFloat64(3), "")
	require.NoError(t, err)
	assert.True(t, res.Consumed.IsZero())
	assert.Len(t, movements.transactions, 2)
}

func TestConsume_PicksUpRaisedReorderThreshold(t *testing.T) {
	ctx := context.Background()

	m := material.NewMaterial("MAT-2026-00001", "Rice", "kg")
	m.ID = id.New()
	m.MinLevel = types.NewQuantityFromFloat64(10)

	stock := resstock.New(m)
	supplierID := id.New()
	stock.ApplyPurchase(&supplierID, id.New(),
		types.NewQuantityFromFloat64(50), types.MustMoney("40"), "SIR-2026-00003", time.Now().UTC())

	stocks := &fakeStockRepo{items: map[id.ID]*resstock.ResStock{m.ID: stock}}
	materials := &stubMaterialRepo{items: map[id.ID]*material.Material{m.ID: m}}
	svc := NewService(stocks, &fakeLedgerRepo{}, materials, fakeTxManager{}, PolicyFail)

	// threshold raised in the catalog after the last receipt
	m.MinLevel = types.NewQuantityFromFloat64(60)

	res, err := svc.Consume(ctx, m.ID, types.NewQuantityFromFloat64(5), "")
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(45), res.Remaining)

	refreshed := stocks.items[m.ID]
	assert.Equal(t, types.NewQuantityFromFloat64(60), refreshed.MinLevel)
	assert.Equal(t, material.StatusLow, refreshed.Status)
}

func TestConsume_MissingStockPolicies(t *testing.T) {
	t.Run("skip reports zero consumption", func(t *testing.T) {
		svc, _, movements, _ := newStockedFixture(t, PolicySkip, 50)
		res, err := svc.Consume(context.Background(), id.New(), types.NewQuantityFromFloat64(5), "")
		require.NoError(t, err)
		assert.True(t, res.Skipped)
		assert.True(t, res.Consumed.IsZero())
		assert.Empty(t, movements.transactions)
	})

	t.Run("fail rejects with no-stock-record", func(t *testing.T) {
		svc, _, _, _ := newStockedFixture(t, PolicyFail, 50)
		_, err := svc.Consume(context.Background(), id.New(), types.NewQuantityFromFloat64(5), "")
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeNoStockRecord, appErr.Code)
	})
}

func TestConsumeBatch_Validation(t *testing.T) {
	svc, _, _, materialID := newStockedFixture(t, PolicyFail, 50)
	ctx := context.Background()

	_, err := svc.ConsumeBatch(ctx, nil, "")
	require.Error(t, err)

	_, err = svc.ConsumeBatch(ctx, []Item{{MaterialID: materialID, Quantity: 0}}, "")
	require.Error(t, err)

	_, err = svc.ConsumeBatch(ctx, []Item{{MaterialID: id.Nil(), Quantity: types.NewQuantityFromFloat64(1)}}, "")
	require.Error(t, err)
}

func TestConsumeBatch_MultipleMaterials(t *testing.T) {
	svc, stocks, _, materialID := newStockedFixture(t, PolicySkip, 50)
	ctx := context.Background()

	m2 := material.NewMaterial("MAT-2026-00002", "Wheat", "kg")
	m2.ID = id.New()
	stock2 := resstock.New(m2)
	supplier2 := id.New()
	stock2.ApplyPurchase(&supplier2, id.New(),
		types.NewQuantityFromFloat64(20), types.MustMoney("30"), "SIR-2026-00002", time.Now().UTC())
	stocks.items[m2.ID] = stock2

	results, err := svc.ConsumeBatch(ctx, []Item{
		{MaterialID: materialID, Quantity: types.NewQuantityFromFloat64(10)},
		{MaterialID: m2.ID, Quantity: types.NewQuantityFromFloat64(8)},
	}, "order 42")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, types.NewQuantityFromFloat64(40), results[0].Remaining)
	assert.Equal(t, types.NewQuantityFromFloat64(12), results[1].Remaining)
}
