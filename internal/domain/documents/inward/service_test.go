package inward

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opstock/internal/core/apperror"
	"opstock/internal/core/id"
	"opstock/internal/core/types"
	"opstock/internal/domain"
	"opstock/internal/domain/catalogs/location"
	"opstock/internal/domain/catalogs/material"
	"opstock/internal/domain/catalogs/supplier"
	"opstock/internal/domain/registers/ledger"
	"opstock/internal/domain/registers/resstock"
)

// --- in-memory fakes ---

type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeMaterialRepo struct {
	items map[id.ID]*material.Material
}

func newFakeMaterialRepo(items ...*material.Material) *fakeMaterialRepo {
	r := &fakeMaterialRepo{items: make(map[id.ID]*material.Material)}
	for _, m := range items {
		r.items[m.ID] = m
	}
	return r
}

func (r *fakeMaterialRepo) Create(ctx context.Context, m *material.Material) error {
	r.items[m.ID] = m
	return nil
}

func (r *fakeMaterialRepo) GetByID(ctx context.Context, materialID id.ID) (*material.Material, error) {
	m, ok := r.items[materialID]
	if !ok {
		return nil, apperror.NewNotFound("material", materialID.String())
	}
	return m, nil
}

func (r *fakeMaterialRepo) GetByCode(ctx context.Context, code string) (*material.Material, error) {
	for _, m := range r.items {
		if m.Code == code {
			return m, nil
		}
	}
	return nil, apperror.NewNotFound("material", code)
}

func (r *fakeMaterialRepo) GetForUpdate(ctx context.Context, materialID id.ID) (*material.Material, error) {
	return r.GetByID(ctx, materialID)
}

func (r *fakeMaterialRepo) FindByNameFold(ctx context.Context, name string) (*material.Material, error) {
	for _, m := range r.items {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return nil, apperror.NewNotFound("material", name)
}

func (r *fakeMaterialRepo) Update(ctx context.Context, m *material.Material) error {
	r.items[m.ID] = m
	return nil
}

func (r *fakeMaterialRepo) Delete(ctx context.Context, materialID id.ID) error { return nil }

func (r *fakeMaterialRepo) SetDeletionMark(ctx context.Context, materialID id.ID, marked bool) error {
	return nil
}

func (r *fakeMaterialRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*material.Material], error) {
	return domain.ListResult[*material.Material]{}, nil
}

func (r *fakeMaterialRepo) ListFiltered(ctx context.Context, filter material.ListFilter) (domain.ListResult[*material.Material], error) {
	return domain.ListResult[*material.Material]{}, nil
}

func (r *fakeMaterialRepo) Exists(ctx context.Context, materialID id.ID) (bool, error) {
	_, ok := r.items[materialID]
	return ok, nil
}

func (r *fakeMaterialRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := r.GetByCode(ctx, code)
	return err == nil, nil
}

type stubCatalogRepo[T interface {
	Validate(ctx context.Context) error
}] struct {
	ids map[id.ID]bool
}

func (r *stubCatalogRepo[T]) Create(ctx context.Context, e T) error  { return nil }
func (r *stubCatalogRepo[T]) Update(ctx context.Context, e T) error  { return nil }
func (r *stubCatalogRepo[T]) Delete(ctx context.Context, i id.ID) error { return nil }
func (r *stubCatalogRepo[T]) SetDeletionMark(ctx context.Context, i id.ID, m bool) error {
	return nil
}
func (r *stubCatalogRepo[T]) GetByID(ctx context.Context, i id.ID) (T, error) {
	var zero T
	return zero, apperror.NewNotFound("entity", i.String())
}
func (r *stubCatalogRepo[T]) GetByCode(ctx context.Context, code string) (T, error) {
	var zero T
	return zero, apperror.NewNotFound("entity", code)
}
func (r *stubCatalogRepo[T]) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[T], error) {
	return domain.ListResult[T]{}, nil
}
func (r *stubCatalogRepo[T]) Exists(ctx context.Context, i id.ID) (bool, error) {
	return r.ids[i], nil
}
func (r *stubCatalogRepo[T]) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return false, nil
}

type fakeStockRepo struct {
	items map[id.ID]*resstock.ResStock
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{items: make(map[id.ID]*resstock.ResStock)}
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
	inventory    map[string]types.Quantity
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{inventory: make(map[string]types.Quantity)}
}

func invKey(materialID, locationID id.ID) string {
	return materialID.String() + "|" + locationID.String()
}

func (r *fakeLedgerRepo) Append(ctx context.Context, tx *ledger.StockTransaction) error {
	r.transactions = append(r.transactions, tx)
	return nil
}

func (r *fakeLedgerRepo) GetByID(ctx context.Context, txID id.ID) (*ledger.StockTransaction, error) {
	for _, tx := range r.transactions {
		if tx.ID == txID {
			return tx, nil
		}
	}
	return nil, apperror.NewNotFound("stock transaction", txID.String())
}

func (r *fakeLedgerRepo) List(ctx context.Context, filter ledger.TransactionFilter) (domain.ListResult[*ledger.StockTransaction], error) {
	return domain.ListResult[*ledger.StockTransaction]{Items: r.transactions}, nil
}

func (r *fakeLedgerRepo) IncrementInventory(ctx context.Context, upd ledger.InventoryUpdate) error {
	r.inventory[invKey(upd.MaterialID, upd.LocationID)] += upd.Delta
	return nil
}

func (r *fakeLedgerRepo) GetInventory(ctx context.Context, materialID, locationID id.ID) (*ledger.LocationInventory, error) {
	qty, ok := r.inventory[invKey(materialID, locationID)]
	if !ok {
		return nil, apperror.NewNotFound("location inventory", invKey(materialID, locationID))
	}
	return &ledger.LocationInventory{MaterialID: materialID, LocationID: locationID, Quantity: qty}, nil
}

func (r *fakeLedgerRepo) ListInventoryByMaterial(ctx context.Context, materialID id.ID) ([]*ledger.LocationInventory, error) {
	return nil, nil
}

type fakeRequestRepo struct {
	items map[id.ID]*Request
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{items: make(map[id.ID]*Request)}
}

func (r *fakeRequestRepo) Create(ctx context.Context, req *Request) error {
	r.items[req.ID] = req
	return nil
}

func (r *fakeRequestRepo) GetByID(ctx context.Context, requestID id.ID) (*Request, error) {
	req, ok := r.items[requestID]
	if !ok {
		return nil, apperror.NewNotFound("inward request", requestID.String())
	}
	return req, nil
}

func (r *fakeRequestRepo) GetByNumber(ctx context.Context, number string) (*Request, error) {
	for _, req := range r.items {
		if req.Number == number {
			return req, nil
		}
	}
	return nil, apperror.NewNotFound("inward request", number)
}

func (r *fakeRequestRepo) GetForUpdate(ctx context.Context, requestID id.ID) (*Request, error) {
	return r.GetByID(ctx, requestID)
}

func (r *fakeRequestRepo) Update(ctx context.Context, req *Request) error {
	r.items[req.ID] = req
	return nil
}

func (r *fakeRequestRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Request], error) {
	return domain.ListResult[*Request]{}, nil
}

// --- fixture ---

type fixture struct {
	service   *Service
	requests  *fakeRequestRepo
	materials *fakeMaterialRepo
	stocks    *fakeStockRepo
	ledger    *fakeLedgerRepo

	materialID id.ID
	supplierID id.ID
	locationID id.ID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	m := material.NewMaterial("MAT-2026-00001", "Rice", "kg")
	m.ID = id.New()
	m.MinLevel = types.NewQuantityFromFloat64(10)

	supplierID := id.New()
	locationID := id.New()

	f := &fixture{
		requests:   newFakeRequestRepo(),
		materials:  newFakeMaterialRepo(m),
		stocks:     newFakeStockRepo(),
		ledger:     newFakeLedgerRepo(),
		materialID: m.ID,
		supplierID: supplierID,
		locationID: locationID,
	}

	f.service = NewService(Deps{
		Repo:      f.requests,
		Materials: f.materials,
		Suppliers: &stubCatalogRepo[*supplier.Supplier]{ids: map[id.ID]bool{supplierID: true}},
		Locations: &stubCatalogRepo[*location.Location]{ids: map[id.ID]bool{locationID: true}},
		Stocks:    f.stocks,
		Movements: f.ledger,
		TxManager: fakeTxManager{},
	})
	return f
}

func (f *fixture) submit(t *testing.T, number string, qty float64, price string) *Request {
	t.Helper()
	req := NewRequest(f.materialID, f.locationID, &f.supplierID,
		types.NewQuantityFromFloat64(qty), types.MustMoney(price))
	req.Number = number
	req.RequestedBy = "storekeeper"
	require.NoError(t, f.service.Submit(context.Background(), req))
	return req
}

// --- tests ---

func TestSubmit_ComputesTotalValue(t *testing.T) {
	f := newFixture(t)
	req := f.submit(t, "SIR-2026-00001", 50, "40")

	assert.Equal(t, StatusPending, req.Status)
	assert.False(t, req.Processed)
	assert.True(t, req.TotalValue.Equal(types.MustMoney("2000")))
}

func TestSubmit_UnknownReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := NewRequest(id.New(), f.locationID, &f.supplierID,
		types.NewQuantityFromFloat64(1), types.MustMoney("1"))
	req.Number = "SIR-2026-00099"
	err := f.service.Submit(ctx, req)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))

	unknownSupplier := id.New()
	req = NewRequest(f.materialID, f.locationID, &unknownSupplier,
		types.NewQuantityFromFloat64(1), types.MustMoney("1"))
	req.Number = "SIR-2026-00099"
	err = f.service.Submit(ctx, req)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestSubmit_RequiresPositiveCostPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// a free receipt would dilute the weighted-average price
	req := NewRequest(f.materialID, f.locationID, &f.supplierID,
		types.NewQuantityFromFloat64(10), types.ZeroMoney())
	req.Number = "SIR-2026-00098"
	err := f.service.Submit(ctx, req)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
	assert.Equal(t, "costPrice", appErr.Details["field"])

	req = NewRequest(f.materialID, f.locationID, &f.supplierID,
		types.NewQuantityFromFloat64(10), types.MustMoney("-5"))
	req.Number = "SIR-2026-00098"
	err = f.service.Submit(ctx, req)
	require.Error(t, err)
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestApprove_PostsFanOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.submit(t, "SIR-2026-00001", 50, "40")

	approved, err := f.service.Approve(ctx, req.ID, "manager", "checked")
	require.NoError(t, err)

	// request decision
	assert.Equal(t, StatusApproved, approved.Status)
	assert.True(t, approved.Processed)
	require.NotNil(t, approved.DecidedBy)
	assert.Equal(t, "manager", *approved.DecidedBy)
	require.NotNil(t, approved.TransactionID)

	// material sub-ledgers and derived status
	m, err := f.materials.GetByID(ctx, f.materialID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(50), m.Suppliers[f.supplierID.String()].Quantity)
	assert.True(t, m.Suppliers[f.supplierID.String()].Price.Equal(types.MustMoney("40")))
	assert.Equal(t, types.NewQuantityFromFloat64(50), m.Locations[f.locationID.String()].Quantity)
	assert.Equal(t, material.StatusOK, m.Status)

	// transaction register
	require.Len(t, f.ledger.transactions, 1)
	movement := f.ledger.transactions[0]
	assert.Equal(t, ledger.TypeInward, movement.Type)
	assert.Equal(t, "SIR-2026-00001", movement.Reference)
	assert.Equal(t, *approved.TransactionID, movement.ID)

	// location balance
	inv, err := f.ledger.GetInventory(ctx, f.materialID, f.locationID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(50), inv.Quantity)

	// stock aggregate
	stock, err := f.stocks.GetByMaterial(ctx, f.materialID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(50), stock.Remaining)
	assert.True(t, stock.AvgPrice.Equal(types.MustMoney("40")))
	assert.Equal(t, material.StatusOK, stock.Status)
}

func TestApprove_WithoutSupplier(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := NewRequest(f.materialID, f.locationID, nil,
		types.NewQuantityFromFloat64(15), types.MustMoney("20"))
	req.Number = "SIR-2026-00005"
	req.RequestedBy = "storekeeper"
	require.NoError(t, f.service.Submit(ctx, req))

	_, err := f.service.Approve(ctx, req.ID, "manager", "")
	require.NoError(t, err)

	// location ledger and aggregate move, supplier sub-ledger stays empty
	m, err := f.materials.GetByID(ctx, f.materialID)
	require.NoError(t, err)
	assert.Empty(t, m.Suppliers)
	assert.Equal(t, types.NewQuantityFromFloat64(15), m.Locations[f.locationID.String()].Quantity)

	require.Len(t, f.ledger.transactions, 1)
	assert.Nil(t, f.ledger.transactions[0].SupplierID)

	stock, err := f.stocks.GetByMaterial(ctx, f.materialID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(15), stock.Remaining)
	require.Len(t, stock.PurchaseHistory, 1)
	assert.Nil(t, stock.PurchaseHistory[0].SupplierID)
}

func TestApprove_SecondCallIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.submit(t, "SIR-2026-00001", 50, "40")

	_, err := f.service.Approve(ctx, req.ID, "manager", "")
	require.NoError(t, err)

	again, err := f.service.Approve(ctx, req.ID, "manager", "")
	require.NoError(t, err)
	assert.True(t, again.Processed)

	// nothing posted twice
	assert.Len(t, f.ledger.transactions, 1)
	stock, err := f.stocks.GetByMaterial(ctx, f.materialID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(50), stock.Remaining)
	assert.Equal(t, types.NewQuantityFromFloat64(50), stock.TotalPurchased)
}

func TestApprove_WeightedAverageAccumulates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.submit(t, "SIR-2026-00001", 50, "40")
	_, err := f.service.Approve(ctx, first.ID, "manager", "")
	require.NoError(t, err)

	second := f.submit(t, "SIR-2026-00002", 20, "50")
	_, err = f.service.Approve(ctx, second.ID, "manager", "")
	require.NoError(t, err)

	stock, err := f.stocks.GetByMaterial(ctx, f.materialID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(70), stock.TotalPurchased)
	assert.True(t, stock.TotalValue.Equal(types.MustMoney("3000")))
	assert.InDelta(t, 42.857142, stock.AvgPrice.InexactFloat64(), 0.0001)
	assert.Len(t, stock.PurchaseHistory, 2)
}

func TestApprove_RejectedRequestFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.submit(t, "SIR-2026-00001", 50, "40")

	_, err := f.service.Reject(ctx, req.ID, "manager", "wrong supplier")
	require.NoError(t, err)

	_, err = f.service.Approve(ctx, req.ID, "manager", "")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeRequestRejected, appErr.Code)
	assert.Empty(t, f.ledger.transactions)
}

func TestApprove_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Approve(context.Background(), id.New(), "manager", "")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("requires a reason", func(t *testing.T) {
		req := f.submit(t, "SIR-2026-00001", 5, "10")
		_, err := f.service.Reject(ctx, req.ID, "manager", "  ")
		require.Error(t, err)
	})

	t.Run("processed request cannot be rejected", func(t *testing.T) {
		req := f.submit(t, "SIR-2026-00002", 5, "10")
		_, err := f.service.Approve(ctx, req.ID, "manager", "")
		require.NoError(t, err)

		_, err = f.service.Reject(ctx, req.ID, "manager", "too late")
		require.Error(t, err)
		assert.True(t, apperror.IsAlreadyProcessed(err))
	})

	t.Run("rejection touches no stock", func(t *testing.T) {
		before := len(f.ledger.transactions)
		req := f.submit(t, "SIR-2026-00003", 5, "10")
		rejected, err := f.service.Reject(ctx, req.ID, "manager", "damaged goods")
		require.NoError(t, err)
		assert.Equal(t, StatusRejected, rejected.Status)
		assert.False(t, rejected.Processed)
		assert.Len(t, f.ledger.transactions, before)
	})
}

func TestFastTrack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := NewRequest(f.materialID, f.locationID, &f.supplierID,
		types.NewQuantityFromFloat64(30), types.MustMoney("25"))
	req.Number = "SIR-2026-00010"

	result, err := f.service.FastTrack(ctx, req, "manager")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, result.Status)
	assert.True(t, result.Processed)

	stock, err := f.stocks.GetByMaterial(ctx, f.materialID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(30), stock.Remaining)
	require.Len(t, f.ledger.transactions, 1)
}
