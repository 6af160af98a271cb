// Package register_repo provides PostgreSQL implementations for register
// repositories.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"opstock/internal/core/apperror"
	"opstock/internal/core/id"
	"opstock/internal/domain"
	"opstock/internal/domain/registers/ledger"
	"opstock/internal/infrastructure/storage/postgres"
)

const (
	stockTransactionsTable = "stock_transactions"
	locationInventoryTable = "location_inventory"
)

// Compile-time check.
var _ ledger.Repository = (*LedgerRepo)(nil)

// LedgerRepo implements ledger.Repository. Transaction rows are insert-only;
// location balances move only through positive increments.
type LedgerRepo struct {
	txm        *postgres.TxManager
	selectCols []string
}

// NewLedgerRepo creates a new stock transaction register repository.
func NewLedgerRepo(txm *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txm:        txm,
		selectCols: postgres.ExtractDBColumns[ledger.StockTransaction](),
	}
}

func (r *LedgerRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Append inserts one immutable transaction row.
func (r *LedgerRepo) Append(ctx context.Context, tx *ledger.StockTransaction) error {
	if err := tx.Validate(ctx); err != nil {
		return err
	}

	q := r.builder().
		Insert(stockTransactionsTable).
		SetMap(postgres.StructToMap(tx))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert stock transaction: %w", err)
	}

	return nil
}

// GetByID loads one transaction row.
func (r *LedgerRepo) GetByID(ctx context.Context, txID id.ID) (*ledger.StockTransaction, error) {
	q := r.builder().
		Select(r.selectCols...).
		From(stockTransactionsTable).
		Where(squirrel.Eq{"id": txID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	tx := &ledger.StockTransaction{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), tx, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(stockTransactionsTable, txID.String())
		}
		return nil, fmt.Errorf("get stock transaction: %w", err)
	}

	return tx, nil
}

// List returns transaction history, newest first.
func (r *LedgerRepo) List(ctx context.Context, filter ledger.TransactionFilter) (domain.ListResult[*ledger.StockTransaction], error) {
	result := domain.ListResult[*ledger.StockTransaction]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.builder().
		Select(r.selectCols...).
		From(stockTransactionsTable)

	if filter.MaterialID != nil {
		q = q.Where(squirrel.Eq{"material_id": *filter.MaterialID})
	}
	if filter.LocationID != nil {
		q = q.Where(squirrel.Eq{"location_id": *filter.LocationID})
	}
	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if len(filter.Types) > 0 {
		types := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			types = append(types, string(t))
		}
		q = q.Where(squirrel.Eq{"type": types})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"occurred_at": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"occurred_at": *filter.To})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("occurred_at DESC", "id DESC")
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

	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list stock transactions: %w", err)
	}

	return result, nil
}

// IncrementInventory adds the receipt delta to the (material, location)
// balance, creating the row when absent. Cost price, batch and expiry follow
// the latest receipt.
func (r *LedgerRepo) IncrementInventory(ctx context.Context, upd ledger.InventoryUpdate) error {
	if !upd.Delta.IsPositive() {
		return apperror.NewValidation("inventory delta must be positive").
			WithDetail("delta", upd.Delta.String())
	}

	sql := `
		INSERT INTO location_inventory (material_id, location_id, quantity, cost_price, batch_number, expiry_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (material_id, location_id)
		DO UPDATE SET
			quantity = location_inventory.quantity + EXCLUDED.quantity,
			cost_price = EXCLUDED.cost_price,
			batch_number = COALESCE(EXCLUDED.batch_number, location_inventory.batch_number),
			expiry_date = COALESCE(EXCLUDED.expiry_date, location_inventory.expiry_date),
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.txm.GetQuerier(ctx).Exec(ctx, sql,
		upd.MaterialID, upd.LocationID, upd.Delta, upd.CostPrice, upd.BatchNumber, upd.ExpiryDate, upd.At)
	if err != nil {
		return fmt.Errorf("upsert location inventory: %w", err)
	}

	return nil
}

// GetInventory loads one balance row.
func (r *LedgerRepo) GetInventory(ctx context.Context, materialID, locationID id.ID) (*ledger.LocationInventory, error) {
	q := r.builder().
		Select(postgres.ExtractDBColumns[ledger.LocationInventory]()...).
		From(locationInventoryTable).
		Where(squirrel.Eq{
			"material_id": materialID,
			"location_id": locationID,
		}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	inv := &ledger.LocationInventory{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(locationInventoryTable,
				materialID.String()+"/"+locationID.String())
		}
		return nil, fmt.Errorf("get location inventory: %w", err)
	}

	return inv, nil
}

// ListInventoryByMaterial returns all location balances for a material.
func (r *LedgerRepo) ListInventoryByMaterial(ctx context.Context, materialID id.ID) ([]*ledger.LocationInventory, error) {
	q := r.builder().
		Select(postgres.ExtractDBColumns[ledger.LocationInventory]()...).
		From(locationInventoryTable).
		Where(squirrel.Eq{"material_id": materialID}).
		OrderBy("location_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*ledger.LocationInventory
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list location inventory: %w", err)
	}

	return items, nil
}
