package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"opstock/internal/core/apperror"
	"opstock/internal/core/id"
	"opstock/internal/domain"
	"opstock/internal/domain/registers/resstock"
	"opstock/internal/infrastructure/storage/postgres"
)

const resStockTable = "res_stock"

// Compile-time check.
var _ resstock.Repository = (*ResStockRepo)(nil)

// ResStockRepo implements resstock.Repository. One row per material; the
// purchase and location histories are JSONB columns carried with the row.
type ResStockRepo struct {
	txm        *postgres.TxManager
	selectCols []string
}

// NewResStockRepo creates a new stock aggregate repository.
func NewResStockRepo(txm *postgres.TxManager) *ResStockRepo {
	return &ResStockRepo{
		txm:        txm,
		selectCols: postgres.ExtractDBColumns[resstock.ResStock](),
	}
}

func (r *ResStockRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *ResStockRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(r.selectCols...).
		From(resStockTable)
}

// Upsert inserts or replaces the aggregate row with an optimistic version
// check on the update path.
func (r *ResStockRepo) Upsert(ctx context.Context, stock *resstock.ResStock) error {
	if err := stock.Validate(ctx); err != nil {
		return err
	}

	data := postgres.StructToMap(stock)
	version := stock.Version

	if version == 0 {
		// first write for this material
		data["version"] = 1

		q := r.builder().
			Insert(resStockTable).
			SetMap(data)

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}

		if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert stock aggregate: %w", err)
		}
		stock.Version = 1
		return nil
	}

	delete(data, "material_id")
	delete(data, "version")

	q := r.builder().
		Update(resStockTable).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"material_id": stock.MaterialID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update stock aggregate: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(resStockTable, stock.MaterialID.String())
	}

	stock.Version = version + 1
	return nil
}

// GetByMaterial loads the aggregate for a material.
func (r *ResStockRepo) GetByMaterial(ctx context.Context, materialID id.ID) (*resstock.ResStock, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"material_id": materialID}).
		Limit(1)

	return r.getOne(ctx, q, materialID)
}

// GetForUpdate loads the aggregate with a row lock. Concurrent approvals and
// consumption on the same material queue on this lock, so increments are
// never lost.
func (r *ResStockRepo) GetForUpdate(ctx context.Context, materialID id.ID) (*resstock.ResStock, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"material_id": materialID}).
		Suffix("FOR UPDATE")

	return r.getOne(ctx, q, materialID)
}

func (r *ResStockRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, materialID id.ID) (*resstock.ResStock, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	stock := &resstock.ResStock{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), stock, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(resStockTable, materialID.String())
		}
		return nil, fmt.Errorf("get stock aggregate: %w", err)
	}

	return stock, nil
}

// List returns aggregates matching the filter.
func (r *ResStockRepo) List(ctx context.Context, filter resstock.ListFilter) (domain.ListResult[*resstock.ResStock], error) {
	result := domain.ListResult[*resstock.ResStock]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"material_name": "%" + filter.Search + "%"})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": string(filter.Status)})
	}
	if filter.LowStockOnly {
		q = q.Where("remaining <= min_level")
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("material_name ASC")
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
		return result, fmt.Errorf("list stock aggregates: %w", err)
	}

	return result, nil
}
