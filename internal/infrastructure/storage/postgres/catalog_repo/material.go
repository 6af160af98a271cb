package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"opstock/internal/domain"
	"opstock/internal/domain/catalogs/material"
	"opstock/internal/infrastructure/storage/postgres"
)

const materialsTable = "materials"

// Compile-time check.
var _ material.Repository = (*MaterialRepo)(nil)

// MaterialRepo implements material.Repository.
// The supplier and location sub-ledgers are stored as JSONB columns and
// travel with the row, so a single FOR UPDATE lock covers them.
type MaterialRepo struct {
	*BaseCatalogRepo[*material.Material]
}

// NewMaterialRepo creates a new material repository.
func NewMaterialRepo(txm *postgres.TxManager) *MaterialRepo {
	return &MaterialRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			materialsTable,
			postgres.ExtractDBColumns[material.Material](),
			func() *material.Material { return &material.Material{} },
		),
	}
}

// FindByNameFold returns the material with the given name, matched
// case-insensitively.
func (r *MaterialRepo) FindByNameFold(ctx context.Context, name string) (*material.Material, error) {
	q := r.BaseSelect().
		Where(squirrel.Expr("lower(name) = lower(?)", name)).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// ListFiltered lists materials with material-specific criteria.
func (r *MaterialRepo) ListFiltered(ctx context.Context, filter material.ListFilter) (domain.ListResult[*material.Material], error) {
	result := domain.ListResult[*material.Material]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.BaseSelect()
	q = r.ApplyListFilter(q, filter.ListFilter)

	if filter.Category != "" {
		q = q.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": string(filter.Status)})
	}
	if filter.LowStockOnly {
		q = q.Where("total_quantity <= min_level")
	}

	total, err := r.Count(ctx, q)
	if err != nil {
		return result, err
	}
	result.TotalCount = total

	q = q.OrderBy("name ASC")
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

	if err := pgxscan.Select(ctx, r.Querier(ctx), &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list materials: %w", err)
	}

	return result, nil
}
