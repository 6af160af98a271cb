// Package document_repo provides PostgreSQL implementations for document
// repositories.
package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"opstock/internal/core/apperror"
	"opstock/internal/core/id"
	"opstock/internal/domain"
	"opstock/internal/domain/documents/inward"
	"opstock/internal/infrastructure/storage/postgres"
)

const inwardRequestsTable = "inward_requests"

// Compile-time check.
var _ inward.Repository = (*InwardRepo)(nil)

// InwardRepo implements inward.Repository.
type InwardRepo struct {
	txm        *postgres.TxManager
	selectCols []string
}

// NewInwardRepo creates a new inward request repository.
func NewInwardRepo(txm *postgres.TxManager) *InwardRepo {
	return &InwardRepo{
		txm:        txm,
		selectCols: postgres.ExtractDBColumns[inward.Request](),
	}
}

func (r *InwardRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *InwardRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(r.selectCols...).
		From(inwardRequestsTable)
}

// Create inserts a new request.
func (r *InwardRepo) Create(ctx context.Context, req *inward.Request) error {
	data := postgres.StructToMap(req)

	q := r.builder().
		Insert(inwardRequestsTable).
		SetMap(data)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert inward request: %w", err)
	}

	return nil
}

// GetByID retrieves a request by ID.
func (r *InwardRepo) GetByID(ctx context.Context, requestID id.ID) (*inward.Request, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": requestID}), requestID.String())
}

// GetByNumber retrieves a request by reference number.
func (r *InwardRepo) GetByNumber(ctx context.Context, number string) (*inward.Request, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"number": number}), number)
}

// GetForUpdate retrieves a request with a row lock. The lock makes a second
// concurrent approval wait and then observe processed=true.
func (r *InwardRepo) GetForUpdate(ctx context.Context, requestID id.ID) (*inward.Request, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": requestID}).
		Suffix("FOR UPDATE")
	return r.getOne(ctx, q, requestID.String())
}

func (r *InwardRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*inward.Request, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	req := &inward.Request{}
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), req, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(inwardRequestsTable, key)
		}
		return nil, fmt.Errorf("get inward request: %w", err)
	}

	return req, nil
}

// Update persists the decision fields with an optimistic version check.
func (r *InwardRepo) Update(ctx context.Context, req *inward.Request) error {
	data := postgres.StructToMap(req)
	version, ok := data["version"].(int)
	if !ok {
		return fmt.Errorf("request has no 'version' field or it is not an int")
	}

	delete(data, "id")
	delete(data, "version")
	delete(data, "created_at")
	delete(data, "created_by")
	data["updated_at"] = time.Now().UTC()

	q := r.builder().
		Update(inwardRequestsTable).
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": req.ID}).
		Where(squirrel.Eq{"version": version})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update inward request: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(inwardRequestsTable, req.ID.String())
	}

	return nil
}

// List retrieves requests with filtering, newest first.
func (r *InwardRepo) List(ctx context.Context, filter inward.ListFilter) (domain.ListResult[*inward.Request], error) {
	result := domain.ListResult[*inward.Request]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()

	if filter.MaterialID != nil {
		q = q.Where(squirrel.Eq{"material_id": *filter.MaterialID})
	}
	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}
	if filter.LocationID != nil {
		q = q.Where(squirrel.Eq{"location_id": *filter.LocationID})
	}
	if filter.Status != "" {
		q = q.Where(squirrel.Eq{"status": string(filter.Status)})
	}
	if filter.From != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.From})
	}
	if filter.To != nil {
		q = q.Where(squirrel.Lt{"date": *filter.To})
	}

	countQ := r.builder().Select("COUNT(*)").FromSelect(q, "sub")
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("date DESC", "number DESC")
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
		return result, fmt.Errorf("list inward requests: %w", err)
	}

	return result, nil
}
