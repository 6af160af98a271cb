package resstock

import (
	"context"

	"opstock/internal/core/id"
	"opstock/internal/domain"
	"opstock/internal/domain/catalogs/material"
)

// ListFilter selects aggregate rows.
type ListFilter struct {
	Search string
	Status material.StockStatus

	// LowStockOnly keeps only aggregates at or under the reorder threshold
	LowStockOnly bool

	Limit  int
	Offset int
}

// DefaultListFilter returns a filter with sane pagination.
func DefaultListFilter() ListFilter {
	return ListFilter{Limit: 50}
}

// Repository defines persistence for the stock aggregate register.
type Repository interface {
	// Upsert inserts or fully replaces the aggregate row for a material,
	// bumping the version. Returns a concurrent-modification error when
	// the stored version does not match.
	Upsert(ctx context.Context, stock *ResStock) error

	// GetByMaterial loads the aggregate for a material.
	GetByMaterial(ctx context.Context, materialID id.ID) (*ResStock, error)

	// GetForUpdate loads the aggregate with a row lock; must run inside a
	// transaction. Serializes approvals and consumption on one material.
	GetForUpdate(ctx context.Context, materialID id.ID) (*ResStock, error)

	// List returns aggregates matching the filter.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*ResStock], error)
}

// Service exposes read access to the stock aggregates.
type Service struct {
	repo Repository
}

// NewService creates the resstock query service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetByMaterial loads the aggregate for a material.
func (s *Service) GetByMaterial(ctx context.Context, materialID id.ID) (*ResStock, error) {
	return s.repo.GetByMaterial(ctx, materialID)
}

// List returns aggregates matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*ResStock], error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultListFilter().Limit
	}
	return s.repo.List(ctx, filter)
}

// ListLowStock returns aggregates at or under their reorder threshold.
func (s *Service) ListLowStock(ctx context.Context, filter ListFilter) (domain.ListResult[*ResStock], error) {
	filter.LowStockOnly = true
	return s.List(ctx, filter)
}
