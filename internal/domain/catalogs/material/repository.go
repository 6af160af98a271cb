package material

import (
	"context"

	"opstock/internal/core/id"
	"opstock/internal/domain"
)

// ListFilter extends the generic catalog filter with material-specific criteria.
type ListFilter struct {
	domain.ListFilter

	// Category filters by exact category
	Category string

	// Status filters by derived stock status
	Status StockStatus

	// LowStockOnly keeps only materials at or under their reorder threshold
	LowStockOnly bool
}

// Repository defines persistence for the material catalog.
type Repository interface {
	domain.CatalogRepository[*Material]

	// GetForUpdate loads a material with a row lock; must run inside a
	// transaction. Serializes the inward approval fan-out and supplier
	// adjustments on the same material.
	GetForUpdate(ctx context.Context, materialID id.ID) (*Material, error)

	// FindByNameFold returns the material with the given name, matched
	// case-insensitively, or a not-found error.
	FindByNameFold(ctx context.Context, name string) (*Material, error)

	// ListFiltered lists materials with material-specific criteria.
	ListFiltered(ctx context.Context, filter ListFilter) (domain.ListResult[*Material], error)
}
