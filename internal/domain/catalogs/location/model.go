// Package location provides the storage-location catalog
// (warehouses, yards, production sites).
package location

import (
	"context"

	"opstock/internal/core/apperror"
	"opstock/internal/core/entity"
)

// Type classifies a storage location.
type Type string

const (
	TypeWarehouse Type = "warehouse"
	TypeYard      Type = "yard"
	TypeSite      Type = "site"
)

// Location represents a place where stock is held.
type Location struct {
	entity.Catalog

	// Type - warehouse, yard or production site
	Type Type `db:"type" json:"type"`

	// Address - physical address
	Address string `db:"address" json:"address,omitempty"`

	// Active locations can receive new stock
	Active bool `db:"active" json:"active"`
}

// NewLocation creates a new active location.
func NewLocation(code, name string, locType Type) *Location {
	return &Location{
		Catalog: entity.NewCatalog(code, name),
		Type:    locType,
		Active:  true,
	}
}

// Validate implements entity.Validatable interface.
func (l *Location) Validate(ctx context.Context) error {
	if err := l.Catalog.Validate(ctx); err != nil {
		return err
	}

	switch l.Type {
	case TypeWarehouse, TypeYard, TypeSite:
	default:
		return apperror.NewValidation("invalid location type").
			WithDetail("field", "type").
			WithDetail("value", string(l.Type))
	}

	return nil
}
