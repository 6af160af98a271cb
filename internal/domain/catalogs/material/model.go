// Package material provides the raw-material catalog.
// A material is the master record for an ingredient or construction material:
// identity, unit of measure, reorder threshold and the embedded per-supplier
// and per-location sub-ledgers.
package material

import (
	"context"
	"time"

	"opstock/internal/core/apperror"
	"opstock/internal/core/entity"
	"opstock/internal/core/id"
	"opstock/internal/core/types"
)

// StockStatus is the derived availability state of a material.
type StockStatus string

const (
	// StatusOK - total quantity above the reorder threshold
	StatusOK StockStatus = "ok"
	// StatusLow - total quantity at or below the reorder threshold, but not zero
	StatusLow StockStatus = "low"
	// StatusOut - total quantity is zero
	StatusOut StockStatus = "out"
)

// DefaultCategory is applied when a material is created or updated without one.
const DefaultCategory = "General"

// SupplierEntry is the per-supplier sub-ledger embedded in a material:
// how much of this material came from the supplier and at what last price.
type SupplierEntry struct {
	Quantity  types.Quantity `json:"quantity"`
	Price     types.Money    `json:"price"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// LocationEntry is the per-location sub-ledger embedded in a material.
// Informational mirror of the standalone location inventory rows; both are
// written only by the inward approval fan-out.
type LocationEntry struct {
	Quantity  types.Quantity `json:"quantity"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Material represents a raw material in the catalog.
//
// Suppliers and Locations are keyed maps (supplier/location UUID string) so
// the find-or-insert pattern on approval is O(1) and explicit, instead of a
// linear scan over an embedded array.
type Material struct {
	entity.Catalog

	// Unit of measure (kg, l, pcs, ...)
	Unit string `db:"unit" json:"unit"`

	// Category groups materials for filtering ("General" when not set)
	Category string `db:"category" json:"category"`

	// MinLevel is the reorder threshold
	MinLevel types.Quantity `db:"min_level" json:"minLevel"`

	// Description is a detailed description
	Description *string `db:"description" json:"description,omitempty"`

	// Status is derived from TotalQuantity vs MinLevel; recomputed after
	// every mutation, persisted for cheap low-stock queries
	Status StockStatus `db:"status" json:"status"`

	// TotalQuantity is the sum over location entries, persisted alongside
	// Status for the same reason
	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`

	// Suppliers - per-supplier quantities and last prices (JSONB)
	Suppliers SupplierMap `db:"suppliers" json:"suppliers"`

	// Locations - per-location quantities (JSONB)
	Locations LocationMap `db:"locations" json:"locations"`
}

// SupplierMap keys supplier entries by supplier UUID string.
type SupplierMap map[string]SupplierEntry

// LocationMap keys location entries by location UUID string.
type LocationMap map[string]LocationEntry

// NewMaterial creates a new material with required fields.
func NewMaterial(code, name, unit string) *Material {
	return &Material{
		Catalog:   entity.NewCatalog(code, name),
		Unit:      unit,
		Category:  DefaultCategory,
		Status:    StatusOut,
		Suppliers: make(SupplierMap),
		Locations: make(LocationMap),
	}
}

// Validate implements entity.Validatable interface.
func (m *Material) Validate(ctx context.Context) error {
	if err := m.Catalog.Validate(ctx); err != nil {
		return err
	}

	if m.Unit == "" {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unit")
	}

	if m.MinLevel.IsNegative() {
		return apperror.NewValidation("minimum level cannot be negative").
			WithDetail("field", "minLevel")
	}

	for supplierID, entry := range m.Suppliers {
		if entry.Quantity.IsNegative() {
			return apperror.NewValidation("supplier quantity cannot be negative").
				WithDetail("field", "suppliers").
				WithDetail("supplierId", supplierID)
		}
	}

	for locationID, entry := range m.Locations {
		if entry.Quantity.IsNegative() {
			return apperror.NewValidation("location quantity cannot be negative").
				WithDetail("field", "locations").
				WithDetail("locationId", locationID)
		}
	}

	return nil
}

// AdjustSupplierQuantity applies delta to the supplier entry, inserting it if
// absent. Decrements clamp at zero. The price is updated only on increments
// when a new price is provided.
func (m *Material) AdjustSupplierQuantity(supplierID id.ID, delta types.Quantity, newPrice *types.Money) {
	if m.Suppliers == nil {
		m.Suppliers = make(SupplierMap)
	}

	key := supplierID.String()
	entry := m.Suppliers[key]

	entry.Quantity += delta
	if entry.Quantity.IsNegative() {
		entry.Quantity = 0
	}
	if delta.IsPositive() && newPrice != nil {
		entry.Price = *newPrice
	}
	entry.UpdatedAt = time.Now().UTC()

	m.Suppliers[key] = entry
}

// AdjustLocationQuantity applies delta to the location entry, inserting it if
// absent. Decrements clamp at zero.
func (m *Material) AdjustLocationQuantity(locationID id.ID, delta types.Quantity) {
	if m.Locations == nil {
		m.Locations = make(LocationMap)
	}

	key := locationID.String()
	entry := m.Locations[key]

	entry.Quantity += delta
	if entry.Quantity.IsNegative() {
		entry.Quantity = 0
	}
	entry.UpdatedAt = time.Now().UTC()

	m.Locations[key] = entry
}

// SumLocationQuantity returns the total quantity across location entries.
// This is the quantity the derived status is computed from.
func (m *Material) SumLocationQuantity() types.Quantity {
	var total types.Quantity
	for _, entry := range m.Locations {
		total += entry.Quantity
	}
	return total
}

// SumSupplierQuantity returns the total quantity across supplier entries.
func (m *Material) SumSupplierQuantity() types.Quantity {
	var total types.Quantity
	for _, entry := range m.Suppliers {
		total += entry.Quantity
	}
	return total
}

// RecomputeStatus refreshes TotalQuantity and the derived status:
// out when total is zero, low when 0 < total <= minLevel, ok otherwise.
// Must be called immediately after any quantity mutation.
func (m *Material) RecomputeStatus() {
	m.TotalQuantity = m.SumLocationQuantity()
	m.Status = DeriveStatus(m.TotalQuantity, m.MinLevel)
}

// DeriveStatus computes the stock status for a quantity against a threshold.
func DeriveStatus(total, minLevel types.Quantity) StockStatus {
	switch {
	case total.IsZero() || total.IsNegative():
		return StatusOut
	case total <= minLevel:
		return StatusLow
	default:
		return StatusOK
	}
}

// IsLowStock reports whether the material is at or under its reorder threshold.
func (m *Material) IsLowStock() bool {
	return m.Status == StatusLow || m.Status == StatusOut
}
