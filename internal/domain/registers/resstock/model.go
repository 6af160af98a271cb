// Package resstock provides the production-facing stock aggregate: one row
// per material carrying the quantities purchased and remaining, the running
// total value and the weighted-average purchase price.
//
// The aggregate is decoupled from the per-location balances in the ledger
// register: approvals feed both, but production consumption draws down only
// this register. The average price reflects purchases alone and is never
// changed by consumption.
package resstock

import (
	"context"
	"time"

	"opstock/internal/core/apperror"
	"opstock/internal/core/id"
	"opstock/internal/core/types"
	"opstock/internal/domain/catalogs/material"
)

// PurchaseRecord is one purchase appended to the aggregate history.
type PurchaseRecord struct {
	// SupplierID is nil when the receipt carried no supplier
	SupplierID *id.ID         `json:"supplierId,omitempty"`
	Quantity   types.Quantity `json:"quantity"`
	Price      types.Money    `json:"price"`
	Value      types.Money    `json:"value"`
	Reference  string         `json:"reference"`
	ReceivedAt time.Time      `json:"receivedAt"`
}

// LocationRecord is one signed movement appended to the location history:
// positive for receipts into a location, negative for consumption. The
// location is nil on consumption entries, which draw from the aggregate
// remainder rather than a specific location.
type LocationRecord struct {
	LocationID *id.ID         `json:"locationId,omitempty"`
	Quantity   types.Quantity `json:"quantity"`
	Note       string         `json:"note,omitempty"`
	RecordedAt time.Time      `json:"recordedAt"`
}

// ResStock is the per-material stock aggregate.
type ResStock struct {
	MaterialID id.ID `db:"material_id" json:"materialId"`

	// MaterialName is denormalized for list views
	MaterialName string `db:"material_name" json:"materialName"`

	Unit string `db:"unit" json:"unit"`

	// MinLevel mirrors the catalog's reorder threshold at last update
	MinLevel types.Quantity `db:"min_level" json:"minLevel"`

	// TotalPurchased - cumulative quantity received, never decreases
	TotalPurchased types.Quantity `db:"total_purchased" json:"totalPurchased"`

	// Remaining - quantity still available to production,
	// always within [0, TotalPurchased]
	Remaining types.Quantity `db:"remaining" json:"remaining"`

	// TotalValue - cumulative purchase value, never decreases
	TotalValue types.Money `db:"total_value" json:"totalValue"`

	// AvgPrice = TotalValue / TotalPurchased; untouched by consumption
	AvgPrice types.Money `db:"avg_price" json:"avgPrice"`

	// Status is derived from Remaining vs MinLevel
	Status material.StockStatus `db:"status" json:"status"`

	PurchaseHistory PurchaseHistory `db:"purchase_history" json:"purchaseHistory"`
	LocationHistory LocationHistory `db:"location_history" json:"locationHistory"`

	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Version for optimistic locking
	Version int `db:"version" json:"version"`
}

// PurchaseHistory is stored as a JSONB array, newest last.
type PurchaseHistory []PurchaseRecord

// LocationHistory is stored as a JSONB array, newest last.
type LocationHistory []LocationRecord

// New creates an empty aggregate for a material.
func New(m *material.Material) *ResStock {
	return &ResStock{
		MaterialID:      m.ID,
		MaterialName:    m.Name,
		Unit:            m.Unit,
		MinLevel:        m.MinLevel,
		Status:          material.StatusOut,
		TotalValue:      types.ZeroMoney(),
		AvgPrice:        types.ZeroMoney(),
		PurchaseHistory: PurchaseHistory{},
		LocationHistory: LocationHistory{},
		UpdatedAt:       time.Now().UTC(),
	}
}

// Validate implements entity.Validatable interface.
func (r *ResStock) Validate(ctx context.Context) error {
	if id.IsNil(r.MaterialID) {
		return apperror.NewValidation("material is required").
			WithDetail("field", "materialId")
	}
	if r.Remaining.IsNegative() || r.Remaining > r.TotalPurchased {
		return apperror.NewValidation("remaining must be within [0, totalPurchased]").
			WithDetail("field", "remaining")
	}
	return nil
}

// ApplyPurchase folds one approved receipt into the aggregate: quantities and
// value accumulate, the weighted-average price is recomputed and both history
// arrays are extended.
func (r *ResStock) ApplyPurchase(supplierID *id.ID, locationID id.ID, quantity types.Quantity, price types.Money, reference string, at time.Time) {
	value := price.Mul(quantity.Decimal())

	r.TotalPurchased += quantity
	r.Remaining += quantity
	if r.Remaining > r.TotalPurchased {
		r.Remaining = r.TotalPurchased
	}
	r.TotalValue = r.TotalValue.Add(value)
	r.AvgPrice = r.TotalValue.Div(r.TotalPurchased.Decimal())

	r.PurchaseHistory = append(r.PurchaseHistory, PurchaseRecord{
		SupplierID: supplierID,
		Quantity:   quantity,
		Price:      price,
		Value:      value,
		Reference:  reference,
		ReceivedAt: at,
	})
	r.LocationHistory = append(r.LocationHistory, LocationRecord{
		LocationID: &locationID,
		Quantity:   quantity,
		RecordedAt: at,
	})

	r.recompute(at)
}

// Consume draws quantity down from the remainder, clamping at zero, and
// returns the quantity actually consumed. A negative entry is appended to the
// location history. Total value and average price are purchase-side figures
// and stay untouched.
func (r *ResStock) Consume(quantity types.Quantity, note string, at time.Time) types.Quantity {
	consumed := quantity
	if consumed > r.Remaining {
		consumed = r.Remaining
	}
	r.Remaining -= consumed

	r.LocationHistory = append(r.LocationHistory, LocationRecord{
		Quantity:   consumed.Neg(),
		Note:       note,
		RecordedAt: at,
	})

	r.recompute(at)
	return consumed
}

func (r *ResStock) recompute(at time.Time) {
	r.Status = material.DeriveStatus(r.Remaining, r.MinLevel)
	r.UpdatedAt = at
}

// SyncMaterial refreshes the denormalized catalog fields and re-derives the
// status against the (possibly changed) reorder threshold.
func (r *ResStock) SyncMaterial(m *material.Material) {
	r.MaterialName = m.Name
	r.Unit = m.Unit
	r.MinLevel = m.MinLevel
	r.recompute(time.Now().UTC())
}
