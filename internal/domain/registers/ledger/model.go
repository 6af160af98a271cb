// Package ledger provides the append-only stock transaction register and the
// per-location inventory balances. Transaction rows are immutable history;
// they are written inside the same database transaction as the balance
// updates they describe and never modified afterwards.
package ledger

import (
	"context"
	"time"

	"opstock/internal/core/apperror"
	"opstock/internal/core/id"
	"opstock/internal/core/types"
)

// TransactionType classifies a stock movement.
type TransactionType string

const (
	// TypeInward - stock received from a supplier
	TypeInward TransactionType = "inward"
	// TypeOutward - stock consumed by production
	TypeOutward TransactionType = "outward"
	// TypeTransfer - stock moved between locations
	TypeTransfer TransactionType = "transfer"
	// TypeAdjustment - manual correction
	TypeAdjustment TransactionType = "adjustment"
)

// StockTransaction is one immutable row in the movement history.
type StockTransaction struct {
	ID id.ID `db:"id" json:"id"`

	Type TransactionType `db:"type" json:"type"`

	MaterialID id.ID `db:"material_id" json:"materialId"`

	// LocationID - receiving location for inward and transfers; nil for
	// outward movements, which draw from the aggregate remainder
	LocationID *id.ID `db:"location_id" json:"locationId,omitempty"`

	// SupplierID is set on inward movements only
	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	// Quantity is always positive; Type carries the direction
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Price per unit at the time of the movement (zero for outward)
	Price types.Money `db:"price" json:"price"`

	// TotalValue = Quantity * Price
	TotalValue types.Money `db:"total_value" json:"totalValue"`

	// Reference - human-readable document number (SIR-2026-00012)
	Reference string `db:"reference" json:"reference"`

	// RequestID links inward transactions to the originating request
	RequestID *id.ID `db:"request_id" json:"requestId,omitempty"`

	// PerformedBy - user who triggered the movement
	PerformedBy string `db:"performed_by" json:"performedBy"`

	// Comment - free-form note (consumption purpose, adjustment reason)
	Comment string `db:"comment" json:"comment,omitempty"`

	OccurredAt time.Time `db:"occurred_at" json:"occurredAt"`
}

// NewTransaction creates a transaction row with a fresh ID and timestamp.
// The caller sets the location, supplier and reference fields as the movement
// type requires.
func NewTransaction(txType TransactionType, materialID id.ID, quantity types.Quantity, price types.Money) *StockTransaction {
	return &StockTransaction{
		ID:         id.New(),
		Type:       txType,
		MaterialID: materialID,
		Quantity:   quantity,
		Price:      price,
		TotalValue: price.Mul(quantity.Decimal()),
		OccurredAt: time.Now().UTC(),
	}
}

// Validate implements entity.Validatable interface.
func (t *StockTransaction) Validate(ctx context.Context) error {
	switch t.Type {
	case TypeInward, TypeOutward, TypeTransfer, TypeAdjustment:
	default:
		return apperror.NewValidation("invalid transaction type").
			WithDetail("field", "type").
			WithDetail("value", string(t.Type))
	}

	if id.IsNil(t.MaterialID) {
		return apperror.NewValidation("material is required").
			WithDetail("field", "materialId")
	}

	if t.Type != TypeOutward && (t.LocationID == nil || id.IsNil(*t.LocationID)) {
		return apperror.NewValidation("location is required").
			WithDetail("field", "locationId")
	}

	if !t.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	if t.Price.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "price")
	}

	return nil
}

// LocationInventory is the running balance of one material at one location.
// Written only through increments; consumption does not draw it down, the
// production-facing remainder lives in the resstock register.
type LocationInventory struct {
	MaterialID id.ID          `db:"material_id" json:"materialId"`
	LocationID id.ID          `db:"location_id" json:"locationId"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"`

	// CostPrice is the unit price of the latest receipt into this location
	CostPrice types.Money `db:"cost_price" json:"costPrice"`

	// BatchNumber and ExpiryDate come from the latest receipt
	BatchNumber *string    `db:"batch_number" json:"batchNumber,omitempty"`
	ExpiryDate  *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`

	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// InventoryUpdate carries one receipt into a location balance. Delta must be
// positive; balances are never drawn down through this register.
type InventoryUpdate struct {
	MaterialID  id.ID
	LocationID  id.ID
	Delta       types.Quantity
	CostPrice   types.Money
	BatchNumber *string
	ExpiryDate  *time.Time
	At          time.Time
}
