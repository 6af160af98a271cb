// Package inward provides the stock inward request document: the
// request-then-approval workflow through which purchased material enters
// stock. Approval fans out atomically into the material catalog sub-ledgers,
// the transaction register, the location balances and the stock aggregate.
package inward

import (
	"context"
	"time"

	"opstock/internal/core/apperror"
	"opstock/internal/core/entity"
	"opstock/internal/core/id"
	"opstock/internal/core/types"
)

// Status is the workflow state of an inward request.
type Status string

const (
	// StatusPending - submitted, awaiting a decision
	StatusPending Status = "pending"
	// StatusApproved - accepted; stock has been posted
	StatusApproved Status = "approved"
	// StatusRejected - declined; no stock effect
	StatusRejected Status = "rejected"
)

// Request is a stock inward request document.
type Request struct {
	entity.Document

	MaterialID id.ID `db:"material_id" json:"materialId"`
	LocationID id.ID `db:"location_id" json:"locationId"`

	// SupplierID is optional; without it the approval skips the supplier
	// sub-ledger and the supplied goods are booked against the location only
	SupplierID *id.ID `db:"supplier_id" json:"supplierId,omitempty"`

	// Quantity to receive, must be positive
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// CostPrice per unit
	CostPrice types.Money `db:"cost_price" json:"costPrice"`

	// TotalValue = Quantity * CostPrice, computed on submit
	TotalValue types.Money `db:"total_value" json:"totalValue"`

	// BatchNumber and ExpiryDate travel with the goods into the location
	// inventory record
	BatchNumber *string    `db:"batch_number" json:"batchNumber,omitempty"`
	ExpiryDate  *time.Time `db:"expiry_date" json:"expiryDate,omitempty"`

	Status Status `db:"status" json:"status"`

	// Processed guards the fan-out: set exactly once, on approval.
	// A second approval of a processed request is a no-op.
	Processed bool `db:"processed" json:"processed"`

	// RequestedBy - user who submitted the request
	RequestedBy string `db:"requested_by" json:"requestedBy"`

	// DecidedBy / DecidedAt - who approved or rejected, and when
	DecidedBy *string    `db:"decided_by" json:"decidedBy,omitempty"`
	DecidedAt *time.Time `db:"decided_at" json:"decidedAt,omitempty"`

	// DecisionNotes - approval notes or rejection reason
	DecisionNotes string `db:"decision_notes" json:"decisionNotes,omitempty"`

	// TransactionID links to the ledger row written on approval
	TransactionID *id.ID `db:"transaction_id" json:"transactionId,omitempty"`
}

// NewRequest creates a pending inward request. supplierID may be nil.
func NewRequest(materialID, locationID id.ID, supplierID *id.ID, quantity types.Quantity, costPrice types.Money) *Request {
	return &Request{
		Document:   entity.NewDocument(),
		MaterialID: materialID,
		LocationID: locationID,
		SupplierID: supplierID,
		Quantity:   quantity,
		CostPrice:  costPrice,
		TotalValue: costPrice.Mul(quantity.Decimal()),
		Status:     StatusPending,
	}
}

// Validate implements entity.Validatable interface.
func (r *Request) Validate(ctx context.Context) error {
	if err := r.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(r.MaterialID) {
		return apperror.NewValidation("material is required").
			WithDetail("field", "materialId")
	}
	if r.SupplierID != nil && id.IsNil(*r.SupplierID) {
		return apperror.NewValidation("supplier id cannot be empty").
			WithDetail("field", "supplierId")
	}
	if id.IsNil(r.LocationID) {
		return apperror.NewValidation("location is required").
			WithDetail("field", "locationId")
	}

	if !r.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	if !r.CostPrice.IsPositive() {
		return apperror.NewValidation("cost price must be positive").
			WithDetail("field", "costPrice")
	}

	switch r.Status {
	case StatusPending, StatusApproved, StatusRejected:
	default:
		return apperror.NewValidation("invalid request status").
			WithDetail("field", "status").
			WithDetail("value", string(r.Status))
	}

	return nil
}

// markApproved records the approval decision. Caller posts the stock effect.
func (r *Request) markApproved(approver, notes string, txID id.ID, at time.Time) {
	r.Status = StatusApproved
	r.Processed = true
	r.DecidedBy = &approver
	r.DecidedAt = &at
	r.DecisionNotes = notes
	r.TransactionID = &txID
}

// markRejected records the rejection decision. Processed stays false:
// the flag means "stock has been posted", which never happens on rejection.
func (r *Request) markRejected(approver, reason string, at time.Time) {
	r.Status = StatusRejected
	r.DecidedBy = &approver
	r.DecidedAt = &at
	r.DecisionNotes = reason
}
