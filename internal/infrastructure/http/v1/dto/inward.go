package dto

import (
	"time"

	"opstock/internal/core/apperror"
	"opstock/internal/core/id"
	"opstock/internal/core/types"
	"opstock/internal/domain/documents/inward"
)

// --- Request DTOs ---

// SubmitInwardRequest is the request body for submitting an inward request.
type SubmitInwardRequest struct {
	MaterialID  string         `json:"materialId" binding:"required"`
	LocationID  string         `json:"locationId" binding:"required"`
	SupplierID  string         `json:"supplierId"`
	Quantity    types.Quantity `json:"quantity" binding:"required"`
	CostPrice   types.Money    `json:"costPrice"`
	BatchNumber *string        `json:"batchNumber"`
	ExpiryDate  *time.Time     `json:"expiryDate"`
	Date        *time.Time     `json:"date"`
	Comment     string         `json:"comment"`
}

// ToEntity converts DTO to domain entity.
func (r *SubmitInwardRequest) ToEntity() (*inward.Request, error) {
	materialID, err := id.Parse(r.MaterialID)
	if err != nil {
		return nil, apperror.NewValidation("invalid materialId format")
	}
	locationID, err := id.Parse(r.LocationID)
	if err != nil {
		return nil, apperror.NewValidation("invalid locationId format")
	}
	var supplierID *id.ID
	if r.SupplierID != "" {
		parsed, err := id.Parse(r.SupplierID)
		if err != nil {
			return nil, apperror.NewValidation("invalid supplierId format")
		}
		supplierID = &parsed
	}

	req := inward.NewRequest(materialID, locationID, supplierID, r.Quantity, r.CostPrice)
	req.BatchNumber = r.BatchNumber
	req.ExpiryDate = r.ExpiryDate
	if r.Date != nil {
		req.Date = *r.Date
	}
	req.Comment = r.Comment
	return req, nil
}

// ApproveInwardRequest is the request body for approving an inward request.
type ApproveInwardRequest struct {
	Notes string `json:"notes"`
}

// RejectInwardRequest is the request body for rejecting an inward request.
type RejectInwardRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// --- Response DTOs ---

// InwardRequestResponse is the response body for an inward request.
type InwardRequestResponse struct {
	ID            string         `json:"id"`
	Number        string         `json:"number"`
	Date          time.Time      `json:"date"`
	MaterialID    string         `json:"materialId"`
	LocationID    string         `json:"locationId"`
	SupplierID    *string        `json:"supplierId,omitempty"`
	Quantity      types.Quantity `json:"quantity"`
	CostPrice     types.Money    `json:"costPrice"`
	BatchNumber   *string        `json:"batchNumber,omitempty"`
	ExpiryDate    *time.Time     `json:"expiryDate,omitempty"`
	TotalValue    types.Money    `json:"totalValue"`
	Status        inward.Status  `json:"status"`
	Processed     bool           `json:"processed"`
	RequestedBy   string         `json:"requestedBy,omitempty"`
	DecidedBy     *string        `json:"decidedBy,omitempty"`
	DecidedAt     *time.Time     `json:"decidedAt,omitempty"`
	DecisionNotes string         `json:"decisionNotes,omitempty"`
	TransactionID *string        `json:"transactionId,omitempty"`
	Comment       string         `json:"comment,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	Version       int            `json:"version"`
}

// FromInwardRequest creates response DTO from domain entity.
func FromInwardRequest(req *inward.Request) *InwardRequestResponse {
	resp := &InwardRequestResponse{
		ID:            req.ID.String(),
		Number:        req.Number,
		Date:          req.Date,
		MaterialID:    req.MaterialID.String(),
		LocationID:    req.LocationID.String(),
		Quantity:      req.Quantity,
		BatchNumber:   req.BatchNumber,
		ExpiryDate:    req.ExpiryDate,
		CostPrice:     req.CostPrice,
		TotalValue:    req.TotalValue,
		Status:        req.Status,
		Processed:     req.Processed,
		RequestedBy:   req.RequestedBy,
		DecidedBy:     req.DecidedBy,
		DecidedAt:     req.DecidedAt,
		DecisionNotes: req.DecisionNotes,
		Comment:       req.Comment,
		CreatedAt:     req.CreatedAt,
		UpdatedAt:     req.UpdatedAt,
		Version:       req.Version,
	}
	if req.SupplierID != nil {
		s := req.SupplierID.String()
		resp.SupplierID = &s
	}
	if req.TransactionID != nil {
		s := req.TransactionID.String()
		resp.TransactionID = &s
	}
	return resp
}
