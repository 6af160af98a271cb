package dto

import (
	"time"

	"opstock/internal/core/types"
	"opstock/internal/domain/catalogs/material"
	"opstock/internal/domain/registers/ledger"
	"opstock/internal/domain/registers/resstock"
)

// --- Stock aggregate ---

// PurchaseRecordResponse is one purchase history entry.
type PurchaseRecordResponse struct {
	SupplierID *string        `json:"supplierId,omitempty"`
	Quantity   types.Quantity `json:"quantity"`
	Price      types.Money    `json:"price"`
	Value      types.Money    `json:"value"`
	Reference  string         `json:"reference,omitempty"`
	ReceivedAt time.Time      `json:"receivedAt"`
}

// LocationRecordResponse is one signed location history entry.
type LocationRecordResponse struct {
	LocationID *string        `json:"locationId,omitempty"`
	Quantity   types.Quantity `json:"quantity"`
	Note       string         `json:"note,omitempty"`
	RecordedAt time.Time      `json:"recordedAt"`
}

// StockResponse is the response body for a stock aggregate.
type StockResponse struct {
	MaterialID      string                   `json:"materialId"`
	MaterialName    string                   `json:"materialName"`
	Unit            string                   `json:"unit"`
	MinLevel        types.Quantity           `json:"minLevel"`
	TotalPurchased  types.Quantity           `json:"totalPurchased"`
	Remaining       types.Quantity           `json:"remaining"`
	TotalValue      types.Money              `json:"totalValue"`
	AvgPrice        types.Money              `json:"avgPrice"`
	Status          material.StockStatus     `json:"status"`
	PurchaseHistory []PurchaseRecordResponse `json:"purchaseHistory,omitempty"`
	LocationHistory []LocationRecordResponse `json:"locationHistory,omitempty"`
	UpdatedAt       time.Time                `json:"updatedAt"`
	Version         int                      `json:"version"`
}

// FromStock creates response DTO from the aggregate. Histories are included
// only when withHistory is set; list views skip them to keep payloads small.
func FromStock(s *resstock.ResStock, withHistory bool) *StockResponse {
	resp := &StockResponse{
		MaterialID:     s.MaterialID.String(),
		MaterialName:   s.MaterialName,
		Unit:           s.Unit,
		MinLevel:       s.MinLevel,
		TotalPurchased: s.TotalPurchased,
		Remaining:      s.Remaining,
		TotalValue:     s.TotalValue,
		AvgPrice:       s.AvgPrice,
		Status:         s.Status,
		UpdatedAt:      s.UpdatedAt,
		Version:        s.Version,
	}

	if !withHistory {
		return resp
	}

	resp.PurchaseHistory = make([]PurchaseRecordResponse, len(s.PurchaseHistory))
	for i, rec := range s.PurchaseHistory {
		entry := PurchaseRecordResponse{
			Quantity:   rec.Quantity,
			Price:      rec.Price,
			Value:      rec.Value,
			Reference:  rec.Reference,
			ReceivedAt: rec.ReceivedAt,
		}
		if rec.SupplierID != nil {
			s := rec.SupplierID.String()
			entry.SupplierID = &s
		}
		resp.PurchaseHistory[i] = entry
	}

	resp.LocationHistory = make([]LocationRecordResponse, len(s.LocationHistory))
	for i, rec := range s.LocationHistory {
		entry := LocationRecordResponse{
			Quantity:   rec.Quantity,
			Note:       rec.Note,
			RecordedAt: rec.RecordedAt,
		}
		if rec.LocationID != nil {
			s := rec.LocationID.String()
			entry.LocationID = &s
		}
		resp.LocationHistory[i] = entry
	}

	return resp
}

// --- Transaction log ---

// TransactionResponse is the response body for a stock transaction.
type TransactionResponse struct {
	ID          string                 `json:"id"`
	Type        ledger.TransactionType `json:"type"`
	MaterialID  string                 `json:"materialId"`
	LocationID  *string                `json:"locationId,omitempty"`
	SupplierID  *string                `json:"supplierId,omitempty"`
	Quantity    types.Quantity         `json:"quantity"`
	Price       types.Money            `json:"price"`
	TotalValue  types.Money            `json:"totalValue"`
	Reference   string                 `json:"reference,omitempty"`
	RequestID   *string                `json:"requestId,omitempty"`
	PerformedBy string                 `json:"performedBy,omitempty"`
	Comment     string                 `json:"comment,omitempty"`
	OccurredAt  time.Time              `json:"occurredAt"`
}

// FromTransaction creates response DTO from a ledger row.
func FromTransaction(t *ledger.StockTransaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:          t.ID.String(),
		Type:        t.Type,
		MaterialID:  t.MaterialID.String(),
		Quantity:    t.Quantity,
		Price:       t.Price,
		TotalValue:  t.TotalValue,
		Reference:   t.Reference,
		PerformedBy: t.PerformedBy,
		Comment:     t.Comment,
		OccurredAt:  t.OccurredAt,
	}
	if t.LocationID != nil {
		s := t.LocationID.String()
		resp.LocationID = &s
	}
	if t.SupplierID != nil {
		s := t.SupplierID.String()
		resp.SupplierID = &s
	}
	if t.RequestID != nil {
		s := t.RequestID.String()
		resp.RequestID = &s
	}
	return resp
}

// LocationInventoryResponse is one per-location balance row.
type LocationInventoryResponse struct {
	MaterialID  string         `json:"materialId"`
	LocationID  string         `json:"locationId"`
	Quantity    types.Quantity `json:"quantity"`
	CostPrice   types.Money    `json:"costPrice"`
	BatchNumber *string        `json:"batchNumber,omitempty"`
	ExpiryDate  *time.Time     `json:"expiryDate,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// FromLocationInventory creates response DTO from a balance row.
func FromLocationInventory(inv *ledger.LocationInventory) LocationInventoryResponse {
	return LocationInventoryResponse{
		MaterialID:  inv.MaterialID.String(),
		LocationID:  inv.LocationID.String(),
		Quantity:    inv.Quantity,
		CostPrice:   inv.CostPrice,
		BatchNumber: inv.BatchNumber,
		ExpiryDate:  inv.ExpiryDate,
		UpdatedAt:   inv.UpdatedAt,
	}
}
