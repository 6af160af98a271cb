package dto

import (
	"time"

	"opstock/internal/core/types"
	"opstock/internal/domain/catalogs/material"
)

// --- Request DTOs ---

// CreateMaterialRequest is the request body for creating a material.
type CreateMaterialRequest struct {
	Code        string         `json:"code"`
	Name        string         `json:"name" binding:"required"`
	Unit        string         `json:"unit" binding:"required"`
	Category    string         `json:"category"`
	MinLevel    types.Quantity `json:"minLevel"`
	Description *string        `json:"description"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateMaterialRequest) ToEntity() *material.Material {
	m := material.NewMaterial(r.Code, r.Name, r.Unit)
	m.Category = r.Category
	m.MinLevel = r.MinLevel
	m.Description = r.Description
	return m
}

// UpdateMaterialRequest is the request body for updating a material.
// Sub-ledgers are not updatable through this endpoint; they change only
// via approved inward requests and supplier adjustments.
type UpdateMaterialRequest struct {
	Code        string         `json:"code"`
	Name        string         `json:"name" binding:"required"`
	Unit        string         `json:"unit" binding:"required"`
	Category    string         `json:"category"`
	MinLevel    types.Quantity `json:"minLevel"`
	Description *string        `json:"description"`
	Version     int            `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateMaterialRequest) ApplyTo(m *material.Material) {
	m.Code = r.Code
	m.Name = r.Name
	m.Unit = r.Unit
	m.Category = r.Category
	m.MinLevel = r.MinLevel
	m.Description = r.Description
	m.Version = r.Version
}

// AdjustSupplierQuantityRequest adjusts one supplier sub-ledger entry.
type AdjustSupplierQuantityRequest struct {
	SupplierID string         `json:"supplierId" binding:"required"`
	Delta      types.Quantity `json:"delta" binding:"required"`
	Price      *types.Money   `json:"price"`
}

// --- Response DTOs ---

// SupplierEntryResponse is one per-supplier sub-ledger entry.
type SupplierEntryResponse struct {
	SupplierID   string         `json:"supplierId"`
	SupplierName string         `json:"supplierName,omitempty"`
	Quantity     types.Quantity `json:"quantity"`
	Price        types.Money    `json:"price"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// LocationEntryResponse is one per-location sub-ledger entry.
type LocationEntryResponse struct {
	LocationID string         `json:"locationId"`
	Quantity   types.Quantity `json:"quantity"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

// MaterialResponse is the response body for a material.
type MaterialResponse struct {
	ID            string                  `json:"id"`
	Code          string                  `json:"code"`
	Name          string                  `json:"name"`
	Unit          string                  `json:"unit"`
	Category      string                  `json:"category"`
	MinLevel      types.Quantity          `json:"minLevel"`
	Description   *string                 `json:"description,omitempty"`
	Status        material.StockStatus    `json:"status"`
	TotalQuantity types.Quantity          `json:"totalQuantity"`
	Suppliers     []SupplierEntryResponse `json:"suppliers"`
	Locations     []LocationEntryResponse `json:"locations"`
	DeletionMark  bool                    `json:"deletionMark"`
	Version       int                     `json:"version"`
}

// FromMaterial creates response DTO from domain entity.
func FromMaterial(m *material.Material) *MaterialResponse {
	suppliers := make([]SupplierEntryResponse, 0, len(m.Suppliers))
	for supplierID, entry := range m.Suppliers {
		suppliers = append(suppliers, SupplierEntryResponse{
			SupplierID: supplierID,
			Quantity:   entry.Quantity,
			Price:      entry.Price,
			UpdatedAt:  entry.UpdatedAt,
		})
	}

	locations := make([]LocationEntryResponse, 0, len(m.Locations))
	for locationID, entry := range m.Locations {
		locations = append(locations, LocationEntryResponse{
			LocationID: locationID,
			Quantity:   entry.Quantity,
			UpdatedAt:  entry.UpdatedAt,
		})
	}

	return &MaterialResponse{
		ID:            m.ID.String(),
		Code:          m.Code,
		Name:          m.Name,
		Unit:          m.Unit,
		Category:      m.Category,
		MinLevel:      m.MinLevel,
		Description:   m.Description,
		Status:        m.Status,
		TotalQuantity: m.TotalQuantity,
		Suppliers:     suppliers,
		Locations:     locations,
		DeletionMark:  m.DeletionMark,
		Version:       m.Version,
	}
}

// FromMaterialResolved builds the response with supplier display names filled
// into the sub-ledger entries from the given id-to-name map. Entries whose
// supplier is missing from the map keep an empty name.
func FromMaterialResolved(m *material.Material, supplierNames map[string]string) *MaterialResponse {
	resp := FromMaterial(m)
	for i := range resp.Suppliers {
		resp.Suppliers[i].SupplierName = supplierNames[resp.Suppliers[i].SupplierID]
	}
	return resp
}
