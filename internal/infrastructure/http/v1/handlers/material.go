package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"opstock/internal/core/apperror"
	"opstock/internal/core/id"
	"opstock/internal/domain"
	"opstock/internal/domain/catalogs/material"
	"opstock/internal/domain/catalogs/supplier"
	"opstock/internal/infrastructure/http/v1/dto"
)

// MaterialHandler handles HTTP requests for the material catalog.
// Embeds the generic catalog handler and adds material-specific endpoints.
// Read responses resolve supplier ids in the sub-ledger to display names.
type MaterialHandler struct {
	*CatalogHandler[*material.Material, dto.CreateMaterialRequest, dto.UpdateMaterialRequest]
	service   *material.Service
	suppliers *supplier.Service
}

// NewMaterialHandler creates a new material handler.
func NewMaterialHandler(base *BaseHandler, service *material.Service, suppliers *supplier.Service) *MaterialHandler {
	config := CatalogHandlerConfig[*material.Material, dto.CreateMaterialRequest, dto.UpdateMaterialRequest]{
		Service:    service.CatalogService,
		EntityName: "material",
		MapCreateDTO: func(req dto.CreateMaterialRequest) *material.Material {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateMaterialRequest, existing *material.Material) *material.Material {
			req.ApplyTo(existing)
			return existing
		},
		MapToDTO: func(m *material.Material) any {
			return dto.FromMaterial(m)
		},
	}

	return &MaterialHandler{
		CatalogHandler: NewCatalogHandler(base, config),
		service:        service,
		suppliers:      suppliers,
	}
}

// supplierNames batch-resolves display names for every supplier referenced by
// the sub-ledgers of the given materials. Soft-deleted suppliers still
// resolve so historical entries keep a readable name.
func (h *MaterialHandler) supplierNames(ctx context.Context, materials ...*material.Material) (map[string]string, error) {
	seen := make(map[string]struct{})
	var ids []id.ID
	for _, m := range materials {
		for key := range m.Suppliers {
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			supplierID, err := id.Parse(key)
			if err != nil {
				continue
			}
			ids = append(ids, supplierID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	result, err := h.suppliers.List(ctx, domain.ListFilter{
		IDs:            ids,
		IncludeDeleted: true,
		OrderBy:        "name",
		Limit:          len(ids),
	})
	if err != nil {
		return nil, err
	}

	names := make(map[string]string, len(result.Items))
	for _, sup := range result.Items {
		names[sup.ID.String()] = sup.Name
	}
	return names, nil
}

// Get handles GET /catalog/materials/:id. Overrides the generic get to
// return supplier names alongside the sub-ledger entries.
func (h *MaterialHandler) Get(c *gin.Context) {
	entityID, ok := h.pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	m, err := h.service.GetByID(ctx, entityID)
	if err != nil {
		h.Error(c, err)
		return
	}

	names, err := h.supplierNames(ctx, m)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromMaterialResolved(m, names))
}

// List handles GET /catalog/materials with material-specific filters.
// Overrides the generic list to support category, status and lowStock.
func (h *MaterialHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := material.ListFilter{
		ListFilter:   h.ParseListFilter(c),
		Category:     c.Query("category"),
		Status:       material.StockStatus(c.Query("status")),
		LowStockOnly: c.Query("lowStock") == "true",
	}

	result, err := h.service.ListFiltered(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.writeMaterialList(c, result)
}

// ListLowStock handles GET /catalog/materials/low-stock.
func (h *MaterialHandler) ListLowStock(c *gin.Context) {
	ctx := c.Request.Context()

	result, err := h.service.ListLowStock(ctx, h.ParseListFilter(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.writeMaterialList(c, result)
}

// writeMaterialList resolves supplier names across the whole page with one
// lookup and writes the list response.
func (h *MaterialHandler) writeMaterialList(c *gin.Context, result domain.ListResult[*material.Material]) {
	names, err := h.supplierNames(c.Request.Context(), result.Items...)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, m := range result.Items {
		items[i] = dto.FromMaterialResolved(m, names)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// AdjustSupplierQuantity handles POST /catalog/materials/:id/adjust-supplier.
// Manual correction of one supplier sub-ledger entry.
func (h *MaterialHandler) AdjustSupplierQuantity(c *gin.Context) {
	ctx := c.Request.Context()

	materialID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.AdjustSupplierQuantityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	supplierID, err := id.Parse(req.SupplierID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid supplierId format"))
		return
	}

	m, err := h.service.AdjustSupplierQuantity(ctx, materialID, supplierID, req.Delta, req.Price)
	if err != nil {
		h.Error(c, err)
		return
	}

	names, err := h.supplierNames(ctx, m)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromMaterialResolved(m, names))
}
