package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opstock/internal/core/apperror"
	"opstock/internal/core/id"
	"opstock/internal/domain/catalogs/material"
	"opstock/internal/domain/registers/resstock"
	"opstock/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for the stock aggregate register.
type StockHandler struct {
	*BaseHandler
	service *resstock.Service
}

// NewStockHandler creates a new stock register handler.
func NewStockHandler(base *BaseHandler, service *resstock.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /registers/stock.
func (h *StockHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter := resstock.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Status = material.StockStatus(c.Query("status"))
	filter.LowStockOnly = c.Query("lowStock") == "true"
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, stock := range result.Items {
		items[i] = dto.FromStock(stock, false)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// ListLowStock handles GET /registers/stock/low.
func (h *StockHandler) ListLowStock(c *gin.Context) {
	ctx := c.Request.Context()

	filter := resstock.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	result, err := h.service.ListLowStock(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, stock := range result.Items {
		items[i] = dto.FromStock(stock, false)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// GetByMaterial handles GET /registers/stock/:materialId.
// Returns the aggregate with full purchase and location histories.
func (h *StockHandler) GetByMaterial(c *gin.Context) {
	ctx := c.Request.Context()

	materialID, err := id.Parse(c.Param("materialId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid materialId format"))
		return
	}

	stock, err := h.service.GetByMaterial(ctx, materialID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromStock(stock, true))
}
