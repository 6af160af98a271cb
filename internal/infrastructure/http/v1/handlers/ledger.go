package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"opstock/internal/core/apperror"
	"opstock/internal/core/id"
	"opstock/internal/domain/registers/ledger"
	"opstock/internal/infrastructure/http/v1/dto"
)

// LedgerHandler handles HTTP requests for the stock transaction register.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new transaction register handler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: base,
		service:     service,
	}
}

// ListTransactions handles GET /registers/transactions.
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	ctx := c.Request.Context()

	filter, ok := h.parseTransactionFilter(c)
	if !ok {
		return
	}

	result, err := h.service.ListTransactions(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, tx := range result.Items {
		items[i] = dto.FromTransaction(tx)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// GetTransaction handles GET /registers/transactions/:id.
func (h *LedgerHandler) GetTransaction(c *gin.Context) {
	ctx := c.Request.Context()

	txID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	tx, err := h.service.GetTransaction(ctx, txID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromTransaction(tx))
}

// ListInventory handles GET /registers/inventory/:materialId.
// Per-location balances for one material.
func (h *LedgerHandler) ListInventory(c *gin.Context) {
	ctx := c.Request.Context()

	materialID, err := id.Parse(c.Param("materialId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid materialId format"))
		return
	}

	rows, err := h.service.ListInventoryByMaterial(ctx, materialID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.LocationInventoryResponse, len(rows))
	for i, inv := range rows {
		items[i] = dto.FromLocationInventory(inv)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *LedgerHandler) parseTransactionFilter(c *gin.Context) (ledger.TransactionFilter, bool) {
	filter := ledger.DefaultTransactionFilter()
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)

	if v := c.Query("materialId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid materialId format"))
			return filter, false
		}
		filter.MaterialID = &parsed
	}
	if v := c.Query("locationId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid locationId format"))
			return filter, false
		}
		filter.LocationID = &parsed
	}
	if v := c.Query("supplierId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid supplierId format"))
			return filter, false
		}
		filter.SupplierID = &parsed
	}

	// Comma-separated list of transaction types
	if v := c.Query("types"); v != "" {
		for _, t := range strings.Split(v, ",") {
			filter.Types = append(filter.Types, ledger.TransactionType(strings.TrimSpace(t)))
		}
	}

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid from date, RFC3339 expected"))
			return filter, false
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid to date, RFC3339 expected"))
			return filter, false
		}
		filter.To = &t
	}

	return filter, true
}
