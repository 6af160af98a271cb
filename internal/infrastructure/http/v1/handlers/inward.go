package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"opstock/internal/core/apperror"
	"opstock/internal/core/id"
	"opstock/internal/domain/documents/inward"
	"opstock/internal/infrastructure/http/v1/dto"
)

// InwardHandler handles HTTP requests for stock inward request documents.
type InwardHandler struct {
	*BaseHandler
	service *inward.Service
}

// NewInwardHandler creates a new inward request handler.
func NewInwardHandler(base *BaseHandler, service *inward.Service) *InwardHandler {
	return &InwardHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Submit handles POST /document/inward-requests.
func (h *InwardHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	var body dto.SubmitInwardRequest
	if !h.BindJSON(c, &body) {
		return
	}

	req, err := body.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Submit(ctx, req); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromInwardRequest(req))
}

// FastTrack handles POST /document/inward-requests/fast-track.
// Submits and immediately approves in one transaction.
func (h *InwardHandler) FastTrack(c *gin.Context) {
	ctx := c.Request.Context()

	var body dto.SubmitInwardRequest
	if !h.BindJSON(c, &body) {
		return
	}

	req, err := body.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	posted, err := h.service.FastTrack(ctx, req, h.GetUserID(c))
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromInwardRequest(posted))
}

// Get handles GET /document/inward-requests/:id.
func (h *InwardHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	requestID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	req, err := h.service.GetByID(ctx, requestID)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromInwardRequest(req))
}

// List handles GET /document/inward-requests.
func (h *InwardHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	filter, ok := h.parseListFilter(c)
	if !ok {
		return
	}

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]any, len(result.Items))
	for i, req := range result.Items {
		items[i] = dto.FromInwardRequest(req)
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Approve handles POST /document/inward-requests/:id/approve.
func (h *InwardHandler) Approve(c *gin.Context) {
	ctx := c.Request.Context()

	requestID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var body dto.ApproveInwardRequest
	if !h.BindJSON(c, &body) {
		return
	}

	req, err := h.service.Approve(ctx, requestID, h.GetUserID(c), body.Notes)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromInwardRequest(req))
}

// Reject handles POST /document/inward-requests/:id/reject.
func (h *InwardHandler) Reject(c *gin.Context) {
	ctx := c.Request.Context()

	requestID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var body dto.RejectInwardRequest
	if !h.BindJSON(c, &body) {
		return
	}

	req, err := h.service.Reject(ctx, requestID, h.GetUserID(c), body.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromInwardRequest(req))
}

func (h *InwardHandler) parseListFilter(c *gin.Context) (inward.ListFilter, bool) {
	filter := inward.DefaultListFilter()
	filter.Status = inward.Status(c.Query("status"))
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
	if v := c.Query("supplierId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid supplierId format"))
			return filter, false
		}
		filter.SupplierID = &parsed
	}
	if v := c.Query("locationId"); v != "" {
		parsed, err := id.Parse(v)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid locationId format"))
			return filter, false
		}
		filter.LocationID = &parsed
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
