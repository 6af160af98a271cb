package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opstock/internal/domain/consumption"
	"opstock/internal/infrastructure/http/v1/dto"
)

// ConsumptionHandler handles HTTP requests for production consumption.
type ConsumptionHandler struct {
	*BaseHandler
	service *consumption.Service
}

// NewConsumptionHandler creates a new consumption handler.
func NewConsumptionHandler(base *BaseHandler, service *consumption.Service) *ConsumptionHandler {
	return &ConsumptionHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Consume handles POST /consumption.
// Draws one or more materials from stock in a single transaction.
func (h *ConsumptionHandler) Consume(c *gin.Context) {
	ctx := c.Request.Context()

	var body dto.ConsumeRequest
	if !h.BindJSON(c, &body) {
		return
	}

	items, err := body.ToItems()
	if err != nil {
		h.Error(c, err)
		return
	}

	results, err := h.service.ConsumeBatch(ctx, items, body.Note)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.FromConsumeResults(results))
}
