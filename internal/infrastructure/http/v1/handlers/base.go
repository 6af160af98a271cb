package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"opstock/internal/core/apperror"
	appctx "opstock/internal/core/context"
	"opstock/internal/infrastructure/http/v1/dto"
)

// BaseHandler bundles the request helpers every handler embeds: body
// binding, query parsing and response shortcuts.
type BaseHandler struct{}

func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// BindJSON decodes the request body into obj. On failure it registers a
// validation error and reports false; the caller should return immediately.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
	return false
}

// Error records err on the gin context and aborts. Rendering happens in
// middleware.ErrorHandler so every endpoint shares one error shape.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// ParseIntQuery reads an integer query parameter, falling back to
// defaultVal when the parameter is absent or malformed.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, defaultVal int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}
	return n
}

// GetUserID returns the authenticated user id, or "" when auth is disabled.
func (h *BaseHandler) GetUserID(c *gin.Context) string {
	return appctx.GetUserID(c.Request.Context())
}

func (h *BaseHandler) OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *BaseHandler) Success(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Message: message})
}
