// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
)

// CatalogRouteHandler is the method set a catalog handler exposes over HTTP.
// Material, supplier and location handlers all satisfy it through the
// generic catalog handler.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
}

// RegisterCatalogRoutes wires the standard CRUD route set under group, so
// each catalog registers identically with one call:
//
//	RegisterCatalogRoutes(catalogs.Group("/suppliers"), supplierHandler)
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler) {
	group.GET("", handler.List)
	group.GET("/:id", handler.Get)
	group.POST("", handler.Create)
	group.PUT("/:id", handler.Update)
	group.POST("/:id/deletion-mark", handler.SetDeletionMark)
	group.DELETE("/:id", handler.Delete)
}
