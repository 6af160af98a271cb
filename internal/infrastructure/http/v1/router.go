package v1

import (
	"github.com/gin-gonic/gin"

	"opstock/internal/domain/catalogs/location"
	"opstock/internal/domain/catalogs/material"
	"opstock/internal/domain/catalogs/supplier"
	"opstock/internal/domain/consumption"
	"opstock/internal/domain/documents/inward"
	"opstock/internal/domain/registers/ledger"
	"opstock/internal/domain/registers/resstock"
	"opstock/internal/infrastructure/http/v1/handlers"
	"opstock/internal/infrastructure/http/v1/middleware"
	"opstock/internal/infrastructure/storage/postgres"
	"opstock/internal/infrastructure/storage/postgres/catalog_repo"
	"opstock/internal/infrastructure/storage/postgres/document_repo"
	"opstock/internal/infrastructure/storage/postgres/register_repo"
	"opstock/pkg/logger"
	"opstock/pkg/numerator"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// TxManager runs repository operations in transactions
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation; nil disables authentication
	// (development mode)
	JWTValidator middleware.JWTValidator

	// Numerator for code and document number generation
	Numerator *numerator.Service

	// OnMissingStock decides how consumption treats materials without a
	// stock record
	OnMissingStock consumption.MissingStockPolicy
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		if cfg.JWTValidator != nil {
			protected.Use(middleware.Auth(cfg.JWTValidator))
		}

		registerCatalogRoutes(protected, cfg)
		registerDocumentRoutes(protected, cfg)
		registerRegisterRoutes(protected, cfg)
		registerConsumptionRoutes(protected, cfg)
	}

	return router
}

// approverGuard restricts approval decisions to the approver role.
// Passes everything through when authentication is disabled.
func approverGuard(cfg RouterConfig) gin.HandlerFunc {
	if cfg.JWTValidator == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RequireRole("approver", "admin")
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// Built first: the material handler needs it to resolve supplier names
	// on reads.
	supplierService := supplier.NewService(catalog_repo.NewSupplierRepo(cfg.TxManager), cfg.TxManager, cfg.Numerator)

	// --- MATERIALS ---
	{
		repo := catalog_repo.NewMaterialRepo(cfg.TxManager)
		service := material.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewMaterialHandler(baseHandler, service, supplierService)

		group := catalogs.Group("/materials")
		group.GET("/low-stock", handler.ListLowStock)
		group.POST("/:id/adjust-supplier", handler.AdjustSupplierQuantity)
		RegisterCatalogRoutes(group, handler)
	}

	// --- SUPPLIERS ---
	{
		handler := handlers.NewSupplierHandler(baseHandler, supplierService)
		RegisterCatalogRoutes(catalogs.Group("/suppliers"), handler)
	}

	// --- LOCATIONS ---
	{
		repo := catalog_repo.NewLocationRepo(cfg.TxManager)
		service := location.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewLocationHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/locations"), handler)
	}
}

// registerDocumentRoutes registers the inward request endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	docs := rg.Group("/document")
	baseHandler := handlers.NewBaseHandler()

	service := inward.NewService(inward.Deps{
		Repo:      document_repo.NewInwardRepo(cfg.TxManager),
		Materials: catalog_repo.NewMaterialRepo(cfg.TxManager),
		Suppliers: catalog_repo.NewSupplierRepo(cfg.TxManager),
		Locations: catalog_repo.NewLocationRepo(cfg.TxManager),
		Stocks:    register_repo.NewResStockRepo(cfg.TxManager),
		Movements: register_repo.NewLedgerRepo(cfg.TxManager),
		TxManager: cfg.TxManager,
		Numerator: cfg.Numerator,
	})
	handler := handlers.NewInwardHandler(baseHandler, service)

	group := docs.Group("/inward-requests")
	group.GET("", handler.List)
	group.POST("", handler.Submit)
	group.GET("/:id", handler.Get)
	group.POST("/:id/approve", approverGuard(cfg), handler.Approve)
	group.POST("/:id/reject", approverGuard(cfg), handler.Reject)
	group.POST("/fast-track", approverGuard(cfg), handler.FastTrack)
}

// registerRegisterRoutes registers accumulation register endpoints.
func registerRegisterRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	registers := rg.Group("/registers")
	baseHandler := handlers.NewBaseHandler()

	// Stock aggregate
	{
		service := resstock.NewService(register_repo.NewResStockRepo(cfg.TxManager))
		handler := handlers.NewStockHandler(baseHandler, service)

		group := registers.Group("/stock")
		group.GET("", handler.List)
		group.GET("/low", handler.ListLowStock)
		group.GET("/:materialId", handler.GetByMaterial)
	}

	// Transaction log and per-location balances
	{
		service := ledger.NewService(register_repo.NewLedgerRepo(cfg.TxManager))
		handler := handlers.NewLedgerHandler(baseHandler, service)

		registers.GET("/transactions", handler.ListTransactions)
		registers.GET("/transactions/:id", handler.GetTransaction)
		registers.GET("/inventory/:materialId", handler.ListInventory)
	}
}

// registerConsumptionRoutes registers the production consumption endpoint.
func registerConsumptionRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	service := consumption.NewService(
		register_repo.NewResStockRepo(cfg.TxManager),
		register_repo.NewLedgerRepo(cfg.TxManager),
		catalog_repo.NewMaterialRepo(cfg.TxManager),
		cfg.TxManager,
		cfg.OnMissingStock,
	)
	handler := handlers.NewConsumptionHandler(baseHandler, service)

	rg.POST("/consumption", handler.Consume)
}
