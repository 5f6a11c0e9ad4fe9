// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	corenum "stockledger/internal/core/numerator"
	"stockledger/internal/domain/catalogs/product"
	"stockledger/internal/domain/catalogs/unit"
	"stockledger/internal/domain/catalogs/warehouse"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/domain/reports"
	"stockledger/internal/infrastructure/http/v1/handlers"
	"stockledger/internal/infrastructure/http/v1/middleware"
	"stockledger/internal/infrastructure/storage/postgres"
	"stockledger/internal/infrastructure/storage/postgres/catalog_repo"
	"stockledger/internal/infrastructure/storage/postgres/ledger_repo"
	"stockledger/internal/infrastructure/storage/postgres/report_repo"
	"stockledger/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// TxManager wraps operations in transactions
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Numerator for document number generation
	Numerator corenum.Generator
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

	// API v1, everything behind JWT
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTValidator))

	registerCatalogRoutes(api, cfg)
	registerLedgerRoutes(api, cfg)
	registerReportRoutes(api, cfg)

	return router
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- PRODUCTS ---
	{
		repo := catalog_repo.NewProductRepo(cfg.TxManager)
		service := product.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewProductHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/products"), handler)
	}

	// --- WAREHOUSES ---
	{
		repo := catalog_repo.NewWarehouseRepo(cfg.TxManager)
		service := warehouse.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewWarehouseHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/warehouses"), handler)
	}

	// --- UNITS ---
	{
		repo := catalog_repo.NewUnitRepo(cfg.TxManager)
		service := unit.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewUnitHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/units"), handler)
	}
}

// registerLedgerRoutes registers posting operations and ledger queries.
func registerLedgerRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	productRepo := catalog_repo.NewProductRepo(cfg.TxManager)
	productService := product.NewService(productRepo, cfg.TxManager, cfg.Numerator)

	warehouseRepo := catalog_repo.NewWarehouseRepo(cfg.TxManager)
	warehouseService := warehouse.NewService(warehouseRepo, cfg.TxManager, cfg.Numerator)

	ledgerRepo := ledger_repo.NewLedgerRepo(cfg.TxManager)
	ledgerService := ledger.NewService(ledgerRepo, cfg.TxManager, cfg.Numerator, productService, warehouseService)

	handler := handlers.NewLedgerHandler(baseHandler, ledgerService)

	group := rg.Group("/ledger")
	{
		// Posting operations
		group.POST("/stock-in", handler.StockIn)
		group.POST("/stock-out", handler.StockOut)
		group.POST("/transfer", handler.Transfer)
		group.POST("/opening-balance", handler.OpeningBalance)
		group.POST("/adjustment", handler.Adjustment)

		// Document queries
		group.GET("/documents", handler.ListDocuments)
		group.GET("/documents/:id", handler.GetDocument)

		// Stock queries
		group.GET("/stock", handler.ListStock)
		group.GET("/stock/:productId/:warehouseId", handler.GetStock)
	}
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	reportRepo := report_repo.NewReportRepo(cfg.TxManager)
	reportService := reports.NewService(reportRepo)
	handler := handlers.NewReportsHandler(baseHandler, reportService)

	group := rg.Group("/reports")
	{
		group.GET("/stock-balance", handler.GetStockBalance)
		group.GET("/stock-turnover", handler.GetStockTurnover)
		group.GET("/document-journal", handler.GetDocumentJournal)
	}
}
