// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockward/internal/core/security"
	"stockward/internal/domain/auditlog"
	"stockward/internal/domain/auth"
	"stockward/internal/domain/catalogs/item"
	"stockward/internal/domain/catalogs/location"
	"stockward/internal/domain/ledger"
	"stockward/internal/domain/loading"
	"stockward/internal/domain/process"
	"stockward/internal/domain/task"
	"stockward/internal/domain/transaction"
	"stockward/internal/infrastructure/http/v1/handlers"
	"stockward/internal/infrastructure/http/v1/middleware"
	"stockward/pkg/logger"
)

// RouterConfig holds the wired services the API exposes.
type RouterConfig struct {
	Pool    *pgxpool.Pool
	Logger  *logger.Logger
	Version string

	JWTValidator middleware.JWTValidator
	Policy       *security.Policy

	AuthService        *auth.Service
	TransactionService *transaction.Service
	TaskService        *task.Service
	LoadingService     *loading.Service
	LedgerService      *ledger.Service
	AuditService       *auditlog.Service
	ItemService        *item.Service
	LocationService    *location.Service
	ProcessRegistry    *process.Registry
	TaskTypeCatalog    *task.TypeCatalog
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	baseHandler := handlers.NewBaseHandler()

	apiV1 := router.Group("/api/v1")
	{
		// Auth: login/refresh public, the rest behind JWT
		authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)
		publicAuth := apiV1.Group("/auth")
		protectedAuth := apiV1.Group("/auth")
		protectedAuth.Use(middleware.Auth(cfg.JWTValidator))
		authHandler.RegisterRoutes(publicAuth, protectedAuth)

		protected := apiV1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		// Inventory transactions
		{
			handler := handlers.NewTransactionHandler(baseHandler, cfg.TransactionService, cfg.AuditService)
			group := protected.Group("/transactions")
			group.POST("", handler.Create)
			group.GET("", handler.List)
			group.GET("/:id", handler.Get)
			group.GET("/:id/audit", handler.AuditTrail)
		}

		// Fulfillment tasks
		{
			handler := handlers.NewTaskHandler(baseHandler, cfg.TaskService)
			group := protected.Group("/tasks")
			group.GET("", handler.List)
			group.GET("/dashboard", handler.Dashboard)
			group.GET("/:id", handler.Get)
			group.POST("/:id/complete", handler.Complete)
		}

		// Loading and dispatch
		{
			handler := handlers.NewLoadingHandler(baseHandler, cfg.LoadingService)
			group := protected.Group("/loadings")
			group.POST("", handler.Start)
			group.GET("", handler.List)
			group.GET("/:id", handler.Get)
			group.POST("/:id/complete", handler.Complete)
		}

		// Stock ledger reads
		{
			handler := handlers.NewStockHandler(baseHandler, cfg.LedgerService, cfg.AuditService, cfg.Policy)
			group := protected.Group("/stock")
			group.GET("/locations/:id", handler.ByLocation)
			group.GET("/items/:id", handler.ByItem)
			group.GET("/records/:id/history", handler.History)
		}

		// Catalogs: reads for everyone, writes for admin/supervisor
		{
			handler := handlers.NewCatalogHandler(baseHandler, cfg.ItemService, cfg.LocationService, cfg.ProcessRegistry, cfg.TaskTypeCatalog)
			group := protected.Group("/catalog")
			manage := middleware.RequireRole(security.RoleAdmin, security.RoleSupervisor)

			group.GET("/items", handler.ListItems)
			group.GET("/items/:id", handler.GetItem)
			group.POST("/items", manage, handler.CreateItem)
			group.POST("/items/:id/deactivate", manage, handler.DeactivateItem)

			group.GET("/warehouses", handler.ListWarehouses)
			group.GET("/warehouses/:id/locations", handler.ListLocations)
			group.POST("/warehouses", manage, handler.CreateWarehouse)
			group.POST("/locations", manage, handler.CreateLocation)

			group.GET("/process-types", handler.ListProcessTypes)
			group.PUT("/process-types", manage, handler.UpsertProcessType)
			group.GET("/task-types", handler.ListTaskTypes)
			group.PUT("/task-types", manage, handler.UpsertTaskType)
		}
	}

	return router
}
