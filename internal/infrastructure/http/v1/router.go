package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"showroom/internal/core/clock"
	"showroom/internal/core/numerator"
	"showroom/internal/domain/allotment"
	"showroom/internal/domain/audit"
	"showroom/internal/domain/catalogs/customer"
	"showroom/internal/domain/catalogs/employee"
	"showroom/internal/domain/catalogs/vehicle"
	"showroom/internal/domain/reservation"
	"showroom/internal/domain/waitinglist"
	"showroom/internal/infrastructure/http/v1/handlers"
	"showroom/internal/infrastructure/http/v1/middleware"
	"showroom/internal/infrastructure/storage/postgres"
	"showroom/internal/infrastructure/storage/postgres/catalog_repo"
	"showroom/internal/infrastructure/storage/postgres/reservation_repo"
	"showroom/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Pool is the database connection pool (health checks report on it).
	Pool *postgres.Pool

	// TxManager runs multi-write operations in one transaction.
	TxManager *postgres.TxManager

	// Logger for request logging.
	Logger *logger.Logger

	// JWTValidator for token validation.
	JWTValidator middleware.JWTValidator

	// Numerator generates human-readable entity numbers.
	Numerator numerator.Generator

	// Audit records entity change history. Nil disables auditing.
	Audit audit.Recorder

	// Clock supplies current time to the domain layer. Nil means system
	// clock.
	Clock clock.Clock

	// ReservationPolicy tunes coordinator behavior.
	ReservationPolicy reservation.Policy

	// AllowedOrigins for CORS. Empty means same-origin only.
	AllowedOrigins []string

	// Version reported by /health/info.
	Version string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID, middleware.HeaderTraceID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// Shared domain wiring. Repos and services are stateless and built
	// once; per-request transaction state travels in the context.
	baseHandler := handlers.NewBaseHandler()

	customerSvc := customer.NewService(
		catalog_repo.NewCustomerRepo(cfg.TxManager), cfg.Numerator, cfg.TxManager)
	vehicleSvc := vehicle.NewService(
		catalog_repo.NewVehicleRepo(cfg.TxManager), cfg.Numerator, cfg.TxManager)
	employeeSvc := employee.NewService(
		catalog_repo.NewEmployeeRepo(cfg.TxManager), cfg.Numerator, cfg.TxManager)

	allotmentSvc := allotment.NewService(
		reservation_repo.NewAllotmentRepo(cfg.TxManager),
		cfg.Numerator, cfg.TxManager, cfg.Clock, cfg.Audit)
	waitingListSvc := waitinglist.NewService(
		reservation_repo.NewWaitingListRepo(cfg.TxManager),
		cfg.Numerator, cfg.TxManager, cfg.Clock, cfg.Audit)
	coordinator := reservation.NewCoordinator(
		allotmentSvc, waitingListSvc, cfg.Clock, cfg.ReservationPolicy)

	// API v1 (JWT required)
	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTValidator))
	{
		// --- CATALOGS ---
		catalogs := api.Group("/catalog")
		{
			customerHandler := handlers.NewCustomerHandler(baseHandler, customerSvc)
			RegisterCatalogRoutes(catalogs.Group("/customers"), customerHandler, string(employee.RoleManager))

			vehicleHandler := handlers.NewVehicleHandler(baseHandler, vehicleSvc, coordinator)
			vehicles := catalogs.Group("/vehicles")
			vehicles.GET("/available", vehicleHandler.ListAvailable)
			vehicles.POST("/:id/status", vehicleHandler.SetStatus)
			RegisterCatalogRoutes(vehicles, vehicleHandler, string(employee.RoleManager))

			employeeHandler := handlers.NewEmployeeHandler(baseHandler, employeeSvc)
			employees := catalogs.Group("/employees")
			employees.GET("/sales-persons", employeeHandler.ListSalesPersons)
			RegisterCatalogRoutes(employees, employeeHandler, string(employee.RoleManager))
		}

		// --- ALLOTMENTS ---
		{
			handler := handlers.NewAllotmentHandler(baseHandler, allotmentSvc)
			resHandler := handlers.NewReservationHandler(baseHandler, coordinator, vehicleSvc)

			allotments := api.Group("/allotments")
			allotments.GET("", handler.List)
			allotments.POST("", handler.Create)
			allotments.GET("/by-number/:number", handler.GetByNumber)
			allotments.GET("/:id", handler.Get)
			allotments.POST("/:id/pay", handler.MarkPaid)
			allotments.POST("/:id/extend", handler.Extend)
			allotments.POST("/:id/convert", resHandler.ConvertToOrder)
			allotments.POST("/:id/cancel", resHandler.CancelAllotment)
			allotments.DELETE("/:id", middleware.RequireRole(string(employee.RoleManager)), handler.Delete)

			// Coordinated offer of an available vehicle.
			api.POST("/reservations/offer", resHandler.OfferVehicle)
		}

		// --- WAITING LIST ---
		{
			handler := handlers.NewWaitingListHandler(baseHandler, waitingListSvc)

			waiting := api.Group("/waiting-list")
			waiting.GET("", handler.List)
			waiting.POST("", handler.Enroll)
			waiting.GET("/:id", handler.Get)
			waiting.POST("/:id/notify", handler.Notify)
			waiting.POST("/:id/cancel", handler.Cancel)
			waiting.POST("/:id/priority", handler.Reprioritize)
			waiting.POST("/:id/contact", handler.RecordContact)
			waiting.DELETE("/:id", middleware.RequireRole(string(employee.RoleManager)), handler.Delete)
		}
	}

	return router
}
