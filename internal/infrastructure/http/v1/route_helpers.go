// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"showroom/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler defines the interface for catalog handlers.
// All catalog handlers must implement these methods.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
// This eliminates the need to manually wire up routes for each catalog.
// Reads are open to any authenticated user; destructive operations
// require one of writeRoles when provided.
//
// Usage:
//
//	repo := catalog_repo.NewCustomerRepo(cfg.TxManager)
//	service := customer.NewService(repo, cfg.Numerator, cfg.TxManager)
//	handler := handlers.NewCustomerHandler(baseHandler, service)
//	RegisterCatalogRoutes(catalogs.Group("/customers"), handler, "manager")
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler, writeRoles ...string) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)

	if len(writeRoles) > 0 {
		group.DELETE("/:id", middleware.RequireRole(writeRoles...), handler.Delete)
		group.POST("/:id/deletion-mark", middleware.RequireRole(writeRoles...), handler.SetDeletionMark)
		return
	}
	group.DELETE("/:id", handler.Delete)
	group.POST("/:id/deletion-mark", handler.SetDeletionMark)
}
