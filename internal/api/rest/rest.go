package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/carbonix/carbonix-indexer/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Project endpoints (public read access)
		v1.GET("/projects", handler.ListProjects)
		v1.GET("/projects/:address", handler.GetProject)
		v1.GET("/projects/:address/whitelist", handler.GetWhitelist)
		v1.GET("/projects/:address/mints", handler.GetMints)
		v1.GET("/projects/:address/distribution", handler.GetDistribution)
		v1.GET("/projects/:address/sale", handler.GetSale)

		// Refresh trigger (requires authentication)
		v1.POST("/projects/:address/refresh", middleware.Auth(authCfg), handler.TriggerRefresh)
	}
}
