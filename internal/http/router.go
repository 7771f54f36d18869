// Package http exposes the dataset viewer over a JSON and image API.
package http

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(handler *Handler) *gin.Engine {

	router := gin.Default()

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()

	// Get allowed origins from environment variable.
	// Default to allow all origins if not specified.
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	// API v1 routes.
	v1 := router.Group("/v1")
	v1.GET("/dataset", handler.GetDataset)
	v1.GET("/regions", handler.GetRegions)
	v1.GET("/sst", handler.GetPoint)

	// Rendered maps.
	maps := v1.Group("/maps")
	maps.GET("/monthly/:month", handler.GetMonthlyMap)
	maps.GET("/frames/:index", handler.GetFrame)
	v1.GET("/animation", handler.GetAnimation)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}
