// Package router wires handlers and middleware into the gin engine.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quocanhngo/farmiot/docs"
	"github.com/quocanhngo/farmiot/internal/handler"
	"github.com/quocanhngo/farmiot/internal/middleware"
	"github.com/quocanhngo/farmiot/pkg/auth"
	"github.com/quocanhngo/farmiot/pkg/metrics"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Deps is everything the HTTP surface needs
type Deps struct {
	DeviceHandler      *handler.DeviceHandler
	ReadingHandler     *handler.ReadingHandler
	MaintenanceHandler *handler.MaintenanceHandler
	HealthHandler      *handler.HealthHandler

	TokenValidator middleware.TokenValidator
	Revocations    middleware.TokenRevocations
	IngestLimiter  *middleware.RateLimiter

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	CORSOrigins []string
}

// Setup builds the engine. Set the gin mode before calling it.
func Setup(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(d.Metrics))

	// Serve swagger.json at /docs/swagger.json to avoid conflict with /swagger/* wildcard
	router.GET("/docs/swagger.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", docs.SwaggerJSON)
	})
	url := ginSwagger.URL("/docs/swagger.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, url))

	if len(d.CORSOrigins) > 0 {
		router.Use(middleware.CORSMiddleware(d.CORSOrigins))
	}

	if d.HealthHandler != nil {
		router.GET("/health", d.HealthHandler.Health)
	}
	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// ==================== API Routes ====================
	iot := router.Group("/api/v1/iot")
	{
		// Device ingestion (public, rate limited)
		ingest := []gin.HandlerFunc{}
		if d.IngestLimiter != nil {
			ingest = append(ingest, middleware.RateLimitMiddleware(d.IngestLimiter))
		}
		iot.POST("/readings", append(ingest, d.ReadingHandler.RecordReading)...)

		// Protected routes
		protected := iot.Group("")
		protected.Use(middleware.AuthMiddleware(d.TokenValidator, d.Revocations))
		{
			// Devices
			protected.GET("/devices", d.DeviceHandler.ListDevices)
			protected.POST("/devices", d.DeviceHandler.RegisterDevice)
			protected.GET("/devices/:id", d.DeviceHandler.GetDevice)
			protected.PUT("/devices/:id", d.DeviceHandler.UpdateDevice)
			protected.DELETE("/devices/:id", d.DeviceHandler.DeleteDevice)
			protected.GET("/farm/:farm_id/devices", d.DeviceHandler.GetFarmDevices)

			// Readings
			protected.GET("/readings/:device_id", d.ReadingHandler.GetDeviceReadings)
			protected.GET("/readings/:device_id/latest", d.ReadingHandler.GetLatestReading)
			protected.GET("/readings/:device_id/stats", d.ReadingHandler.GetReadingStats)
			protected.GET("/farm/:farm_id/readings", d.ReadingHandler.GetFarmReadings)

			// Maintenance
			protected.POST("/maintenance/check-offline", middleware.RequireRole(auth.RoleAdmin), d.MaintenanceHandler.CheckOffline)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return router
}
