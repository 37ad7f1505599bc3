package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DGfinder/fleet-correlation-go/internal/config"
	"github.com/DGfinder/fleet-correlation-go/internal/handler"
	"github.com/DGfinder/fleet-correlation-go/internal/middleware"
	"github.com/DGfinder/fleet-correlation-go/internal/repository"
	"github.com/DGfinder/fleet-correlation-go/internal/service"
)

// SetupRouter wires repositories, services, and handlers into the HTTP surface
func SetupRouter(cfg *config.Config, db *sql.DB) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.RateLimit(300, time.Minute))

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Fleet Correlation API is running",
		})
	})

	tripHandler := handler.NewTripHandler(service.NewTripService(repository.NewTripRepository(db)))
	deliveryHandler := handler.NewDeliveryHandler(service.NewDeliveryService(repository.NewDeliveryRepository(db)))
	poiHandler := handler.NewPOIHandler(service.NewPOIService(repository.NewPOIRepository(db)))
	registryHandler := handler.NewRegistryHandler(service.NewRegistryService(repository.NewRegistryRepository(db)))
	correlationHandler := handler.NewCorrelationHandler(service.NewCorrelationService(repository.NewCorrelationRepository(db)))
	routeHandler := handler.NewRouteHandler(service.NewRouteService(repository.NewRouteRepository(db)))
	runHandler := handler.NewRunHandler(service.NewRunService(repository.NewAnalysisRunRepository(db), db))

	api := r.Group("/api/v1")
	auth := middleware.Auth(cfg.JWTSecret)
	{
		trips := api.Group("/trips")
		{
			trips.GET("", tripHandler.GetTrips)
			trips.GET("/:id", tripHandler.GetTripByID)
			trips.POST("", auth, tripHandler.IngestTrips)
		}

		deliveries := api.Group("/deliveries")
		{
			deliveries.GET("", deliveryHandler.GetDeliveries)
			deliveries.POST("", auth, deliveryHandler.IngestDeliveries)
		}

		registry := api.Group("/registry")
		{
			registry.GET("/terminals", registryHandler.GetTerminals)
			registry.GET("/customers", registryHandler.GetCustomers)
			registry.PUT("/terminals", auth, registryHandler.LoadTerminals)
			registry.PUT("/customers", auth, registryHandler.LoadCustomers)
			registry.PUT("/aliases/business", auth, registryHandler.LoadBusinessAliases)
			registry.PUT("/aliases/terminal", auth, registryHandler.LoadTerminalAliases)
		}

		pois := api.Group("/pois")
		{
			pois.GET("", poiHandler.GetPOIs)
			pois.GET("/:id", poiHandler.GetPOIByID)
			pois.POST("/:id/classify", auth, poiHandler.ClassifyPOI)
		}

		correlations := api.Group("/correlations")
		{
			correlations.GET("", correlationHandler.GetCorrelations)
			correlations.GET("/summary", correlationHandler.GetQualitySummary)
			correlations.GET("/:id", correlationHandler.GetCorrelationByID)
		}

		routes := api.Group("/routes")
		{
			routes.GET("", routeHandler.GetRoutes)
			routes.GET("/:id", routeHandler.GetRouteByID)
		}

		runs := api.Group("/runs")
		{
			runs.GET("", runHandler.ListRuns)
			runs.GET("/:id", runHandler.GetRun)
			runs.POST("", auth, runHandler.StartRun)
		}
	}

	return r
}
