package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/marketboard/marketboard-go/internal/api/handlers"
	"github.com/marketboard/marketboard-go/internal/cache"
	"github.com/marketboard/marketboard-go/internal/services"
)

// SetupRoutes wires the HTTP surface: the health endpoint, the dashboard
// API under /api/v1, and the static page that drives it. redis may be nil
// when the snapshot cache is disabled.
func SetupRoutes(router *gin.Engine, dashboard *services.DashboardService, redis *cache.RedisClient, version string, logger *logrus.Logger) {
	healthHandler := handlers.NewHealthHandler(dashboard, redis, version)
	dashboardHandler := handlers.NewDashboardHandler(dashboard, logger)

	// Health check endpoint
	router.GET("/health", healthHandler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		dash := v1.Group("/dashboard")
		{
			dash.GET("/meta", dashboardHandler.GetMeta)
			dash.GET("/chart", dashboardHandler.GetChart)
			dash.GET("/summary", dashboardHandler.GetSummary)
			dash.GET("/table", dashboardHandler.GetTable)
		}
	}

	// The dashboard page re-requests chart, summary and table on every
	// control change.
	router.StaticFile("/", "./web/index.html")
}
