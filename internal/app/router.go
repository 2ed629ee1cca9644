package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bits/internal/config"
	"bits/internal/handler"
	"bits/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	ZoneHandler       *handler.ZoneHandler
	PricingHandler    *handler.PricingHandler
	IncidentHandler   *handler.IncidentHandler
	PredictionHandler *handler.PredictionHandler
	DashboardHandler  *handler.DashboardHandler
	ChatHandler       *handler.ChatHandler
	LiveHandler       *handler.LiveHandler // nil without Redis
	RedisClient       *redis.Client
	NewRelicApp       *newrelic.Application
	Logger            *zap.Logger
	Server            config.ServerConfig
	AdminPassword     string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.CORS(deps.Server.CORSOrigins))

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
		router.Use(middleware.NewRelicAttributes())
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		v1.GET("/zones", deps.ZoneHandler.GetAll)
		v1.GET("/zones/:name", deps.ZoneHandler.GetZone)
		v1.GET("/regions/:region/zones", deps.ZoneHandler.GetRegionZones)
		v1.GET("/geocode/reverse", deps.ZoneHandler.ReverseGeocode)

		v1.GET("/conditions", deps.PricingHandler.GetConditions)
		v1.POST("/quotes", deps.PricingHandler.CreateQuote)

		// Incident ledger routes.
		incidents := v1.Group("/incidents")
		{
			incidents.GET("", deps.IncidentHandler.GetActive)
			incidents.GET("/counts", deps.IncidentHandler.GetCounts)
			incidents.GET("/nearby", deps.IncidentHandler.GetNearby)
		}

		// Admin routes.
		admin := v1.Group("/admin")
		if deps.Server.AdminRateLimit > 0 {
			admin.Use(middleware.NewRateLimiter(deps.Server.AdminRateLimit, deps.Server.AdminBurst).Middleware())
		}
		admin.Use(middleware.AdminGate(deps.AdminPassword))
		admin.Use(middleware.Idempotency(deps.RedisClient, deps.Logger))
		{
			admin.POST("/incidents", deps.IncidentHandler.AddIncident)
			admin.DELETE("/incidents/:id", deps.IncidentHandler.RemoveIncident)
		}

		v1.GET("/predictions", deps.PredictionHandler.GetAll)
		v1.GET("/predictions/:zone", deps.PredictionHandler.GetZone)
		v1.GET("/demand", deps.PredictionHandler.GetDemand)
		v1.GET("/dashboard", deps.DashboardHandler.GetSnapshot)

		chatLimiter := middleware.NewRateLimiter(deps.Server.ChatRateLimit, deps.Server.ChatBurst)
		v1.POST("/chat", chatLimiter.Middleware(), deps.ChatHandler.PostMessage)
		v1.GET("/session", deps.ChatHandler.GetSession)

		if deps.LiveHandler != nil {
			v1.GET("/live", deps.LiveHandler.Stream)
		}
	}

	return router
}
