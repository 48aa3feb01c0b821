package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"farecalc/internal/handler"
	"farecalc/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	TripHandler   *handler.TripHandler
	ReportHandler *handler.ReportHandler
	RedisClient   *redis.Client
	NewRelicApp   *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Trip wizard routes. The step endpoints mutate the user's
		// active trip; transitions are guarded and report `advanced`.
		trips := v1.Group("/trips/:userId")
		{
			trips.GET("", deps.TripHandler.GetCurrent)
			trips.POST("/begin", deps.TripHandler.Begin)
			trips.POST("/resume", deps.TripHandler.Resume)
			trips.POST("/discard", deps.TripHandler.Discard)

			trips.POST("/arrive", deps.TripHandler.MarkArrived)
			trips.POST("/pickup", deps.TripHandler.SetPickup)
			trips.POST("/start", deps.TripHandler.StartTrip)

			trips.POST("/dropoff", deps.TripHandler.SetDropoff)
			trips.POST("/duration", deps.TripHandler.SetDuration)
			trips.POST("/drop", deps.TripHandler.MarkDropped)
			trips.GET("/preview", deps.TripHandler.Preview)
			trips.POST("/end", deps.TripHandler.EndTrip)

			trips.POST("/customer", deps.TripHandler.SetCustomer)
			trips.POST("/complete", deps.TripHandler.Complete)
			trips.POST("/again", deps.TripHandler.RideAgain)
		}

		// Completed trip reports.
		reports := v1.Group("/reports/:userId")
		{
			reports.GET("/trips", deps.ReportHandler.ListTrips)
		}
	}

	return router
}
