package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prasenjit/swagger-hub/internal/hub"
	"github.com/prasenjit/swagger-hub/internal/stats"
	"github.com/prasenjit/swagger-hub/internal/storage"
)

// AggregatePath is where the merged document is served
const AggregatePath = "/swagger/v1/swagger.json"

// Router handles HTTP routing
type Router struct {
	engine  *gin.Engine
	logger  *slog.Logger
	handler *Handler
}

// NewRouter creates a new router
func NewRouter(provider hub.DocumentProvider, store storage.Storage, statsCollector *stats.Collector, logger *slog.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)

	r := &Router{
		engine:  gin.New(),
		logger:  logger,
		handler: NewHandler(provider, store, statsCollector, logger),
	}

	r.engine.Use(gin.Recovery())
	r.engine.Use(corsMiddleware())
	r.engine.Use(loggingMiddleware(logger))

	r.setupRoutes()

	return r
}

// setupRoutes configures all routes
func (r *Router) setupRoutes() {
	r.engine.GET(AggregatePath, r.handler.GetAggregateJSON)
	r.engine.GET("/swagger/v1/swagger.yaml", r.handler.GetAggregateYAML)

	// Admin API routes
	api := r.engine.Group("/_api")
	{
		api.GET("/documents", r.handler.ListDocuments)
		api.GET("/documents/:index", r.handler.GetDocument)

		api.GET("/snapshots", r.handler.ListSnapshots)
		api.DELETE("/snapshots", r.handler.DeleteSnapshot)

		api.GET("/stats", r.handler.GetStats)
		api.POST("/stats/reset", r.handler.ResetStats)

		api.GET("/health", r.handler.HealthCheck)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
}

// Handler returns the http.Handler
func (r *Router) Handler() http.Handler {
	return r.engine
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// loggingMiddleware logs one line per request. The level follows the status:
// Info below 400, Warn for 4xx, Error for 5xx.
func loggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
		}

		const msg = "http request"
		switch {
		case status >= http.StatusInternalServerError:
			logger.Error(msg, attrs...)
		case status >= http.StatusBadRequest:
			logger.Warn(msg, attrs...)
		default:
			logger.Info(msg, attrs...)
		}
	}
}
