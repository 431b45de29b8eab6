// Package api exposes the scraper's control surface over HTTP: session
// lifecycle, stage triggers, artifact access, and health.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/CyborPunk-2077/article-scraper/internal/logger"
	"github.com/CyborPunk-2077/article-scraper/internal/logs"
	"github.com/CyborPunk-2077/article-scraper/internal/pipeline"
	"github.com/CyborPunk-2077/article-scraper/internal/storage"
)

// requestIDKey is the gin context key carrying the request id.
const requestIDKey = "request_id"

// Deps holds the collaborators the handlers work against.
type Deps struct {
	Pipeline *pipeline.Pipeline
	Store    storage.BlobStore
	Recorder *logs.Recorder
	Logger   logger.Interface
}

// NewRouter creates and configures the gin router with all routes.
func NewRouter(deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(deps.Logger))
	router.Use(corsMiddleware())

	h := newHandler(deps)

	router.GET("/health", h.Health)

	v1 := router.Group("/api/v1")

	sessions := v1.Group("/sessions")
	sessions.POST("", h.CreateSession)
	sessions.GET("", h.ListSessions)
	sessions.GET("/:id", h.GetSession)
	sessions.POST("/:id/stop", h.StopSession)
	sessions.POST("/:id/convert", h.StartConvert)
	sessions.GET("/:id/convert", h.ConvertStatus)
	sessions.POST("/:id/summaries", h.StartSummarize)
	sessions.GET("/:id/summaries", h.SummarizeStatus)

	artifacts := v1.Group("/artifacts")
	artifacts.GET("/:role", h.ListArtifacts)
	artifacts.GET("/:role/*key", h.DownloadArtifact)

	return router
}

// requestIDMiddleware tags every request with an id for log correlation,
// honoring one supplied by the caller.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// loggingMiddleware logs one line per request.
func loggingMiddleware(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		log.Info("HTTP request",
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"request_id", c.GetString(requestIDKey),
		)
	}
}

// corsMiddleware adds CORS headers so the operator panel can call the API
// from another origin.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
