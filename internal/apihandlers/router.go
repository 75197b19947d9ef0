package apihandlers

import (
	"time"

	"inkwell/internal/app"
	"inkwell/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// NewRouter builds the gin engine with every API route.
func NewRouter(a *app.App) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger())

	apiHandler := NewAPIHandler(a)

	v1 := router.Group("/api/v1")
	{
		contentGroup := v1.Group("/content")
		{
			contentGroup.POST("", apiHandler.CreateContentHandler)
			contentGroup.GET("", apiHandler.ListContentHandler)
			contentGroup.GET("/:id", apiHandler.GetContentHandler)
			contentGroup.PATCH("/:id", apiHandler.UpdateContentHandler)
			contentGroup.DELETE("/:id", apiHandler.DeleteContentHandler)
			contentGroup.POST("/:id/reanalyze", apiHandler.ReanalyzeContentHandler)
			contentGroup.POST("/:id/categorize", apiHandler.CategorizeContentHandler)
			contentGroup.PUT("/:id/tags", apiHandler.ReplaceContentTagsHandler)
		}

		v1.POST("/analyze", apiHandler.AnalyzeHandler)
		v1.POST("/categorize/batch", apiHandler.BatchCategorizeHandler)

		categoryGroup := v1.Group("/categories")
		{
			categoryGroup.GET("", apiHandler.ListCategoriesHandler)
			categoryGroup.POST("", apiHandler.CreateCategoryHandler)
			categoryGroup.GET("/:id", apiHandler.GetCategoryHandler)
			categoryGroup.PUT("/:id/keywords", apiHandler.ReplaceKeywordsHandler)
			categoryGroup.DELETE("/:id", apiHandler.DeleteCategoryHandler)
		}

		v1.GET("/tags", apiHandler.ListTagsHandler)
		v1.GET("/jobs", apiHandler.ListJobsHandler)
	}

	router.GET("/health", apiHandler.HealthHandler)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	return router
}

// RequestID copies X-Request-ID from the request, or generates one, and
// echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request through logrus.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"request_id": c.GetString(requestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		})
		switch {
		case c.Writer.Status() >= 500:
			entry.Error("request completed")
		case c.Writer.Status() >= 400:
			entry.Warn("request completed")
		default:
			entry.Info("request completed")
		}
	}
}
