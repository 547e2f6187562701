package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/topicflow/topicflow-backend/internal/handlers"
	"github.com/topicflow/topicflow-backend/internal/middleware"
)

type RouterConfig struct {
	CORSOrigins   []string
	RequestLog    *middleware.RequestLogMiddleware
	GraphHandler  *handlers.GraphHandler
	CourseHandler *handlers.CourseHandler
	TopicHandler  *handlers.TopicHandler
	EdgeHandler   *handlers.EdgeHandler
	LegacyHandler *handlers.LegacyHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.RequestLog != nil {
		router.Use(cfg.RequestLog.LogRequests())
	}

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/health", handlers.HealthCheck)

	// Legacy read path, default graph only.
	router.GET("/api/graph", cfg.LegacyHandler.Graph)

	graphs := router.Group("/api/v1/graphs")
	{
		graphs.GET("", cfg.GraphHandler.List)
		graphs.POST("", cfg.GraphHandler.Create)
		graphs.GET("/:graphId", cfg.GraphHandler.Get)
		graphs.PATCH("/:graphId", cfg.GraphHandler.Update)
		graphs.DELETE("/:graphId", cfg.GraphHandler.Delete)
		graphs.GET("/:graphId/data", cfg.GraphHandler.FullData)
		graphs.POST("/:graphId/batch", cfg.GraphHandler.BatchUpdate)

		graphs.GET("/:graphId/courses", cfg.CourseHandler.List)
		graphs.POST("/:graphId/courses", cfg.CourseHandler.Create)
		graphs.GET("/:graphId/courses/:courseId", cfg.CourseHandler.Get)
		graphs.PATCH("/:graphId/courses/:courseId", cfg.CourseHandler.Update)
		graphs.DELETE("/:graphId/courses/:courseId", cfg.CourseHandler.Delete)

		graphs.GET("/:graphId/topics", cfg.TopicHandler.List)
		graphs.POST("/:graphId/topics", cfg.TopicHandler.Create)
		graphs.GET("/:graphId/topics/:urlSlug", cfg.TopicHandler.Get)
		graphs.PATCH("/:graphId/topics/:urlSlug", cfg.TopicHandler.Update)
		graphs.DELETE("/:graphId/topics/:urlSlug", cfg.TopicHandler.Delete)
		graphs.GET("/:graphId/topics/:urlSlug/prerequisites", cfg.TopicHandler.Prerequisites)
		graphs.GET("/:graphId/topics/:urlSlug/dependents", cfg.TopicHandler.Dependents)

		graphs.GET("/:graphId/edges", cfg.EdgeHandler.List)
		graphs.POST("/:graphId/edges", cfg.EdgeHandler.Create)
		graphs.DELETE("/:graphId/edges/:parentSlug/:childSlug", cfg.EdgeHandler.Delete)
	}

	return router
}
