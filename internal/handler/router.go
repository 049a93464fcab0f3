package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the admin API routes.
func NewRouter(health *HealthHandler, admin *AdminHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", health.LivenessProbe)
	router.GET("/ready", health.ReadinessProbe)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/stats", admin.GetStats)
		api.GET("/contents/:platform/:content_id", admin.GetContent)
	}

	return router
}
