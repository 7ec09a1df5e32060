package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (s *Server) SetUpRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestId())
	router.Use(Logger())
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "ok",
		})
	})
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	router.Static("/static/reports", s.conf.ReportDir())
	router.Static("/static/snapshots", s.conf.SnapshotDir())
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.Redirect(http.StatusFound, "/swagger/index.html")
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	apiV1 := router.Group("/api/v1")
	apiV1.Use(TrySetUserToContext(s.conf.JwtSecret))
	s.SetUpApiV1Router(apiV1)

	return router
}

func (s *Server) SetUpApiV1Router(apiV1 *gin.RouterGroup) {
	apiV1.POST("/login", s.handleLogin)
	apiV1.POST("/logout", s.handleLogout)

	apiV1.GET("/realtime_metrics", s.handleRealtimeMetrics)
	v1Analytics := apiV1.Group("/analytics")
	v1Analytics.GET("/hourly", s.handleHourlyTrends)
	v1Analytics.GET("/daily", s.handleDailySummary)
	v1Analytics.GET("/distribution", s.handleTypeDistribution)
	v1Analytics.GET("/heatmap", s.handleHeatmap)

	apiV1.GET("/logs", s.handleListLogs)
	apiV1.GET("/logs/:log_id", s.handleGetLog)
	apiV1.GET("/violations", s.handleListViolations)

	v1Authed := apiV1.Group("")
	v1Authed.Use(NeedAuth(false))

	v1Authed.PUT("/violations/:violation_id/resolve", s.handleResolveViolation)

	v1UserSettings := v1Authed.Group("/settings")
	v1UserSettings.GET("/profile", s.handleGetUserProfile)

	{
		v1Admin := v1Authed.Group("/admin")
		v1Admin.Use(NeedAuth(true))

		v1Admin.GET("/users", s.handleAdminListUsers)
		v1Admin.POST("/users", s.handleAdminCreateUsers)
		v1Admin.DELETE("/user/:user_id", s.handleAdminDeleteUser)
	}
}
