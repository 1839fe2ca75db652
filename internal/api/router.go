package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jira-dashboard/internal/logging"
)

// NewRouter wires the HTTP surface under the configured base path.
func NewRouter(h *Handler, logger *logging.Logger, basePath string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLoggingMiddleware(logger))

	api := r.Group(basePath)
	{
		// Notifications
		api.GET("/notifications", h.GetNotifications)
		api.POST("/notifications/check", h.CheckAllSprints)
		api.POST("/notifications/check-sprint/:sprintName", h.CheckSprint)
		api.POST("/notifications/acknowledge", h.AcknowledgeNotification)
		api.GET("/notifications/settings", h.GetSettings)
		api.POST("/notifications/settings", h.UpdateSettings)
		api.POST("/notifications/cleanup", h.CleanupNotifications)
		api.GET("/notifications/ws", h.NotificationsWebSocket)

		// Workload
		api.GET("/workload/:sprintName", h.GetWorkload)
		api.GET("/workload/:sprintName/alerts", h.GetWorkloadAlerts)
		api.GET("/workload/:sprintName/trend", h.GetWorkloadTrend)
		api.POST("/workload/:sprintName/refresh", h.RefreshWorkload)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
