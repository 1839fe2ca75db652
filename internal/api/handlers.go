package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"jira-dashboard/internal/logging"
	"jira-dashboard/internal/models"
	"jira-dashboard/internal/notification"
	"jira-dashboard/internal/workload"
)

// Handler holds the services behind the HTTP surface.
type Handler struct {
	notifications *notification.Service
	workload      *workload.Service
	hub           *notification.Hub
	logger        *logging.Logger
	upgrader      websocket.Upgrader
}

// NewHandler constructs a Handler.
func NewHandler(n *notification.Service, w *workload.Service, hub *notification.Hub, logger *logging.Logger) *Handler {
	return &Handler{
		notifications: n,
		workload:      w,
		hub:           hub,
		logger:        logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// GetNotifications returns pending alerts with settings and last-checked time.
func (h *Handler) GetNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.notifications.ActiveNotifications())
}

// CheckAllSprints runs a full check pass over every active sprint.
func (h *Handler) CheckAllSprints(c *gin.Context) {
	created, failures, err := h.notifications.CheckAllSprints(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Check pass failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to check sprint progress"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"alerts_created": len(created),
		"alerts":         created,
		"failures":       failures,
	})
}

// CheckSprint re-evaluates one sprint, bypassing the cooldown.
func (h *Handler) CheckSprint(c *gin.Context) {
	name := c.Param("sprintName")
	created, err := h.notifications.CheckSprint(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, models.ErrSprintNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "sprint not found"})
			return
		}
		h.logger.Errorf("Check for sprint %q failed: %v", name, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to check sprint progress"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"alerts_created": len(created),
		"alerts":         created,
	})
}

// AcknowledgeNotification marks one alert as seen.
func (h *Handler) AcknowledgeNotification(c *gin.Context) {
	var req models.AcknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.notifications.Acknowledge(req.AlertID) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Notification not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification acknowledged successfully"})
}

// GetSettings returns the current notification settings.
func (h *Handler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.notifications.Settings())
}

// UpdateSettings applies a partial settings update.
func (h *Handler) UpdateSettings(c *gin.Context) {
	var upd models.NotificationSettingsUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settings := h.notifications.UpdateSettings(upd)
	c.JSON(http.StatusOK, gin.H{"success": true, "settings": settings})
}

// CleanupNotifications removes acknowledged alerts.
func (h *Handler) CleanupNotifications(c *gin.Context) {
	removed := h.notifications.CleanupAcknowledged()
	c.JSON(http.StatusOK, gin.H{"success": true, "removed": removed})
}

// NotificationsWebSocket upgrades the connection and registers it with the
// dashboard hub. The read loop exists only to detect the client going away.
func (h *Handler) NotificationsWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	h.hub.Add(conn)

	go func() {
		defer func() {
			h.hub.Remove(conn)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// GetWorkload returns the sprint's workload distribution.
func (h *Handler) GetWorkload(c *gin.Context) {
	name := c.Param("sprintName")
	dist, err := h.workload.Distribution(c.Request.Context(), name)
	if err != nil {
		h.respondWorkloadError(c, name, err)
		return
	}
	c.JSON(http.StatusOK, dist)
}

// GetWorkloadAlerts returns imbalance alerts for the sprint.
func (h *Handler) GetWorkloadAlerts(c *gin.Context) {
	name := c.Param("sprintName")
	alerts, err := h.workload.Alerts(c.Request.Context(), name)
	if err != nil {
		h.respondWorkloadError(c, name, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// GetWorkloadTrend returns the synthetic trend for the sprint.
func (h *Handler) GetWorkloadTrend(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil {
		days = 7
	}
	c.JSON(http.StatusOK, h.workload.Trend(c.Param("sprintName"), days))
}

// RefreshWorkload invalidates the sprint's cache entry and recomputes it.
func (h *Handler) RefreshWorkload(c *gin.Context) {
	name := c.Param("sprintName")
	dist, err := h.workload.Refresh(c.Request.Context(), name)
	if err != nil {
		h.respondWorkloadError(c, name, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "distribution": dist})
}

func (h *Handler) respondWorkloadError(c *gin.Context, sprintName string, err error) {
	if errors.Is(err, models.ErrSprintNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "sprint not found"})
		return
	}
	h.logger.Errorf("Workload request for sprint %q failed: %v", sprintName, err)
	c.JSON(http.StatusBadGateway, gin.H{"error": "failed to get workload data"})
}
