package models

import "time"

// Alert kinds.
const (
	AlertWarning = "warning"
	AlertDanger  = "danger"
)

// NotificationAlert is a sprint-progress alert raised when completion lags
// behind elapsed time. Mutated only by acknowledgment.
type NotificationAlert struct {
	ID                    string     `json:"id"`
	SprintName            string     `json:"sprint_name"`
	AlertType             string     `json:"alert_type"`
	Title                 string     `json:"title"`
	Message               string     `json:"message"`
	CurrentCompletionRate float64    `json:"current_completion_rate"`
	IdealCompletionRate   float64    `json:"ideal_completion_rate"`
	LagPercentage         float64    `json:"lag_percentage"`
	SuggestedActions      []string   `json:"suggested_actions"`
	CreatedAt             time.Time  `json:"created_at"`
	IsAcknowledged        bool       `json:"is_acknowledged"`
	AcknowledgedAt        *time.Time `json:"acknowledged_at"`
}

// NotificationSettings is the process-wide alerting configuration.
// Thresholds are lag percentages.
type NotificationSettings struct {
	WarningThreshold       float64 `json:"warning_threshold"`
	DangerThreshold        float64 `json:"danger_threshold"`
	EmailNotifications     bool    `json:"email_notifications"`
	DashboardNotifications bool    `json:"dashboard_notifications"`
	CooldownMinutes        int     `json:"cooldown_minutes"`
}

// DefaultNotificationSettings returns the settings used until the first update.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		WarningThreshold:       10.0,
		DangerThreshold:        20.0,
		EmailNotifications:     true,
		DashboardNotifications: true,
		CooldownMinutes:        30,
	}
}

// NotificationSettingsUpdate is a partial settings update; nil fields are
// left unchanged.
type NotificationSettingsUpdate struct {
	WarningThreshold       *float64 `json:"warning_threshold,omitempty"`
	DangerThreshold        *float64 `json:"danger_threshold,omitempty"`
	EmailNotifications     *bool    `json:"email_notifications,omitempty"`
	DashboardNotifications *bool    `json:"dashboard_notifications,omitempty"`
	CooldownMinutes        *int     `json:"cooldown_minutes,omitempty"`
}

// Apply returns a copy of s with the non-nil fields of upd applied.
func (s NotificationSettings) Apply(upd NotificationSettingsUpdate) NotificationSettings {
	if upd.WarningThreshold != nil {
		s.WarningThreshold = *upd.WarningThreshold
	}
	if upd.DangerThreshold != nil {
		s.DangerThreshold = *upd.DangerThreshold
	}
	if upd.EmailNotifications != nil {
		s.EmailNotifications = *upd.EmailNotifications
	}
	if upd.DashboardNotifications != nil {
		s.DashboardNotifications = *upd.DashboardNotifications
	}
	if upd.CooldownMinutes != nil {
		s.CooldownMinutes = *upd.CooldownMinutes
	}
	return s
}

// NotificationResponse is the payload for the active-notifications endpoint.
type NotificationResponse struct {
	Alerts      []NotificationAlert  `json:"alerts"`
	Settings    NotificationSettings `json:"settings"`
	LastChecked time.Time            `json:"last_checked"`
}

// AcknowledgeRequest identifies the alert to acknowledge.
type AcknowledgeRequest struct {
	AlertID string `json:"alert_id" binding:"required"`
}
