package providers

import (
	"context"
	"fmt"
	"strings"

	"jira-dashboard/internal/config"
	"jira-dashboard/internal/models"
	"jira-dashboard/pkg/email"
)

// SendEmail delivers an alert to the configured recipient over SMTP.
func SendEmail(_ context.Context, alert models.NotificationAlert, cfg config.Config) error {
	if cfg.Email.SMTPServer == "" || cfg.Email.SMTPPort == 0 || cfg.Email.Username == "" || cfg.Email.To == "" {
		return fmt.Errorf("missing Email configuration: SMTPServer, SMTPPort, Username, or To is empty")
	}

	body := fmt.Sprintf("%s\n\nSuggested actions:\n- %s",
		alert.Message, strings.Join(alert.SuggestedActions, "\n- "))

	if err := email.Send(cfg.Email.SMTPServer, cfg.Email.SMTPPort, cfg.Email.Username, cfg.Email.Password,
		cfg.Email.To, alert.Title, body); err != nil {
		return fmt.Errorf("failed to send email for alert %s: %w", alert.ID, err)
	}
	return nil
}
