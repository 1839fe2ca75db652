package notification

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"jira-dashboard/internal/logging"
	"jira-dashboard/internal/models"
	"jira-dashboard/internal/sheets"
)

// ChannelFunc delivers an alert over one notification channel.
type ChannelFunc func(ctx context.Context, alert models.NotificationAlert) error

// Service evaluates sprint progress and manages the alert lifecycle.
type Service struct {
	sheets   sheets.Reader
	store    *Store
	hub      *Hub
	logger   *logging.Logger
	channels map[string]ChannelFunc

	mu           sync.RWMutex
	settings     models.NotificationSettings
	lastNotified map[string]time.Time
	lastChecked  time.Time

	now func() time.Time
}

// New constructs the notification Service.
func New(reader sheets.Reader, store *Store, hub *Hub, logger *logging.Logger, settings models.NotificationSettings) *Service {
	return &Service{
		sheets:       reader,
		store:        store,
		hub:          hub,
		logger:       logger,
		channels:     make(map[string]ChannelFunc),
		settings:     settings,
		lastNotified: make(map[string]time.Time),
		lastChecked:  time.Now().UTC(),
		now:          time.Now,
	}
}

// RegisterChannel wires a delivery channel ("email", "telegram").
// The email channel is additionally gated by the email_notifications toggle.
func (s *Service) RegisterChannel(name string, fn ChannelFunc) {
	s.channels[name] = fn
}

// CheckAllSprints evaluates every active sprint, creating alerts where
// completion lags behind elapsed time. Per-sprint collaborator failures are
// logged and counted but never abort the pass. The returned error is non-nil
// only when the sprint list itself cannot be fetched.
func (s *Service) CheckAllSprints(ctx context.Context) ([]models.NotificationAlert, int, error) {
	rows, err := s.sheets.SprintList(ctx)
	if err != nil {
		s.logger.Errorf("Sprint list fetch failed: %v", err)
		return nil, 0, fmt.Errorf("fetch sprint list: %w", err)
	}

	created := []models.NotificationAlert{}
	failures := 0
	for _, row := range rows {
		if !strings.EqualFold(stringField(row, "state"), "active") {
			continue
		}
		name := stringField(row, "sprint_name")
		if name == "" {
			continue
		}
		if s.inCooldown(name) {
			s.logger.Debugf("Sprint %q skipped: cooldown active", name)
			continue
		}

		snap, err := s.sheets.Burndown(ctx, name)
		if err != nil {
			s.logger.Errorf("Burndown fetch for sprint %q failed: %v", name, err)
			failures++
			continue
		}
		if alert := s.evaluateSprint(name, snap); alert != nil {
			created = append(created, *alert)
			s.stampCooldown(name)
			s.dispatch(ctx, *alert)
		}
	}

	s.markChecked()
	s.logger.Infof("Check pass done: %d sprints, %d alerts created, %d failures", len(rows), len(created), failures)
	return created, failures, nil
}

// CheckSprint evaluates one sprint, bypassing the cooldown. Used to
// re-surface a still-lagging sprint right after an acknowledgment or a
// sheet update.
func (s *Service) CheckSprint(ctx context.Context, sprintName string) ([]models.NotificationAlert, error) {
	snap, err := s.sheets.Burndown(ctx, sprintName)
	if err != nil {
		return nil, fmt.Errorf("check sprint %q: %w", sprintName, err)
	}

	created := []models.NotificationAlert{}
	if alert := s.evaluateSprint(sprintName, snap); alert != nil {
		created = append(created, *alert)
		s.stampCooldown(sprintName)
		s.dispatch(ctx, *alert)
	}
	s.markChecked()
	return created, nil
}

// evaluateSprint applies the threshold policy to one snapshot. It returns
// the newly created alert, or nil when the sprint is healthy or already has
// a matching unacknowledged alert.
func (s *Service) evaluateSprint(sprintName string, snap models.SprintProgress) *models.NotificationAlert {
	settings := s.Settings()
	ev := Evaluate(snap.DaysElapsed, snap.TotalWorkingDays, snap.CompletionRate,
		settings.WarningThreshold, settings.DangerThreshold)

	if ev.Severity == SeverityNormal {
		if n := s.store.RemoveUnacknowledgedForSprint(sprintName); n > 0 {
			s.logger.Infof("Sprint %q back on track, purged %d pending alerts", sprintName, n)
		}
		return nil
	}

	kind := string(ev.Severity)
	if s.store.HasUnacknowledged(sprintName, kind) {
		s.logger.Debugf("Sprint %q already has a pending %s alert", sprintName, kind)
		return nil
	}

	alert := s.buildAlert(sprintName, kind, ev)
	s.store.Put(alert)
	s.logger.Infof("Created %s alert for sprint %q (lag %.1f%%)", kind, sprintName, ev.Lag)
	return &alert
}

// buildAlert renders the kind-specific title, message, and suggested actions.
func (s *Service) buildAlert(sprintName, kind string, ev Evaluation) models.NotificationAlert {
	now := s.now().UTC()
	id := fmt.Sprintf("%s_%s_%s", sprintName, kind, now.Format("20060102150405"))

	var title, message string
	var actions []string
	switch kind {
	case models.AlertDanger:
		title = fmt.Sprintf("🚨 Sprint %s is severely behind schedule", sprintName)
		message = fmt.Sprintf("Sprint %s is %.1f%% behind schedule: completion is at %.1f%% while the ideal progress is %.1f%%.",
			sprintName, ev.Lag, ev.CompletionRate, ev.TimeProgress)
		actions = []string{
			"Call an emergency meeting to review the sprint scope",
			"Align expectations with stakeholders",
			"Consider extending the sprint or dropping scope",
			"Re-estimate team capacity against the committed work",
		}
	case models.AlertWarning:
		title = fmt.Sprintf("⚠️ Sprint %s is slightly behind schedule", sprintName)
		message = fmt.Sprintf("Sprint %s is %.1f%% behind schedule: completion is at %.1f%% while the ideal progress is %.1f%%.",
			sprintName, ev.Lag, ev.CompletionRate, ev.TimeProgress)
		actions = []string{
			"Review the remaining work and reprioritize",
			"Discuss possible blockers with the team",
			"Consider adding capacity or rebalancing assignments",
			"Prepare a progress update for stakeholders",
		}
	}

	return models.NotificationAlert{
		ID:                    id,
		SprintName:            sprintName,
		AlertType:             kind,
		Title:                 title,
		Message:               message,
		CurrentCompletionRate: ev.CompletionRate,
		IdealCompletionRate:   ev.TimeProgress,
		LagPercentage:         ev.Lag,
		SuggestedActions:      actions,
		CreatedAt:             now,
		IsAcknowledged:        false,
		AcknowledgedAt:        nil,
	}
}

// dispatch pushes the alert to every enabled channel. Delivery failures are
// logged and never fail the check that created the alert.
func (s *Service) dispatch(ctx context.Context, alert models.NotificationAlert) {
	settings := s.Settings()

	if settings.DashboardNotifications && s.hub != nil {
		s.hub.Broadcast(alert)
	}
	for name, send := range s.channels {
		if name == "email" && !settings.EmailNotifications {
			continue
		}
		if err := send(ctx, alert); err != nil {
			s.logger.Errorf("Dispatch of alert %s via %s failed: %v", alert.ID, name, err)
		} else {
			s.logger.Infof("Alert %s dispatched via %s", alert.ID, name)
		}
	}
}

// ActiveNotifications returns pending alerts with settings and the time of
// the last check pass.
func (s *Service) ActiveNotifications() models.NotificationResponse {
	s.mu.RLock()
	settings := s.settings
	lastChecked := s.lastChecked
	s.mu.RUnlock()

	return models.NotificationResponse{
		Alerts:      s.store.ListActive(),
		Settings:    settings,
		LastChecked: lastChecked,
	}
}

// Acknowledge marks an alert as seen. Reports whether the id existed.
func (s *Service) Acknowledge(id string) bool {
	return s.store.Acknowledge(id)
}

// Settings returns the current notification settings.
func (s *Service) Settings() models.NotificationSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings applies a partial update and returns the new settings.
func (s *Service) UpdateSettings(upd models.NotificationSettingsUpdate) models.NotificationSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = s.settings.Apply(upd)
	s.logger.Infof("Notification settings updated: warning=%.1f danger=%.1f cooldown=%dm",
		s.settings.WarningThreshold, s.settings.DangerThreshold, s.settings.CooldownMinutes)
	return s.settings
}

// CleanupAcknowledged removes acknowledged alerts and returns how many.
func (s *Service) CleanupAcknowledged() int {
	n := s.store.RemoveAcknowledged()
	if n > 0 {
		s.logger.Infof("Cleaned up %d acknowledged alerts", n)
	}
	return n
}

func (s *Service) inCooldown(sprintName string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	last, ok := s.lastNotified[sprintName]
	if !ok {
		return false
	}
	cooldown := time.Duration(s.settings.CooldownMinutes) * time.Minute
	return s.now().Sub(last) < cooldown
}

// stampCooldown records an alert creation. Only creations refresh the
// cooldown clock; healthy or already-alerted sprints do not.
func (s *Service) stampCooldown(sprintName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastNotified[sprintName] = s.now()
}

func (s *Service) markChecked() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastChecked = s.now().UTC()
}

func stringField(row sheets.Row, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	str, ok := v.(string)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	return str
}
