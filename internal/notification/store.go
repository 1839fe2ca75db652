package notification

import (
	"sort"
	"sync"
	"time"

	"jira-dashboard/internal/models"
)

// Store keeps active alerts in memory, keyed by alert id. Safe for
// concurrent use from request handlers.
type Store struct {
	mu     sync.RWMutex
	alerts map[string]models.NotificationAlert
	now    func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		alerts: make(map[string]models.NotificationAlert),
		now:    time.Now,
	}
}

// Put inserts or replaces an alert.
func (s *Store) Put(alert models.NotificationAlert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts[alert.ID] = alert
}

// Get returns the alert with the given id.
func (s *Store) Get(id string) (models.NotificationAlert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.alerts[id]
	return a, ok
}

// ListActive returns unacknowledged alerts, newest first.
func (s *Store) ListActive() []models.NotificationAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]models.NotificationAlert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if !a.IsAcknowledged {
			active = append(active, a)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})
	return active
}

// HasUnacknowledged reports whether an unacknowledged alert of the given
// kind exists for the sprint.
func (s *Store) HasUnacknowledged(sprintName, alertType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.alerts {
		if a.SprintName == sprintName && a.AlertType == alertType && !a.IsAcknowledged {
			return true
		}
	}
	return false
}

// Acknowledge flips the acknowledged flag and stamps the time. Reports
// whether the id existed. Acknowledging twice keeps the first timestamp.
func (s *Store) Acknowledge(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.alerts[id]
	if !ok {
		return false
	}
	if !a.IsAcknowledged {
		t := s.now().UTC()
		a.IsAcknowledged = true
		a.AcknowledgedAt = &t
		s.alerts[id] = a
	}
	return true
}

// RemoveAcknowledged purges acknowledged alerts and returns how many.
func (s *Store) RemoveAcknowledged() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, a := range s.alerts {
		if a.IsAcknowledged {
			delete(s.alerts, id)
			removed++
		}
	}
	return removed
}

// RemoveUnacknowledgedForSprint purges the sprint's unacknowledged alerts
// regardless of kind and returns how many.
func (s *Store) RemoveUnacknowledgedForSprint(sprintName string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, a := range s.alerts {
		if a.SprintName == sprintName && !a.IsAcknowledged {
			delete(s.alerts, id)
			removed++
		}
	}
	return removed
}
