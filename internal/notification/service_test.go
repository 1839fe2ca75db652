package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jira-dashboard/internal/logging"
	"jira-dashboard/internal/models"
	"jira-dashboard/internal/sheets"
)

// fakeReader is an in-memory sheets.Reader for engine tests.
type fakeReader struct {
	mu        sync.Mutex
	sprints   []sheets.Row
	burndowns map[string]models.SprintProgress
	errors    map[string]error
	listErr   error
}

func (f *fakeReader) SprintList(ctx context.Context) ([]sheets.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.sprints, nil
}

func (f *fakeReader) Burndown(ctx context.Context, sprintName string) (models.SprintProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errors[sprintName]; ok {
		return models.SprintProgress{}, err
	}
	snap, ok := f.burndowns[sprintName]
	if !ok {
		return models.SprintProgress{}, models.ErrSprintNotFound
	}
	return snap, nil
}

func (f *fakeReader) TaskRows(ctx context.Context, page, pageSize int, sortBy, sortOrder, sprint string) ([]sheets.Row, error) {
	return nil, nil
}

func (f *fakeReader) setCompletion(sprintName string, rate float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.burndowns[sprintName]
	snap.CompletionRate = rate
	f.burndowns[sprintName] = snap
}

func snapshot(name string, daysElapsed, totalDays int, completionRate float64) models.SprintProgress {
	return models.SprintProgress{
		SprintName:       name,
		CompletionRate:   completionRate,
		TotalWorkingDays: totalDays,
		DaysElapsed:      daysElapsed,
	}
}

func newTestService(reader *fakeReader) (*Service, *time.Time) {
	store := NewStore()
	svc := New(reader, store, nil, logging.NewNop(), models.DefaultNotificationSettings())
	current := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return current }
	return svc, &current
}

func TestService_CheckAllSprints(t *testing.T) {
	ctx := context.Background()

	t.Run("creates danger alert for lagging sprint", func(t *testing.T) {
		reader := &fakeReader{
			sprints:   []sheets.Row{{"sprint_name": "Sprint 1", "state": "active"}},
			burndowns: map[string]models.SprintProgress{"Sprint 1": snapshot("Sprint 1", 7, 10, 40)},
		}
		svc, _ := newTestService(reader)

		created, failures, err := svc.CheckAllSprints(ctx)

		require.NoError(t, err)
		assert.Zero(t, failures)
		require.Len(t, created, 1)
		alert := created[0]
		assert.Equal(t, models.AlertDanger, alert.AlertType)
		assert.Equal(t, "Sprint 1", alert.SprintName)
		assert.InDelta(t, 30.0, alert.LagPercentage, 1e-9)
		assert.InDelta(t, 40.0, alert.CurrentCompletionRate, 1e-9)
		assert.InDelta(t, 70.0, alert.IdealCompletionRate, 1e-9)
		assert.NotEmpty(t, alert.SuggestedActions)
		assert.False(t, alert.IsAcknowledged)
	})

	t.Run("skips inactive sprints, state case-insensitive", func(t *testing.T) {
		reader := &fakeReader{
			sprints: []sheets.Row{
				{"sprint_name": "Closed", "state": "closed"},
				{"sprint_name": "Sprint 1", "state": "Active"},
				{"state": "active"}, // no name
			},
			burndowns: map[string]models.SprintProgress{
				"Sprint 1": snapshot("Sprint 1", 7, 10, 40),
				"Closed":   snapshot("Closed", 10, 10, 0),
			},
		}
		svc, _ := newTestService(reader)

		created, failures, err := svc.CheckAllSprints(ctx)

		require.NoError(t, err)
		assert.Zero(t, failures)
		require.Len(t, created, 1)
		assert.Equal(t, "Sprint 1", created[0].SprintName)
	})

	t.Run("no duplicate unacknowledged alert per kind", func(t *testing.T) {
		reader := &fakeReader{
			sprints:   []sheets.Row{{"sprint_name": "Sprint 1", "state": "active"}},
			burndowns: map[string]models.SprintProgress{"Sprint 1": snapshot("Sprint 1", 7, 10, 40)},
		}
		svc, current := newTestService(reader)

		created, _, err := svc.CheckAllSprints(ctx)
		require.NoError(t, err)
		require.Len(t, created, 1)

		// past the cooldown, still lagging: the pending alert suppresses a new one
		*current = current.Add(31 * time.Minute)
		created, _, err = svc.CheckAllSprints(ctx)
		require.NoError(t, err)
		assert.Empty(t, created)
		assert.Len(t, svc.store.ListActive(), 1)
	})

	t.Run("cooldown suppresses re-check", func(t *testing.T) {
		reader := &fakeReader{
			sprints:   []sheets.Row{{"sprint_name": "Sprint 1", "state": "active"}},
			burndowns: map[string]models.SprintProgress{"Sprint 1": snapshot("Sprint 1", 7, 10, 40)},
		}
		svc, current := newTestService(reader)

		created, _, err := svc.CheckAllSprints(ctx)
		require.NoError(t, err)
		require.Len(t, created, 1)
		require.True(t, svc.Acknowledge(created[0].ID))

		// within the cooldown window nothing is evaluated, even though the
		// acknowledged alert no longer suppresses creation
		*current = current.Add(10 * time.Minute)
		created, _, err = svc.CheckAllSprints(ctx)
		require.NoError(t, err)
		assert.Empty(t, created)

		// CheckSprint ignores the cooldown and re-surfaces the lag
		created, err = svc.CheckSprint(ctx, "Sprint 1")
		require.NoError(t, err)
		assert.Len(t, created, 1)
	})

	t.Run("cooldown not stamped without alert creation", func(t *testing.T) {
		reader := &fakeReader{
			sprints:   []sheets.Row{{"sprint_name": "Sprint 1", "state": "active"}},
			burndowns: map[string]models.SprintProgress{"Sprint 1": snapshot("Sprint 1", 7, 10, 70)},
		}
		svc, _ := newTestService(reader)

		// healthy sprint: no alert, no cooldown stamp
		created, _, err := svc.CheckAllSprints(ctx)
		require.NoError(t, err)
		assert.Empty(t, created)

		// sprint starts lagging; the next pass must not be blocked
		reader.setCompletion("Sprint 1", 40)
		created, _, err = svc.CheckAllSprints(ctx)
		require.NoError(t, err)
		assert.Len(t, created, 1)
	})

	t.Run("recovered sprint purges pending alerts", func(t *testing.T) {
		reader := &fakeReader{
			sprints:   []sheets.Row{{"sprint_name": "Sprint 1", "state": "active"}},
			burndowns: map[string]models.SprintProgress{"Sprint 1": snapshot("Sprint 1", 7, 10, 40)},
		}
		svc, current := newTestService(reader)

		created, _, err := svc.CheckAllSprints(ctx)
		require.NoError(t, err)
		require.Len(t, created, 1)

		reader.setCompletion("Sprint 1", 70)
		*current = current.Add(31 * time.Minute)
		created, _, err = svc.CheckAllSprints(ctx)
		require.NoError(t, err)
		assert.Empty(t, created)
		assert.Empty(t, svc.store.ListActive())
	})

	t.Run("one failing sprint does not abort the pass", func(t *testing.T) {
		reader := &fakeReader{
			sprints: []sheets.Row{
				{"sprint_name": "Broken", "state": "active"},
				{"sprint_name": "Sprint 1", "state": "active"},
			},
			burndowns: map[string]models.SprintProgress{"Sprint 1": snapshot("Sprint 1", 7, 10, 40)},
			errors:    map[string]error{"Broken": errors.New("upstream unavailable")},
		}
		svc, _ := newTestService(reader)

		created, failures, err := svc.CheckAllSprints(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, failures)
		require.Len(t, created, 1)
		assert.Equal(t, "Sprint 1", created[0].SprintName)
	})

	t.Run("sprint list failure fails the pass", func(t *testing.T) {
		reader := &fakeReader{listErr: errors.New("upstream unavailable")}
		svc, _ := newTestService(reader)

		_, _, err := svc.CheckAllSprints(ctx)

		assert.Error(t, err)
	})
}

func TestService_CheckSprint(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown sprint", func(t *testing.T) {
		reader := &fakeReader{burndowns: map[string]models.SprintProgress{}}
		svc, _ := newTestService(reader)

		_, err := svc.CheckSprint(ctx, "Nope")

		assert.ErrorIs(t, err, models.ErrSprintNotFound)
	})

	t.Run("acknowledged alert is re-created while lag persists", func(t *testing.T) {
		reader := &fakeReader{
			burndowns: map[string]models.SprintProgress{"Sprint 1": snapshot("Sprint 1", 7, 10, 55)},
		}
		svc, current := newTestService(reader)

		created, err := svc.CheckSprint(ctx, "Sprint 1")
		require.NoError(t, err)
		require.Len(t, created, 1)
		assert.Equal(t, models.AlertWarning, created[0].AlertType)

		require.True(t, svc.Acknowledge(created[0].ID))

		*current = current.Add(time.Second)
		recreated, err := svc.CheckSprint(ctx, "Sprint 1")
		require.NoError(t, err)
		require.Len(t, recreated, 1)
		assert.NotEqual(t, created[0].ID, recreated[0].ID)
		assert.Len(t, svc.store.ListActive(), 1)
	})
}

func TestService_Settings(t *testing.T) {
	reader := &fakeReader{}
	svc, _ := newTestService(reader)

	t.Run("partial update leaves other fields", func(t *testing.T) {
		danger := 40.0
		email := false
		updated := svc.UpdateSettings(models.NotificationSettingsUpdate{
			DangerThreshold:    &danger,
			EmailNotifications: &email,
		})

		assert.Equal(t, 40.0, updated.DangerThreshold)
		assert.False(t, updated.EmailNotifications)
		// untouched fields keep their defaults
		assert.Equal(t, 10.0, updated.WarningThreshold)
		assert.True(t, updated.DashboardNotifications)
		assert.Equal(t, 30, updated.CooldownMinutes)
	})

	t.Run("updated thresholds drive evaluation", func(t *testing.T) {
		warning := 35.0
		danger := 50.0
		svc.UpdateSettings(models.NotificationSettingsUpdate{
			WarningThreshold: &warning,
			DangerThreshold:  &danger,
		})

		// lag of 30% no longer crosses any threshold
		reader.mu.Lock()
		reader.burndowns = map[string]models.SprintProgress{"Sprint 1": snapshot("Sprint 1", 7, 10, 40)}
		reader.mu.Unlock()

		created, err := svc.CheckSprint(context.Background(), "Sprint 1")
		require.NoError(t, err)
		assert.Empty(t, created)
	})
}

func TestService_ChannelDispatch(t *testing.T) {
	ctx := context.Background()

	newLaggingReader := func() *fakeReader {
		return &fakeReader{
			burndowns: map[string]models.SprintProgress{"Sprint 1": snapshot("Sprint 1", 7, 10, 40)},
		}
	}

	t.Run("enabled email channel is invoked", func(t *testing.T) {
		svc, _ := newTestService(newLaggingReader())
		var delivered []models.NotificationAlert
		svc.RegisterChannel("email", func(_ context.Context, a models.NotificationAlert) error {
			delivered = append(delivered, a)
			return nil
		})

		created, err := svc.CheckSprint(ctx, "Sprint 1")
		require.NoError(t, err)
		require.Len(t, created, 1)
		require.Len(t, delivered, 1)
		assert.Equal(t, created[0].ID, delivered[0].ID)
	})

	t.Run("disabled email channel is skipped", func(t *testing.T) {
		svc, _ := newTestService(newLaggingReader())
		off := false
		svc.UpdateSettings(models.NotificationSettingsUpdate{EmailNotifications: &off})

		calls := 0
		svc.RegisterChannel("email", func(_ context.Context, _ models.NotificationAlert) error {
			calls++
			return nil
		})

		created, err := svc.CheckSprint(ctx, "Sprint 1")
		require.NoError(t, err)
		require.Len(t, created, 1)
		assert.Zero(t, calls)
	})

	t.Run("channel failure does not fail the check", func(t *testing.T) {
		svc, _ := newTestService(newLaggingReader())
		svc.RegisterChannel("telegram", func(_ context.Context, _ models.NotificationAlert) error {
			return errors.New("chat unreachable")
		})

		created, err := svc.CheckSprint(ctx, "Sprint 1")
		require.NoError(t, err)
		assert.Len(t, created, 1)
	})
}

func TestService_ActiveNotifications(t *testing.T) {
	reader := &fakeReader{
		sprints:   []sheets.Row{{"sprint_name": "Sprint 1", "state": "active"}},
		burndowns: map[string]models.SprintProgress{"Sprint 1": snapshot("Sprint 1", 7, 10, 40)},
	}
	svc, current := newTestService(reader)

	_, _, err := svc.CheckAllSprints(context.Background())
	require.NoError(t, err)

	resp := svc.ActiveNotifications()
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, svc.Settings(), resp.Settings)
	assert.Equal(t, current.UTC(), resp.LastChecked)
}
