package kafka

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jira-dashboard/internal/logging"
	"jira-dashboard/internal/models"
	"jira-dashboard/internal/notification"
	"jira-dashboard/internal/sheets"
	"jira-dashboard/internal/workload"
)

type stubReader struct {
	sprints  []sheets.Row
	burndown models.SprintProgress
	taskHits int
}

func (s *stubReader) SprintList(ctx context.Context) ([]sheets.Row, error) {
	return s.sprints, nil
}

func (s *stubReader) Burndown(ctx context.Context, sprintName string) (models.SprintProgress, error) {
	return s.burndown, nil
}

func (s *stubReader) TaskRows(ctx context.Context, page, pageSize int, sortBy, sortOrder, sprint string) ([]sheets.Row, error) {
	s.taskHits++
	return []sheets.Row{
		{"assignee": "Alice", "status": "To Do", "story_points": 5.0, "key": "PRJ-1"},
	}, nil
}

func newTestConsumer(reader *stubReader) (*Consumer, *workload.Service) {
	logger := logging.NewNop()
	store := notification.NewStore()
	notifications := notification.New(reader, store, nil, logger, models.DefaultNotificationSettings())
	workloads := workload.NewService(reader, logger, workload.DefaultImbalanceThreshold, 1000)
	return &Consumer{
		notifications: notifications,
		workload:      workloads,
		logger:        logger,
	}, workloads
}

func TestConsumerHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("sprint event invalidates cache and re-checks", func(t *testing.T) {
		reader := &stubReader{
			sprints: []sheets.Row{{"sprint_name": "Sprint 1", "state": "active"}},
			burndown: models.SprintProgress{
				SprintName:       "Sprint 1",
				CompletionRate:   40,
				TotalWorkingDays: 10,
				DaysElapsed:      7,
			},
		}
		consumer, workloads := newTestConsumer(reader)

		_, err := workloads.Distribution(ctx, "Sprint 1")
		require.NoError(t, err)
		require.Equal(t, 1, reader.taskHits)

		consumer.handle(ctx, []byte(`{"sheet_id":"sheet-1","sprint_name":"Sprint 1"}`))

		// cache entry was dropped
		_, err = workloads.Distribution(ctx, "Sprint 1")
		require.NoError(t, err)
		assert.Equal(t, 2, reader.taskHits)

		// the lagging sprint was re-checked and alerted on
		assert.Len(t, consumer.notifications.ActiveNotifications().Alerts, 1)
	})

	t.Run("sheet-wide event clears the whole cache", func(t *testing.T) {
		reader := &stubReader{
			sprints: []sheets.Row{{"sprint_name": "Sprint 1", "state": "active"}},
		}
		consumer, workloads := newTestConsumer(reader)

		_, err := workloads.Distribution(ctx, "Sprint 1")
		require.NoError(t, err)
		require.Equal(t, 1, reader.taskHits)

		consumer.handle(ctx, []byte(`{"sheet_id":"sheet-1"}`))

		_, err = workloads.Distribution(ctx, "Sprint 1")
		require.NoError(t, err)
		assert.Equal(t, 2, reader.taskHits)
	})

	t.Run("missing sheet_id is ignored", func(t *testing.T) {
		reader := &stubReader{
			sprints: []sheets.Row{{"sprint_name": "Sprint 1", "state": "active"}},
		}
		consumer, workloads := newTestConsumer(reader)

		_, err := workloads.Distribution(ctx, "Sprint 1")
		require.NoError(t, err)

		consumer.handle(ctx, []byte(`{"sprint_name":"Sprint 1"}`))

		// cache untouched
		_, err = workloads.Distribution(ctx, "Sprint 1")
		require.NoError(t, err)
		assert.Equal(t, 1, reader.taskHits)
	})

	t.Run("malformed payload is ignored", func(t *testing.T) {
		consumer, _ := newTestConsumer(&stubReader{})

		consumer.handle(ctx, []byte(`not json`))
	})
}
