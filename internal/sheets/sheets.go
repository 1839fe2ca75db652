// Package sheets talks to the upstream sheet-reader service that exposes
// already-shaped sprint and task data pulled from the Google Sheet.
package sheets

import (
	"context"

	"jira-dashboard/internal/models"
)

// Row is one untyped record from the sheet; keys may be absent.
type Row map[string]interface{}

// Reader is the sheet-reader collaborator consumed by the notification and
// workload services.
type Reader interface {
	// SprintList returns all sprint rows, each with at least sprint_name
	// and state.
	SprintList(ctx context.Context) ([]Row, error)

	// Burndown returns the progress snapshot for one sprint.
	// Returns models.ErrSprintNotFound when the sprint is unknown.
	Burndown(ctx context.Context, sprintName string) (models.SprintProgress, error)

	// TaskRows returns one page of task rows, optionally filtered by sprint.
	TaskRows(ctx context.Context, page, pageSize int, sortBy, sortOrder, sprint string) ([]Row, error)
}
