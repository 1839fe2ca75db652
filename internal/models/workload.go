package models

import "time"

// Workload statuses.
const (
	WorkloadNormal      = "normal"
	WorkloadOverloaded  = "overloaded"
	WorkloadUnderloaded = "underloaded"
)

// TeamMember is an identity derived from an assignee name. Ids are stable
// slugs of the name so the same person keeps the same id across recomputes.
type TeamMember struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	AvatarURL *string `json:"avatar_url"`
}

// TaskAssignment is one task row projected onto a member.
type TaskAssignment struct {
	TaskID       string     `json:"task_id"`
	TaskKey      string     `json:"task_key"`
	Summary      string     `json:"summary"`
	StoryPoints  float64    `json:"story_points"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	AssigneeID   string     `json:"assignee_id"`
	AssigneeName string     `json:"assignee_name"`
	CreatedDate  time.Time  `json:"created_date"`
	UpdatedDate  time.Time  `json:"updated_date"`
	DueDate      *time.Time `json:"due_date"`
}

// MemberWorkload aggregates one member's tasks for a sprint.
type MemberWorkload struct {
	Member               TeamMember       `json:"member"`
	TotalStoryPoints     float64          `json:"total_story_points"`
	CompletedStoryPoints float64          `json:"completed_story_points"`
	RemainingStoryPoints float64          `json:"remaining_story_points"`
	TotalTasks           int              `json:"total_tasks"`
	CompletedTasks       int              `json:"completed_tasks"`
	InProgressTasks      int              `json:"in_progress_tasks"`
	TodoTasks            int              `json:"todo_tasks"`
	CompletionRate       float64          `json:"completion_rate"`
	WorkloadStatus       string           `json:"workload_status"`
	Tasks                []TaskAssignment `json:"tasks"`
}

// WorkloadDistribution aggregates all member workloads of a sprint.
type WorkloadDistribution struct {
	SprintName         string           `json:"sprint_name"`
	TotalStoryPoints   float64          `json:"total_story_points"`
	AverageStoryPoints float64          `json:"average_story_points"`
	MemberWorkloads    []MemberWorkload `json:"member_workloads"`
	WorkloadImbalance  bool             `json:"workload_imbalance"`
	ImbalanceThreshold float64          `json:"imbalance_threshold"`
	LastUpdated        time.Time        `json:"last_updated"`
}

// WorkloadAlert flags one member whose load deviates from the team average.
// Derived on request, never stored.
type WorkloadAlert struct {
	MemberID            string  `json:"member_id"`
	MemberName          string  `json:"member_name"`
	AlertType           string  `json:"alert_type"`
	CurrentLoad         float64 `json:"current_load"`
	AverageLoad         float64 `json:"average_load"`
	DeviationPercentage float64 `json:"deviation_percentage"`
	SuggestedAction     string  `json:"suggested_action"`
}

// MemberTrend is one member's story-point series in a trend window.
type MemberTrend struct {
	MemberID    string    `json:"member_id"`
	MemberName  string    `json:"member_name"`
	StoryPoints []float64 `json:"story_points"`
}

// WorkloadTrend is the per-sprint workload history view. There is no real
// history store; the trend endpoint serves synthetic data.
type WorkloadTrend struct {
	Dates        []string      `json:"dates"`
	MemberTrends []MemberTrend `json:"member_trends"`
	AverageTrend []float64     `json:"average_trend"`
}
