package models

// SprintProgress is a point-in-time burndown snapshot for one sprint, as
// shaped by the sheet reader. Immutable once read.
type SprintProgress struct {
	SprintName           string  `json:"sprint_name"`
	TotalStoryPoints     float64 `json:"total_story_points"`
	CompletedStoryPoints float64 `json:"completed_story_points"`
	RemainingStoryPoints float64 `json:"remaining_story_points"`
	CompletionRate       float64 `json:"completion_rate"`
	TotalWorkingDays     int     `json:"total_working_days"`
	DaysElapsed          int     `json:"days_elapsed"`
	RemainingWorkingDays int     `json:"remaining_working_days"`
}
