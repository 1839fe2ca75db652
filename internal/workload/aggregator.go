package workload

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"jira-dashboard/internal/models"
	"jira-dashboard/internal/sheets"
)

// MemberID derives a stable member id from an assignee name. The same name
// always maps to the same id so workload alerts stay correlatable across
// recomputations.
func MemberID(name string) string {
	slug := strings.ReplaceAll(strings.ToLower(name), " ", "_")
	return "member_" + slug
}

func memberEmail(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", ".") + "@company.com"
}

// BuildMemberWorkloads groups task rows by assignee and aggregates each
// group. Rows without an assignee are skipped. Workload status needs the
// team average, so it is assigned in a second pass once all groups exist.
func BuildMemberWorkloads(rows []sheets.Row, imbalanceThreshold float64, now time.Time) []models.MemberWorkload {
	groups := make(map[string][]sheets.Row)
	order := []string{}
	for _, row := range rows {
		assignee := stringField(row, "assignee")
		if assignee == "" {
			continue
		}
		if _, seen := groups[assignee]; !seen {
			order = append(order, assignee)
		}
		groups[assignee] = append(groups[assignee], row)
	}

	workloads := make([]models.MemberWorkload, 0, len(order))
	for _, assignee := range order {
		workloads = append(workloads, buildMemberWorkload(assignee, groups[assignee], now))
	}

	// Status cannot be computed until the average is known.
	average := TeamAverage(workloads)
	for i := range workloads {
		workloads[i].WorkloadStatus = ClassifyWorkload(workloads[i].TotalStoryPoints, average, imbalanceThreshold)
	}
	return workloads
}

// TeamAverage returns the mean total story points per member, 0 for an
// empty team.
func TeamAverage(workloads []models.MemberWorkload) float64 {
	if len(workloads) == 0 {
		return 0
	}
	total := 0.0
	for _, w := range workloads {
		total += w.TotalStoryPoints
	}
	return total / float64(len(workloads))
}

func buildMemberWorkload(assignee string, rows []sheets.Row, now time.Time) models.MemberWorkload {
	member := models.TeamMember{
		ID:    MemberID(assignee),
		Name:  assignee,
		Email: memberEmail(assignee),
		Role:  "Developer",
	}

	var totalPoints, completedPoints float64
	var completedTasks, inProgressTasks int
	tasks := make([]models.TaskAssignment, 0, len(rows))

	for _, row := range rows {
		status := strings.ToLower(stringField(row, "status"))
		points, hasPoints := parseStoryPoints(row["story_points"])

		// Unparseable points are excluded from the sums; the row still
		// counts as a task.
		if hasPoints {
			totalPoints += points
			if status == "done" {
				completedPoints += points
			}
		}

		switch status {
		case "done":
			completedTasks++
		case "in progress", "in_progress":
			inProgressTasks++
		}

		tasks = append(tasks, models.TaskAssignment{
			TaskID:       stringField(row, "id"),
			TaskKey:      stringField(row, "key"),
			Summary:      stringField(row, "summary"),
			StoryPoints:  points,
			Status:       stringField(row, "status"),
			Priority:     stringField(row, "priority"),
			AssigneeID:   member.ID,
			AssigneeName: member.Name,
			CreatedDate:  parseDateOr(row["created"], now),
			UpdatedDate:  parseDateOr(row["updated"], now),
			DueDate:      parseDate(row["duedate"]),
		})
	}

	totalTasks := len(rows)
	todoTasks := totalTasks - completedTasks - inProgressTasks

	completionRate := 0.0
	if totalPoints > 0 {
		completionRate = completedPoints / totalPoints * 100
	}

	return models.MemberWorkload{
		Member:               member,
		TotalStoryPoints:     totalPoints,
		CompletedStoryPoints: completedPoints,
		RemainingStoryPoints: totalPoints - completedPoints,
		TotalTasks:           totalTasks,
		CompletedTasks:       completedTasks,
		InProgressTasks:      inProgressTasks,
		TodoTasks:            todoTasks,
		CompletionRate:       completionRate,
		WorkloadStatus:       models.WorkloadNormal,
		Tasks:                tasks,
	}
}

func stringField(row sheets.Row, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func parseStoryPoints(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
}

func parseDate(v interface{}) *time.Time {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
			return &t
		}
	}
	return nil
}

// parseDateOr falls back to now when the value is absent or unparseable.
func parseDateOr(v interface{}, now time.Time) time.Time {
	if t := parseDate(v); t != nil {
		return *t
	}
	return now
}
