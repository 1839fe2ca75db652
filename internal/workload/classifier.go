package workload

import (
	"math"

	"jira-dashboard/internal/models"
)

// DefaultImbalanceThreshold is the deviation (in percent of the team
// average) beyond which a member counts as over- or underloaded.
const DefaultImbalanceThreshold = 30.0

// Deviation returns how far a member's load sits from the team average, in
// percent of the average. A zero average means no deviation.
func Deviation(memberTotal, average float64) float64 {
	if average == 0 {
		return 0
	}
	return math.Abs(memberTotal-average) / average * 100
}

// ClassifyWorkload classifies one member against the team average. The
// threshold is a strict bound: a deviation of exactly the threshold is
// still normal.
func ClassifyWorkload(memberTotal, average, threshold float64) string {
	if average == 0 {
		return models.WorkloadNormal
	}
	if Deviation(memberTotal, average) > threshold {
		if memberTotal > average {
			return models.WorkloadOverloaded
		}
		return models.WorkloadUnderloaded
	}
	return models.WorkloadNormal
}

// HasImbalance reports whether any member's deviation exceeds the
// threshold. Evaluated from the raw formula rather than the assigned
// statuses so it tolerates a zero average.
func HasImbalance(workloads []models.MemberWorkload, average, threshold float64) bool {
	if average == 0 {
		return false
	}
	for _, w := range workloads {
		if Deviation(w.TotalStoryPoints, average) > threshold {
			return true
		}
	}
	return false
}

// DeriveAlerts builds one alert per member whose status is not normal.
// Alerts are derived fresh from the distribution and never stored.
func DeriveAlerts(dist models.WorkloadDistribution) []models.WorkloadAlert {
	alerts := []models.WorkloadAlert{}
	for _, w := range dist.MemberWorkloads {
		if w.WorkloadStatus != models.WorkloadOverloaded && w.WorkloadStatus != models.WorkloadUnderloaded {
			continue
		}

		action := "Consider assigning more tasks to balance the workload"
		if w.WorkloadStatus == models.WorkloadOverloaded {
			action = "Consider reassigning some tasks to other team members"
		}

		alerts = append(alerts, models.WorkloadAlert{
			MemberID:            w.Member.ID,
			MemberName:          w.Member.Name,
			AlertType:           w.WorkloadStatus,
			CurrentLoad:         w.TotalStoryPoints,
			AverageLoad:         dist.AverageStoryPoints,
			DeviationPercentage: Deviation(w.TotalStoryPoints, dist.AverageStoryPoints),
			SuggestedAction:     action,
		})
	}
	return alerts
}
