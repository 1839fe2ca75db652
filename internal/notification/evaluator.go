package notification

// Severity classifies how far a sprint lags behind its ideal progress.
type Severity string

const (
	SeverityNormal  Severity = "normal"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Evaluation is the outcome of comparing elapsed time against completion.
type Evaluation struct {
	Severity       Severity
	TimeProgress   float64
	CompletionRate float64
	Lag            float64
}

// Evaluate computes the time-based ideal progress and the lag behind it,
// and classifies the sprint. Boundary values belong to the higher band:
// a lag exactly equal to a threshold carries that threshold's severity.
// A sprint with zero working days has no elapsed time-progress and can
// never lag.
func Evaluate(daysElapsed, totalWorkingDays int, completionRate, warningThreshold, dangerThreshold float64) Evaluation {
	timeProgress := 0.0
	if totalWorkingDays > 0 {
		timeProgress = float64(daysElapsed) / float64(totalWorkingDays) * 100
	}
	lag := timeProgress - completionRate

	ev := Evaluation{
		Severity:       SeverityNormal,
		TimeProgress:   timeProgress,
		CompletionRate: completionRate,
		Lag:            lag,
	}
	switch {
	case lag >= dangerThreshold:
		ev.Severity = SeverityDanger
	case lag >= warningThreshold:
		ev.Severity = SeverityWarning
	}
	return ev
}
