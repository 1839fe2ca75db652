package workload

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jira-dashboard/internal/logging"
	"jira-dashboard/internal/models"
	"jira-dashboard/internal/sheets"
)

// Service computes and caches per-sprint workload distributions.
type Service struct {
	sheets             sheets.Reader
	logger             *logging.Logger
	imbalanceThreshold float64
	taskPageSize       int

	mu    sync.RWMutex
	cache map[string]models.WorkloadDistribution

	now func() time.Time
}

// NewService constructs the workload Service.
func NewService(reader sheets.Reader, logger *logging.Logger, imbalanceThreshold float64, taskPageSize int) *Service {
	return &Service{
		sheets:             reader,
		logger:             logger,
		imbalanceThreshold: imbalanceThreshold,
		taskPageSize:       taskPageSize,
		cache:              make(map[string]models.WorkloadDistribution),
		now:                time.Now,
	}
}

// Distribution returns the sprint's workload distribution, serving from
// cache when present. The cache has no TTL; it stays until invalidated.
func (s *Service) Distribution(ctx context.Context, sprintName string) (models.WorkloadDistribution, error) {
	s.mu.RLock()
	cached, ok := s.cache[sprintName]
	s.mu.RUnlock()
	if ok {
		s.logger.Debugf("Workload cache hit for sprint %q", sprintName)
		return cached, nil
	}
	return s.compute(ctx, sprintName)
}

func (s *Service) compute(ctx context.Context, sprintName string) (models.WorkloadDistribution, error) {
	sprints, err := s.sheets.SprintList(ctx)
	if err != nil {
		return models.WorkloadDistribution{}, fmt.Errorf("fetch sprint list: %w", err)
	}
	found := false
	for _, row := range sprints {
		if stringField(row, "sprint_name") == sprintName {
			found = true
			break
		}
	}
	if !found {
		return models.WorkloadDistribution{}, fmt.Errorf("sprint %q: %w", sprintName, models.ErrSprintNotFound)
	}

	if _, err := s.sheets.Burndown(ctx, sprintName); err != nil {
		return models.WorkloadDistribution{}, fmt.Errorf("fetch burndown: %w", err)
	}

	rows, err := s.sheets.TaskRows(ctx, 1, s.taskPageSize, "key", "asc", sprintName)
	if err != nil {
		return models.WorkloadDistribution{}, fmt.Errorf("fetch task rows: %w", err)
	}

	workloads := BuildMemberWorkloads(rows, s.imbalanceThreshold, s.now().UTC())

	total := 0.0
	for _, w := range workloads {
		total += w.TotalStoryPoints
	}
	average := TeamAverage(workloads)

	dist := models.WorkloadDistribution{
		SprintName:         sprintName,
		TotalStoryPoints:   total,
		AverageStoryPoints: average,
		MemberWorkloads:    workloads,
		WorkloadImbalance:  HasImbalance(workloads, average, s.imbalanceThreshold),
		ImbalanceThreshold: s.imbalanceThreshold,
		LastUpdated:        s.now().UTC(),
	}

	s.mu.Lock()
	s.cache[sprintName] = dist
	s.mu.Unlock()

	s.logger.Infof("Computed workload for sprint %q: %d members, %.1f points", sprintName, len(workloads), total)
	return dist, nil
}

// Alerts derives imbalance alerts from the (possibly cached) distribution.
func (s *Service) Alerts(ctx context.Context, sprintName string) ([]models.WorkloadAlert, error) {
	dist, err := s.Distribution(ctx, sprintName)
	if err != nil {
		return nil, err
	}
	return DeriveAlerts(dist), nil
}

// Trend returns a synthetic workload trend. There is no history store;
// real trend data would need per-day snapshots.
func (s *Service) Trend(sprintName string, days int) models.WorkloadTrend {
	if days <= 0 {
		days = 7
	}
	now := s.now().UTC()

	dates := make([]string, 0, days)
	averageTrend := make([]float64, 0, days)
	for i := days - 1; i >= 0; i-- {
		dates = append(dates, now.AddDate(0, 0, -i).Format("2006-01-02"))
	}
	for i := 0; i < days; i++ {
		averageTrend = append(averageTrend, 20.0+float64(i)*2.0)
	}

	return models.WorkloadTrend{
		Dates:        dates,
		MemberTrends: []models.MemberTrend{},
		AverageTrend: averageTrend,
	}
}

// Invalidate drops one sprint from the cache.
func (s *Service) Invalidate(sprintName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, sprintName)
}

// InvalidateAll drops the whole cache.
func (s *Service) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]models.WorkloadDistribution)
}

// Refresh invalidates the sprint's cache entry and recomputes it.
func (s *Service) Refresh(ctx context.Context, sprintName string) (models.WorkloadDistribution, error) {
	s.Invalidate(sprintName)
	return s.Distribution(ctx, sprintName)
}
