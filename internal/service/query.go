package service

import (
	"time"

	"trainingload/internal/analysis"
	"trainingload/internal/config"
	"trainingload/internal/store"
)

// QueryService provides read-only queries for the TUI, CLI and MCP server
type QueryService struct {
	store   *store.DB
	profile analysis.AthleteProfile
}

// NewQueryService creates a new query service
func NewQueryService(db *store.DB, athleteCfg config.AthleteConfig) *QueryService {
	profile := athleteCfg.Profile()
	if profile.MaxHR == 0 {
		profile.MaxHR = analysis.DefaultProfile().MaxHR
	}
	return &QueryService{store: db, profile: profile}
}

// ListSessions returns a page of sessions, newest first
func (q *QueryService) ListSessions(limit, offset int) ([]analysis.TrainingSession, error) {
	return q.store.ListSessions(limit, offset)
}

// AllSessions returns every stored session in chronological order
func (q *QueryService) AllSessions() ([]analysis.TrainingSession, error) {
	return q.store.AllSessions()
}

// CountSessions returns the number of stored sessions
func (q *QueryService) CountSessions() (int, error) {
	return q.store.CountSessions()
}

// RenameSession changes a session's display name
func (q *QueryService) RenameSession(id, name string) error {
	return q.store.RenameSession(id, name)
}

// LoadHistory computes the load series through today and returns the last
// days rows. days <= 0 returns the full series.
func (q *QueryService) LoadHistory(today time.Time, days int) ([]analysis.DailyMetrics, error) {
	metrics, err := q.loadSeries(today)
	if err != nil {
		return nil, err
	}
	if days > 0 && len(metrics) > days {
		metrics = metrics[len(metrics)-days:]
	}
	return metrics, nil
}

// Coaching classifies the athlete's state as of today. Returns nil without sessions.
func (q *QueryService) Coaching(today time.Time) (*analysis.CoachingRecommendation, error) {
	metrics, err := q.loadSeries(today)
	if err != nil {
		return nil, err
	}
	return analysis.Recommend(metrics), nil
}

// StoredDailyMetrics returns the series persisted by the last import or rebuild
func (q *QueryService) StoredDailyMetrics() ([]analysis.DailyMetrics, error) {
	return q.store.GetDailyMetrics()
}

func (q *QueryService) loadSeries(today time.Time) ([]analysis.DailyMetrics, error) {
	sessions, err := q.store.AllSessions()
	if err != nil {
		return nil, err
	}
	return analysis.CalculateTrainingLoad(sessions, today), nil
}

// PeriodStats holds aggregated stats for a time period
type PeriodStats struct {
	PeriodStart     time.Time
	PeriodLabel     string
	SessionCount    int
	TotalTSS        float64
	TotalDistanceKm float64
	TotalDuration   float64 // seconds
	AvgHR           float64
}

// GetPeriodStats returns aggregated stats by week or month, oldest period first.
// Periods start at UTC midnight to line up with the daily load series.
func (q *QueryService) GetPeriodStats(periodType string, numPeriods int, now time.Time) ([]PeriodStats, error) {
	now = now.UTC()
	stats := make([]PeriodStats, numPeriods)

	// Initialize periods
	currentMonday := getMonday(now)
	for i := 0; i < numPeriods; i++ {
		var periodStart time.Time
		var label string

		if periodType == "weekly" {
			periodStart = currentMonday.AddDate(0, 0, -7*(numPeriods-1-i))
			label = periodStart.Format("Jan 02")
		} else {
			// Monthly - first of month
			currentFirst := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
			periodStart = currentFirst.AddDate(0, -(numPeriods-1-i), 0)
			label = periodStart.Format("Jan 2006")
		}

		stats[i] = PeriodStats{
			PeriodStart: periodStart,
			PeriodLabel: label,
		}
	}
	if numPeriods == 0 {
		return stats, nil
	}

	sessions, err := q.store.SessionsBetween(stats[0].PeriodStart, now.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	hrCounts := make([]int, numPeriods)
	for _, s := range sessions {
		periodIdx := findPeriodIndex(s.Date, stats, periodType)
		if periodIdx < 0 {
			continue
		}

		p := &stats[periodIdx]
		p.SessionCount++
		p.TotalTSS += s.TSS
		p.TotalDistanceKm += s.DistanceMeters / MetersPerKm
		p.TotalDuration += s.DurationSeconds

		// Running average over sessions that carried HR
		if s.AvgHeartRate != nil {
			hrCounts[periodIdx]++
			n := float64(hrCounts[periodIdx])
			p.AvgHR = p.AvgHR*(n-1)/n + *s.AvgHeartRate/n
		}
	}

	return stats, nil
}

// findPeriodIndex returns the index of the period that contains the given date
func findPeriodIndex(date time.Time, stats []PeriodStats, periodType string) int {
	for i := range stats {
		var periodEnd time.Time
		if periodType == "weekly" {
			periodEnd = stats[i].PeriodStart.AddDate(0, 0, 7)
		} else {
			periodEnd = stats[i].PeriodStart.AddDate(0, 1, 0)
		}

		if !date.Before(stats[i].PeriodStart) && date.Before(periodEnd) {
			return i
		}
	}
	return -1
}
