package service

import (
	"time"

	"trainingload/internal/analysis"
)

// DashboardData contains all data needed for the dashboard
type DashboardData struct {
	// Current load; HasLoad is false until the first session is imported
	Current  analysis.DailyMetrics
	HasLoad  bool
	Coaching *analysis.CoachingRecommendation

	// Last 7 days
	WeekSessionCount int
	WeekTSS          float64
	WeekDistanceKm   float64
	WeekDuration     float64 // seconds

	// Recent sessions
	RecentSessions []analysis.TrainingSession
	TotalSessions  int

	// For charts
	CTLHistory   []float64
	ATLHistory   []float64
	TSBHistory   []float64
	HistoryDates []time.Time
	WeeklyTSS    []float64 // Last 12 weeks of stress
	WeeklyLabels []string
}

// GetDashboard fetches all data needed for the dashboard as of today
func (q *QueryService) GetDashboard(today time.Time) (*DashboardData, error) {
	data := &DashboardData{}

	recent, err := q.store.ListSessions(RecentSessionsLimit, 0)
	if err != nil {
		return nil, err
	}
	data.RecentSessions = recent

	data.TotalSessions, err = q.store.CountSessions()
	if err != nil {
		return nil, err
	}

	metrics, err := q.loadSeries(today)
	if err != nil {
		return nil, err
	}
	data.Current, data.HasLoad = analysis.CurrentLoad(metrics)
	data.Coaching = analysis.Recommend(metrics)
	data.CTLHistory, data.ATLHistory, data.TSBHistory, data.HistoryDates = buildLoadHistory(metrics, LoadChartDays)

	weekStart := startOfDay(today).AddDate(0, 0, -(WeekDays - 1))
	week, err := q.store.SessionsBetween(weekStart, startOfDay(today).AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	for _, s := range week {
		data.WeekSessionCount++
		data.WeekTSS += s.TSS
		data.WeekDistanceKm += s.DistanceMeters / MetersPerKm
		data.WeekDuration += s.DurationSeconds
	}

	weekly, err := q.GetPeriodStats("weekly", ChartWeeks, today)
	if err != nil {
		return nil, err
	}
	for _, w := range weekly {
		data.WeeklyTSS = append(data.WeeklyTSS, w.TotalTSS)
		data.WeeklyLabels = append(data.WeeklyLabels, w.PeriodLabel)
	}

	return data, nil
}

// buildLoadHistory splits the last days rows of a series into chart arrays
func buildLoadHistory(metrics []analysis.DailyMetrics, days int) (ctl, atl, tsb []float64, dates []time.Time) {
	if len(metrics) > days {
		metrics = metrics[len(metrics)-days:]
	}
	for _, m := range metrics {
		ctl = append(ctl, m.CTL)
		atl = append(atl, m.ATL)
		tsb = append(tsb, m.TSB)
		dates = append(dates, m.Date)
	}
	return ctl, atl, tsb, dates
}

// startOfDay returns UTC midnight of t's calendar date, matching the load series
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
