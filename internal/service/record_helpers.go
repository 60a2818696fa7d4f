package service

import (
	"fmt"
	"time"

	"trainingload/internal/analysis"
)

// RecordStats holds aggregated metrics from session samples
type RecordStats struct {
	HRSum      float64
	HRCount    int
	PowerSum   float64
	PowerCount int
}

// AggregateRecordStats sums valid HR and non-zero power samples
func AggregateRecordStats(records []analysis.SessionRecord) RecordStats {
	var stats RecordStats
	for _, r := range records {
		if isValidHeartrate(r.HeartRate) {
			stats.HRSum += float64(*r.HeartRate)
			stats.HRCount++
		}
		if r.Power != nil && *r.Power > 0 {
			stats.PowerSum += float64(*r.Power)
			stats.PowerCount++
		}
	}
	return stats
}

// AvgHR returns the average heart rate, or 0 if no valid readings
func (s RecordStats) AvgHR() float64 {
	if s.HRCount == 0 {
		return 0
	}
	return s.HRSum / float64(s.HRCount)
}

// AvgPower returns the average power, or 0 if no readings
func (s RecordStats) AvgPower() float64 {
	if s.PowerCount == 0 {
		return 0
	}
	return s.PowerSum / float64(s.PowerCount)
}

// isValidHeartrate checks if HR is in valid range
func isValidHeartrate(hr *int) bool {
	return hr != nil && *hr > MinValidHeartrate && *hr < MaxValidHeartrate
}

// getMonday returns the Monday of the week containing t, at midnight
func getMonday(t time.Time) time.Time {
	daysFromMonday := (int(t.Weekday()) + 6) % 7 // Monday = 0
	monday := t.AddDate(0, 0, -daysFromMonday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, monday.Location())
}

// FormatDuration formats seconds as "H:MM:SS" or "M:SS"
func FormatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
