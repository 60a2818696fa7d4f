package service

const (
	// HR validation thresholds for charts and zones
	MinValidHeartrate = 50
	MaxValidHeartrate = 220

	// Unit conversions
	MetersPerKm = 1000.0

	// Time windows
	WeekDays      = 7
	LoadChartDays = 90
	ChartWeeks    = 12

	// Pagination limits
	RecentSessionsLimit = 10

	// Partial kilometer threshold for splits (meters)
	PartialKmThreshold = 100

	// Minimum speed for pace calculation (m/s) - filters out stopped time
	MinSpeedForPace = 0.5

	SecondsPerMinute = 60
)

// HRZoneThresholds defines the upper bound percentage of max HR for each zone
func HRZoneThresholds() []float64 {
	return []float64{0.6, 0.7, 0.8, 0.9, 1.0}
}
