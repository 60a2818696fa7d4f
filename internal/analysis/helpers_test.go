package analysis

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

// steadyRun builds a 1 Hz run at constant speed with cumulative distance
func steadyRun(seconds int, speed float64) []SessionRecord {
	records := make([]SessionRecord, seconds)
	for i := range records {
		records[i] = SessionRecord{
			Timestamp: float64(i),
			Speed:     floatPtr(speed),
			Distance:  floatPtr(float64(i) * speed),
		}
	}
	return records
}

// powerSeries builds 1 Hz records from a list of watt values
func powerSeries(watts []int) []SessionRecord {
	records := make([]SessionRecord, len(watts))
	for i, w := range watts {
		records[i] = SessionRecord{Timestamp: float64(i), Power: intPtr(w)}
	}
	return records
}

func constantPower(n, watts int) []SessionRecord {
	return powerSeries(repeatWatts(n, watts))
}

func repeatWatts(n, watts int) []int {
	w := make([]int, n)
	for i := range w {
		w[i] = watts
	}
	return w
}
