package analysis

// PacingDriftThresholdPct is the drift beyond which pacing counts as fading or building
const PacingDriftThresholdPct = 3.0

// LapAnalysis is a lap plus derived pace and interval flag
type LapAnalysis struct {
	Lap        SessionLap
	Pace       *float64 // sec/km
	IsInterval bool
}

// IntervalPair is an interval lap and the recovery lap that followed it
type IntervalPair struct {
	Active     LapAnalysis
	Recovery   *LapAnalysis
	HRRecovery *float64 // bpm dropped from active max to recovery min
}

// Trend describes how pace moved across comparable laps
type Trend string

const (
	TrendFading   Trend = "fading"
	TrendBuilding Trend = "building"
	TrendStable   Trend = "stable"
)

// PacingTrend compares the first and last comparable laps
type PacingTrend struct {
	Trend    Trend
	DriftPct *float64
}

// AnalyzeLaps derives pace for every lap and flags interval laps.
// A lap is an interval only when it is tagged active and the session has at
// least one lap that is not, otherwise there is no interval structure at all.
func AnalyzeLaps(laps []SessionLap) []LapAnalysis {
	structured := false
	for _, l := range laps {
		if l.Intensity != IntensityActive {
			structured = true
			break
		}
	}

	out := make([]LapAnalysis, len(laps))
	for i, l := range laps {
		out[i] = LapAnalysis{
			Lap:        l,
			IsInterval: structured && l.Intensity == IntensityActive,
		}
		if l.MovingTime > 0 && l.Distance > 0 {
			pace := l.MovingTime / l.Distance * 1000
			out[i].Pace = &pace
		}
	}
	return out
}

// DetectIntervals pairs each interval lap with the following lap when that
// lap is not itself an interval. HR recovery is the active lap's max HR minus
// the recovery lap's min HR.
func DetectIntervals(laps []LapAnalysis) []IntervalPair {
	var pairs []IntervalPair
	for i, l := range laps {
		if !l.IsInterval {
			continue
		}

		pair := IntervalPair{Active: l}
		if i+1 < len(laps) && !laps[i+1].IsInterval {
			rec := laps[i+1]
			pair.Recovery = &rec
			if l.Lap.MaxHeartRate != nil && rec.Lap.MinHeartRate != nil {
				drop := *l.Lap.MaxHeartRate - *rec.Lap.MinHeartRate
				pair.HRRecovery = &drop
			}
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

// DetectProgressiveOverload measures pace drift from the first to the last
// comparable lap. Interval laps are compared when any exist, otherwise all laps.
// Laps without a pace are ignored.
func DetectProgressiveOverload(laps []LapAnalysis) PacingTrend {
	hasIntervals := false
	for _, l := range laps {
		if l.IsInterval {
			hasIntervals = true
			break
		}
	}

	var paces []float64
	for _, l := range laps {
		if hasIntervals && !l.IsInterval {
			continue
		}
		if l.Pace != nil {
			paces = append(paces, *l.Pace)
		}
	}
	if len(paces) < 2 {
		return PacingTrend{Trend: TrendStable}
	}

	first, last := paces[0], paces[len(paces)-1]
	drift := (last - first) / first * 100

	trend := TrendStable
	switch {
	case drift > PacingDriftThresholdPct:
		trend = TrendFading
	case drift < -PacingDriftThresholdPct:
		trend = TrendBuilding
	}
	return PacingTrend{Trend: trend, DriftPct: &drift}
}
