package analysis

import "math"

// PeakPowerWindows returns the peak-power window lengths in seconds
func PeakPowerWindows() []float64 {
	return []float64{5, 60, 300, 1200, 3600}
}

// Standard effort distances in meters
const (
	Distance100m     = 100
	Distance400m     = 400
	Distance1K       = 1000
	Distance1500m    = 1500
	Distance1Mile    = 1609.34
	Distance5K       = 5000
	Distance10K      = 10000
	Distance20K      = 20000
	Distance40K      = 40000
	Distance100K     = 100000
	DistanceHalfMara = 21097.5
	DistanceMarathon = 42195
)

// EffortDistances returns the fastest-distance targets tracked for a sport
func EffortDistances(sport Sport) []float64 {
	switch sport {
	case SportRunning:
		return []float64{Distance400m, Distance1K, Distance1Mile, Distance5K, Distance10K, DistanceHalfMara, DistanceMarathon}
	case SportCycling:
		return []float64{Distance10K, Distance20K, Distance40K, Distance100K}
	case SportSwimming:
		return []float64{Distance100m, Distance400m, Distance1500m}
	default:
		return nil
	}
}

type sample struct {
	t float64
	v float64
}

// MinPowerCoverage is the share of a peak-power window that must hold
// recorded samples before the window counts.
const MinPowerCoverage = 0.5

type powerSample struct {
	t float64
	w float64 // seconds this sample stands for, at most 1
	p float64
}

// powerSamples keeps every sample with a power reading up to
// MaxPlausiblePower. Zero watts stay in as coasting.
func powerSamples(records []SessionRecord) []powerSample {
	var points []powerSample
	for _, r := range records {
		if r.Power == nil || *r.Power > MaxPlausiblePower {
			continue
		}
		points = append(points, powerSample{t: r.Timestamp, p: math.Max(0, float64(*r.Power))})
	}
	for i := range points {
		points[i].w = 1
		if i+1 < len(points) {
			points[i].w = math.Min(1, math.Max(0, points[i+1].t-points[i].t))
		}
	}
	return points
}

// PeakPower finds the highest average power over any window of the given
// length in seconds. Each sample holds its power until the next sample, for
// at most one second, so recording dropouts add no work and coasting counts
// as zero. The average is energy over window seconds. A window must end
// inside the data and be at least MinPowerCoverage recorded. Returns false
// when no window qualifies.
func PeakPower(records []SessionRecord, window float64) (float64, bool) {
	if window <= 0 {
		return 0, false
	}
	points := powerSamples(records)
	if len(points) == 0 {
		return 0, false
	}
	last := points[len(points)-1]
	dataEnd := last.t + last.w

	var energy, covered, best float64
	found := false
	right := 0
	for left := range points {
		end := points[left].t + window
		if end > dataEnd+1e-9 {
			break
		}
		for right < len(points) && points[right].t < end {
			energy += points[right].p * points[right].w
			covered += points[right].w
			right++
		}

		if covered >= window*MinPowerCoverage-1e-9 {
			avg := energy / window
			if !found || avg > best {
				best = avg
				found = true
			}
		}

		energy -= points[left].p * points[left].w
		covered -= points[left].w
	}
	if !found {
		return 0, false
	}
	return math.Round(best*10) / 10, true
}

// FastestDistance finds the shortest elapsed time, in seconds, needed to
// cover target meters of cumulative distance. The left pointer only moves
// forward, giving an O(n) scan. Returns false if the target is never reached.
func FastestDistance(records []SessionRecord, target float64) (float64, bool) {
	if target <= 0 {
		return 0, false
	}

	var points []sample
	for _, r := range records {
		if r.Distance != nil {
			points = append(points, sample{t: r.Timestamp, v: *r.Distance})
		}
	}

	best := math.Inf(1)
	left := 0
	for right := range points {
		for left < right && points[right].v-points[left].v >= target {
			elapsed := points[right].t - points[left].t
			if elapsed > 0 && elapsed < best {
				best = elapsed
			}
			left++
		}
	}
	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}

// TotalDistance returns the final cumulative distance of a session
func TotalDistance(records []SessionRecord) (float64, bool) {
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Distance != nil {
			return *records[i].Distance, *records[i].Distance > 0
		}
	}
	return 0, false
}

// ElevationGain sums positive elevation changes between consecutive samples
func ElevationGain(records []SessionRecord) (float64, bool) {
	var gain float64
	var prev *float64
	for _, r := range records {
		if r.Elevation == nil {
			continue
		}
		if prev != nil && *r.Elevation > *prev {
			gain += *r.Elevation - *prev
		}
		prev = r.Elevation
	}
	return gain, gain > 0
}
