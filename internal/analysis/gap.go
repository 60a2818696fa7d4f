package analysis

import "math"

// Grade-adjusted pace constants (Minetti et al. 2002 metabolic cost of running)
const (
	MaxGradient  = 0.45 // gradients are clamped to ±45%
	FlatCostJkgm = 3.6  // metabolic cost on flat ground, J/kg/m
)

// minettiCost returns the energy cost of running (J/kg/m) at gradient i (rise/run)
func minettiCost(i float64) float64 {
	return 155.4*math.Pow(i, 5) - 30.4*math.Pow(i, 4) - 43.3*math.Pow(i, 3) + 46.3*i*i + 19.5*i + 3.6
}

// GradeFactor returns the metabolic cost at gradient relative to flat ground.
// 1.0 is flat, >1 is harder. The gradient is clamped to ±MaxGradient.
func GradeFactor(gradient float64) float64 {
	return minettiCost(clamp(gradient, -MaxGradient, MaxGradient)) / FlatCostJkgm
}

// GradeAdjustedPace estimates the equivalent flat-ground pace in seconds per km.
// Samples are used when they carry speed > 0, distance and either grade or elevation.
// Each segment between consecutive valid samples contributes dt/factor of
// equivalent flat time. The factor divides the time rather than weighting it,
// so climbs make the adjusted pace faster than the actual pace and gentle
// descents make it slower.
// Segments with no distance gained are skipped. Returns false when fewer than
// two valid samples exist or no segment covers distance.
func GradeAdjustedPace(records []SessionRecord) (float64, bool) {
	valid := make([]SessionRecord, 0, len(records))
	for _, r := range records {
		if r.Speed == nil || *r.Speed <= 0 || r.Distance == nil {
			continue
		}
		if r.Grade == nil && r.Elevation == nil {
			continue
		}
		valid = append(valid, r)
	}
	if len(valid) < 2 {
		return 0, false
	}

	var adjustedTime, totalDistance float64
	for i := 1; i < len(valid); i++ {
		prev, cur := valid[i-1], valid[i]
		dDist := *cur.Distance - *prev.Distance
		dt := cur.Timestamp - prev.Timestamp
		if dDist <= 0 || dt <= 0 {
			continue
		}

		var gradient float64
		switch {
		case cur.Grade != nil:
			gradient = *cur.Grade / 100
		case cur.Elevation != nil && prev.Elevation != nil:
			gradient = (*cur.Elevation - *prev.Elevation) / dDist
		}

		adjustedTime += dt / GradeFactor(gradient)
		totalDistance += dDist
	}

	if totalDistance <= 0 {
		return 0, false
	}
	return adjustedTime / totalDistance * 1000, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
