package analysis

import "math"

// NormalizedPowerWindow is the rolling-average length in samples (~30 s at 1 Hz)
const NormalizedPowerWindow = 30

// NormalizedPower computes Coggan normalized power:
// 30-sample rolling mean, raised to the 4th power, averaged, 4th root.
// Only samples with power > 0 count. Returns false with fewer than 30 samples.
func NormalizedPower(records []SessionRecord) (int, bool) {
	powers := make([]float64, 0, len(records))
	for _, r := range records {
		if r.Power != nil && *r.Power > 0 {
			powers = append(powers, float64(*r.Power))
		}
	}
	return normalizedPower(powers)
}

func normalizedPower(powers []float64) (int, bool) {
	if len(powers) < NormalizedPowerWindow {
		return 0, false
	}

	var windowSum, fourthSum float64
	var count int
	for i, p := range powers {
		windowSum += p
		if i >= NormalizedPowerWindow {
			windowSum -= powers[i-NormalizedPowerWindow]
		}
		if i >= NormalizedPowerWindow-1 {
			avg := windowSum / NormalizedPowerWindow
			fourthSum += avg * avg * avg * avg
			count++
		}
	}

	np := math.Pow(fourthSum/float64(count), 0.25)
	return int(math.Round(np)), true
}

// AveragePower returns the mean of positive power samples
func AveragePower(records []SessionRecord) (float64, bool) {
	var sum float64
	var count int
	for _, r := range records {
		if r.Power != nil && *r.Power > 0 {
			sum += float64(*r.Power)
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}
