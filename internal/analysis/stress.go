package analysis

import (
	"fmt"
	"math"
)

const (
	// DurationFallbackPerHour is the stress assigned per hour when neither power nor HR is usable
	DurationFallbackPerHour = 30.0

	// TSS divergence bands between device-reported and computed values
	TSSHighConfidencePct     = 5.0
	TSSModerateConfidencePct = 15.0
)

// banisterCoefficients returns the (a, b) weighting for TRIMP
func banisterCoefficients(g Gender) (a, b float64) {
	if g == GenderFemale {
		return 0.86, 1.67
	}
	return 0.64, 1.92
}

// IntensityFactor is NP / FTP
func IntensityFactor(np, ftp float64) (float64, bool) {
	if np <= 0 || ftp <= 0 {
		return 0, false
	}
	return np / ftp, true
}

// TSS calculates the power-based Training Stress Score
// TSS = duration_sec * NP * IF / (FTP * 3600) * 100
func TSS(np, ftp, durationSec float64) (float64, bool) {
	intensity, ok := IntensityFactor(np, ftp)
	if !ok || durationSec <= 0 {
		return 0, false
	}
	return round1(durationSec * np * intensity / (ftp * 3600) * 100), true
}

// TRIMP calculates Training Impulse (Banister model)
// TRIMP = duration (min) * ratio * a * e^(b * ratio), ratio = HR reserve fraction.
// Physiologically invalid inputs (avgHR <= rest, avgHR > max, max <= rest) yield 0.
func TRIMP(durationSec, avgHR float64, profile AthleteProfile) float64 {
	hrReserve := profile.MaxHR - profile.RestingHR
	if hrReserve <= 0 || durationSec <= 0 {
		return 0
	}
	if avgHR <= profile.RestingHR || avgHR > profile.MaxHR {
		return 0
	}

	ratio := (avgHR - profile.RestingHR) / hrReserve
	a, b := banisterCoefficients(profile.Gender)
	return durationSec / 60 * ratio * a * math.Exp(b*ratio)
}

// HRSS calculates Heart Rate Stress Score: TRIMP normalized so that one hour
// at ratio 1.0 scores 100, putting it on the same scale as TSS.
func HRSS(durationSec, avgHR float64, profile AthleteProfile) float64 {
	trimp := TRIMP(durationSec, avgHR, profile)
	if trimp == 0 {
		return 0
	}
	a, b := banisterCoefficients(profile.Gender)
	reference := 60 * a * math.Exp(b)
	return round1(trimp / reference * 100)
}

// DurationFallbackStress assigns DurationFallbackPerHour points per hour
func DurationFallbackStress(durationSec float64) float64 {
	if durationSec <= 0 {
		return 0
	}
	return round1(durationSec / 3600 * DurationFallbackPerHour)
}

// StressInput holds everything needed to score a session
type StressInput struct {
	Records         []SessionRecord
	DurationSeconds float64
	AvgHeartRate    *float64
	Profile         AthleteProfile
}

// StressResult is the selected stress score and how it was derived
type StressResult struct {
	TSS             float64
	Method          StressMethod
	NormalizedPower *int
	IntensityFactor *float64
}

// CalculateSessionStress picks the most trustworthy stress method available:
// power-based TSS when FTP is set and NP is computable, heart-rate TRIMP when
// an average HR exists, otherwise a duration-only fallback.
func CalculateSessionStress(in StressInput) StressResult {
	if in.Profile.FTP > 0 {
		if np, ok := NormalizedPower(FilterPower(in.Records)); ok {
			if tss, ok := TSS(float64(np), in.Profile.FTP, in.DurationSeconds); ok {
				intensity := float64(np) / in.Profile.FTP
				return StressResult{
					TSS:             tss,
					Method:          StressPowerBased,
					NormalizedPower: &np,
					IntensityFactor: &intensity,
				}
			}
		}
	}

	if in.AvgHeartRate != nil {
		return StressResult{
			TSS:    HRSS(in.DurationSeconds, *in.AvgHeartRate, in.Profile),
			Method: StressHeartRateBased,
		}
	}

	return StressResult{
		TSS:    DurationFallbackStress(in.DurationSeconds),
		Method: StressDuration,
	}
}

// Confidence describes how closely device and computed TSS agree
type Confidence string

const (
	ConfidenceHigh     Confidence = "high"
	ConfidenceModerate Confidence = "moderate"
	ConfidenceLow      Confidence = "low"
)

// TSSComparison reports the divergence between device-reported and computed TSS
type TSSComparison struct {
	Device        float64
	Computed      float64
	Difference    float64 // absolute
	DifferencePct float64 // relative to the device value
	Confidence    Confidence
	Warning       string
}

// CompareTSS compares a device-reported TSS with the computed one.
// Returns nil when the device reported nothing.
func CompareTSS(device *float64, computed float64) *TSSComparison {
	if device == nil {
		return nil
	}

	diff := math.Abs(*device - computed)
	base := *device
	if base <= 0 {
		base = computed
	}
	var pct float64
	if base > 0 {
		pct = diff * 100 / base
	}

	c := &TSSComparison{
		Device:        *device,
		Computed:      computed,
		Difference:    round1(diff),
		DifferencePct: round1(pct),
	}
	switch {
	case pct <= TSSHighConfidencePct:
		c.Confidence = ConfidenceHigh
	case pct <= TSSModerateConfidencePct:
		c.Confidence = ConfidenceModerate
	default:
		c.Confidence = ConfidenceLow
		c.Warning = fmt.Sprintf("device TSS %.1f differs from computed TSS %.1f by %.0f%%; check FTP and heart-rate settings",
			*device, computed, pct)
	}
	return c
}
