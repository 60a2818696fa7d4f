package analysis

import "math"

// Training effect model constants
const (
	AnaerobicHRRThreshold = 0.9   // HRR fraction above which anaerobic impulse accrues
	FitnessCTLCap         = 200.0 // CTL beyond this no longer raises the fitness factor
	AerobicEffectExponent = 0.25
	AerobicEffectScale    = 1.0
	AnaerobicEffectScale  = 0.6
	MaxTrainingEffect     = 5.0
)

// TrainingEffect is the estimated physiological benefit of one session on a 0-5 scale
type TrainingEffect struct {
	Aerobic   float64
	Anaerobic float64
}

// FitnessFactor scales impulse down for fitter athletes: 1 + min(200, CTL)/200
func FitnessFactor(ctl float64) float64 {
	return 1 + clamp(ctl, 0, FitnessCTLCap)/FitnessCTLCap
}

// EstimateTrainingEffect accumulates Banister-weighted aerobic impulse and
// above-threshold anaerobic impulse over the HR samples of a session.
// The first HR sample counts as one second; later ones use the elapsed time
// since the previous HR sample. Returns nil without HR samples or when
// maxHR <= restHR. Zero readings count as missing.
func EstimateTrainingEffect(records []SessionRecord, profile AthleteProfile, ctl float64) *TrainingEffect {
	hrReserve := profile.MaxHR - profile.RestingHR
	if hrReserve <= 0 {
		return nil
	}

	a, b := banisterCoefficients(profile.Gender)

	var aerobic, anaerobic float64
	var prevTS float64
	seen := false
	for _, r := range records {
		if r.HeartRate == nil || *r.HeartRate <= 0 {
			continue
		}

		dt := 1.0
		if seen {
			dt = r.Timestamp - prevTS
		}
		prevTS = r.Timestamp
		seen = true
		if dt <= 0 {
			continue
		}

		hrr := clamp((float64(*r.HeartRate)-profile.RestingHR)/hrReserve, 0, 1)
		minutes := dt / 60
		aerobic += minutes * hrr * a * math.Exp(b*hrr)
		if hrr > AnaerobicHRRThreshold {
			anaerobic += minutes * (hrr - AnaerobicHRRThreshold) / (1 - AnaerobicHRRThreshold)
		}
	}
	if !seen {
		return nil
	}

	factor := FitnessFactor(ctl)
	aerobic /= factor
	anaerobic /= factor

	return &TrainingEffect{
		Aerobic:   round1(clamp(AerobicEffectScale*math.Pow(aerobic, AerobicEffectExponent), 0, MaxTrainingEffect)),
		Anaerobic: round1(clamp(AnaerobicEffectScale*anaerobic, 0, MaxTrainingEffect)),
	}
}

// TrainingEffectLabel maps a 0-5 score to its band
func TrainingEffectLabel(score float64) string {
	switch {
	case score >= 5:
		return "Overreaching"
	case score >= 4:
		return "Highly Improving"
	case score >= 3:
		return "Improving"
	case score >= 2:
		return "Maintaining"
	case score >= 1:
		return "Minor Benefit"
	default:
		return "No Benefit"
	}
}

type narrativeRule struct {
	match func(aerobic, anaerobic float64) bool
	text  string
}

// narrativeRules is evaluated top-down; the first matching rule wins
func narrativeRules() []narrativeRule {
	return []narrativeRule{
		{
			func(ae, an float64) bool { return ae >= 5 || an >= 5 },
			"Overreaching session. Plan extra recovery before the next hard day.",
		},
		{
			func(ae, an float64) bool { return ae >= 4 && an >= 4 },
			"Very demanding session that pushed both aerobic and anaerobic systems.",
		},
		{
			func(ae, an float64) bool { return ae >= 3 && an < 2 },
			"Aerobic base builder. Improves endurance with little high-intensity cost.",
		},
		{
			func(ae, an float64) bool { return an >= 3 && ae < 3 },
			"High-intensity work. Develops speed and anaerobic capacity.",
		},
		{
			func(ae, an float64) bool { return ae >= 3 && an >= 2 },
			"Improves aerobic endurance and high-end capacity together.",
		},
		{
			func(ae, an float64) bool { return ae >= 2 || an >= 2 },
			"Maintains current fitness.",
		},
	}
}

// TrainingEffectNarrative returns a short description combining both scores
func TrainingEffectNarrative(aerobic, anaerobic float64) string {
	for _, rule := range narrativeRules() {
		if rule.match(aerobic, anaerobic) {
			return rule.text
		}
	}
	return "Recovery-level session with little training stimulus."
}
