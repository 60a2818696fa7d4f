package analysis

import (
	"strings"
	"time"
)

// SummarizeSession turns parsed session data into a scored TrainingSession.
// Summary values the parser left out are derived from the records. ctl is the
// athlete's fitness on the session date and only scales training effect.
func SummarizeSession(meta SessionMeta, records []SessionRecord, profile AthleteProfile, ctl float64) TrainingSession {
	s := TrainingSession{
		ID:              meta.ID,
		Name:            meta.Name,
		Sport:           meta.Sport,
		Date:            meta.StartTime,
		DurationSeconds: meta.DurationSeconds,
		MovingSeconds:   meta.MovingSeconds,
		DistanceMeters:  meta.DistanceMeters,
		ElevationGain:   meta.ElevationGain,
		AvgHeartRate:    meta.AvgHeartRate,
		MaxHeartRate:    meta.MaxHeartRate,
		DeviceTSS:       meta.DeviceTSS,
	}
	if s.Name == "" {
		s.Name = DefaultSessionName(meta.Sport, meta.StartTime)
	}

	if s.DurationSeconds <= 0 && len(records) > 1 {
		s.DurationSeconds = records[len(records)-1].Timestamp - records[0].Timestamp
	}
	if s.MovingSeconds <= 0 {
		s.MovingSeconds = s.DurationSeconds
	}
	if s.DistanceMeters <= 0 {
		s.DistanceMeters, _ = TotalDistance(records)
	}
	if s.ElevationGain <= 0 {
		s.ElevationGain, _ = ElevationGain(records)
	}

	avgHR, maxHR := heartRateSummary(records)
	if s.AvgHeartRate == nil {
		s.AvgHeartRate = avgHR
	}
	if s.MaxHeartRate == nil {
		s.MaxHeartRate = maxHR
	}
	if p, ok := AveragePower(FilterPower(records)); ok {
		s.AvgPower = &p
	}
	s.AvgCadence = averageCadence(records)
	if s.MovingSeconds > 0 && s.DistanceMeters > 0 {
		speed := s.DistanceMeters / s.MovingSeconds
		s.AvgSpeed = &speed
	}

	for _, w := range ValidateSensors(records, meta.Sport) {
		s.SensorWarnings = append(s.SensorWarnings, w.String())
	}

	stress := CalculateSessionStress(StressInput{
		Records:         records,
		DurationSeconds: s.DurationSeconds,
		AvgHeartRate:    s.AvgHeartRate,
		Profile:         profile,
	})
	s.TSS = stress.TSS
	s.StressMethod = stress.Method
	s.NormalizedPower = stress.NormalizedPower
	s.IntensityFactor = stress.IntensityFactor
	if s.NormalizedPower == nil {
		if np, ok := NormalizedPower(FilterPower(records)); ok {
			s.NormalizedPower = &np
		}
	}
	s.TSSComparison = CompareTSS(s.DeviceTSS, s.TSS)

	if meta.Sport == SportRunning {
		if gap, ok := GradeAdjustedPace(records); ok {
			s.GradeAdjustedPace = &gap
		}
	}

	if te := EstimateTrainingEffect(records, profile, ctl); te != nil {
		s.AerobicEffect = &te.Aerobic
		s.AnaerobicEffect = &te.Anaerobic
	}

	return s
}

// heartRateSummary averages positive HR samples
func heartRateSummary(records []SessionRecord) (avg, peak *float64) {
	var sum, highest float64
	var count int
	for _, r := range records {
		if r.HeartRate == nil || *r.HeartRate <= 0 {
			continue
		}
		hr := float64(*r.HeartRate)
		sum += hr
		count++
		if hr > highest {
			highest = hr
		}
	}
	if count == 0 {
		return nil, nil
	}
	mean := sum / float64(count)
	return &mean, &highest
}

func averageCadence(records []SessionRecord) *float64 {
	var sum float64
	var count int
	for _, r := range records {
		if r.Cadence != nil && *r.Cadence > 0 {
			sum += float64(*r.Cadence)
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := sum / float64(count)
	return &avg
}

// DefaultSessionName builds a name like "Morning Run" from the start hour
func DefaultSessionName(sport Sport, start time.Time) string {
	var part string
	switch h := start.Hour(); {
	case h < 5:
		part = "Night"
	case h < 12:
		part = "Morning"
	case h < 17:
		part = "Afternoon"
	case h < 21:
		part = "Evening"
	default:
		part = "Night"
	}

	var kind string
	switch sport {
	case SportCycling:
		kind = "Ride"
	case SportRunning:
		kind = "Run"
	case SportSwimming:
		kind = "Swim"
	default:
		kind = "Workout"
	}
	return strings.Join([]string{part, kind}, " ")
}
