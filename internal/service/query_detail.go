package service

import (
	"fmt"

	"trainingload/internal/analysis"
)

// KmSplit represents stats for a single kilometer
type KmSplit struct {
	Km       int
	Duration int    // seconds
	Pace     string // "M:SS" per km
	AvgHR    float64
	AvgPower float64
}

// HRZoneTime represents time spent in an HR zone
type HRZoneTime struct {
	Zone    int
	Name    string
	Seconds int
	Percent float64
}

// SessionDetail contains detailed info for a single session
type SessionDetail struct {
	Session       analysis.TrainingSession
	Laps          []analysis.LapAnalysis
	Intervals     []analysis.IntervalPair
	Pacing        analysis.PacingTrend
	PersonalBests []analysis.PersonalBest // live records this session holds

	AerobicLabel   string
	AnaerobicLabel string
	Narrative      string

	Splits        []KmSplit
	HRZones       []HRZoneTime
	PaceData      []float64 // pace per minute for charting (min/km)
	HRData        []float64 // HR per minute for charting
	PowerData     []float64 // power per minute for charting
	TimeLabels    []string
	ConfiguredMax int // Configured max HR used for zone calculations
}

// GetSessionDetail returns detailed analysis for a single session
func (q *QueryService) GetSessionDetail(id string) (*SessionDetail, error) {
	session, err := q.store.GetSession(id)
	if err != nil {
		return nil, err
	}
	records, err := q.store.GetRecords(id)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	laps, err := q.store.GetLaps(id)
	if err != nil {
		return nil, fmt.Errorf("loading laps: %w", err)
	}
	pbs, err := q.store.GetPersonalBestsForSession(id)
	if err != nil {
		return nil, fmt.Errorf("loading personal bests: %w", err)
	}

	detail := &SessionDetail{
		Session:       *session,
		PersonalBests: pbs,
		ConfiguredMax: int(q.profile.MaxHR),
	}

	if len(laps) > 0 {
		detail.Laps = analysis.AnalyzeLaps(laps)
		detail.Intervals = analysis.DetectIntervals(detail.Laps)
		detail.Pacing = analysis.DetectProgressiveOverload(detail.Laps)
	}

	if session.AerobicEffect != nil && session.AnaerobicEffect != nil {
		detail.AerobicLabel = analysis.TrainingEffectLabel(*session.AerobicEffect)
		detail.AnaerobicLabel = analysis.TrainingEffectLabel(*session.AnaerobicEffect)
		detail.Narrative = analysis.TrainingEffectNarrative(*session.AerobicEffect, *session.AnaerobicEffect)
	}

	if len(records) == 0 {
		return detail, nil
	}

	detail.calculateFromRecords(records, session.DistanceMeters, int(q.profile.MaxHR))
	return detail, nil
}

func (d *SessionDetail) calculateFromRecords(records []analysis.SessionRecord, totalDistance float64, configuredMaxHR int) {
	// Kilometer splits
	currentKm := 1
	kmStartIdx := 0
	var lastDistance float64

	for i, r := range records {
		if r.Distance == nil {
			continue
		}

		dist := *r.Distance
		kmThreshold := float64(currentKm) * MetersPerKm

		if dist >= kmThreshold && lastDistance < kmThreshold {
			d.Splits = append(d.Splits, calculateSplit(records, kmStartIdx, i, currentKm))
			currentKm++
			kmStartIdx = i
		}
		lastDistance = dist
	}

	// Final partial km, scaled to a per-km pace
	remainingDist := totalDistance - float64(currentKm-1)*MetersPerKm
	if remainingDist > PartialKmThreshold && remainingDist < MetersPerKm && kmStartIdx < len(records)-1 {
		split := calculateSplit(records, kmStartIdx, len(records)-1, currentKm)
		partialKm := remainingDist / MetersPerKm
		split.Pace = formatPace(int(float64(split.Duration) / partialKm))
		d.Splits = append(d.Splits, split)
	}

	if configuredMaxHR > 0 {
		d.HRZones = calculateHRZones(records, configuredMaxHR)
	}

	d.buildChartData(records)
}

// buildChartData aggregates samples into minute-by-minute chart arrays
func (d *SessionDetail) buildChartData(records []analysis.SessionRecord) {
	minuteData := make(map[int]struct {
		paceSum    float64
		paceCount  int
		hrSum      float64
		hrCount    int
		powerSum   float64
		powerCount int
	})

	var prevDist, prevTime float64
	for _, r := range records {
		minute := int(r.Timestamp) / SecondsPerMinute

		if r.Distance != nil && r.Timestamp > prevTime {
			distDelta := *r.Distance - prevDist
			timeDelta := r.Timestamp - prevTime
			if distDelta > 0 && timeDelta > 0 {
				speedMPS := distDelta / timeDelta
				if speedMPS > MinSpeedForPace {
					entry := minuteData[minute]
					entry.paceSum += (MetersPerKm / speedMPS) / SecondsPerMinute
					entry.paceCount++
					minuteData[minute] = entry
				}
			}
			prevDist = *r.Distance
			prevTime = r.Timestamp
		}

		if r.HeartRate != nil && *r.HeartRate > MinValidHeartrate {
			entry := minuteData[minute]
			entry.hrSum += float64(*r.HeartRate)
			entry.hrCount++
			minuteData[minute] = entry
		}

		if r.Power != nil && *r.Power > 0 {
			entry := minuteData[minute]
			entry.powerSum += float64(*r.Power)
			entry.powerCount++
			minuteData[minute] = entry
		}
	}

	maxMinute := 0
	for m := range minuteData {
		if m > maxMinute {
			maxMinute = m
		}
	}

	for m := 0; m <= maxMinute; m++ {
		entry := minuteData[m]
		d.PaceData = appendOrCarry(d.PaceData, entry.paceSum, entry.paceCount)
		d.HRData = appendOrCarry(d.HRData, entry.hrSum, entry.hrCount)
		d.PowerData = appendOrCarry(d.PowerData, entry.powerSum, entry.powerCount)
		d.TimeLabels = append(d.TimeLabels, formatMinutes(m))
	}
}

// appendOrCarry appends the minute average, carrying the last value forward over gaps
func appendOrCarry(series []float64, sum float64, count int) []float64 {
	switch {
	case count > 0:
		return append(series, sum/float64(count))
	case len(series) > 0:
		return append(series, series[len(series)-1])
	default:
		return append(series, 0)
	}
}

func calculateSplit(records []analysis.SessionRecord, startIdx, endIdx int, km int) KmSplit {
	split := KmSplit{Km: km}

	if endIdx <= startIdx || endIdx >= len(records) {
		return split
	}

	split.Duration = int(records[endIdx].Timestamp - records[startIdx].Timestamp)
	split.Pace = formatPace(split.Duration)

	stats := AggregateRecordStats(records[startIdx : endIdx+1])
	split.AvgHR = stats.AvgHR()
	split.AvgPower = stats.AvgPower()

	return split
}

// calculateHRZones buckets samples into the 5-zone %maxHR model
func calculateHRZones(records []analysis.SessionRecord, maxHR int) []HRZoneTime {
	zones := []HRZoneTime{
		{Zone: 1, Name: "Warm Up (<60%)"},
		{Zone: 2, Name: "Easy (60-70%)"},
		{Zone: 3, Name: "Aerobic (70-80%)"},
		{Zone: 4, Name: "Threshold (80-90%)"},
		{Zone: 5, Name: "Maximum (>90%)"},
	}
	thresholds := HRZoneThresholds()

	totalSeconds := 0
	for _, r := range records {
		if r.HeartRate == nil || *r.HeartRate < MinValidHeartrate {
			continue
		}

		pct := float64(*r.HeartRate) / float64(maxHR)
		totalSeconds++

		// Above configured max still counts as zone 5
		zone := len(zones) - 1
		for i, thresh := range thresholds {
			if pct <= thresh {
				zone = i
				break
			}
		}
		zones[zone].Seconds++
	}

	if totalSeconds > 0 {
		for i := range zones {
			zones[i].Percent = float64(zones[i].Seconds) / float64(totalSeconds) * 100
		}
	}

	return zones
}

func formatPace(seconds int) string {
	mins := seconds / SecondsPerMinute
	secs := seconds % SecondsPerMinute
	return fmt.Sprintf("%d:%02d", mins, secs)
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%d:00", m)
}
