package store

import (
	"encoding/json"
	"fmt"

	"trainingload/internal/analysis"
)

// Column lists shared by the INSERT and SELECT statements of each table
const (
	sessionColumns = `id, name, sport, start_time, duration, moving_time, distance, elevation_gain,
		avg_heart_rate, max_heart_rate, avg_power, avg_cadence, avg_speed,
		tss, stress_method, normalized_power, intensity_factor, grade_adjusted_pace,
		device_tss, aerobic_effect, anaerobic_effect, sensor_warnings`

	recordColumns = `timestamp, heart_rate, power, cadence, speed, distance, elevation, grade`

	lapColumns = `lap_index, start_offset, elapsed_time, moving_time, distance,
		avg_heart_rate, max_heart_rate, min_heart_rate, avg_cadence, avg_speed, intensity`

	personalBestColumns = `sport, category, window_size, value, session_id, achieved_at`

	dailyMetricsColumns = `date, tss, ctl, atl, tsb, acwr`
)

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (*analysis.TrainingSession, error) {
	var s analysis.TrainingSession
	var sport, startTime, method, warnings string

	err := sc.Scan(
		&s.ID, &s.Name, &sport, &startTime, &s.DurationSeconds, &s.MovingSeconds, &s.DistanceMeters, &s.ElevationGain,
		&s.AvgHeartRate, &s.MaxHeartRate, &s.AvgPower, &s.AvgCadence, &s.AvgSpeed,
		&s.TSS, &method, &s.NormalizedPower, &s.IntensityFactor, &s.GradeAdjustedPace,
		&s.DeviceTSS, &s.AerobicEffect, &s.AnaerobicEffect, &warnings,
	)
	if err != nil {
		return nil, err
	}

	s.Sport = analysis.Sport(sport)
	s.StressMethod = analysis.StressMethod(method)
	s.Date, err = parseTime(startTime)
	if err != nil {
		return nil, fmt.Errorf("parsing start_time %q: %w", startTime, err)
	}
	if err := json.Unmarshal([]byte(warnings), &s.SensorWarnings); err != nil {
		return nil, fmt.Errorf("parsing sensor_warnings: %w", err)
	}
	s.TSSComparison = analysis.CompareTSS(s.DeviceTSS, s.TSS)

	return &s, nil
}

func scanLap(sc scanner) (analysis.SessionLap, error) {
	var l analysis.SessionLap
	var intensity string
	err := sc.Scan(
		&l.Index, &l.StartOffset, &l.ElapsedTime, &l.MovingTime, &l.Distance,
		&l.AvgHeartRate, &l.MaxHeartRate, &l.MinHeartRate, &l.AvgCadence, &l.AvgSpeed, &intensity,
	)
	l.Intensity = analysis.LapIntensity(intensity)
	return l, err
}

func scanPersonalBest(sc scanner) (analysis.PersonalBest, error) {
	var pb analysis.PersonalBest
	var sport, category, achievedAt string
	if err := sc.Scan(&sport, &category, &pb.Window, &pb.Value, &pb.SessionID, &achievedAt); err != nil {
		return pb, err
	}
	pb.Sport = analysis.Sport(sport)
	pb.Category = analysis.PBCategory(category)

	var err error
	pb.Date, err = parseTime(achievedAt)
	if err != nil {
		return pb, fmt.Errorf("parsing achieved_at %q: %w", achievedAt, err)
	}
	return pb, nil
}
