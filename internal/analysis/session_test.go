package analysis

import (
	"math"
	"testing"
	"time"
)

func TestSummarizeSession(t *testing.T) {
	start := time.Date(2024, 6, 2, 7, 15, 0, 0, time.UTC)
	profile := DefaultProfile()
	profile.FTP = 250

	tests := []struct {
		name    string
		meta    SessionMeta
		records []SessionRecord
		checkFn func(t *testing.T, s TrainingSession)
	}{
		{
			name: "ride with power",
			meta: SessionMeta{ID: "r1", Sport: SportCycling, StartTime: start, DurationSeconds: 3600, DeviceTSS: floatPtr(98)},
			records: func() []SessionRecord {
				records := constantPower(3600, 250)
				for i := range records {
					records[i].HeartRate = intPtr(150)
				}
				return records
			}(),
			checkFn: func(t *testing.T, s TrainingSession) {
				if s.StressMethod != StressPowerBased || math.Abs(s.TSS-100) > 0.05 {
					t.Errorf("stress = %v %v, want power-based 100", s.StressMethod, s.TSS)
				}
				if s.NormalizedPower == nil || *s.NormalizedPower != 250 {
					t.Errorf("NormalizedPower = %v, want 250", s.NormalizedPower)
				}
				if s.TSSComparison == nil || s.TSSComparison.Confidence != ConfidenceHigh {
					t.Errorf("TSSComparison = %+v, want high confidence", s.TSSComparison)
				}
				if s.AvgHeartRate == nil || *s.AvgHeartRate != 150 {
					t.Errorf("AvgHeartRate = %v, want 150 derived from records", s.AvgHeartRate)
				}
				if s.AerobicEffect == nil {
					t.Error("expected training effect from HR samples")
				}
				if s.GradeAdjustedPace != nil {
					t.Error("GAP is only computed for runs")
				}
				if s.Name != "Morning Ride" {
					t.Errorf("Name = %q, want Morning Ride", s.Name)
				}
			},
		},
		{
			name: "run without power",
			meta: SessionMeta{ID: "run1", Name: "Tempo", Sport: SportRunning, StartTime: start, AvgHeartRate: floatPtr(185)},
			records: func() []SessionRecord {
				records := steadyRun(3601, 3)
				for i := range records {
					records[i].Grade = floatPtr(0)
				}
				return records
			}(),
			checkFn: func(t *testing.T, s TrainingSession) {
				if s.StressMethod != StressHeartRateBased || s.TSS != 100 {
					t.Errorf("stress = %v %v, want heart-rate-based 100", s.StressMethod, s.TSS)
				}
				if s.DurationSeconds != 3600 {
					t.Errorf("DurationSeconds = %v, want 3600 from records", s.DurationSeconds)
				}
				if s.DistanceMeters != 10800 {
					t.Errorf("DistanceMeters = %v, want 10800", s.DistanceMeters)
				}
				if s.GradeAdjustedPace == nil || math.Abs(*s.GradeAdjustedPace-1000.0/3) > 1 {
					t.Errorf("GradeAdjustedPace = %v", s.GradeAdjustedPace)
				}
				if s.TSSComparison != nil {
					t.Error("no device TSS means no comparison")
				}
				if s.Name != "Tempo" {
					t.Errorf("Name = %q", s.Name)
				}
			},
		},
		{
			name: "broken strap is reported",
			meta: SessionMeta{ID: "s1", Sport: SportRunning, StartTime: start, DurationSeconds: 60},
			records: func() []SessionRecord {
				return steadyHR(60, 0)
			}(),
			checkFn: func(t *testing.T, s TrainingSession) {
				if len(s.SensorWarnings) != 1 {
					t.Errorf("SensorWarnings = %v, want one", s.SensorWarnings)
				}
				if s.StressMethod != StressDuration {
					t.Errorf("StressMethod = %v, want duration fallback", s.StressMethod)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.checkFn(t, SummarizeSession(tt.meta, tt.records, profile, 0))
		})
	}
}

func TestDefaultSessionName(t *testing.T) {
	tests := []struct {
		sport Sport
		hour  int
		want  string
	}{
		{SportRunning, 6, "Morning Run"},
		{SportCycling, 14, "Afternoon Ride"},
		{SportSwimming, 19, "Evening Swim"},
		{SportOther, 23, "Night Workout"},
	}
	for _, tt := range tests {
		got := DefaultSessionName(tt.sport, time.Date(2024, 1, 1, tt.hour, 0, 0, 0, time.UTC))
		if got != tt.want {
			t.Errorf("DefaultSessionName(%v, %d) = %q, want %q", tt.sport, tt.hour, got, tt.want)
		}
	}
}
