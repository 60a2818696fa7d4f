package analysis

import (
	"math"
	"testing"
)

func lap(intensity LapIntensity, distance, moving float64) SessionLap {
	return SessionLap{Intensity: intensity, Distance: distance, MovingTime: moving, ElapsedTime: moving}
}

func TestAnalyzeLaps(t *testing.T) {
	tests := []struct {
		name         string
		laps         []SessionLap
		wantInterval []bool
	}{
		{
			name:         "all active laps are not intervals",
			laps:         []SessionLap{lap(IntensityActive, 1000, 300), lap(IntensityActive, 1000, 300)},
			wantInterval: []bool{false, false},
		},
		{
			name: "structured workout",
			laps: []SessionLap{
				lap(IntensityWarmup, 2000, 720),
				lap(IntensityActive, 400, 80),
				lap(IntensityRecovery, 200, 90),
				lap(IntensityActive, 400, 82),
				lap(IntensityCooldown, 1000, 360),
			},
			wantInterval: []bool{false, true, false, true, false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeLaps(tt.laps)
			for i, want := range tt.wantInterval {
				if got[i].IsInterval != want {
					t.Errorf("lap %d IsInterval = %v, want %v", i, got[i].IsInterval, want)
				}
			}
		})
	}

	analyzed := AnalyzeLaps([]SessionLap{lap(IntensityActive, 1000, 300), lap(IntensityRest, 0, 60)})
	if analyzed[0].Pace == nil || math.Abs(*analyzed[0].Pace-300) > 1e-9 {
		t.Errorf("Pace = %v, want 300 s/km", analyzed[0].Pace)
	}
	if analyzed[1].Pace != nil {
		t.Errorf("standing rest lap should have no pace, got %v", *analyzed[1].Pace)
	}
}

func TestDetectIntervals(t *testing.T) {
	active1 := lap(IntensityActive, 400, 80)
	active1.MaxHeartRate = floatPtr(178)
	rec1 := lap(IntensityRecovery, 200, 90)
	rec1.MinHeartRate = floatPtr(128)
	active2 := lap(IntensityActive, 400, 81)
	active2.MaxHeartRate = floatPtr(181)
	active3 := lap(IntensityActive, 400, 82)

	pairs := DetectIntervals(AnalyzeLaps([]SessionLap{
		lap(IntensityWarmup, 2000, 720),
		active1, rec1,
		active2, active3,
	}))

	if len(pairs) != 3 {
		t.Fatalf("expected 3 interval pairs, got %d", len(pairs))
	}
	if pairs[0].Recovery == nil || pairs[0].HRRecovery == nil || *pairs[0].HRRecovery != 50 {
		t.Errorf("first pair HR recovery = %v, want 50", pairs[0].HRRecovery)
	}
	if pairs[1].Recovery != nil {
		t.Error("interval followed by another interval should have no recovery lap")
	}
	if pairs[2].Recovery != nil || pairs[2].HRRecovery != nil {
		t.Error("final interval should have no recovery lap")
	}
}

func TestDetectProgressiveOverload(t *testing.T) {
	tests := []struct {
		name      string
		laps      []SessionLap
		wantTrend Trend
		wantDrift *float64
	}{
		{
			name:      "fading pace",
			laps:      []SessionLap{lap(IntensityActive, 1000, 300), lap(IntensityActive, 1000, 310), lap(IntensityActive, 1000, 320)},
			wantTrend: TrendFading,
			wantDrift: floatPtr(20.0 / 3),
		},
		{
			name:      "negative split",
			laps:      []SessionLap{lap(IntensityActive, 1000, 300), lap(IntensityActive, 1000, 285)},
			wantTrend: TrendBuilding,
			wantDrift: floatPtr(-5),
		},
		{
			name:      "even pacing",
			laps:      []SessionLap{lap(IntensityActive, 1000, 300), lap(IntensityActive, 1000, 303)},
			wantTrend: TrendStable,
			wantDrift: floatPtr(1),
		},
		{
			name: "only interval laps are compared",
			laps: []SessionLap{
				lap(IntensityWarmup, 1000, 400),
				lap(IntensityActive, 400, 80),
				lap(IntensityRecovery, 200, 100),
				lap(IntensityActive, 400, 88),
				lap(IntensityCooldown, 1000, 200),
			},
			wantTrend: TrendFading,
			wantDrift: floatPtr(10),
		},
		{
			name:      "single lap",
			laps:      []SessionLap{lap(IntensityActive, 1000, 300)},
			wantTrend: TrendStable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectProgressiveOverload(AnalyzeLaps(tt.laps))
			if got.Trend != tt.wantTrend {
				t.Errorf("Trend = %q, want %q", got.Trend, tt.wantTrend)
			}
			switch {
			case tt.wantDrift == nil && got.DriftPct != nil:
				t.Errorf("DriftPct = %v, want absent", *got.DriftPct)
			case tt.wantDrift != nil && (got.DriftPct == nil || math.Abs(*got.DriftPct-*tt.wantDrift) > 1e-6):
				t.Errorf("DriftPct = %v, want %v", got.DriftPct, *tt.wantDrift)
			}
		})
	}
}
