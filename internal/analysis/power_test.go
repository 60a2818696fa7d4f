package analysis

import (
	"math"
	"testing"
)

func TestNormalizedPower(t *testing.T) {
	sinusoid := make([]int, 3600)
	for i := range sinusoid {
		sinusoid[i] = int(math.Round(250 + 40*math.Sin(float64(i)*0.05)))
	}

	intervals := make([]int, 600)
	for i := range intervals {
		if (i/60)%2 == 0 {
			intervals[i] = 100
		} else {
			intervals[i] = 300
		}
	}

	tests := []struct {
		name    string
		records []SessionRecord
		checkFn func(t *testing.T, np int, ok bool)
	}{
		{
			name:    "constant power equals itself",
			records: constantPower(120, 237),
			checkFn: func(t *testing.T, np int, ok bool) {
				if !ok || np != 237 {
					t.Errorf("NormalizedPower = %d, %v; want 237, true", np, ok)
				}
			},
		},
		{
			name:    "exactly 30 samples",
			records: constantPower(30, 200),
			checkFn: func(t *testing.T, np int, ok bool) {
				if !ok || np != 200 {
					t.Errorf("NormalizedPower = %d, %v; want 200, true", np, ok)
				}
			},
		},
		{
			name:    "fewer than 30 positive samples",
			records: constantPower(29, 200),
			checkFn: func(t *testing.T, np int, ok bool) {
				if ok {
					t.Errorf("expected absent NP, got %d", np)
				}
			},
		},
		{
			name:    "zeros are excluded",
			records: append(constantPower(20, 200), constantPower(20, 0)...),
			checkFn: func(t *testing.T, np int, ok bool) {
				if ok {
					t.Errorf("expected absent NP with 20 positive samples, got %d", np)
				}
			},
		},
		{
			name:    "variable power dominates the mean",
			records: powerSeries(intervals),
			checkFn: func(t *testing.T, np int, ok bool) {
				if !ok {
					t.Fatal("expected NP")
				}
				if float64(np) < 200 {
					t.Errorf("NP = %d, want >= mean 200", np)
				}
			},
		},
		{
			name:    "sinusoid around 250 W",
			records: powerSeries(sinusoid),
			checkFn: func(t *testing.T, np int, ok bool) {
				if !ok {
					t.Fatal("expected NP")
				}
				if np <= 250 {
					t.Errorf("NP = %d, want > 250", np)
				}
				tss, ok := TSS(float64(np), 250, 3600)
				if !ok || tss < 90 || tss > 150 {
					t.Errorf("TSS = %v, want within [90, 150]", tss)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			np, ok := NormalizedPower(tt.records)
			tt.checkFn(t, np, ok)
		})
	}
}

func TestAveragePower(t *testing.T) {
	avg, ok := AveragePower(powerSeries([]int{0, 100, 200, 300}))
	if !ok || math.Abs(avg-200) > 0.001 {
		t.Errorf("AveragePower = %v, %v; want 200", avg, ok)
	}
	if _, ok := AveragePower(nil); ok {
		t.Error("expected no average for empty records")
	}
}
