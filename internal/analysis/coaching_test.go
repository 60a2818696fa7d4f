package analysis

import (
	"testing"
	"time"
)

func TestClassifyForm(t *testing.T) {
	tests := []struct {
		tsb  float64
		want FormStatus
	}{
		{40, FormDetraining},
		{25.01, FormDetraining},
		{25, FormFresh},
		{5, FormFresh},
		{4.99, FormNeutral},
		{-10, FormNeutral},
		{-10.01, FormOptimal},
		{-30, FormOptimal},
		{-30.01, FormOverload},
	}
	for _, tt := range tests {
		if got := ClassifyForm(tt.tsb); got != tt.want {
			t.Errorf("ClassifyForm(%v) = %q, want %q", tt.tsb, got, tt.want)
		}
	}
}

func TestInjuryRisk(t *testing.T) {
	tests := []struct {
		acwr float64
		want RiskLevel
	}{
		{0, RiskLow},
		{1.3, RiskLow},
		{1.31, RiskModerate},
		{1.5, RiskModerate},
		{1.51, RiskHigh},
	}
	for _, tt := range tests {
		if got := InjuryRisk(tt.acwr); got != tt.want {
			t.Errorf("InjuryRisk(%v) = %q, want %q", tt.acwr, got, tt.want)
		}
	}
}

func TestClassifyLoad(t *testing.T) {
	tests := []struct {
		name string
		acwr float64
		days int
		want LoadState
	}{
		{"27 days is immature", 1.0, 27, LoadInsufficientData},
		{"immature even when high", 2.0, 10, LoadInsufficientData},
		{"28 days is mature", 1.0, 28, LoadSweetSpot},
		{"high risk", 1.6, 60, LoadHighRisk},
		{"upper bound of moderate", 1.5, 60, LoadModerateRisk},
		{"moderate risk", 1.4, 60, LoadModerateRisk},
		{"upper bound of sweet spot", 1.3, 60, LoadSweetSpot},
		{"lower bound of sweet spot", 0.8, 60, LoadSweetSpot},
		{"undertraining", 0.79, 60, LoadUndertraining},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyLoad(tt.acwr, tt.days); got != tt.want {
				t.Errorf("ClassifyLoad(%v, %d) = %q, want %q", tt.acwr, tt.days, got, tt.want)
			}
		})
	}
}

func TestRecommend(t *testing.T) {
	if Recommend(nil) != nil {
		t.Fatal("expected nil for empty series")
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var sessions []TrainingSession
	for i := 0; i < 40; i++ {
		sessions = append(sessions, sessionOn(start.AddDate(0, 0, i), 80))
	}
	metrics := CalculateTrainingLoad(sessions, start.AddDate(0, 0, 39))

	rec := Recommend(metrics)
	if rec == nil {
		t.Fatal("expected a recommendation")
	}
	if rec.DataMaturityDays != 40 {
		t.Errorf("DataMaturityDays = %d, want 40", rec.DataMaturityDays)
	}
	last := metrics[len(metrics)-1]
	if rec.TSB != last.TSB || rec.ACWR != last.ACWR {
		t.Error("recommendation should reflect the last row")
	}
	if rec.Status != ClassifyForm(last.TSB) || rec.LoadState != ClassifyLoad(last.ACWR, 40) {
		t.Errorf("unexpected classification %+v", rec)
	}
	if rec.Advice == "" {
		t.Error("expected advice text")
	}

	young := Recommend(metrics[:10])
	if young.LoadState != LoadInsufficientData {
		t.Errorf("LoadState = %q, want insufficient-data for 10 days", young.LoadState)
	}
}
