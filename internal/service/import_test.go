package service

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"trainingload/internal/analysis"
	"trainingload/internal/config"
	"trainingload/internal/fitfile"
	"trainingload/internal/store"
)

var rideStart = time.Date(2024, 6, 3, 7, 0, 0, 0, time.UTC)

func testAthlete() config.AthleteConfig {
	return config.AthleteConfig{FTP: 250, RestingHR: 50, MaxHR: 185, Gender: "male"}
}

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

// rideActivity builds a 1 Hz ride at constant power, 140 bpm and 8 m/s
func rideActivity(start time.Time, watts, seconds int) *fitfile.Activity {
	records := make([]analysis.SessionRecord, seconds)
	for i := range records {
		records[i] = analysis.SessionRecord{
			Timestamp: float64(i),
			HeartRate: intPtr(140),
			Power:     intPtr(watts),
			Speed:     floatPtr(8),
			Distance:  floatPtr(float64(i) * 8),
		}
	}
	return &fitfile.Activity{
		Meta: analysis.SessionMeta{
			Sport:           analysis.SportCycling,
			StartTime:       start,
			DurationSeconds: float64(seconds),
		},
		Records: records,
	}
}

func newTestImporter(t *testing.T) (*ImportService, *store.DB) {
	t.Helper()
	db := store.NewTestDB(t)
	svc := NewImportService(db, testAthlete(), zap.NewNop().Sugar())
	svc.now = func() time.Time { return rideStart.AddDate(0, 0, 2) }
	return svc, db
}

func TestImportActivity(t *testing.T) {
	svc, db := newTestImporter(t)

	outcome, err := svc.ImportActivity(rideActivity(rideStart, 250, 3600))
	if err != nil {
		t.Fatalf("ImportActivity: %v", err)
	}

	s := outcome.Session
	if s.ID == "" {
		t.Error("expected a generated session ID")
	}
	if s.StressMethod != analysis.StressPowerBased {
		t.Errorf("StressMethod = %q, want power-based", s.StressMethod)
	}
	if math.Abs(s.TSS-100) > 0.1 {
		t.Errorf("TSS = %v, want 100", s.TSS)
	}
	if s.Name != "Morning Ride" {
		t.Errorf("Name = %q, want Morning Ride", s.Name)
	}

	stored, err := db.GetSession(s.ID)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if stored.TSS != s.TSS {
		t.Errorf("stored TSS = %v, want %v", stored.TSS, s.TSS)
	}

	pbs, err := db.GetAllPersonalBests()
	if err != nil {
		t.Fatal(err)
	}
	if len(outcome.NewPBs) == 0 || len(pbs) != len(outcome.NewPBs) {
		t.Fatalf("first import should set every record: new %d, stored %d", len(outcome.NewPBs), len(pbs))
	}
	for _, ip := range outcome.NewPBs {
		if ip.Previous() != nil {
			t.Errorf("first-ever record %+v should have no previous", ip.PB())
		}
	}
}

func TestImportActivity_Duplicate(t *testing.T) {
	svc, _ := newTestImporter(t)

	if _, err := svc.ImportActivity(rideActivity(rideStart, 250, 600)); err != nil {
		t.Fatal(err)
	}
	_, err := svc.ImportActivity(rideActivity(rideStart, 250, 600))
	if !errors.Is(err, ErrDuplicateSession) {
		t.Errorf("err = %v, want ErrDuplicateSession", err)
	}
}

func TestImportActivity_ImprovesPersonalBest(t *testing.T) {
	svc, db := newTestImporter(t)

	if _, err := svc.ImportActivity(rideActivity(rideStart, 250, 600)); err != nil {
		t.Fatal(err)
	}
	outcome, err := svc.ImportActivity(rideActivity(rideStart.AddDate(0, 0, 1), 300, 120))
	if err != nil {
		t.Fatal(err)
	}

	var found bool
	for _, ip := range outcome.NewPBs {
		pb := ip.PB()
		if pb.Category != analysis.CategoryPeakPower || pb.Window != 60 {
			continue
		}
		found = true
		if pb.Value != 300 || ip.Previous() == nil || ip.Previous().Value != 250 {
			t.Errorf("60s peak = %v (previous %+v), want 300 over 250", pb.Value, ip.Previous())
		}
	}
	if !found {
		t.Fatal("expected a new 60s peak power record")
	}

	// The shorter ride cannot beat the 5min record
	for _, ip := range outcome.NewPBs {
		if ip.PB().Category == analysis.CategoryPeakPower && ip.PB().Window == 300 {
			t.Errorf("unexpected 5min record from a 2 minute ride")
		}
	}

	live, _ := db.GetAllPersonalBests()
	for _, pb := range live {
		if pb.Category == analysis.CategoryLongest && pb.Value != 599*8 {
			t.Errorf("longest = %v, want the first ride's %v", pb.Value, 599*8)
		}
	}
}

func TestImportActivity_FailedRecordWriteStoresNothing(t *testing.T) {
	svc, db := newTestImporter(t)

	_, err := db.Exec(`CREATE TRIGGER reject_personal_bests BEFORE INSERT ON personal_bests
		BEGIN SELECT RAISE(ABORT, 'personal bests are read-only'); END`)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ImportActivity(rideActivity(rideStart, 250, 600)); err == nil {
		t.Fatal("expected the import to fail")
	}
	if _, err := db.FindSessionByStart(analysis.SportCycling, rideStart); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("session stored despite failed import: %v", err)
	}

	// Once the table accepts writes the same file imports cleanly
	if _, err := db.Exec(`DROP TRIGGER reject_personal_bests`); err != nil {
		t.Fatal(err)
	}
	outcome, err := svc.ImportActivity(rideActivity(rideStart, 250, 600))
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	live, _ := db.GetAllPersonalBests()
	if len(outcome.NewPBs) == 0 || len(live) != len(outcome.NewPBs) {
		t.Errorf("stored %d records, outcome reported %d", len(live), len(outcome.NewPBs))
	}
}

func TestImportActivity_TrainingEffectUsesPriorFitness(t *testing.T) {
	svc, _ := newTestImporter(t)

	if _, err := svc.ImportActivity(rideActivity(rideStart, 250, 3600)); err != nil {
		t.Fatal(err)
	}
	next := rideActivity(rideStart.AddDate(0, 0, 1), 250, 3600)
	outcome, err := svc.ImportActivity(next)
	if err != nil {
		t.Fatal(err)
	}

	ctl := 100 * 2.0 / 43
	want := analysis.EstimateTrainingEffect(next.Records, testAthlete().Profile(), ctl)
	got := outcome.Session.AerobicEffect
	if got == nil || want == nil || math.Abs(*got-want.Aerobic) > 1e-9 {
		t.Errorf("AerobicEffect = %v, want %+v", got, want)
	}
}

func TestRecomputeLoad(t *testing.T) {
	svc, db := newTestImporter(t)

	if _, err := svc.ImportActivity(rideActivity(rideStart, 250, 3600)); err != nil {
		t.Fatal(err)
	}
	metrics, err := svc.RecomputeLoad(rideStart.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("RecomputeLoad: %v", err)
	}
	if len(metrics) != 3 {
		t.Fatalf("expected 3 days, got %d", len(metrics))
	}
	if math.Abs(metrics[0].CTL-100*2.0/43) > 1e-9 {
		t.Errorf("day one CTL = %v", metrics[0].CTL)
	}

	stored, err := db.GetDailyMetrics()
	if err != nil || len(stored) != 3 {
		t.Errorf("stored metrics = %d, %v", len(stored), err)
	}
}

func TestRebuildPersonalBests(t *testing.T) {
	svc, db := newTestImporter(t)

	for i, watts := range []int{250, 280} {
		if _, err := svc.ImportActivity(rideActivity(rideStart.AddDate(0, 0, i), watts, 600)); err != nil {
			t.Fatal(err)
		}
	}
	before, _ := db.GetAllPersonalBests()
	if err := db.ReplacePersonalBests(nil); err != nil {
		t.Fatal(err)
	}

	rebuilt, err := svc.RebuildPersonalBests(context.Background())
	if err != nil {
		t.Fatalf("RebuildPersonalBests: %v", err)
	}
	after, _ := db.GetAllPersonalBests()
	if len(rebuilt) != len(before) || len(after) != len(before) {
		t.Errorf("rebuilt %d, stored %d, want %d", len(rebuilt), len(after), len(before))
	}
}

func TestRebuild(t *testing.T) {
	svc, db := newTestImporter(t)

	// Import out of order so the first-imported session was scored with no history
	if _, err := svc.ImportActivity(rideActivity(rideStart.AddDate(0, 0, 1), 250, 3600)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ImportActivity(rideActivity(rideStart, 250, 3600)); err != nil {
		t.Fatal(err)
	}

	if err := svc.Rebuild(context.Background()); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	sessions, _ := db.AllSessions()
	later := sessions[1]
	records, _ := db.GetRecords(later.ID)
	want := analysis.EstimateTrainingEffect(records, testAthlete().Profile(), 100*2.0/43)
	if later.AerobicEffect == nil || math.Abs(*later.AerobicEffect-want.Aerobic) > 1e-9 {
		t.Errorf("AerobicEffect = %v, want %v", later.AerobicEffect, want.Aerobic)
	}

	metrics, _ := db.GetDailyMetrics()
	if len(metrics) != 3 {
		t.Errorf("stored metrics = %d, want 3", len(metrics))
	}
}

func TestImportFiles_CollectsErrors(t *testing.T) {
	svc, _ := newTestImporter(t)
	dir := t.TempDir()
	paths := []string{filepath.Join(dir, "a.fit"), filepath.Join(dir, "b.fit")}

	progress := make(chan ImportProgress, 16)
	result, err := svc.ImportFiles(context.Background(), paths, progress)
	if err != nil {
		t.Fatalf("ImportFiles: %v", err)
	}
	if result.Imported != 0 || len(result.Errors) != 2 {
		t.Errorf("result = %+v, want 2 errors", result)
	}

	var phases []string
	for p := range progress {
		phases = append(phases, p.Phase)
	}
	if len(phases) == 0 || phases[len(phases)-1] != "load" {
		t.Errorf("progress phases = %v, want to end with load", phases)
	}
}

func TestImportFiles_Cancelled(t *testing.T) {
	svc, _ := newTestImporter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.ImportFiles(ctx, []string{"x.fit"}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestDeleteSession(t *testing.T) {
	svc, db := newTestImporter(t)

	first, err := svc.ImportActivity(rideActivity(rideStart, 250, 600))
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.ImportActivity(rideActivity(rideStart.AddDate(0, 0, 1), 300, 600))
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.DeleteSession(context.Background(), second.Session.ID); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}

	pbs, _ := db.GetAllPersonalBests()
	for _, pb := range pbs {
		if pb.SessionID != first.Session.ID {
			t.Errorf("%s %v still held by deleted session", pb.Category, pb.Window)
		}
		if pb.Category == analysis.CategoryPeakPower && pb.Value != 250 {
			t.Errorf("%vs peak = %v, want fallback to 250", pb.Window, pb.Value)
		}
	}

	if n, _ := db.CountSessions(); n != 1 {
		t.Errorf("sessions = %d, want 1", n)
	}

	err = svc.DeleteSession(context.Background(), second.Session.ID)
	if !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("second delete error = %v, want ErrSessionNotFound", err)
	}
}
