package mcp

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"trainingload/internal/analysis"
	"trainingload/internal/config"
	"trainingload/internal/fitfile"
	"trainingload/internal/service"
	"trainingload/internal/store"
)

var start = time.Date(2024, 6, 3, 7, 0, 0, 0, time.UTC)

func intPtr(i int) *int { return &i }

// setupServer returns a server whose clock sits two days after start
func setupServer(t *testing.T) (*Server, *service.ImportService) {
	t.Helper()

	db := store.NewTestDB(t)
	athlete := config.AthleteConfig{FTP: 250, RestingHR: 50, MaxHR: 185, Gender: "male"}
	importer := service.NewImportService(db, athlete, zap.NewNop().Sugar())
	query := service.NewQueryService(db, athlete)

	s := NewServer(query, importer, zap.NewNop().Sugar())
	s.now = func() time.Time { return start.AddDate(0, 0, 2) }
	return s, importer
}

func importRide(t *testing.T, importer *service.ImportService, at time.Time) analysis.TrainingSession {
	t.Helper()

	records := make([]analysis.SessionRecord, 3600)
	for i := range records {
		d := float64(i) * 8
		records[i] = analysis.SessionRecord{Timestamp: float64(i), HeartRate: intPtr(140), Power: intPtr(250), Distance: &d}
	}
	outcome, err := importer.ImportActivity(&fitfile.Activity{
		Meta: analysis.SessionMeta{
			Sport:           analysis.SportCycling,
			StartTime:       at,
			DurationSeconds: 3600,
		},
		Records: records,
		Laps: []analysis.SessionLap{
			{Index: 0, ElapsedTime: 1800, MovingTime: 1800, Distance: 14400, Intensity: analysis.IntensityActive},
			{Index: 1, StartOffset: 1800, ElapsedTime: 1800, MovingTime: 1800, Distance: 14400, Intensity: analysis.IntensityCooldown},
		},
	})
	if err != nil {
		t.Fatalf("ImportActivity: %v", err)
	}
	return outcome.Session
}

func TestNewServer(t *testing.T) {
	s, _ := setupServer(t)
	if s.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if s.query == nil || s.importer == nil {
		t.Error("Expected services to be wired")
	}
}

func TestHandleGetTrainingLoad(t *testing.T) {
	s, importer := setupServer(t)
	ctx := context.Background()

	_, empty, err := s.handleGetTrainingLoad(ctx, &mcp.CallToolRequest{}, trainingLoadInput{})
	if err != nil {
		t.Fatalf("handleGetTrainingLoad: %v", err)
	}
	if empty.Current != nil || empty.Message == "" {
		t.Errorf("empty output = %+v", empty)
	}

	importRide(t, importer, start)

	_, out, err := s.handleGetTrainingLoad(ctx, &mcp.CallToolRequest{}, trainingLoadInput{Days: 2})
	if err != nil {
		t.Fatalf("handleGetTrainingLoad: %v", err)
	}
	if len(out.History) != 2 {
		t.Errorf("history = %d rows, want 2", len(out.History))
	}
	if out.Current == nil || out.Current.Date != "2024-06-05" {
		t.Fatalf("current = %+v", out.Current)
	}
	// Two rest days of decay after one 100 TSS day
	wantCTL := 100 * 2.0 / 43 * math.Pow(41.0/43, 2)
	if math.Abs(out.Current.CTL-wantCTL) > 1e-9 {
		t.Errorf("CTL = %v, want %v", out.Current.CTL, wantCTL)
	}
}

func TestHandleGetCoaching(t *testing.T) {
	s, importer := setupServer(t)
	ctx := context.Background()

	_, out, err := s.handleGetCoaching(ctx, &mcp.CallToolRequest{}, emptyInput{})
	if err != nil {
		t.Fatalf("handleGetCoaching: %v", err)
	}
	if out.LoadState != string(analysis.LoadInsufficientData) || out.Advice == "" {
		t.Errorf("empty coaching = %+v", out)
	}

	importRide(t, importer, start)
	_, out, err = s.handleGetCoaching(ctx, &mcp.CallToolRequest{}, emptyInput{})
	if err != nil {
		t.Fatalf("handleGetCoaching: %v", err)
	}
	if out.DataMaturityDays != 3 || out.Status == "" || out.Advice == "" {
		t.Errorf("coaching = %+v", out)
	}
}

func TestHandleListPersonalBests(t *testing.T) {
	s, importer := setupServer(t)
	importRide(t, importer, start)
	ctx := context.Background()

	tests := []struct {
		name  string
		sport string
		empty bool
	}{
		{"all sports", "", false},
		{"cycling", "cycling", false},
		{"running has none", "running", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := s.handleListPersonalBests(ctx, &mcp.CallToolRequest{}, personalBestsInput{Sport: tt.sport})
			if err != nil {
				t.Fatalf("handleListPersonalBests: %v", err)
			}
			if (len(out.Records) == 0) != tt.empty {
				t.Errorf("records = %d, want empty %v", len(out.Records), tt.empty)
			}
		})
	}
}

func TestHandleListSessions(t *testing.T) {
	s, importer := setupServer(t)
	importRide(t, importer, start)
	importRide(t, importer, start.AddDate(0, 0, 1))

	_, out, err := s.handleListSessions(context.Background(), &mcp.CallToolRequest{}, listSessionsInput{Limit: 1})
	if err != nil {
		t.Fatalf("handleListSessions: %v", err)
	}
	if out.Total != 2 || len(out.Sessions) != 1 {
		t.Fatalf("output = %+v", out)
	}
	if out.Sessions[0].StartTime != "2024-06-04T07:00:00Z" {
		t.Errorf("newest first expected, got %s", out.Sessions[0].StartTime)
	}
}

func TestHandleGetSession(t *testing.T) {
	s, importer := setupServer(t)
	session := importRide(t, importer, start)
	ctx := context.Background()

	_, out, err := s.handleGetSession(ctx, &mcp.CallToolRequest{}, getSessionInput{ID: session.ID})
	if err != nil {
		t.Fatalf("handleGetSession: %v", err)
	}
	if out.Session.ID != session.ID || out.NormalizedPower == nil || *out.NormalizedPower != 250 {
		t.Errorf("session = %+v", out)
	}
	if len(out.Laps) != 2 || !out.Laps[0].IsInterval {
		t.Errorf("laps = %+v", out.Laps)
	}
	if len(out.Intervals) != 1 || out.Intervals[0].RecoveryLap == nil || *out.Intervals[0].RecoveryLap != 1 {
		t.Errorf("intervals = %+v", out.Intervals)
	}
	if len(out.PersonalBests) == 0 {
		t.Error("expected the session's personal bests")
	}

	_, _, err = s.handleGetSession(ctx, &mcp.CallToolRequest{}, getSessionInput{ID: "missing"})
	if err == nil || !strings.Contains(err.Error(), "session not found") {
		t.Errorf("err = %v, want session not found", err)
	}
}

func TestHandleImportFitFile_Missing(t *testing.T) {
	s, _ := setupServer(t)
	_, _, err := s.handleImportFitFile(context.Background(), &mcp.CallToolRequest{}, importInput{Path: "/nonexistent/ride.fit"})
	if err == nil || !strings.Contains(err.Error(), "failed to import") {
		t.Errorf("err = %v, want import failure", err)
	}
}

func TestHandleDashboardResource(t *testing.T) {
	s, importer := setupServer(t)
	importRide(t, importer, start)

	res, err := s.handleDashboardResource(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleDashboardResource: %v", err)
	}
	if len(res.Contents) != 1 || res.Contents[0].URI != dashboardURI {
		t.Fatalf("contents = %+v", res.Contents)
	}

	var body map[string]interface{}
	if err := json.Unmarshal([]byte(res.Contents[0].Text), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	for _, key := range []string{"load", "coaching", "week", "recent_sessions"} {
		if _, ok := body[key]; !ok {
			t.Errorf("missing %q in dashboard", key)
		}
	}
}
