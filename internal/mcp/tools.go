package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"trainingload/internal/analysis"
	"trainingload/internal/service"
	"trainingload/internal/store"
)

const (
	defaultHistoryDays  = 42
	defaultSessionLimit = 20
	dateLayout          = "2006-01-02"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_training_load",
		Description: "Get current fitness (CTL), fatigue (ATL), form (TSB) and ACWR with recent daily history",
	}, s.handleGetTrainingLoad)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_coaching",
		Description: "Classify current form, injury risk and load state with training advice",
	}, s.handleGetCoaching)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_personal_bests",
		Description: "List all-time personal bests, optionally filtered by sport",
	}, s.handleListPersonalBests)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_sessions",
		Description: "List imported training sessions, newest first",
	}, s.handleListSessions)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_session",
		Description: "Get a session with stress score, training effect, laps and intervals",
	}, s.handleGetSession)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "import_fit_file",
		Description: "Import a FIT activity file from the local filesystem",
	}, s.handleImportFitFile)
}

// Tool input/output types

type emptyInput struct{}

type trainingLoadInput struct {
	Days int `json:"days,omitempty" jsonschema:"number of days of history to return (default 42)"`
}

type dailyLoad struct {
	Date string  `json:"date"`
	TSS  float64 `json:"tss"`
	CTL  float64 `json:"ctl"`
	ATL  float64 `json:"atl"`
	TSB  float64 `json:"tsb"`
	ACWR float64 `json:"acwr"`
}

type trainingLoadOutput struct {
	Current *dailyLoad  `json:"current,omitempty"`
	History []dailyLoad `json:"history"`
	Message string      `json:"message,omitempty"`
}

type coachingOutput struct {
	Status           string  `json:"status"`
	InjuryRisk       string  `json:"injury_risk"`
	LoadState        string  `json:"load_state"`
	ACWR             float64 `json:"acwr"`
	TSB              float64 `json:"tsb"`
	CTL              float64 `json:"ctl"`
	ATL              float64 `json:"atl"`
	DataMaturityDays int     `json:"data_maturity_days"`
	Advice           string  `json:"advice"`
}

type personalBestsInput struct {
	Sport string `json:"sport,omitempty" jsonschema:"cycling, running or swimming"`
}

type personalBest struct {
	Sport     string  `json:"sport"`
	Category  string  `json:"category"`
	Label     string  `json:"label"`
	Window    float64 `json:"window"`
	Value     float64 `json:"value"`
	Display   string  `json:"display"`
	SessionID string  `json:"session_id"`
	Date      string  `json:"date"`
}

type personalBestsOutput struct {
	Records []personalBest `json:"records"`
}

type listSessionsInput struct {
	Limit  int `json:"limit,omitempty" jsonschema:"max results (default 20)"`
	Offset int `json:"offset,omitempty" jsonschema:"number of sessions to skip"`
}

type sessionSummary struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Sport           string   `json:"sport"`
	StartTime       string   `json:"start_time"`
	DurationSeconds float64  `json:"duration_seconds"`
	DistanceMeters  float64  `json:"distance_meters"`
	TSS             float64  `json:"tss"`
	StressMethod    string   `json:"stress_method"`
	AerobicEffect   *float64 `json:"aerobic_effect,omitempty"`
	AnaerobicEffect *float64 `json:"anaerobic_effect,omitempty"`
}

type listSessionsOutput struct {
	Sessions []sessionSummary `json:"sessions"`
	Total    int              `json:"total"`
}

type getSessionInput struct {
	ID string `json:"id" jsonschema:"session ID"`
}

type lapOutput struct {
	Index      int      `json:"index"`
	Intensity  string   `json:"intensity"`
	Distance   float64  `json:"distance_meters"`
	Duration   float64  `json:"duration_seconds"`
	Pace       *float64 `json:"pace_sec_per_km,omitempty"`
	IsInterval bool     `json:"is_interval"`
}

type intervalOutput struct {
	ActiveLap   int      `json:"active_lap"`
	RecoveryLap *int     `json:"recovery_lap,omitempty"`
	HRRecovery  *float64 `json:"hr_recovery,omitempty"`
}

type sessionDetailOutput struct {
	Session           sessionSummary   `json:"session"`
	NormalizedPower   *int             `json:"normalized_power,omitempty"`
	IntensityFactor   *float64         `json:"intensity_factor,omitempty"`
	GradeAdjustedPace *float64         `json:"grade_adjusted_pace,omitempty"`
	DeviceTSS         *float64         `json:"device_tss,omitempty"`
	TSSConfidence     string           `json:"tss_confidence,omitempty"`
	AerobicLabel      string           `json:"aerobic_label,omitempty"`
	AnaerobicLabel    string           `json:"anaerobic_label,omitempty"`
	Narrative         string           `json:"narrative,omitempty"`
	SensorWarnings    []string         `json:"sensor_warnings,omitempty"`
	PacingTrend       string           `json:"pacing_trend,omitempty"`
	PacingDriftPct    *float64         `json:"pacing_drift_pct,omitempty"`
	Laps              []lapOutput      `json:"laps,omitempty"`
	Intervals         []intervalOutput `json:"intervals,omitempty"`
	PersonalBests     []personalBest   `json:"personal_bests,omitempty"`
}

type importInput struct {
	Path string `json:"path" jsonschema:"absolute path to a .fit file"`
}

type importOutput struct {
	Session sessionSummary `json:"session"`
	NewPBs  []personalBest `json:"new_personal_bests"`
	Message string         `json:"message"`
}

// Tool handlers

func (s *Server) handleGetTrainingLoad(ctx context.Context, req *mcp.CallToolRequest, input trainingLoadInput) (*mcp.CallToolResult, trainingLoadOutput, error) {
	if input.Days <= 0 {
		input.Days = defaultHistoryDays
	}

	history, err := s.query.LoadHistory(s.now(), input.Days)
	if err != nil {
		return nil, trainingLoadOutput{}, fmt.Errorf("failed to compute training load: %w", err)
	}

	out := trainingLoadOutput{History: make([]dailyLoad, 0, len(history))}
	for _, m := range history {
		out.History = append(out.History, toDailyLoad(m))
	}
	if current, ok := analysis.CurrentLoad(history); ok {
		c := toDailyLoad(current)
		out.Current = &c
	} else {
		out.Message = "No sessions imported yet."
	}
	return nil, out, nil
}

func (s *Server) handleGetCoaching(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, coachingOutput, error) {
	rec, err := s.query.Coaching(s.now())
	if err != nil {
		return nil, coachingOutput{}, fmt.Errorf("failed to compute coaching: %w", err)
	}
	if rec == nil {
		return nil, coachingOutput{
			LoadState: string(analysis.LoadInsufficientData),
			Advice:    "Import some sessions to get coaching advice.",
		}, nil
	}
	return nil, coachingOutput{
		Status:           string(rec.Status),
		InjuryRisk:       string(rec.InjuryRisk),
		LoadState:        string(rec.LoadState),
		ACWR:             rec.ACWR,
		TSB:              rec.TSB,
		CTL:              rec.CTL,
		ATL:              rec.ATL,
		DataMaturityDays: rec.DataMaturityDays,
		Advice:           rec.Advice,
	}, nil
}

func (s *Server) handleListPersonalBests(ctx context.Context, req *mcp.CallToolRequest, input personalBestsInput) (*mcp.CallToolResult, personalBestsOutput, error) {
	data, err := s.query.GetPersonalBests()
	if err != nil {
		return nil, personalBestsOutput{}, fmt.Errorf("failed to list personal bests: %w", err)
	}

	var sport analysis.Sport
	if input.Sport != "" {
		sport = analysis.ParseSport(input.Sport)
	}

	out := personalBestsOutput{Records: []personalBest{}}
	for _, group := range [][]service.PersonalBestDisplay{data.PeakPower, data.FastestDistance, data.Other} {
		for _, d := range group {
			if sport != "" && d.Record.Sport != sport {
				continue
			}
			out.Records = append(out.Records, toPersonalBest(d))
		}
	}
	return nil, out, nil
}

func (s *Server) handleListSessions(ctx context.Context, req *mcp.CallToolRequest, input listSessionsInput) (*mcp.CallToolResult, listSessionsOutput, error) {
	if input.Limit <= 0 {
		input.Limit = defaultSessionLimit
	}
	if input.Offset < 0 {
		input.Offset = 0
	}

	sessions, err := s.query.ListSessions(input.Limit, input.Offset)
	if err != nil {
		return nil, listSessionsOutput{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	total, err := s.query.CountSessions()
	if err != nil {
		return nil, listSessionsOutput{}, fmt.Errorf("failed to count sessions: %w", err)
	}

	out := listSessionsOutput{Sessions: make([]sessionSummary, 0, len(sessions)), Total: total}
	for _, session := range sessions {
		out.Sessions = append(out.Sessions, toSessionSummary(session))
	}
	return nil, out, nil
}

func (s *Server) handleGetSession(ctx context.Context, req *mcp.CallToolRequest, input getSessionInput) (*mcp.CallToolResult, sessionDetailOutput, error) {
	detail, err := s.query.GetSessionDetail(input.ID)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil, sessionDetailOutput{}, fmt.Errorf("session not found: %s", input.ID)
	}
	if err != nil {
		return nil, sessionDetailOutput{}, fmt.Errorf("failed to load session: %w", err)
	}

	session := detail.Session
	out := sessionDetailOutput{
		Session:           toSessionSummary(session),
		NormalizedPower:   session.NormalizedPower,
		IntensityFactor:   session.IntensityFactor,
		GradeAdjustedPace: session.GradeAdjustedPace,
		DeviceTSS:         session.DeviceTSS,
		AerobicLabel:      detail.AerobicLabel,
		AnaerobicLabel:    detail.AnaerobicLabel,
		Narrative:         detail.Narrative,
		SensorWarnings:    session.SensorWarnings,
	}
	if session.TSSComparison != nil {
		out.TSSConfidence = string(session.TSSComparison.Confidence)
	}
	if len(detail.Laps) > 0 {
		out.PacingTrend = string(detail.Pacing.Trend)
		out.PacingDriftPct = detail.Pacing.DriftPct
	}
	for _, la := range detail.Laps {
		out.Laps = append(out.Laps, lapOutput{
			Index:      la.Lap.Index,
			Intensity:  string(la.Lap.Intensity),
			Distance:   la.Lap.Distance,
			Duration:   la.Lap.MovingTime,
			Pace:       la.Pace,
			IsInterval: la.IsInterval,
		})
	}
	for _, pair := range detail.Intervals {
		iv := intervalOutput{ActiveLap: pair.Active.Lap.Index, HRRecovery: pair.HRRecovery}
		if pair.Recovery != nil {
			idx := pair.Recovery.Lap.Index
			iv.RecoveryLap = &idx
		}
		out.Intervals = append(out.Intervals, iv)
	}
	for _, pb := range detail.PersonalBests {
		out.PersonalBests = append(out.PersonalBests, toPersonalBest(service.FormatPersonalBest(pb)))
	}
	return nil, out, nil
}

func (s *Server) handleImportFitFile(ctx context.Context, req *mcp.CallToolRequest, input importInput) (*mcp.CallToolResult, importOutput, error) {
	if s.importer == nil {
		return nil, importOutput{}, errors.New("import is not available")
	}

	outcome, err := s.importer.ImportFile(input.Path)
	if err != nil {
		return nil, importOutput{}, fmt.Errorf("failed to import %s: %w", input.Path, err)
	}
	if _, err := s.importer.RecomputeLoad(s.now()); err != nil {
		s.log.Warnw("Load refresh after import failed", "error", err)
	}

	out := importOutput{
		Session: toSessionSummary(outcome.Session),
		NewPBs:  []personalBest{},
	}
	for _, ip := range outcome.NewPBs {
		out.NewPBs = append(out.NewPBs, toPersonalBest(service.FormatPersonalBest(ip.PB())))
	}
	out.Message = fmt.Sprintf("Imported %s (TSS %.1f, %d new personal bests)", outcome.Session.Name, outcome.Session.TSS, len(out.NewPBs))
	return nil, out, nil
}

func toDailyLoad(m analysis.DailyMetrics) dailyLoad {
	return dailyLoad{
		Date: m.Date.Format(dateLayout),
		TSS:  m.TSS,
		CTL:  m.CTL,
		ATL:  m.ATL,
		TSB:  m.TSB,
		ACWR: m.ACWR,
	}
}

func toPersonalBest(d service.PersonalBestDisplay) personalBest {
	return personalBest{
		Sport:     string(d.Record.Sport),
		Category:  string(d.Record.Category),
		Label:     d.Label,
		Window:    d.Record.Window,
		Value:     d.Record.Value,
		Display:   d.Value,
		SessionID: d.Record.SessionID,
		Date:      d.Record.Date.Format(dateLayout),
	}
}

func toSessionSummary(s analysis.TrainingSession) sessionSummary {
	return sessionSummary{
		ID:              s.ID,
		Name:            s.Name,
		Sport:           string(s.Sport),
		StartTime:       s.Date.UTC().Format("2006-01-02T15:04:05Z"),
		DurationSeconds: s.DurationSeconds,
		DistanceMeters:  s.DistanceMeters,
		TSS:             s.TSS,
		StressMethod:    string(s.StressMethod),
		AerobicEffect:   s.AerobicEffect,
		AnaerobicEffect: s.AnaerobicEffect,
	}
}
