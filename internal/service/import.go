package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"trainingload/internal/analysis"
	"trainingload/internal/config"
	"trainingload/internal/fitfile"
	"trainingload/internal/store"
)

// ErrDuplicateSession is returned when a file holds a session that was already imported
var ErrDuplicateSession = errors.New("session already imported")

// ImportService turns activity files into scored, stored sessions
type ImportService struct {
	store   *store.DB
	profile analysis.AthleteProfile
	log     *zap.SugaredLogger
	now     func() time.Time

	// pbMu serializes the read-detect-write of personal bests
	pbMu sync.Mutex
}

// NewImportService creates an import service scoring sessions against the athlete config
func NewImportService(db *store.DB, athleteCfg config.AthleteConfig, log *zap.SugaredLogger) *ImportService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ImportService{
		store:   db,
		profile: athleteCfg.Profile(),
		log:     log,
		now:     time.Now,
	}
}

// ImportProgress reports progress during a batch import
type ImportProgress struct {
	Phase       string // "import", "load"
	Total       int
	Completed   int
	CurrentFile string
	Error       error
}

// ImportResult contains the results of a batch import
type ImportResult struct {
	Imported   int
	Duplicates int
	NewPBs     []analysis.ImprovedPB
	Errors     []error
}

// ImportOutcome is the result of importing one activity
type ImportOutcome struct {
	Session analysis.TrainingSession
	NewPBs  []analysis.ImprovedPB
}

// ImportFile decodes and imports a single FIT file
func (s *ImportService) ImportFile(path string) (*ImportOutcome, error) {
	activity, err := fitfile.DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return s.ImportActivity(activity)
}

// ImportActivity scores a decoded activity, stores it and updates personal bests.
// The daily load series is not refreshed; call RecomputeLoad afterwards.
func (s *ImportService) ImportActivity(a *fitfile.Activity) (*ImportOutcome, error) {
	meta := a.Meta
	if !meta.StartTime.IsZero() {
		existing, err := s.store.FindSessionByStart(meta.Sport, meta.StartTime)
		switch {
		case err == nil:
			return nil, fmt.Errorf("%w: matches %s", ErrDuplicateSession, existing.ID)
		case !errors.Is(err, store.ErrSessionNotFound):
			return nil, fmt.Errorf("checking for duplicate: %w", err)
		}
	}
	meta.ID = uuid.NewString()

	ctl, err := s.ctlBefore(meta.StartTime)
	if err != nil {
		return nil, err
	}

	session := analysis.SummarizeSession(meta, a.Records, s.profile, ctl)
	improved, err := s.saveWithPersonalBests(&session, a)
	if err != nil {
		return nil, err
	}

	s.log.Infow("Imported session",
		"id", session.ID,
		"sport", session.Sport,
		"tss", session.TSS,
		"method", session.StressMethod,
		"warnings", len(session.SensorWarnings),
		"new_pbs", len(improved))

	return &ImportOutcome{Session: session, NewPBs: improved}, nil
}

// ImportFiles imports files one at a time, then refreshes the load series.
// Per-file failures are collected in the result; only cancellation and the
// final load refresh abort the batch.
func (s *ImportService) ImportFiles(ctx context.Context, paths []string, progress chan<- ImportProgress) (*ImportResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &ImportResult{}
	for i, path := range paths {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if progress != nil {
			progress <- ImportProgress{
				Phase:       "import",
				Total:       len(paths),
				Completed:   i,
				CurrentFile: filepath.Base(path),
			}
		}

		outcome, err := s.ImportFile(path)
		switch {
		case errors.Is(err, ErrDuplicateSession):
			result.Duplicates++
			s.log.Infow("Skipped duplicate", "file", path)
			continue
		case err != nil:
			s.log.Warnw("Import failed", "file", path, "error", err)
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", filepath.Base(path), err))
			if progress != nil {
				progress <- ImportProgress{Phase: "import", Total: len(paths), Completed: i, CurrentFile: filepath.Base(path), Error: err}
			}
			continue
		}

		result.Imported++
		result.NewPBs = append(result.NewPBs, outcome.NewPBs...)
	}

	if progress != nil {
		progress <- ImportProgress{Phase: "load", Total: len(paths), Completed: len(paths)}
	}
	if result.Imported > 0 {
		if _, err := s.RecomputeLoad(s.now()); err != nil {
			return result, fmt.Errorf("recomputing training load: %w", err)
		}
	}
	return result, nil
}

// RecomputeLoad rebuilds and stores the daily load series through today
func (s *ImportService) RecomputeLoad(today time.Time) ([]analysis.DailyMetrics, error) {
	sessions, err := s.store.AllSessions()
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}
	metrics := analysis.CalculateTrainingLoad(sessions, today)
	if err := s.store.ReplaceDailyMetrics(metrics); err != nil {
		return nil, err
	}
	s.log.Infow("Recomputed training load", "days", len(metrics), "sessions", len(sessions))
	return metrics, nil
}

// RebuildPersonalBests recomputes every record from stored samples
func (s *ImportService) RebuildPersonalBests(ctx context.Context) ([]analysis.PersonalBest, error) {
	sessions, err := s.store.AllSessions()
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}

	data := make([]analysis.SessionData, 0, len(sessions))
	for _, session := range sessions {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		records, err := s.store.GetRecords(session.ID)
		if err != nil {
			return nil, fmt.Errorf("loading records for %s: %w", session.ID, err)
		}
		data = append(data, analysis.SessionData{
			SessionID: session.ID,
			Sport:     session.Sport,
			Date:      session.Date,
			Records:   records,
		})
	}

	s.pbMu.Lock()
	defer s.pbMu.Unlock()

	pbs := analysis.ComputePBsForSessions(data)
	if err := s.store.ReplacePersonalBests(pbs); err != nil {
		return nil, err
	}
	s.log.Infow("Rebuilt personal bests", "records", len(pbs), "sessions", len(sessions))
	return pbs, nil
}

// RecalculateTrainingEffects rescores training effect with the CTL each session
// actually started from. Needed after importing history out of order.
func (s *ImportService) RecalculateTrainingEffects(ctx context.Context) (int, error) {
	sessions, err := s.store.AllSessions()
	if err != nil {
		return 0, fmt.Errorf("loading sessions: %w", err)
	}
	if len(sessions) == 0 {
		return 0, nil
	}
	metrics := analysis.CalculateTrainingLoad(sessions, sessions[len(sessions)-1].Date)

	updated := 0
	for _, session := range sessions {
		select {
		case <-ctx.Done():
			return updated, ctx.Err()
		default:
		}

		records, err := s.store.GetRecords(session.ID)
		if err != nil {
			return updated, fmt.Errorf("loading records for %s: %w", session.ID, err)
		}
		te := analysis.EstimateTrainingEffect(records, s.profile, ctlOn(metrics, session.Date))
		var aerobic, anaerobic *float64
		if te != nil {
			aerobic, anaerobic = &te.Aerobic, &te.Anaerobic
		}
		if err := s.store.UpdateTrainingEffect(session.ID, aerobic, anaerobic); err != nil {
			return updated, fmt.Errorf("updating %s: %w", session.ID, err)
		}
		updated++
	}
	return updated, nil
}

// Rebuild recomputes everything derived from stored sessions
func (s *ImportService) Rebuild(ctx context.Context) error {
	if _, err := s.RecalculateTrainingEffects(ctx); err != nil {
		return fmt.Errorf("recalculating training effect: %w", err)
	}
	if _, err := s.RebuildPersonalBests(ctx); err != nil {
		return fmt.Errorf("rebuilding personal bests: %w", err)
	}
	if _, err := s.RecomputeLoad(s.now()); err != nil {
		return fmt.Errorf("recomputing training load: %w", err)
	}
	return nil
}

// DeleteSession removes a session and rebuilds everything that depended on it.
// Records it held fall back to the next best stored session.
func (s *ImportService) DeleteSession(ctx context.Context, id string) error {
	if err := s.store.DeleteSession(id); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	s.log.Infow("Deleted session", "id", id)
	return s.Rebuild(ctx)
}

// saveWithPersonalBests stores the session and the records it improved in
// one transaction, so a failed import leaves neither behind
func (s *ImportService) saveWithPersonalBests(session *analysis.TrainingSession, a *fitfile.Activity) ([]analysis.ImprovedPB, error) {
	s.pbMu.Lock()
	defer s.pbMu.Unlock()

	existing, err := s.store.GetAllPersonalBests()
	if err != nil {
		return nil, fmt.Errorf("loading personal bests: %w", err)
	}

	improved := analysis.DetectNewPBs(analysis.SessionData{
		SessionID: session.ID,
		Sport:     session.Sport,
		Date:      session.Date,
		Records:   a.Records,
	}, existing)

	if err := s.store.SaveImportedSession(session, a.Records, a.Laps, improved); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return improved, nil
}

// ctlBefore returns the fitness the athlete carried into start's day
func (s *ImportService) ctlBefore(start time.Time) (float64, error) {
	if start.IsZero() {
		return 0, nil
	}
	sessions, err := s.store.AllSessions()
	if err != nil {
		return 0, fmt.Errorf("loading sessions: %w", err)
	}
	return ctlOn(analysis.CalculateTrainingLoad(sessions, start), start), nil
}

// ctlOn looks up the CTL at the end of the day before day
func ctlOn(metrics []analysis.DailyMetrics, day time.Time) float64 {
	m, ok := analysis.LoadOn(metrics, day.AddDate(0, 0, -1))
	if !ok {
		return 0
	}
	return m.CTL
}
