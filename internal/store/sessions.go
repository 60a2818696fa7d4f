package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"trainingload/internal/analysis"
)

// SaveSession stores a session with its records and laps in one transaction.
// An existing session with the same ID is updated in place so the personal
// bests it holds survive.
func (db *DB) SaveSession(s *analysis.TrainingSession, records []analysis.SessionRecord, laps []analysis.SessionLap) error {
	return db.saveSession(s, records, laps, nil)
}

// SaveImportedSession stores a session together with the personal bests it
// improved. Nothing is written if any part fails.
func (db *DB) SaveImportedSession(s *analysis.TrainingSession, records []analysis.SessionRecord, laps []analysis.SessionLap, improved []analysis.ImprovedPB) error {
	return db.saveSession(s, records, laps, improved)
}

func (db *DB) saveSession(s *analysis.TrainingSession, records []analysis.SessionRecord, laps []analysis.SessionLap, improved []analysis.ImprovedPB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := writeSession(tx, s, records, laps); err != nil {
		return err
	}
	if len(improved) > 0 {
		pbs := make([]analysis.PersonalBest, len(improved))
		for i, ip := range improved {
			pbs[i] = ip.PB()
		}
		if err := upsertPersonalBests(tx, pbs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func writeSession(tx *sql.Tx, s *analysis.TrainingSession, records []analysis.SessionRecord, laps []analysis.SessionLap) error {
	warnings := s.SensorWarnings
	if warnings == nil {
		warnings = []string{}
	}
	warningsJSON, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("encoding sensor warnings: %w", err)
	}

	_, err = tx.Exec(`INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			sport = excluded.sport,
			start_time = excluded.start_time,
			duration = excluded.duration,
			moving_time = excluded.moving_time,
			distance = excluded.distance,
			elevation_gain = excluded.elevation_gain,
			avg_heart_rate = excluded.avg_heart_rate,
			max_heart_rate = excluded.max_heart_rate,
			avg_power = excluded.avg_power,
			avg_cadence = excluded.avg_cadence,
			avg_speed = excluded.avg_speed,
			tss = excluded.tss,
			stress_method = excluded.stress_method,
			normalized_power = excluded.normalized_power,
			intensity_factor = excluded.intensity_factor,
			grade_adjusted_pace = excluded.grade_adjusted_pace,
			device_tss = excluded.device_tss,
			aerobic_effect = excluded.aerobic_effect,
			anaerobic_effect = excluded.anaerobic_effect,
			sensor_warnings = excluded.sensor_warnings`,
		s.ID, s.Name, string(s.Sport), formatTime(s.Date), s.DurationSeconds, s.MovingSeconds, s.DistanceMeters, s.ElevationGain,
		s.AvgHeartRate, s.MaxHeartRate, s.AvgPower, s.AvgCadence, s.AvgSpeed,
		s.TSS, string(s.StressMethod), s.NormalizedPower, s.IntensityFactor, s.GradeAdjustedPace,
		s.DeviceTSS, s.AerobicEffect, s.AnaerobicEffect, string(warningsJSON),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	// Samples and laps are replaced wholesale
	for _, table := range []string{"session_records", "session_laps"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE session_id = ?`, s.ID); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	if err := insertRecords(tx, s.ID, records); err != nil {
		return err
	}
	return insertLaps(tx, s.ID, laps)
}

// GetSession retrieves a session by ID
func (db *DB) GetSession(id string) (*analysis.TrainingSession, error) {
	row := db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return s, err
}

// FindSessionByStart looks up the session of a sport that started at start
func (db *DB) FindSessionByStart(sport analysis.Sport, start time.Time) (*analysis.TrainingSession, error) {
	row := db.QueryRow(`SELECT `+sessionColumns+` FROM sessions WHERE sport = ? AND start_time = ?`,
		string(sport), formatTime(start))
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return s, err
}

// ListSessions returns sessions newest first
func (db *DB) ListSessions(limit, offset int) ([]analysis.TrainingSession, error) {
	rows, err := db.Query(`SELECT `+sessionColumns+` FROM sessions
		ORDER BY start_time DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// AllSessions returns every session oldest first
func (db *DB) AllSessions() ([]analysis.TrainingSession, error) {
	rows, err := db.Query(`SELECT ` + sessionColumns + ` FROM sessions ORDER BY start_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// SessionsBetween returns sessions starting in [from, to) oldest first
func (db *DB) SessionsBetween(from, to time.Time) ([]analysis.TrainingSession, error) {
	rows, err := db.Query(`SELECT `+sessionColumns+` FROM sessions
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time`, formatTime(from), formatTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSessions(rows)
}

// CountSessions returns the total number of sessions
func (db *DB) CountSessions() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count)
	return count, err
}

// RenameSession updates a session's display name
func (db *DB) RenameSession(id, name string) error {
	result, err := db.Exec(`UPDATE sessions SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// UpdateTrainingEffect stores recomputed training-effect scores
func (db *DB) UpdateTrainingEffect(id string, aerobic, anaerobic *float64) error {
	_, err := db.Exec(`UPDATE sessions SET aerobic_effect = ?, anaerobic_effect = ? WHERE id = ?`,
		aerobic, anaerobic, id)
	return err
}

// DeleteSession removes a session; records, laps and personal bests cascade
func (db *DB) DeleteSession(id string) error {
	result, err := db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func scanSessions(rows *sql.Rows) ([]analysis.TrainingSession, error) {
	var sessions []analysis.TrainingSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}
