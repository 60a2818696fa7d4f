package store

import (
	"database/sql"
	"fmt"

	"trainingload/internal/analysis"
)

func insertRecords(tx *sql.Tx, sessionID string, records []analysis.SessionRecord) error {
	stmt, err := tx.Prepare(`INSERT INTO session_records (session_id, seq, ` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		_, err := stmt.Exec(sessionID, i, r.Timestamp, r.HeartRate, r.Power, r.Cadence,
			r.Speed, r.Distance, r.Elevation, r.Grade)
		if err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}
	return nil
}

// GetRecords retrieves all samples for a session in order
func (db *DB) GetRecords(sessionID string) ([]analysis.SessionRecord, error) {
	rows, err := db.Query(`SELECT `+recordColumns+` FROM session_records
		WHERE session_id = ?
		ORDER BY seq`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []analysis.SessionRecord
	for rows.Next() {
		var r analysis.SessionRecord
		err := rows.Scan(&r.Timestamp, &r.HeartRate, &r.Power, &r.Cadence,
			&r.Speed, &r.Distance, &r.Elevation, &r.Grade)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func insertLaps(tx *sql.Tx, sessionID string, laps []analysis.SessionLap) error {
	stmt, err := tx.Prepare(`INSERT INTO session_laps (session_id, ` + lapColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, l := range laps {
		_, err := stmt.Exec(sessionID, l.Index, l.StartOffset, l.ElapsedTime, l.MovingTime, l.Distance,
			l.AvgHeartRate, l.MaxHeartRate, l.MinHeartRate, l.AvgCadence, l.AvgSpeed, string(l.Intensity))
		if err != nil {
			return fmt.Errorf("inserting lap %d: %w", l.Index, err)
		}
	}
	return nil
}

// GetLaps retrieves the laps of a session in order
func (db *DB) GetLaps(sessionID string) ([]analysis.SessionLap, error) {
	rows, err := db.Query(`SELECT `+lapColumns+` FROM session_laps
		WHERE session_id = ?
		ORDER BY lap_index`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var laps []analysis.SessionLap
	for rows.Next() {
		l, err := scanLap(rows)
		if err != nil {
			return nil, err
		}
		laps = append(laps, l)
	}
	return laps, rows.Err()
}
