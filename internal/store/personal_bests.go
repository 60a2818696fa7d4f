package store

import (
	"database/sql"
	"fmt"

	"trainingload/internal/analysis"
)

// ReplacePersonalBests swaps the whole record table for pbs. Imports add
// records through SaveImportedSession instead.
func (db *DB) ReplacePersonalBests(pbs []analysis.PersonalBest) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM personal_bests`); err != nil {
		return fmt.Errorf("clearing personal bests: %w", err)
	}
	if err := upsertPersonalBests(tx, pbs); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertPersonalBests(tx *sql.Tx, pbs []analysis.PersonalBest) error {
	stmt, err := tx.Prepare(`INSERT INTO personal_bests (` + personalBestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(sport, category, window_size) DO UPDATE SET
			value = excluded.value,
			session_id = excluded.session_id,
			achieved_at = excluded.achieved_at`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, pb := range pbs {
		_, err := stmt.Exec(string(pb.Sport), string(pb.Category), pb.Window, pb.Value, pb.SessionID, formatTime(pb.Date))
		if err != nil {
			return fmt.Errorf("saving %s %s %v: %w", pb.Sport, pb.Category, pb.Window, err)
		}
	}
	return nil
}

// GetAllPersonalBests retrieves every live record
func (db *DB) GetAllPersonalBests() ([]analysis.PersonalBest, error) {
	rows, err := db.Query(`SELECT ` + personalBestColumns + ` FROM personal_bests
		ORDER BY sport, category, window_size`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPersonalBests(rows)
}

// GetPersonalBestsForSession retrieves the live records held by a session
func (db *DB) GetPersonalBestsForSession(sessionID string) ([]analysis.PersonalBest, error) {
	rows, err := db.Query(`SELECT `+personalBestColumns+` FROM personal_bests
		WHERE session_id = ?
		ORDER BY sport, category, window_size`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPersonalBests(rows)
}

func scanPersonalBests(rows *sql.Rows) ([]analysis.PersonalBest, error) {
	var pbs []analysis.PersonalBest
	for rows.Next() {
		pb, err := scanPersonalBest(rows)
		if err != nil {
			return nil, err
		}
		pbs = append(pbs, pb)
	}
	return pbs, rows.Err()
}
