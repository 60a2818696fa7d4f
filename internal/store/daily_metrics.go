package store

import (
	"fmt"
	"time"

	"trainingload/internal/analysis"
)

// ReplaceDailyMetrics stores a freshly computed load series, dropping the old one
func (db *DB) ReplaceDailyMetrics(metrics []analysis.DailyMetrics) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM daily_metrics`); err != nil {
		return fmt.Errorf("clearing daily metrics: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO daily_metrics (` + dailyMetricsColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, m := range metrics {
		if _, err := stmt.Exec(m.Date.Format(dateLayout), m.TSS, m.CTL, m.ATL, m.TSB, m.ACWR); err != nil {
			return fmt.Errorf("inserting %s: %w", m.Date.Format(dateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDailyMetrics returns the stored series oldest first
func (db *DB) GetDailyMetrics() ([]analysis.DailyMetrics, error) {
	rows, err := db.Query(`SELECT ` + dailyMetricsColumns + ` FROM daily_metrics ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []analysis.DailyMetrics
	for rows.Next() {
		var m analysis.DailyMetrics
		var date string
		if err := rows.Scan(&date, &m.TSS, &m.CTL, &m.ATL, &m.TSB, &m.ACWR); err != nil {
			return nil, err
		}
		m.Date, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parsing date %q: %w", date, err)
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
