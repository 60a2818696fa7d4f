package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Sessions (one row per imported activity file)
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			sport TEXT NOT NULL,
			start_time TEXT NOT NULL,
			duration REAL NOT NULL,
			moving_time REAL NOT NULL,
			distance REAL NOT NULL,
			elevation_gain REAL NOT NULL,
			avg_heart_rate REAL,
			max_heart_rate REAL,
			avg_power REAL,
			avg_cadence REAL,
			avg_speed REAL,
			tss REAL NOT NULL,
			stress_method TEXT NOT NULL,
			normalized_power INTEGER,
			intensity_factor REAL,
			grade_adjusted_pace REAL,
			device_tss REAL,
			aerobic_effect REAL,
			anaerobic_effect REAL,
			sensor_warnings TEXT NOT NULL DEFAULT '[]',
			imported_at TEXT DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (sport, start_time)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_start_time ON sessions(start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_sport ON sessions(sport)`,

		// Session records (per-sample data)
		`CREATE TABLE IF NOT EXISTS session_records (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			timestamp REAL NOT NULL,
			heart_rate INTEGER,
			power INTEGER,
			cadence INTEGER,
			speed REAL,
			distance REAL,
			elevation REAL,
			grade REAL,
			PRIMARY KEY (session_id, seq),
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		)`,

		// Laps
		`CREATE TABLE IF NOT EXISTS session_laps (
			session_id TEXT NOT NULL,
			lap_index INTEGER NOT NULL,
			start_offset REAL NOT NULL,
			elapsed_time REAL NOT NULL,
			moving_time REAL NOT NULL,
			distance REAL NOT NULL,
			avg_heart_rate REAL,
			max_heart_rate REAL,
			min_heart_rate REAL,
			avg_cadence REAL,
			avg_speed REAL,
			intensity TEXT NOT NULL,
			PRIMARY KEY (session_id, lap_index),
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		)`,

		// Personal bests (one live record per sport/category/window)
		`CREATE TABLE IF NOT EXISTS personal_bests (
			sport TEXT NOT NULL,
			category TEXT NOT NULL,
			window_size REAL NOT NULL,
			value REAL NOT NULL,
			session_id TEXT NOT NULL,
			achieved_at TEXT NOT NULL,
			PRIMARY KEY (sport, category, window_size),
			FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
		)`,

		`CREATE INDEX IF NOT EXISTS idx_personal_bests_session ON personal_bests(session_id)`,

		// Daily training load
		`CREATE TABLE IF NOT EXISTS daily_metrics (
			date TEXT PRIMARY KEY,
			tss REAL NOT NULL,
			ctl REAL NOT NULL,
			atl REAL NOT NULL,
			tsb REAL NOT NULL,
			acwr REAL NOT NULL,
			computed_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
