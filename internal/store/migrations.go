package store

import "database/sql"

// migrate runs all database migrations. Schema changes must be additive only:
// the export document produced from these tables has to stay readable by older
// builds.
func migrate(db *sql.DB) error {
	migrations := []string{
		// Settings (free-form key/value config entries)
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Activities (summary data from the activities endpoint)
		`CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			type TEXT NOT NULL,
			start_date_local TEXT NOT NULL,
			local_date TEXT NOT NULL,
			distance REAL NOT NULL,
			moving_time INTEGER NOT NULL,
			average_speed REAL,
			average_heartrate REAL,
			average_power REAL,
			training_load REAL,
			tags TEXT,
			detail_synced INTEGER DEFAULT 0,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_local_date ON activities(local_date)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_type ON activities(type)`,

		// Activity details (interval splits and messages, one-to-one extension
		// of the owning activity, fetched lazily because the payload is large)
		`CREATE TABLE IF NOT EXISTS activity_details (
			activity_id TEXT PRIMARY KEY,
			intervals TEXT,
			messages TEXT,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
		)`,

		// Wellness (one row per calendar day, keyed by the date itself so that
		// range lookups are string-range comparable)
		`CREATE TABLE IF NOT EXISTS wellness (
			id TEXT PRIMARY KEY,
			ctl REAL,
			atl REAL,
			resting_hr REAL,
			hrv REAL,
			sleep_seconds INTEGER,
			sleep_quality INTEGER,
			weight REAL,
			soreness INTEGER,
			mood INTEGER,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		// Cross-training (cycling and strength sessions, merged and queried
		// independently of running activities)
		`CREATE TABLE IF NOT EXISTS cross_training (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			category TEXT NOT NULL,
			start_date_local TEXT NOT NULL,
			local_date TEXT NOT NULL,
			distance REAL NOT NULL,
			moving_time INTEGER NOT NULL,
			average_power REAL,
			training_load REAL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_cross_training_local_date ON cross_training(local_date)`,

		// Derived-metric cache (lazy expiry, checked on read)
		`CREATE TABLE IF NOT EXISTS cache (
			key TEXT PRIMARY KEY,
			payload TEXT NOT NULL,
			computed_at INTEGER NOT NULL,
			ttl_ms INTEGER NOT NULL
		)`,

		// Sync state (key-value watermarks for sync tracking)
		`CREATE TABLE IF NOT EXISTS sync_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
