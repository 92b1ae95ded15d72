package store

import (
	"fmt"
	"time"
)

// UpsertCrossTraining inserts or updates a batch of cross-training sessions
// in one transaction and returns the number written.
func (db *DB) UpsertCrossTraining(sessions []CrossTraining) (int, error) {
	if len(sessions) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO cross_training (
			id, name, type, category, start_date_local, local_date,
			distance, moving_time, average_power, training_load, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			category = excluded.category,
			start_date_local = excluded.start_date_local,
			local_date = excluded.local_date,
			distance = excluded.distance,
			moving_time = excluded.moving_time,
			average_power = excluded.average_power,
			training_load = excluded.training_load,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range sessions {
		_, err := stmt.Exec(
			c.ID, c.Name, c.Type, c.Category,
			c.StartDateLocal.Format(time.RFC3339), c.LocalDate(),
			c.Distance, c.MovingTime, c.AveragePower, c.TrainingLoad,
		)
		if err != nil {
			return 0, fmt.Errorf("upserting cross-training %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	return len(sessions), nil
}

// GetCrossTrainingRange returns sessions for [oldest, newest] (both
// YYYY-MM-DD, inclusive), ordered by start.
func (db *DB) GetCrossTrainingRange(oldest, newest string) ([]CrossTraining, error) {
	rows, err := db.Query(`
		SELECT id, name, type, category, start_date_local,
			distance, moving_time, average_power, training_load
		FROM cross_training
		WHERE local_date >= ? AND local_date <= ?
		ORDER BY start_date_local
	`, oldest, newest)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []CrossTraining
	for rows.Next() {
		var c CrossTraining
		var startLocal string
		err := rows.Scan(
			&c.ID, &c.Name, &c.Type, &c.Category, &startLocal,
			&c.Distance, &c.MovingTime, &c.AveragePower, &c.TrainingLoad,
		)
		if err != nil {
			return nil, err
		}
		c.StartDateLocal, err = time.Parse(time.RFC3339, startLocal)
		if err != nil {
			return nil, fmt.Errorf("parsing start_date_local %q: %w", startLocal, err)
		}
		sessions = append(sessions, c)
	}

	return sessions, rows.Err()
}

// CrossTrainingIDs returns the set of ids already merged. The reconciliation
// pass consults this before fetching detail so confirmed sessions are never
// re-fetched, even under a forced refresh of the parent date range.
func (db *DB) CrossTrainingIDs() (map[string]bool, error) {
	rows, err := db.Query("SELECT id FROM cross_training")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}

	return ids, rows.Err()
}

// CountCrossTraining returns the total number of cross-training sessions
func (db *DB) CountCrossTraining() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM cross_training").Scan(&count)
	return count, err
}

// ClearCrossTraining removes every cross-training session
func (db *DB) ClearCrossTraining() error {
	_, err := db.Exec("DELETE FROM cross_training")
	return err
}
