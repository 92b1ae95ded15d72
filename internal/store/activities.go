package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertActivities inserts or updates a batch of activities in one
// transaction and returns the number of rows actually inserted or changed.
// Re-writing a record with identical content is a no-op and does not count,
// so callers can tell a real change from an overlapping re-fetch.
func (db *DB) UpsertActivities(activities []Activity) (int, error) {
	if len(activities) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO activities (
			id, name, description, type, start_date_local, local_date,
			distance, moving_time, average_speed, average_heartrate,
			average_power, training_load, tags, detail_synced, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			type = excluded.type,
			start_date_local = excluded.start_date_local,
			local_date = excluded.local_date,
			distance = excluded.distance,
			moving_time = excluded.moving_time,
			average_speed = excluded.average_speed,
			average_heartrate = excluded.average_heartrate,
			average_power = excluded.average_power,
			training_load = excluded.training_load,
			tags = excluded.tags,
			updated_at = CURRENT_TIMESTAMP
		WHERE excluded.name IS NOT activities.name
			OR excluded.description IS NOT activities.description
			OR excluded.type IS NOT activities.type
			OR excluded.start_date_local IS NOT activities.start_date_local
			OR excluded.distance IS NOT activities.distance
			OR excluded.moving_time IS NOT activities.moving_time
			OR excluded.average_speed IS NOT activities.average_speed
			OR excluded.average_heartrate IS NOT activities.average_heartrate
			OR excluded.average_power IS NOT activities.average_power
			OR excluded.training_load IS NOT activities.training_load
			OR excluded.tags IS NOT activities.tags
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	changed := 0
	for _, a := range activities {
		res, err := stmt.Exec(
			a.ID, a.Name, a.Description, a.Type,
			a.StartDateLocal.Format(time.RFC3339), a.LocalDate(),
			a.Distance, a.MovingTime, a.AverageSpeed, a.AverageHR,
			a.AveragePower, a.TrainingLoad, a.Tags, boolToInt(a.DetailSynced),
		)
		if err != nil {
			return 0, fmt.Errorf("upserting activity %s: %w", a.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("counting upsert of %s: %w", a.ID, err)
		}
		changed += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	return changed, nil
}

// GetActivity retrieves an activity by ID
func (db *DB) GetActivity(id string) (*Activity, error) {
	row := db.QueryRow(`
		SELECT id, name, description, type, start_date_local,
			distance, moving_time, average_speed, average_heartrate,
			average_power, training_load, tags, detail_synced
		FROM activities
		WHERE id = ?
	`, id)

	return scanActivity(row)
}

// GetActivitiesByDateRange returns activities whose local date falls in
// [oldest, newest] (both YYYY-MM-DD, inclusive), ordered ascending by start.
func (db *DB) GetActivitiesByDateRange(oldest, newest string) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT id, name, description, type, start_date_local,
			distance, moving_time, average_speed, average_heartrate,
			average_power, training_load, tags, detail_synced
		FROM activities
		WHERE local_date >= ? AND local_date <= ?
		ORDER BY start_date_local
	`, oldest, newest)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// ListActivities returns activities ordered by start date descending
func (db *DB) ListActivities(limit, offset int) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT id, name, description, type, start_date_local,
			distance, moving_time, average_speed, average_heartrate,
			average_power, training_load, tags, detail_synced
		FROM activities
		ORDER BY start_date_local DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// LatestActivityDate returns the most recent local date (YYYY-MM-DD) present,
// or "" when the collection is empty.
func (db *DB) LatestActivityDate() (string, error) {
	var date sql.NullString
	err := db.QueryRow("SELECT MAX(local_date) FROM activities").Scan(&date)
	if err != nil {
		return "", err
	}
	return date.String, nil
}

// GetActivitiesNeedingDetail returns activities whose interval detail hasn't
// been fetched yet, newest first.
func (db *DB) GetActivitiesNeedingDetail(limit int) ([]Activity, error) {
	rows, err := db.Query(`
		SELECT id, name, description, type, start_date_local,
			distance, moving_time, average_speed, average_heartrate,
			average_power, training_load, tags, detail_synced
		FROM activities
		WHERE detail_synced = 0
		ORDER BY start_date_local DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// MarkDetailSynced marks an activity's interval detail as fetched
func (db *DB) MarkDetailSynced(id string) error {
	result, err := db.Exec(`
		UPDATE activities
		SET detail_synced = 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// CountActivities returns the total number of activities
func (db *DB) CountActivities() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM activities").Scan(&count)
	return count, err
}

// ClearActivities removes every activity (and, via cascade, its detail)
func (db *DB) ClearActivities() error {
	_, err := db.Exec("DELETE FROM activities")
	return err
}

// scanActivity scans a single activity from a row
func scanActivity(row *sql.Row) (*Activity, error) {
	var a Activity
	var startLocal string
	var description, tags sql.NullString
	var detailSynced int

	err := row.Scan(
		&a.ID, &a.Name, &description, &a.Type, &startLocal,
		&a.Distance, &a.MovingTime, &a.AverageSpeed, &a.AverageHR,
		&a.AveragePower, &a.TrainingLoad, &tags, &detailSynced,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}

	a.StartDateLocal, err = time.Parse(time.RFC3339, startLocal)
	if err != nil {
		return nil, fmt.Errorf("parsing start_date_local %q: %w", startLocal, err)
	}
	a.Description = description.String
	a.Tags = tags.String
	a.DetailSynced = detailSynced == 1

	return &a, nil
}

// scanActivities scans multiple activities from rows
func scanActivities(rows *sql.Rows) ([]Activity, error) {
	var activities []Activity

	for rows.Next() {
		var a Activity
		var startLocal string
		var description, tags sql.NullString
		var detailSynced int

		err := rows.Scan(
			&a.ID, &a.Name, &description, &a.Type, &startLocal,
			&a.Distance, &a.MovingTime, &a.AverageSpeed, &a.AverageHR,
			&a.AveragePower, &a.TrainingLoad, &tags, &detailSynced,
		)
		if err != nil {
			return nil, err
		}

		a.StartDateLocal, err = time.Parse(time.RFC3339, startLocal)
		if err != nil {
			return nil, fmt.Errorf("parsing start_date_local %q: %w", startLocal, err)
		}
		a.Description = description.String
		a.Tags = tags.String
		a.DetailSynced = detailSynced == 1

		activities = append(activities, a)
	}

	return activities, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
