package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// UpsertWellness inserts or updates a batch of daily wellness records in one
// transaction and returns the number of rows actually inserted or changed.
// Records are keyed by date; a later fetch for the same day overwrites the
// earlier one, but an identical re-fetch is a no-op and does not count.
func (db *DB) UpsertWellness(records []Wellness) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO wellness (
			id, ctl, atl, resting_hr, hrv, sleep_seconds, sleep_quality,
			weight, soreness, mood, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			ctl = excluded.ctl,
			atl = excluded.atl,
			resting_hr = excluded.resting_hr,
			hrv = excluded.hrv,
			sleep_seconds = excluded.sleep_seconds,
			sleep_quality = excluded.sleep_quality,
			weight = excluded.weight,
			soreness = excluded.soreness,
			mood = excluded.mood,
			updated_at = CURRENT_TIMESTAMP
		WHERE excluded.ctl IS NOT wellness.ctl
			OR excluded.atl IS NOT wellness.atl
			OR excluded.resting_hr IS NOT wellness.resting_hr
			OR excluded.hrv IS NOT wellness.hrv
			OR excluded.sleep_seconds IS NOT wellness.sleep_seconds
			OR excluded.sleep_quality IS NOT wellness.sleep_quality
			OR excluded.weight IS NOT wellness.weight
			OR excluded.soreness IS NOT wellness.soreness
			OR excluded.mood IS NOT wellness.mood
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	changed := 0
	for _, w := range records {
		res, err := stmt.Exec(
			w.ID, w.CTL, w.ATL, w.RestingHR, w.HRV, w.SleepSeconds,
			w.SleepQuality, w.Weight, w.Soreness, w.Mood,
		)
		if err != nil {
			return 0, fmt.Errorf("upserting wellness %s: %w", w.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("counting upsert of %s: %w", w.ID, err)
		}
		changed += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	return changed, nil
}

// GetWellness retrieves a single day's record by date (YYYY-MM-DD)
func (db *DB) GetWellness(date string) (*Wellness, error) {
	row := db.QueryRow(`
		SELECT id, ctl, atl, resting_hr, hrv, sleep_seconds, sleep_quality,
			weight, soreness, mood
		FROM wellness
		WHERE id = ?
	`, date)

	var w Wellness
	err := row.Scan(
		&w.ID, &w.CTL, &w.ATL, &w.RestingHR, &w.HRV, &w.SleepSeconds,
		&w.SleepQuality, &w.Weight, &w.Soreness, &w.Mood,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWellnessNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetWellnessRange returns records for [oldest, newest] (both YYYY-MM-DD,
// inclusive), ordered by date. Date keys are string-range comparable.
func (db *DB) GetWellnessRange(oldest, newest string) ([]Wellness, error) {
	rows, err := db.Query(`
		SELECT id, ctl, atl, resting_hr, hrv, sleep_seconds, sleep_quality,
			weight, soreness, mood
		FROM wellness
		WHERE id >= ? AND id <= ?
		ORDER BY id
	`, oldest, newest)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Wellness
	for rows.Next() {
		var w Wellness
		err := rows.Scan(
			&w.ID, &w.CTL, &w.ATL, &w.RestingHR, &w.HRV, &w.SleepSeconds,
			&w.SleepQuality, &w.Weight, &w.Soreness, &w.Mood,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, w)
	}

	return records, rows.Err()
}

// LatestWellnessDate returns the most recent date present, or "" when empty
func (db *DB) LatestWellnessDate() (string, error) {
	var date sql.NullString
	err := db.QueryRow("SELECT MAX(id) FROM wellness").Scan(&date)
	if err != nil {
		return "", err
	}
	return date.String, nil
}

// CountWellness returns the total number of wellness records
func (db *DB) CountWellness() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM wellness").Scan(&count)
	return count, err
}

// ClearWellness removes every wellness record
func (db *DB) ClearWellness() error {
	_, err := db.Exec("DELETE FROM wellness")
	return err
}
