package store

import (
	"database/sql"
	"errors"
)

// SaveActivityDetail stores the interval payload for an activity, replacing
// any previous payload.
func (db *DB) SaveActivityDetail(d *ActivityDetail) error {
	_, err := db.Exec(`
		INSERT INTO activity_details (activity_id, intervals, messages, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(activity_id) DO UPDATE SET
			intervals = excluded.intervals,
			messages = CASE WHEN excluded.messages != '' THEN excluded.messages ELSE activity_details.messages END,
			updated_at = CURRENT_TIMESTAMP
	`, d.ActivityID, d.Intervals, d.Messages)
	return err
}

// SaveActivityMessages attaches coach messages to an existing detail row,
// creating the row if the intervals haven't been fetched yet.
func (db *DB) SaveActivityMessages(activityID, messages string) error {
	_, err := db.Exec(`
		INSERT INTO activity_details (activity_id, intervals, messages, updated_at)
		VALUES (?, '', ?, CURRENT_TIMESTAMP)
		ON CONFLICT(activity_id) DO UPDATE SET
			messages = excluded.messages,
			updated_at = CURRENT_TIMESTAMP
	`, activityID, messages)
	return err
}

// GetActivityDetail retrieves the stored interval payload for an activity
func (db *DB) GetActivityDetail(activityID string) (*ActivityDetail, error) {
	var d ActivityDetail
	var intervals, messages sql.NullString
	err := db.QueryRow(`
		SELECT activity_id, intervals, messages
		FROM activity_details
		WHERE activity_id = ?
	`, activityID).Scan(&d.ActivityID, &intervals, &messages)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDetailNotFound
	}
	if err != nil {
		return nil, err
	}
	d.Intervals = intervals.String
	d.Messages = messages.String
	return &d, nil
}

// HasDetail checks if an activity has a stored interval payload
func (db *DB) HasDetail(activityID string) (bool, error) {
	var exists int
	err := db.QueryRow(`
		SELECT 1 FROM activity_details WHERE activity_id = ? AND intervals != '' LIMIT 1
	`, activityID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountActivityDetails returns the number of stored detail payloads
func (db *DB) CountActivityDetails() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM activity_details").Scan(&count)
	return count, err
}

// ClearActivityDetails removes every stored detail payload
func (db *DB) ClearActivityDetails() error {
	_, err := db.Exec("DELETE FROM activity_details")
	return err
}
