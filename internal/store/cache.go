package store

import (
	"database/sql"
	"errors"
	"time"
)

// GetCached returns the payload stored under key, or ok=false when the entry
// is missing or its TTL has elapsed. Expiry is checked lazily on read; there
// is no background eviction, and an expired entry is simply overwritten by
// the next SetCached.
func (db *DB) GetCached(key string) (payload string, ok bool, err error) {
	var computedAt, ttlMs int64
	err = db.QueryRow(`
		SELECT payload, computed_at, ttl_ms FROM cache WHERE key = ?
	`, key).Scan(&payload, &computedAt, &ttlMs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	age := db.now().UnixMilli() - computedAt
	if age >= ttlMs {
		return "", false, nil
	}

	return payload, true, nil
}

// SetCached stores payload under key with the given time-to-live,
// overwriting any previous entry.
func (db *DB) SetCached(key, payload string, ttl time.Duration) error {
	_, err := db.Exec(`
		INSERT INTO cache (key, payload, computed_at, ttl_ms)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			payload = excluded.payload,
			computed_at = excluded.computed_at,
			ttl_ms = excluded.ttl_ms
	`, key, payload, db.now().UnixMilli(), ttl.Milliseconds())
	return err
}

// InvalidateCached removes an entry immediately. This is the explicit
// user-refresh path; it coexists with the passive TTL path.
func (db *DB) InvalidateCached(key string) error {
	_, err := db.Exec("DELETE FROM cache WHERE key = ?", key)
	return err
}

// CountCache returns the number of cache entries, expired ones included
func (db *DB) CountCache() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM cache").Scan(&count)
	return count, err
}

// ClearCache removes every cache entry
func (db *DB) ClearCache() error {
	_, err := db.Exec("DELETE FROM cache")
	return err
}
