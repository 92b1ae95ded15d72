package store

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// ExportVersion identifies the interchange format. Revisions must be
// additive only: never remove or repurpose a key, so older builds can still
// read newer documents.
const ExportVersion = 1

// ExportDocument is the single JSON document used to migrate local state
// between devices.
type ExportDocument struct {
	Version       int                       `json:"version"`
	Timestamp     time.Time                 `json:"timestamp"`
	Config        ExportBlock[SettingEntry] `json:"config"`
	Activities    ExportBlock[Activity]     `json:"activities"`
	Details       ExportBlock[ActivityDetail] `json:"activityDetails"`
	Wellness      ExportBlock[Wellness]     `json:"wellness"`
	Cache         ExportBlock[CacheEntry]   `json:"cache"`
	CrossTraining ExportBlock[CrossTraining] `json:"crossTraining"`
}

// ExportBlock is one collection's slice of the export document
type ExportBlock[T any] struct {
	Count int `json:"count"`
	Data  []T `json:"data"`
}

// SettingEntry is a settings row in export form
type SettingEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// CacheEntry is a cache row in export form
type CacheEntry struct {
	Key        string `json:"key"`
	Payload    string `json:"payload"`
	ComputedAt int64  `json:"computedAt"` // unix milliseconds
	TTLMs      int64  `json:"ttlMs"`
}

// Export serializes every collection into a single JSON document
func (db *DB) Export(w io.Writer) error {
	doc, err := db.ExportDocument()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ExportDocument builds the export document from the current store contents
func (db *DB) ExportDocument() (*ExportDocument, error) {
	doc := &ExportDocument{
		Version:   ExportVersion,
		Timestamp: db.now().UTC(),
	}

	settings, err := db.allSettings()
	if err != nil {
		return nil, fmt.Errorf("exporting settings: %w", err)
	}
	doc.Config = ExportBlock[SettingEntry]{Count: len(settings), Data: settings}

	activities, err := db.GetActivitiesByDateRange("0000-01-01", "9999-12-31")
	if err != nil {
		return nil, fmt.Errorf("exporting activities: %w", err)
	}
	doc.Activities = ExportBlock[Activity]{Count: len(activities), Data: activities}

	details, err := db.allDetails()
	if err != nil {
		return nil, fmt.Errorf("exporting activity details: %w", err)
	}
	doc.Details = ExportBlock[ActivityDetail]{Count: len(details), Data: details}

	wellness, err := db.GetWellnessRange("0000-01-01", "9999-12-31")
	if err != nil {
		return nil, fmt.Errorf("exporting wellness: %w", err)
	}
	doc.Wellness = ExportBlock[Wellness]{Count: len(wellness), Data: wellness}

	cache, err := db.allCacheEntries()
	if err != nil {
		return nil, fmt.Errorf("exporting cache: %w", err)
	}
	doc.Cache = ExportBlock[CacheEntry]{Count: len(cache), Data: cache}

	cross, err := db.GetCrossTrainingRange("0000-01-01", "9999-12-31")
	if err != nil {
		return nil, fmt.Errorf("exporting cross-training: %w", err)
	}
	doc.CrossTraining = ExportBlock[CrossTraining]{Count: len(cross), Data: cross}

	return doc, nil
}

// Import reads an export document and upserts every collection. When
// clearFirst is set, each collection is emptied before its block is applied.
func (db *DB) Import(r io.Reader, clearFirst bool) error {
	var doc ExportDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("decoding import document: %w", err)
	}
	return db.ImportDocument(&doc, clearFirst)
}

// ImportDocument applies an already decoded export document. Documents from
// newer builds import cleanly because the format is revised additively; any
// unknown keys were already dropped during decode.
func (db *DB) ImportDocument(doc *ExportDocument, clearFirst bool) error {
	if clearFirst {
		for _, clear := range []func() error{
			db.ClearActivities, db.ClearActivityDetails, db.ClearWellness,
			db.ClearCache, db.ClearCrossTraining,
		} {
			if err := clear(); err != nil {
				return fmt.Errorf("clearing collection: %w", err)
			}
		}
	}

	for _, s := range doc.Config.Data {
		if err := db.SetSetting(s.Key, s.Value); err != nil {
			return fmt.Errorf("importing setting %s: %w", s.Key, err)
		}
	}

	if _, err := db.UpsertActivities(doc.Activities.Data); err != nil {
		return fmt.Errorf("importing activities: %w", err)
	}

	for _, d := range doc.Details.Data {
		detail := d
		if err := db.SaveActivityDetail(&detail); err != nil {
			return fmt.Errorf("importing detail %s: %w", d.ActivityID, err)
		}
	}

	if _, err := db.UpsertWellness(doc.Wellness.Data); err != nil {
		return fmt.Errorf("importing wellness: %w", err)
	}

	for _, e := range doc.Cache.Data {
		_, err := db.Exec(`
			INSERT INTO cache (key, payload, computed_at, ttl_ms)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				payload = excluded.payload,
				computed_at = excluded.computed_at,
				ttl_ms = excluded.ttl_ms
		`, e.Key, e.Payload, e.ComputedAt, e.TTLMs)
		if err != nil {
			return fmt.Errorf("importing cache entry %s: %w", e.Key, err)
		}
	}

	if _, err := db.UpsertCrossTraining(doc.CrossTraining.Data); err != nil {
		return fmt.Errorf("importing cross-training: %w", err)
	}

	return nil
}

func (db *DB) allSettings() ([]SettingEntry, error) {
	rows, err := db.Query("SELECT key, value FROM settings ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []SettingEntry
	for rows.Next() {
		var s SettingEntry
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

func (db *DB) allDetails() ([]ActivityDetail, error) {
	rows, err := db.Query("SELECT activity_id, intervals, messages FROM activity_details ORDER BY activity_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var details []ActivityDetail
	for rows.Next() {
		var d ActivityDetail
		if err := rows.Scan(&d.ActivityID, &d.Intervals, &d.Messages); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func (db *DB) allCacheEntries() ([]CacheEntry, error) {
	rows, err := db.Query("SELECT key, payload, computed_at, ttl_ms FROM cache ORDER BY key")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CacheEntry
	for rows.Next() {
		var e CacheEntry
		if err := rows.Scan(&e.Key, &e.Payload, &e.ComputedAt, &e.TTLMs); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
