package store

import (
	"testing"
	"time"
)

// setupTestDB creates a fresh in-memory database for one test
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func testActivity(id, name, actType string, day time.Time) Activity {
	return Activity{
		ID:             id,
		Name:           name,
		Type:           actType,
		StartDateLocal: day,
		Distance:       10000,
		MovingTime:     3000,
		AverageSpeed:   3.33,
	}
}
