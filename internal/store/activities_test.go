package store

import (
	"testing"
	"time"
)

func TestUpsertActivitiesIdempotent(t *testing.T) {
	db := setupTestDB(t)

	day := time.Date(2026, 2, 10, 7, 30, 0, 0, time.UTC)
	batch := []Activity{
		testActivity("a1", "Morning run", TypeRun, day),
		testActivity("a2", "Evening run", TypeRun, day.AddDate(0, 0, 1)),
	}

	if _, err := db.UpsertActivities(batch); err != nil {
		t.Fatalf("UpsertActivities() error = %v", err)
	}
	if _, err := db.UpsertActivities(batch); err != nil {
		t.Fatalf("UpsertActivities() second pass error = %v", err)
	}

	count, err := db.CountActivities()
	if err != nil {
		t.Fatalf("CountActivities() error = %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d after duplicate upsert, want 2", count)
	}

	// A re-fetch of the same id updates in place
	batch[0].Name = "Morning run (renamed)"
	if _, err := db.UpsertActivities(batch[:1]); err != nil {
		t.Fatalf("UpsertActivities() rename error = %v", err)
	}

	got, err := db.GetActivity("a1")
	if err != nil {
		t.Fatalf("GetActivity() error = %v", err)
	}
	if got.Name != "Morning run (renamed)" {
		t.Errorf("Name = %q, want updated name", got.Name)
	}

	count, _ = db.CountActivities()
	if count != 2 {
		t.Errorf("count = %d after rename, want 2", count)
	}
}

func TestUpsertActivitiesCountsOnlyChanges(t *testing.T) {
	db := setupTestDB(t)

	day := time.Date(2026, 2, 10, 7, 30, 0, 0, time.UTC)
	batch := []Activity{
		testActivity("a1", "Morning run", TypeRun, day),
		testActivity("a2", "Evening run", TypeRun, day.AddDate(0, 0, 1)),
	}

	changed, err := db.UpsertActivities(batch)
	if err != nil {
		t.Fatalf("UpsertActivities() error = %v", err)
	}
	if changed != 2 {
		t.Errorf("changed = %d on first insert, want 2", changed)
	}

	// An identical re-fetch writes nothing
	changed, err = db.UpsertActivities(batch)
	if err != nil {
		t.Fatalf("UpsertActivities() re-fetch error = %v", err)
	}
	if changed != 0 {
		t.Errorf("changed = %d on identical re-fetch, want 0", changed)
	}

	// A real edit counts again
	batch[1].Name = "Evening run (renamed)"
	changed, err = db.UpsertActivities(batch)
	if err != nil {
		t.Fatalf("UpsertActivities() rename error = %v", err)
	}
	if changed != 1 {
		t.Errorf("changed = %d after one rename, want 1", changed)
	}
}

func TestUpsertPreservesDetailSyncedFlag(t *testing.T) {
	db := setupTestDB(t)

	day := time.Date(2026, 2, 10, 7, 30, 0, 0, time.UTC)
	a := testActivity("a1", "Run", TypeRun, day)

	if _, err := db.UpsertActivities([]Activity{a}); err != nil {
		t.Fatalf("UpsertActivities() error = %v", err)
	}
	if err := db.MarkDetailSynced("a1"); err != nil {
		t.Fatalf("MarkDetailSynced() error = %v", err)
	}

	// Re-syncing the summary must not reset the detail flag
	if _, err := db.UpsertActivities([]Activity{a}); err != nil {
		t.Fatalf("UpsertActivities() re-sync error = %v", err)
	}

	pending, err := db.GetActivitiesNeedingDetail(10)
	if err != nil {
		t.Fatalf("GetActivitiesNeedingDetail() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d activities after re-sync, want 0", len(pending))
	}
}

func TestGetActivitiesByDateRange(t *testing.T) {
	db := setupTestDB(t)

	activities := []Activity{
		testActivity("a1", "Before", TypeRun, time.Date(2026, 2, 9, 7, 0, 0, 0, time.UTC)),
		testActivity("a2", "First", TypeRun, time.Date(2026, 2, 10, 7, 0, 0, 0, time.UTC)),
		testActivity("a3", "Last", TypeRun, time.Date(2026, 2, 16, 7, 0, 0, 0, time.UTC)),
		testActivity("a4", "After", TypeRun, time.Date(2026, 2, 17, 7, 0, 0, 0, time.UTC)),
	}
	if _, err := db.UpsertActivities(activities); err != nil {
		t.Fatalf("UpsertActivities() error = %v", err)
	}

	got, err := db.GetActivitiesByDateRange("2026-02-10", "2026-02-16")
	if err != nil {
		t.Fatalf("GetActivitiesByDateRange() error = %v", err)
	}

	// Both bounds inclusive, ordered oldest first
	if len(got) != 2 {
		t.Fatalf("got %d activities, want 2", len(got))
	}
	if got[0].ID != "a2" || got[1].ID != "a3" {
		t.Errorf("range = [%s %s], want [a2 a3]", got[0].ID, got[1].ID)
	}
}

func TestLatestActivityDate(t *testing.T) {
	db := setupTestDB(t)

	date, err := db.LatestActivityDate()
	if err != nil {
		t.Fatalf("LatestActivityDate() error = %v", err)
	}
	if date != "" {
		t.Errorf("date = %q on empty store, want empty", date)
	}

	activities := []Activity{
		testActivity("a1", "Old", TypeRun, time.Date(2026, 2, 1, 7, 0, 0, 0, time.UTC)),
		testActivity("a2", "New", TypeRun, time.Date(2026, 2, 14, 7, 0, 0, 0, time.UTC)),
	}
	if _, err := db.UpsertActivities(activities); err != nil {
		t.Fatalf("UpsertActivities() error = %v", err)
	}

	date, err = db.LatestActivityDate()
	if err != nil {
		t.Fatalf("LatestActivityDate() error = %v", err)
	}
	if date != "2026-02-14" {
		t.Errorf("date = %q, want 2026-02-14", date)
	}
}

func TestActivitiesNeedingDetail(t *testing.T) {
	db := setupTestDB(t)

	activities := []Activity{
		testActivity("a1", "One", TypeRun, time.Date(2026, 2, 10, 7, 0, 0, 0, time.UTC)),
		testActivity("a2", "Two", TypeRun, time.Date(2026, 2, 11, 7, 0, 0, 0, time.UTC)),
	}
	if _, err := db.UpsertActivities(activities); err != nil {
		t.Fatalf("UpsertActivities() error = %v", err)
	}

	pending, err := db.GetActivitiesNeedingDetail(10)
	if err != nil {
		t.Fatalf("GetActivitiesNeedingDetail() error = %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("pending = %d, want 2", len(pending))
	}

	if err := db.MarkDetailSynced("a1"); err != nil {
		t.Fatalf("MarkDetailSynced() error = %v", err)
	}

	pending, err = db.GetActivitiesNeedingDetail(10)
	if err != nil {
		t.Fatalf("GetActivitiesNeedingDetail() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "a2" {
		t.Errorf("pending = %v, want only a2", pending)
	}
}

func TestGetActivityNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetActivity("missing")
	if err != ErrActivityNotFound {
		t.Errorf("error = %v, want ErrActivityNotFound", err)
	}
}
