package store

import (
	"bytes"
	"testing"
	"time"
)

func populateForExport(t *testing.T, db *DB) {
	t.Helper()

	day := time.Date(2026, 2, 10, 7, 0, 0, 0, time.UTC)
	activities := []Activity{
		testActivity("a1", "Run one", TypeRun, day),
		testActivity("a2", "Run two", TypeRun, day.AddDate(0, 0, 1)),
	}
	if _, err := db.UpsertActivities(activities); err != nil {
		t.Fatalf("UpsertActivities() error = %v", err)
	}
	if err := db.SaveActivityDetail(&ActivityDetail{ActivityID: "a1", Intervals: `[{"label":"rep"}]`}); err != nil {
		t.Fatalf("SaveActivityDetail() error = %v", err)
	}
	if _, err := db.UpsertWellness([]Wellness{{ID: "2026-02-10", CTL: floatPtr(50), ATL: floatPtr(65)}}); err != nil {
		t.Fatalf("UpsertWellness() error = %v", err)
	}
	if _, err := db.UpsertCrossTraining([]CrossTraining{testCrossTraining("c1", CategoryCycling, day)}); err != nil {
		t.Fatalf("UpsertCrossTraining() error = %v", err)
	}
	if err := db.SetSetting("athlete_name", "Test Athlete"); err != nil {
		t.Fatalf("SetSetting() error = %v", err)
	}
	if err := db.SetCached("readiness:2026-02-10", `{"score":55}`, time.Hour); err != nil {
		t.Fatalf("SetCached() error = %v", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	src := setupTestDB(t)
	populateForExport(t, src)

	var buf bytes.Buffer
	if err := src.Export(&buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	dst := setupTestDB(t)
	if err := dst.Import(&buf, false); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	counts := []struct {
		name  string
		count func() (int, error)
		want  int
	}{
		{"activities", dst.CountActivities, 2},
		{"details", dst.CountActivityDetails, 1},
		{"wellness", dst.CountWellness, 1},
		{"crossTraining", dst.CountCrossTraining, 1},
		{"cache", dst.CountCache, 1},
	}
	for _, c := range counts {
		got, err := c.count()
		if err != nil {
			t.Fatalf("counting %s: %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("%s count = %d, want %d", c.name, got, c.want)
		}
	}

	// Spot-check a record round-tripped with its nullable fields
	w, err := dst.GetWellness("2026-02-10")
	if err != nil {
		t.Fatalf("GetWellness() error = %v", err)
	}
	if w.CTL == nil || *w.CTL != 50 || w.ATL == nil || *w.ATL != 65 {
		t.Errorf("wellness = %+v, want ctl=50 atl=65", w)
	}

	setting, err := dst.GetSetting("athlete_name")
	if err != nil {
		t.Fatalf("GetSetting() error = %v", err)
	}
	if setting != "Test Athlete" {
		t.Errorf("setting = %q, want Test Athlete", setting)
	}
}

func TestExportDocumentShape(t *testing.T) {
	db := setupTestDB(t)
	populateForExport(t, db)

	doc, err := db.ExportDocument()
	if err != nil {
		t.Fatalf("ExportDocument() error = %v", err)
	}

	if doc.Version != ExportVersion {
		t.Errorf("Version = %d, want %d", doc.Version, ExportVersion)
	}
	if doc.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}
	if doc.Activities.Count != len(doc.Activities.Data) {
		t.Errorf("Activities.Count = %d, data has %d", doc.Activities.Count, len(doc.Activities.Data))
	}
	if doc.Activities.Count != 2 {
		t.Errorf("Activities.Count = %d, want 2", doc.Activities.Count)
	}
}

func TestImportReplaceClearsFirst(t *testing.T) {
	src := setupTestDB(t)
	populateForExport(t, src)

	var buf bytes.Buffer
	if err := src.Export(&buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	dst := setupTestDB(t)
	stale := testActivity("stale", "Old activity", TypeRun, time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC))
	if _, err := dst.UpsertActivities([]Activity{stale}); err != nil {
		t.Fatalf("UpsertActivities() error = %v", err)
	}

	if err := dst.Import(&buf, true); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if _, err := dst.GetActivity("stale"); err != ErrActivityNotFound {
		t.Errorf("stale activity survived a replacing import: %v", err)
	}
	count, _ := dst.CountActivities()
	if count != 2 {
		t.Errorf("count = %d after replacing import, want 2", count)
	}
}
