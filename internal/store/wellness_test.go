package store

import (
	"fmt"
	"testing"
)

func TestUpsertWellnessLastWriteWins(t *testing.T) {
	db := setupTestDB(t)

	first := Wellness{ID: "2026-02-16", RestingHR: floatPtr(48), HRV: floatPtr(80)}
	if _, err := db.UpsertWellness([]Wellness{first}); err != nil {
		t.Fatalf("UpsertWellness() error = %v", err)
	}

	// A later fetch for the same day overwrites the whole record
	second := Wellness{ID: "2026-02-16", RestingHR: floatPtr(52)}
	if _, err := db.UpsertWellness([]Wellness{second}); err != nil {
		t.Fatalf("UpsertWellness() second write error = %v", err)
	}

	got, err := db.GetWellness("2026-02-16")
	if err != nil {
		t.Fatalf("GetWellness() error = %v", err)
	}
	if got.RestingHR == nil || *got.RestingHR != 52 {
		t.Errorf("RestingHR = %v, want 52", got.RestingHR)
	}
	if got.HRV != nil {
		t.Errorf("HRV = %v after overwrite, want nil", *got.HRV)
	}

	count, _ := db.CountWellness()
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestUpsertWellnessCountsOnlyChanges(t *testing.T) {
	db := setupTestDB(t)

	record := Wellness{ID: "2026-02-16", CTL: floatPtr(50), ATL: floatPtr(65)}

	changed, err := db.UpsertWellness([]Wellness{record})
	if err != nil {
		t.Fatalf("UpsertWellness() error = %v", err)
	}
	if changed != 1 {
		t.Errorf("changed = %d on first insert, want 1", changed)
	}

	// An identical re-fetch writes nothing
	changed, err = db.UpsertWellness([]Wellness{record})
	if err != nil {
		t.Fatalf("UpsertWellness() re-fetch error = %v", err)
	}
	if changed != 0 {
		t.Errorf("changed = %d on identical re-fetch, want 0", changed)
	}

	// A corrected value counts again
	record.ATL = floatPtr(60)
	changed, err = db.UpsertWellness([]Wellness{record})
	if err != nil {
		t.Fatalf("UpsertWellness() correction error = %v", err)
	}
	if changed != 1 {
		t.Errorf("changed = %d after a correction, want 1", changed)
	}
}

func TestGetWellnessRange(t *testing.T) {
	db := setupTestDB(t)

	var records []Wellness
	for day := 8; day <= 18; day++ {
		records = append(records, Wellness{
			ID:  fmt.Sprintf("2026-02-%02d", day),
			CTL: floatPtr(float64(40 + day)),
		})
	}
	if _, err := db.UpsertWellness(records); err != nil {
		t.Fatalf("UpsertWellness() error = %v", err)
	}

	got, err := db.GetWellnessRange("2026-02-10", "2026-02-16")
	if err != nil {
		t.Fatalf("GetWellnessRange() error = %v", err)
	}

	if len(got) != 7 {
		t.Fatalf("got %d records, want 7", len(got))
	}
	if got[0].ID != "2026-02-10" || got[6].ID != "2026-02-16" {
		t.Errorf("range = [%s .. %s], want [2026-02-10 .. 2026-02-16]", got[0].ID, got[6].ID)
	}
}

func TestGetWellnessNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetWellness("2026-01-01")
	if err != ErrWellnessNotFound {
		t.Errorf("error = %v, want ErrWellnessNotFound", err)
	}
}
