package service

import (
	"context"
	"testing"
	"time"

	"paceline/internal/intervals"
	"paceline/internal/store"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		activity     intervals.Activity
		wantCategory string
		wantOK       bool
	}{
		{
			name:         "ride by type alone",
			activity:     intervals.Activity{Type: store.TypeRide, Name: "Commute"},
			wantCategory: store.CategoryCycling,
			wantOK:       true,
		},
		{
			name:         "virtual ride",
			activity:     intervals.Activity{Type: store.TypeVirtualRide, Name: "Trainer hour"},
			wantCategory: store.CategoryCycling,
			wantOK:       true,
		},
		{
			name:         "weight training by type alone",
			activity:     intervals.Activity{Type: store.TypeWeightTraining, Name: "Whatever"},
			wantCategory: store.CategoryStrength,
			wantOK:       true,
		},
		{
			name:         "workout with keyword in name",
			activity:     intervals.Activity{Type: store.TypeWorkout, Name: "Morning strength"},
			wantCategory: store.CategoryStrength,
			wantOK:       true,
		},
		{
			name:         "workout with keyword in description",
			activity:     intervals.Activity{Type: store.TypeWorkout, Name: "Session", Description: "Heavy lifting day"},
			wantCategory: store.CategoryStrength,
			wantOK:       true,
		},
		{
			name:         "keyword match is case-insensitive",
			activity:     intervals.Activity{Type: store.TypeWorkout, Name: "GYM DAY"},
			wantCategory: store.CategoryStrength,
			wantOK:       true,
		},
		{
			name:         "non-english keyword",
			activity:     intervals.Activity{Type: store.TypeWorkout, Name: "Krafttraining Beine"},
			wantCategory: store.CategoryStrength,
			wantOK:       true,
		},
		{
			name:     "workout without keywords",
			activity: intervals.Activity{Type: store.TypeWorkout, Name: "Yoga flow"},
			wantOK:   false,
		},
		{
			name:     "run never classifies",
			activity: intervals.Activity{Type: store.TypeRun, Name: "Strength run"},
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, ok := Classify(tt.activity)
			if ok != tt.wantOK {
				t.Fatalf("Classify() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && category != tt.wantCategory {
				t.Errorf("Classify() category = %q, want %q", category, tt.wantCategory)
			}
		})
	}
}

func TestCrossTrainingMergeSkipsKnownIDs(t *testing.T) {
	remote := newFakeRemote()
	remote.activities = fixtureActivities()

	svc, db := newTestSyncService(t, remote)

	if _, err := svc.SyncAll(context.Background(), SyncOptions{}, nil); err != nil {
		t.Fatalf("SyncAll() error = %v", err)
	}

	firstFetches := map[string]int{}
	for id, n := range remote.detailFetches {
		firstFetches[id] = n
	}
	if firstFetches["b1"] != 1 || firstFetches["w1"] != 1 {
		t.Fatalf("detail fetches = %v, want one per candidate", firstFetches)
	}

	// The ids are known now; a re-sync of the same window must not spend
	// rate-limited detail fetches on them again.
	if _, err := svc.SyncAll(context.Background(), SyncOptions{}, nil); err != nil {
		t.Fatalf("second SyncAll() error = %v", err)
	}

	if remote.detailFetches["b1"] != 1 || remote.detailFetches["w1"] != 1 {
		t.Errorf("detail fetches after re-sync = %v, want unchanged", remote.detailFetches)
	}

	count, _ := db.CountCrossTraining()
	if count != 2 {
		t.Errorf("cross-training count = %d, want 2", count)
	}
}

func TestCrossTrainingStoresConfirmedFields(t *testing.T) {
	remote := newFakeRemote()
	remote.activities = fixtureActivities()

	svc, db := newTestSyncService(t, remote)

	if _, err := svc.SyncAll(context.Background(), SyncOptions{}, nil); err != nil {
		t.Fatalf("SyncAll() error = %v", err)
	}

	sessions, err := db.GetCrossTrainingRange("2026-02-10", "2026-02-16")
	if err != nil {
		t.Fatalf("GetCrossTrainingRange() error = %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}

	byID := map[string]store.CrossTraining{}
	for _, s := range sessions {
		byID[s.ID] = s
	}

	ride := byID["b1"]
	if ride.Category != store.CategoryCycling {
		t.Errorf("ride category = %q, want cycling", ride.Category)
	}
	if ride.AveragePower == nil || *ride.AveragePower != 180 {
		t.Errorf("ride power = %v, want 180", ride.AveragePower)
	}
	if ride.StartDateLocal.Format("2006-01-02") != "2026-02-12" {
		t.Errorf("ride date = %s, want 2026-02-12", ride.StartDateLocal.Format(time.RFC3339))
	}

	workout := byID["w1"]
	if workout.Category != store.CategoryStrength {
		t.Errorf("workout category = %q, want strength", workout.Category)
	}
}
