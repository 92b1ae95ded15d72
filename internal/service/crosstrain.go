package service

import (
	"context"
	"fmt"
	"strings"

	"paceline/internal/intervals"
	"paceline/internal/store"
)

// strengthKeywords confirm a generic workout as strength training. The
// vocabulary is small, fixed, case-insensitive, and multilingual because
// session names arrive in whatever language the athlete's platform uses.
var strengthKeywords = []string{
	"strength", "weights", "lifting", "gym", "core",
	"krafttraining", "kraft",
	"fuerza", "pesas",
	"musculation", "renfo",
	"palestra", "forza",
}

// syncCrossTraining reconciles cycling and strength sessions for the sync
// window into the cross-training collection. Merge is dedup-by-id: ids
// already confirmed in a prior run are never re-fetched, even under a
// forced refresh of the parent date range, which keeps the rate-limited
// detail fetch from repeating.
func (s *SyncService) syncCrossTraining(ctx context.Context, opts SyncOptions, progress chan<- SyncProgress, result *SyncResult) error {
	oldest := opts.Oldest
	if oldest == "" {
		oldest = s.defaultOldest()
	}

	fetched, err := s.remote.Activities(ctx, oldest, s.today())
	if err != nil {
		return fmt.Errorf("fetching candidates: %w", err)
	}

	candidates := classifyCandidates(fetched)
	if len(candidates) == 0 {
		return nil
	}

	existing, err := s.db.CrossTrainingIDs()
	if err != nil {
		return fmt.Errorf("loading merged ids: %w", err)
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "cross-training", Total: len(candidates)}
	}

	var confirmed []store.CrossTraining
	for i, candidate := range candidates {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if existing[candidate.ID] {
			continue
		}

		// List-level data is insufficient to confirm classification (the
		// description is omitted there), so fetch the full record.
		full, err := s.remote.Activity(ctx, candidate.ID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("detail for %s (%s): %w", candidate.ID, candidate.Name, err))
			continue
		}

		category, ok := Classify(*full)
		if !ok {
			continue
		}

		confirmed = append(confirmed, convertCrossTraining(*full, category))

		if progress != nil {
			progress <- SyncProgress{Phase: "cross-training", Total: len(candidates), Completed: i + 1, CurrentActivity: candidate.Name}
		}
	}

	merged, err := s.db.UpsertCrossTraining(confirmed)
	if err != nil {
		return fmt.Errorf("merging confirmed sessions: %w", err)
	}

	result.CrossTrainingMerged += merged
	if merged > 0 {
		result.WroteNew = true
	}

	return nil
}

// classifyCandidates keeps activities whose list-level type could be
// cross-training; confirmation happens against the full record.
func classifyCandidates(fetched []intervals.Activity) []intervals.Activity {
	var candidates []intervals.Activity
	for _, a := range fetched {
		switch a.Type {
		case store.TypeRide, store.TypeVirtualRide, store.TypeWeightTraining, store.TypeWorkout:
			candidates = append(candidates, a)
		}
	}
	return candidates
}

// Classify assigns a cross-training category by capability-set test:
// cycling by type tag alone, strength by type tag or by a keyword match
// against the session's name and description.
func Classify(a intervals.Activity) (category string, ok bool) {
	switch a.Type {
	case store.TypeRide, store.TypeVirtualRide:
		return store.CategoryCycling, true
	case store.TypeWeightTraining:
		return store.CategoryStrength, true
	case store.TypeWorkout:
		text := strings.ToLower(a.Name + " " + a.Description)
		for _, kw := range strengthKeywords {
			if strings.Contains(text, kw) {
				return store.CategoryStrength, true
			}
		}
	}
	return "", false
}

func convertCrossTraining(a intervals.Activity, category string) store.CrossTraining {
	ct := store.CrossTraining{
		ID:             a.ID,
		Name:           a.Name,
		Type:           a.Type,
		Category:       category,
		StartDateLocal: a.StartDateLocal.Time,
		Distance:       a.Distance,
		MovingTime:     a.MovingTime,
	}

	if a.AveragePower > 0 {
		power := a.AveragePower
		ct.AveragePower = &power
	}
	if a.TrainingLoad > 0 {
		load := a.TrainingLoad
		ct.TrainingLoad = &load
	}

	return ct
}
