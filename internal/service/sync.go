package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"paceline/internal/config"
	"paceline/internal/intervals"
	"paceline/internal/store"
)

// SyncService orchestrates mirroring remote data into the local store.
// Every read is cache-aside: the store is tried first and the remote is
// consulted only when the store has nothing for the requested range.
type SyncService struct {
	remote Remote // nil when the remote service isn't configured
	db     *store.DB
	cfg    config.SyncConfig

	// now is injectable for tests
	now func() time.Time
}

// NewSyncService creates a sync service. remote may be nil; all reads then
// serve local data only and sync calls fail with intervals.ErrNotConfigured.
func NewSyncService(remote Remote, db *store.DB, cfg config.SyncConfig) *SyncService {
	return &SyncService{
		remote: remote,
		db:     db,
		cfg:    cfg,
		now:    time.Now,
	}
}

// SyncProgress reports progress during a sync pipeline run
type SyncProgress struct {
	Phase           string // "activities", "intervals", "messages", "wellness", "cross-training"
	Total           int
	Completed       int
	CurrentActivity string
}

// SyncResult contains the results of a sync pipeline run. Per-item failures
// are collected here rather than aborting the pipeline.
type SyncResult struct {
	ActivitiesStored    int
	DetailsFetched      int
	MessagesFetched     int
	WellnessStored      int
	CrossTrainingMerged int
	WroteNew            bool
	Errors              []error
}

// SyncOptions selects between incremental and forced full synchronization
type SyncOptions struct {
	// Forced fetches the whole window from Oldest regardless of local
	// state, overwriting matching keys. Otherwise the sync is incremental
	// from the latest locally known date.
	Forced bool
	// Oldest bounds a forced sync (YYYY-MM-DD). Empty means the configured
	// full-sync horizon.
	Oldest string
}

// today returns the current date in the store's fixed textual form
func (s *SyncService) today() string {
	return s.now().Format("2006-01-02")
}

// defaultOldest is the start of the forced-sync window
func (s *SyncService) defaultOldest() string {
	months := s.cfg.FullSyncMonths
	if months <= 0 {
		months = 6
	}
	return s.now().AddDate(0, -months, 0).Format("2006-01-02")
}

// --- Cache-aside reads ---

// Activities serves the date range from the store, fetching from the remote
// only when the store is empty for the range. With no remote and no local
// data it returns an empty slice, never an error.
func (s *SyncService) Activities(ctx context.Context, oldest, newest string) ([]store.Activity, error) {
	local, err := s.db.GetActivitiesByDateRange(oldest, newest)
	if err != nil {
		return nil, fmt.Errorf("reading activities: %w", err)
	}
	if len(local) > 0 || s.remote == nil {
		return local, nil
	}

	fetched, err := s.remote.Activities(ctx, oldest, newest)
	if err != nil {
		return nil, fmt.Errorf("fetching activities: %w", err)
	}
	if _, err := s.db.UpsertActivities(convertActivities(fetched)); err != nil {
		return nil, fmt.Errorf("storing activities: %w", err)
	}

	return s.db.GetActivitiesByDateRange(oldest, newest)
}

// Wellness serves the date range from the store, fetching on a miss
func (s *SyncService) Wellness(ctx context.Context, oldest, newest string) ([]store.Wellness, error) {
	local, err := s.db.GetWellnessRange(oldest, newest)
	if err != nil {
		return nil, fmt.Errorf("reading wellness: %w", err)
	}
	if len(local) > 0 || s.remote == nil {
		return local, nil
	}

	fetched, err := s.remote.Wellness(ctx, oldest, newest)
	if err != nil {
		return nil, fmt.Errorf("fetching wellness: %w", err)
	}
	if _, err := s.db.UpsertWellness(convertWellness(fetched)); err != nil {
		return nil, fmt.Errorf("storing wellness: %w", err)
	}

	return s.db.GetWellnessRange(oldest, newest)
}

// ActivityWithDetail returns an activity with its interval payload merged in
// memory. A missing detail payload is not an error; the caller gets the
// summary alone.
func (s *SyncService) ActivityWithDetail(id string) (*store.Activity, *store.ActivityDetail, error) {
	activity, err := s.db.GetActivity(id)
	if err != nil {
		return nil, nil, err
	}

	detail, err := s.db.GetActivityDetail(id)
	if err == store.ErrDetailNotFound {
		return activity, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return activity, detail, nil
}

// --- Sync pipeline ---

// SyncAll runs the multi-step pipeline in fixed order: activities, then
// per-activity intervals, then messages, then wellness, then cross-training.
// Later steps depend on the activity set written in step one. Each step is
// independently fallible: per-item failures are recorded and skipped so a
// single bad activity never aborts the run.
func (s *SyncService) SyncAll(ctx context.Context, opts SyncOptions, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{}

	if s.remote == nil {
		return result, intervals.ErrNotConfigured
	}

	newActivityIDs, err := s.syncActivities(ctx, opts, progress, result)
	if err != nil {
		return result, fmt.Errorf("syncing activities: %w", err)
	}

	if err := s.backfillIntervals(ctx, progress, result); err != nil {
		return result, fmt.Errorf("backfilling intervals: %w", err)
	}

	if err := s.syncMessages(ctx, newActivityIDs, progress, result); err != nil {
		return result, fmt.Errorf("syncing messages: %w", err)
	}

	if err := s.syncWellness(ctx, opts, progress, result); err != nil {
		return result, fmt.Errorf("syncing wellness: %w", err)
	}

	if err := s.syncCrossTraining(ctx, opts, progress, result); err != nil {
		return result, fmt.Errorf("syncing cross-training: %w", err)
	}

	// Signal downstream persistence only when something actually changed,
	// so an export isn't rewritten for a no-op sync.
	if result.WroteNew {
		if err := s.db.SetSyncState("last_write", s.now().Format(time.RFC3339)); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("recording write marker: %w", err))
		}
	}

	return result, nil
}

// syncActivities fetches the activity window and upserts it, returning the
// ids of records that were fetched this run.
func (s *SyncService) syncActivities(ctx context.Context, opts SyncOptions, progress chan<- SyncProgress, result *SyncResult) ([]string, error) {
	oldest, err := s.windowStart(opts, s.db.LatestActivityDate)
	if err != nil {
		return nil, err
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "activities"}
	}

	fetched, err := s.remote.Activities(ctx, oldest, s.today())
	if err != nil {
		return nil, err
	}

	stored, err := s.db.UpsertActivities(convertActivities(fetched))
	if err != nil {
		return nil, err
	}

	result.ActivitiesStored += stored
	if stored > 0 {
		result.WroteNew = true
	}

	if err := s.db.SetSyncState("last_activity_sync", s.now().Format(time.RFC3339)); err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("recording sync time: %w", err))
	}

	ids := make([]string, 0, len(fetched))
	for _, a := range fetched {
		ids = append(ids, a.ID)
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "activities", Total: len(fetched), Completed: stored}
	}

	return ids, nil
}

// backfillIntervals fetches interval detail for activities that are missing
// it, in fixed-size batches with a pause between batches. The batch bound is
// a second, narrower concurrency control layered on the client's own cap.
func (s *SyncService) backfillIntervals(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	batchSize := s.cfg.BackfillBatch
	if batchSize <= 0 {
		batchSize = 5
	}
	pause := time.Duration(s.cfg.BatchPauseMs) * time.Millisecond

	// Bounded per pipeline run; the remainder is picked up next sync.
	pending, err := s.db.GetActivitiesNeedingDetail(50)
	if err != nil {
		return fmt.Errorf("finding activities needing detail: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "intervals", Total: len(pending)}
	}

	completed := 0
	for start := 0; start < len(pending); start += batchSize {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		end := start + batchSize
		if end > len(pending) {
			end = len(pending)
		}
		batch := pending[start:end]

		var wg sync.WaitGroup
		var mu sync.Mutex
		for _, activity := range batch {
			wg.Add(1)
			go func(a store.Activity) {
				defer wg.Done()

				payload, err := s.remote.ActivityIntervals(ctx, a.ID)
				if err != nil {
					mu.Lock()
					result.Errors = append(result.Errors, fmt.Errorf("intervals for %s (%s): %w", a.ID, a.Name, err))
					mu.Unlock()
					return
				}

				detail := &store.ActivityDetail{ActivityID: a.ID, Intervals: string(payload)}
				if err := s.db.SaveActivityDetail(detail); err != nil {
					mu.Lock()
					result.Errors = append(result.Errors, fmt.Errorf("saving detail for %s: %w", a.ID, err))
					mu.Unlock()
					return
				}
				if err := s.db.MarkDetailSynced(a.ID); err != nil {
					mu.Lock()
					result.Errors = append(result.Errors, fmt.Errorf("marking detail synced for %s: %w", a.ID, err))
					mu.Unlock()
					return
				}

				mu.Lock()
				result.DetailsFetched++
				result.WroteNew = true
				mu.Unlock()
			}(activity)
		}
		wg.Wait()

		completed = end
		if progress != nil {
			progress <- SyncProgress{Phase: "intervals", Total: len(pending), Completed: completed}
		}

		if end < len(pending) && pause > 0 {
			select {
			case <-time.After(pause):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return nil
}

// syncMessages attaches coach messages to the activities fetched in step one
func (s *SyncService) syncMessages(ctx context.Context, activityIDs []string, progress chan<- SyncProgress, result *SyncResult) error {
	if len(activityIDs) == 0 {
		return nil
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "messages", Total: len(activityIDs)}
	}

	for i, id := range activityIDs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		payload, err := s.remote.ActivityMessages(ctx, id)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("messages for %s: %w", id, err))
			continue
		}
		if len(payload) == 0 || string(payload) == "[]" || string(payload) == "null" {
			continue
		}

		if err := s.db.SaveActivityMessages(id, string(payload)); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("saving messages for %s: %w", id, err))
			continue
		}

		result.MessagesFetched++
		result.WroteNew = true

		if progress != nil {
			progress <- SyncProgress{Phase: "messages", Total: len(activityIDs), Completed: i + 1}
		}
	}

	return nil
}

// syncWellness fetches the wellness window and upserts it. A re-fetch of an
// existing date overwrites the same key (last-write-wins).
func (s *SyncService) syncWellness(ctx context.Context, opts SyncOptions, progress chan<- SyncProgress, result *SyncResult) error {
	oldest, err := s.windowStart(opts, s.db.LatestWellnessDate)
	if err != nil {
		return err
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "wellness"}
	}

	fetched, err := s.remote.Wellness(ctx, oldest, s.today())
	if err != nil {
		return err
	}

	stored, err := s.db.UpsertWellness(convertWellness(fetched))
	if err != nil {
		return err
	}

	result.WellnessStored += stored
	if stored > 0 {
		result.WroteNew = true
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "wellness", Total: len(fetched), Completed: stored}
	}

	return nil
}

// windowStart resolves the fetch window's lower bound. Incremental syncs
// start at the latest locally known date, inclusive, so same-day corrections
// on the remote side are picked up.
func (s *SyncService) windowStart(opts SyncOptions, latest func() (string, error)) (string, error) {
	if opts.Forced {
		if opts.Oldest != "" {
			return opts.Oldest, nil
		}
		return s.defaultOldest(), nil
	}

	watermark, err := latest()
	if err != nil {
		return "", fmt.Errorf("finding sync watermark: %w", err)
	}
	if watermark == "" {
		return s.defaultOldest(), nil
	}
	return watermark, nil
}

// --- Conversion helpers ---

// convertActivities maps remote activities to store records, defaulting
// absent numeric fields to nil rather than failing.
func convertActivities(fetched []intervals.Activity) []store.Activity {
	activities := make([]store.Activity, 0, len(fetched))
	for _, a := range fetched {
		activities = append(activities, convertActivity(a))
	}
	return activities
}

func convertActivity(a intervals.Activity) store.Activity {
	activity := store.Activity{
		ID:             a.ID,
		Name:           a.Name,
		Description:    a.Description,
		Type:           a.Type,
		StartDateLocal: a.StartDateLocal.Time,
		Distance:       a.Distance,
		MovingTime:     a.MovingTime,
		AverageSpeed:   a.AverageSpeed,
		Tags:           strings.Join(a.Tags, ","),
	}

	if a.AverageHR > 0 {
		hr := a.AverageHR
		activity.AverageHR = &hr
	}
	if a.AveragePower > 0 {
		power := a.AveragePower
		activity.AveragePower = &power
	}
	if a.TrainingLoad > 0 {
		load := a.TrainingLoad
		activity.TrainingLoad = &load
	}

	return activity
}

func convertWellness(fetched []intervals.Wellness) []store.Wellness {
	records := make([]store.Wellness, 0, len(fetched))
	for _, w := range fetched {
		if w.ID == "" {
			continue
		}
		records = append(records, store.Wellness{
			ID:           w.ID,
			CTL:          w.CTL,
			ATL:          w.ATL,
			RestingHR:    w.RestingHR,
			HRV:          w.HRV,
			SleepSeconds: w.SleepSeconds,
			SleepQuality: w.SleepQuality,
			Weight:       w.Weight,
			Soreness:     w.Soreness,
			Mood:         w.Mood,
		})
	}
	return records
}
