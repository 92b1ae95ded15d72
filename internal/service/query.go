package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"paceline/internal/analysis"
	"paceline/internal/config"
	"paceline/internal/intervals"
	"paceline/internal/store"
)

// readinessTTL bounds how long a computed readiness score is served before
// the baseline-and-scoring pass runs again.
const readinessTTL = time.Hour

// eventsTTL bounds how long the cached event calendar is served
const eventsTTL = 6 * time.Hour

// QueryService provides the dashboard's read paths over local data,
// memoizing the expensive derived computations in the store's cache.
type QueryService struct {
	db      *store.DB
	syncSvc *SyncService
	athlete config.AthleteConfig
	plan    config.PlanConfig

	now func() time.Time
}

// NewQueryService creates a query service
func NewQueryService(db *store.DB, syncSvc *SyncService, athlete config.AthleteConfig, plan config.PlanConfig) *QueryService {
	return &QueryService{
		db:      db,
		syncSvc: syncSvc,
		athlete: athlete,
		plan:    plan,
		now:     time.Now,
	}
}

// Readiness returns today's readiness assessment, serving the cached value
// inside its TTL. refresh invalidates the entry first so the score is
// recomputed immediately instead of waiting out the TTL.
func (q *QueryService) Readiness(ctx context.Context, refresh bool) (*analysis.Readiness, error) {
	today := q.now().Format("2006-01-02")
	key := "readiness:" + today

	if refresh {
		if err := q.db.InvalidateCached(key); err != nil {
			return nil, fmt.Errorf("invalidating readiness cache: %w", err)
		}
	} else {
		payload, ok, err := q.db.GetCached(key)
		if err != nil {
			return nil, fmt.Errorf("reading readiness cache: %w", err)
		}
		if ok {
			var cached analysis.Readiness
			if err := json.Unmarshal([]byte(payload), &cached); err == nil {
				return &cached, nil
			}
			// A payload that no longer decodes is recomputed below.
		}
	}

	weekAgo := q.now().AddDate(0, 0, -7).Format("2006-01-02")
	window, err := q.syncSvc.Wellness(ctx, weekAgo, today)
	if err != nil {
		return nil, fmt.Errorf("loading wellness window: %w", err)
	}

	var day store.Wellness
	day.ID = today
	var baselineWindow []store.Wellness
	for _, w := range window {
		if w.ID == today {
			day = w
		} else {
			baselineWindow = append(baselineWindow, w)
		}
	}

	readiness := analysis.ComputeReadiness(day, analysis.WellnessBaseline(baselineWindow))

	encoded, err := json.Marshal(readiness)
	if err != nil {
		return nil, fmt.Errorf("encoding readiness: %w", err)
	}
	if err := q.db.SetCached(key, string(encoded), readinessTTL); err != nil {
		return nil, fmt.Errorf("caching readiness: %w", err)
	}

	return &readiness, nil
}

// Events returns upcoming calendar events, cache-aside over the generic
// cache since events are small and re-fetched cheaply.
func (q *QueryService) Events(ctx context.Context, oldest, newest string) ([]intervals.Event, error) {
	key := "events:" + oldest + ":" + newest

	payload, ok, err := q.db.GetCached(key)
	if err != nil {
		return nil, fmt.Errorf("reading events cache: %w", err)
	}
	if ok {
		var cached []intervals.Event
		if err := json.Unmarshal([]byte(payload), &cached); err == nil {
			return cached, nil
		}
	}

	if q.syncSvc.remote == nil {
		return nil, nil
	}

	events, err := q.syncSvc.remote.Events(ctx, oldest, newest)
	if err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}

	if encoded, err := json.Marshal(events); err == nil {
		if err := q.db.SetCached(key, string(encoded), eventsTTL); err != nil {
			return nil, fmt.Errorf("caching events: %w", err)
		}
	}

	return events, nil
}

// RecentSessions returns the most recent activities, newest first
func (q *QueryService) RecentSessions(limit int) ([]store.Activity, error) {
	return q.db.ListActivities(limit, 0)
}

// Sessions returns a page of activities, newest first
func (q *QueryService) Sessions(limit, offset int) ([]store.Activity, error) {
	return q.db.ListActivities(limit, offset)
}

// SessionCount returns the total number of stored activities
func (q *QueryService) SessionCount() (int, error) {
	return q.db.CountActivities()
}

// Session returns one activity with its detail, fetching the detail
// through the sync service when it is not stored yet.
func (q *QueryService) Session(id string) (*store.Activity, *store.ActivityDetail, error) {
	return q.syncSvc.ActivityWithDetail(id)
}

// LastSyncTime returns when a sync last wrote new data, zero if never
func (q *QueryService) LastSyncTime() time.Time {
	raw, err := q.db.GetSyncState("last_write")
	if err != nil || raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// LoadTrend returns the CTL and ATL series for the trailing window,
// oldest first, for charting.
func (q *QueryService) LoadTrend(days int) (ctl, atl []float64, err error) {
	newest := q.now().Format("2006-01-02")
	oldest := q.now().AddDate(0, 0, -days).Format("2006-01-02")

	records, err := q.db.GetWellnessRange(oldest, newest)
	if err != nil {
		return nil, nil, err
	}

	for _, w := range records {
		if w.CTL != nil {
			ctl = append(ctl, *w.CTL)
		}
		if w.ATL != nil {
			atl = append(atl, *w.ATL)
		}
	}

	return ctl, atl, nil
}

// WeeklyVolume sums the trailing week's running distance plus the
// running-equivalent of cross-training sessions. The equivalent is
// recomputed here on every read; it is cheap relative to the fetch.
func (q *QueryService) WeeklyVolume(ctx context.Context) (meters float64, err error) {
	newest := q.now().Format("2006-01-02")
	oldest := q.now().AddDate(0, 0, -7).Format("2006-01-02")

	activities, err := q.syncSvc.Activities(ctx, oldest, newest)
	if err != nil {
		return 0, err
	}
	for _, a := range activities {
		if a.Type == store.TypeRun {
			meters += a.Distance
		}
	}

	sessions, err := q.db.GetCrossTrainingRange(oldest, newest)
	if err != nil {
		return 0, err
	}
	for _, s := range sessions {
		if s.Category == store.CategoryCycling {
			meters += analysis.RideRunningEquivalent(s, q.athlete.FTP).DistanceMeters
		}
	}

	return meters, nil
}

// CrossTraining returns the range's sessions paired with their running
// equivalents (zero-valued for strength sessions).
func (q *QueryService) CrossTraining(oldest, newest string) ([]store.CrossTraining, []analysis.RunningEquivalent, error) {
	sessions, err := q.db.GetCrossTrainingRange(oldest, newest)
	if err != nil {
		return nil, nil, err
	}

	equivalents := make([]analysis.RunningEquivalent, len(sessions))
	for i, s := range sessions {
		if s.Category == store.CategoryCycling {
			equivalents[i] = analysis.RideRunningEquivalent(s, q.athlete.FTP)
		}
	}

	return sessions, equivalents, nil
}

// Phase returns the current training block, or nil outside a plan
func (q *QueryService) Phase() *analysis.Phase {
	return analysis.CurrentPhase(q.plan.RaceDate, q.plan.PlanWeeks, q.now())
}
