package store

import "time"

// Activity type tags as the remote service reports them.
const (
	TypeRun            = "Run"
	TypeRide           = "Ride"
	TypeVirtualRide    = "VirtualRide"
	TypeWeightTraining = "WeightTraining"
	TypeWorkout        = "Workout"
)

// Activity represents one completed training session. Immutable once fetched
// except for reattachment of interval detail; re-fetching the same id updates
// in place, never duplicates.
type Activity struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Type           string    `json:"type"`
	StartDateLocal time.Time `json:"startTimeLocal"`
	Distance       float64   `json:"distanceMeters"`
	MovingTime     int       `json:"movingTimeSeconds"`
	AverageSpeed   float64   `json:"averageSpeed"`
	AverageHR      *float64  `json:"averageHeartRate,omitempty"`
	AveragePower   *float64  `json:"averagePower,omitempty"`
	TrainingLoad   *float64  `json:"trainingLoad,omitempty"`
	Tags           string    `json:"tags,omitempty"` // comma separated
	DetailSynced   bool      `json:"detailSynced"`
}

// LocalDate returns the activity's calendar date in the store's fixed textual
// form (YYYY-MM-DD).
func (a *Activity) LocalDate() string {
	return a.StartDateLocal.Format("2006-01-02")
}

// ActivityDetail is the lazily fetched one-to-one extension of an activity:
// the raw interval-split payload and any coach messages, stored as JSON text
// and merged into the activity in memory on read.
type ActivityDetail struct {
	ActivityID string `json:"activityId"`
	Intervals  string `json:"intervals,omitempty"` // raw JSON
	Messages   string `json:"messages,omitempty"`  // raw JSON
}

// Wellness represents one calendar day's physiological snapshot. ID is the
// date in YYYY-MM-DD form; a later fetch overwrites the same key
// (last-write-wins, no versioning).
type Wellness struct {
	ID           string   `json:"id"`
	CTL          *float64 `json:"ctl,omitempty"` // chronic load
	ATL          *float64 `json:"atl,omitempty"` // acute load
	RestingHR    *float64 `json:"restingHR,omitempty"`
	HRV          *float64 `json:"hrv,omitempty"`
	SleepSeconds *int     `json:"sleepSeconds,omitempty"`
	SleepQuality *int     `json:"sleepQuality,omitempty"` // 1 (poor) .. 4 (great)
	Weight       *float64 `json:"weight,omitempty"`
	Soreness     *int     `json:"soreness,omitempty"` // 1 (none) .. 4 (severe)
	Mood         *int     `json:"mood,omitempty"`     // 1 (low) .. 4 (great)
}

// Cross-training categories assigned at merge time.
const (
	CategoryCycling  = "cycling"
	CategoryStrength = "strength"
)

// CrossTraining is an activity variant restricted to cycling and strength
// sessions, kept in its own collection so it can be merged and queried
// independently of running activities.
type CrossTraining struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	Category       string    `json:"category"`
	StartDateLocal time.Time `json:"startTimeLocal"`
	Distance       float64   `json:"distanceMeters"`
	MovingTime     int       `json:"movingTimeSeconds"`
	AveragePower   *float64  `json:"averagePower,omitempty"`
	TrainingLoad   *float64  `json:"trainingLoad,omitempty"`
}

// LocalDate returns the session's calendar date in YYYY-MM-DD form.
func (c *CrossTraining) LocalDate() string {
	return c.StartDateLocal.Format("2006-01-02")
}
