package intervals

import (
	"strings"
	"time"
)

// LocalTime decodes the service's local timestamps, which arrive either with
// a zone offset or as bare wall-clock time.
type LocalTime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (t *LocalTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}

	// Unparseable timestamps default to zero rather than failing the whole
	// collection decode.
	t.Time = time.Time{}
	return nil
}

// Activity is one training session as the service reports it. Absent numeric
// fields decode to zero; downstream consumers treat zero as "not recorded".
type Activity struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Type           string    `json:"type"`
	StartDateLocal LocalTime `json:"start_date_local"`
	Distance       float64   `json:"distance"`
	MovingTime     int       `json:"moving_time"`
	AverageSpeed   float64   `json:"average_speed"`
	AverageHR      float64   `json:"average_heartrate"`
	AveragePower   float64   `json:"icu_average_watts"`
	TrainingLoad   float64   `json:"icu_training_load"`
	Tags           []string  `json:"tags"`
}

// Wellness is one calendar day's snapshot. The id is the date itself.
type Wellness struct {
	ID           string   `json:"id"`
	CTL          *float64 `json:"ctl"`
	ATL          *float64 `json:"atl"`
	RestingHR    *float64 `json:"restingHR"`
	HRV          *float64 `json:"hrv"`
	SleepSeconds *int     `json:"sleepSecs"`
	SleepQuality *int     `json:"sleepQuality"`
	Weight       *float64 `json:"weight"`
	Soreness     *int     `json:"soreness"`
	Mood         *int     `json:"mood"`
}

// Event is a calendar entry (race, planned workout, note)
type Event struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	StartDateLocal LocalTime `json:"start_date_local"`
	Description    string    `json:"description"`
}
