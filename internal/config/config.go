package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents the application configuration
type Config struct {
	Intervals IntervalsConfig `json:"intervals"`
	Athlete   AthleteConfig   `json:"athlete"`
	Plan      PlanConfig      `json:"plan"`
	Sync      SyncConfig      `json:"sync"`
	Display   DisplayConfig   `json:"display"`
}

// IntervalsConfig holds credentials for the training-analytics service
type IntervalsConfig struct {
	APIKey    string `json:"api_key"`
	AthleteID string `json:"athlete_id"`
	BaseURL   string `json:"base_url,omitempty"` // override, defaults to the public API
}

// AthleteConfig holds athlete-specific physiology settings
type AthleteConfig struct {
	FTP       float64 `json:"ftp"` // functional threshold power, watts
	RestingHR float64 `json:"resting_hr"`
	MaxHR     float64 `json:"max_hr"`
}

// PlanConfig holds training-cycle parameters
type PlanConfig struct {
	RaceDate    string  `json:"race_date"` // YYYY-MM-DD
	GoalTime    string  `json:"goal_time"` // e.g. "3:30:00"
	PlanWeeks   int     `json:"plan_weeks"`
	WeeklyMiles float64 `json:"weekly_miles"`
}

// SyncConfig holds tuning for remote fetching. These are tuning parameters,
// not load-bearing constants; the defaults match the remote service's
// observed tolerance.
type SyncConfig struct {
	MaxInFlight    int `json:"max_in_flight"`    // concurrent requests allowed by the client
	PacingMs       int `json:"pacing_ms"`        // minimum spacing between requests
	BackfillBatch  int `json:"backfill_batch"`   // interval backfill batch size
	BatchPauseMs   int `json:"batch_pause_ms"`   // pause between backfill batches
	RetryBudget    int `json:"retry_budget"`     // attempts after a 429
	RetryStepMs    int `json:"retry_step_ms"`    // delay grows by this much per attempt
	FullSyncMonths int `json:"full_sync_months"` // how far back a forced full sync reaches
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `json:"distance_unit"`
	PaceUnit     string `json:"pace_unit"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Athlete: AthleteConfig{
			FTP:       200,
			RestingHR: 50,
			MaxHR:     185,
		},
		Plan: PlanConfig{
			PlanWeeks:   16,
			WeeklyMiles: 35,
		},
		Sync: SyncConfig{
			MaxInFlight:    5,
			PacingMs:       250,
			BackfillBatch:  5,
			BatchPauseMs:   250,
			RetryBudget:    3,
			RetryStepMs:    1000,
			FullSyncMonths: 6,
		},
		Display: DisplayConfig{
			DistanceUnit: "km",
			PaceUnit:     "min/km",
		},
	}
}

// Load reads the configuration from ~/.paceline/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// applyDefaults fills zero values with defaults
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Athlete.FTP == 0 {
		c.Athlete.FTP = defaults.Athlete.FTP
	}
	if c.Athlete.RestingHR == 0 {
		c.Athlete.RestingHR = defaults.Athlete.RestingHR
	}
	if c.Athlete.MaxHR == 0 {
		c.Athlete.MaxHR = defaults.Athlete.MaxHR
	}
	if c.Plan.PlanWeeks == 0 {
		c.Plan.PlanWeeks = defaults.Plan.PlanWeeks
	}
	if c.Plan.WeeklyMiles == 0 {
		c.Plan.WeeklyMiles = defaults.Plan.WeeklyMiles
	}
	if c.Sync.MaxInFlight == 0 {
		c.Sync.MaxInFlight = defaults.Sync.MaxInFlight
	}
	if c.Sync.PacingMs == 0 {
		c.Sync.PacingMs = defaults.Sync.PacingMs
	}
	if c.Sync.BackfillBatch == 0 {
		c.Sync.BackfillBatch = defaults.Sync.BackfillBatch
	}
	if c.Sync.BatchPauseMs == 0 {
		c.Sync.BatchPauseMs = defaults.Sync.BatchPauseMs
	}
	if c.Sync.RetryBudget == 0 {
		c.Sync.RetryBudget = defaults.Sync.RetryBudget
	}
	if c.Sync.RetryStepMs == 0 {
		c.Sync.RetryStepMs = defaults.Sync.RetryStepMs
	}
	if c.Sync.FullSyncMonths == 0 {
		c.Sync.FullSyncMonths = defaults.Sync.FullSyncMonths
	}
	if c.Display.DistanceUnit == "" {
		c.Display.DistanceUnit = defaults.Display.DistanceUnit
	}
	if c.Display.PaceUnit == "" {
		c.Display.PaceUnit = defaults.Display.PaceUnit
	}
}

// Save writes the configuration to ~/.paceline/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Intervals = IntervalsConfig{
		APIKey:    "YOUR_API_KEY",
		AthleteID: "YOUR_ATHLETE_ID",
	}

	return Save(&example)
}

// Configured reports whether remote credentials are present. An absent key is
// an expected steady state, not an error: reads degrade to local data only.
func (c *Config) Configured() bool {
	return c.Intervals.APIKey != "" && c.Intervals.APIKey != "YOUR_API_KEY" &&
		c.Intervals.AthleteID != "" && c.Intervals.AthleteID != "YOUR_ATHLETE_ID"
}

// Validate checks the config for internally inconsistent values. Missing
// credentials do not fail validation; see Configured.
func (c *Config) Validate() error {
	if c.Display.DistanceUnit != "" && c.Display.DistanceUnit != "km" && c.Display.DistanceUnit != "mi" {
		return fmt.Errorf("display.distance_unit must be \"km\" or \"mi\", got %q", c.Display.DistanceUnit)
	}
	if c.Display.PaceUnit != "" && c.Display.PaceUnit != "min/km" && c.Display.PaceUnit != "min/mi" {
		return fmt.Errorf("display.pace_unit must be \"min/km\" or \"min/mi\", got %q", c.Display.PaceUnit)
	}

	if c.Athlete.RestingHR > 0 && c.Athlete.MaxHR > 0 && c.Athlete.RestingHR >= c.Athlete.MaxHR {
		return fmt.Errorf("athlete.resting_hr (%v) must be less than athlete.max_hr (%v)", c.Athlete.RestingHR, c.Athlete.MaxHR)
	}

	if c.Plan.RaceDate != "" {
		if _, err := time.Parse("2006-01-02", c.Plan.RaceDate); err != nil {
			return fmt.Errorf("plan.race_date must be YYYY-MM-DD, got %q", c.Plan.RaceDate)
		}
	}

	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".paceline", "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".paceline"), nil
}
