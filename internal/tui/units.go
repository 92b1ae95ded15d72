package tui

import (
	"fmt"

	"paceline/internal/config"
)

const metersPerMile = 1609.34

// Units renders distances and paces in the athlete's configured units. The
// preference is resolved once at construction into a divisor and label so the
// render paths never re-inspect the config.
type Units struct {
	perDistUnit float64 // meters in one display distance unit
	perPaceUnit float64 // meters in one pace denominator unit
	distLabel   string
	paceSuffix  string
}

// NewUnits resolves display preferences into a formatter
func NewUnits(cfg config.DisplayConfig) Units {
	u := Units{
		perDistUnit: 1000,
		perPaceUnit: 1000,
		distLabel:   "km",
		paceSuffix:  "km",
	}
	if cfg.DistanceUnit == "mi" {
		u.perDistUnit = metersPerMile
		u.distLabel = "mi"
	}
	if cfg.PaceUnit == "min/mi" {
		u.perPaceUnit = metersPerMile
		u.paceSuffix = "mi"
	}
	return u
}

// FormatDistance renders meters with the unit label, one decimal
func (u Units) FormatDistance(meters float64) string {
	return fmt.Sprintf("%.1f %s", meters/u.perDistUnit, u.distLabel)
}

// FormatDistanceValue renders the bare number for table cells
func (u Units) FormatDistanceValue(meters float64) string {
	return fmt.Sprintf("%.1f", meters/u.perDistUnit)
}

// FormatPace renders minutes and seconds per distance unit, "-" when either
// input is missing.
func (u Units) FormatPace(seconds int, meters float64) string {
	if meters <= 0 || seconds <= 0 {
		return "-"
	}
	secondsPerUnit := int(float64(seconds) * u.perPaceUnit / meters)
	return fmt.Sprintf("%d:%02d", secondsPerUnit/60, secondsPerUnit%60)
}

// FormatPaceWithUnit appends the pace denominator, e.g. "4:45/km"
func (u Units) FormatPaceWithUnit(seconds int, meters float64) string {
	pace := u.FormatPace(seconds, meters)
	if pace == "-" {
		return pace
	}
	return pace + "/" + u.paceSuffix
}

// DistanceLabel is the short distance unit, "km" or "mi"
func (u Units) DistanceLabel() string {
	return u.distLabel
}
