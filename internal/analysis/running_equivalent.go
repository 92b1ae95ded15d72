package analysis

import "paceline/internal/store"

// RunningEquivalent estimates the running volume a non-running session is
// worth, for aggregate weekly-volume tracking.
type RunningEquivalent struct {
	DistanceMeters  float64 `json:"distanceMeters"`
	DurationSeconds int     `json:"durationSeconds"`
	TrainingStress  float64 `json:"trainingStress"`
}

// Intensity bands by power-to-FTP ratio, each with a fixed conversion
// factor from ride distance to equivalent run distance.
var intensityBands = []struct {
	maxRatio float64
	factor   float64
}{
	{0.55, 0.22}, // recovery
	{0.75, 0.28}, // endurance
	{0.90, 0.34}, // tempo
	{1e9, 0.40},  // threshold and above
}

// RideRunningEquivalent converts a cycling session to its running
// equivalent via the piecewise FTP-ratio mapping. Pure function of the
// record; cheap relative to the fetch, so it is recomputed on every read
// rather than cached.
func RideRunningEquivalent(ride store.CrossTraining, ftp float64) RunningEquivalent {
	ratio := 0.0
	if ftp > 0 && ride.AveragePower != nil && *ride.AveragePower > 0 {
		ratio = *ride.AveragePower / ftp
	}

	factor := intensityBands[0].factor
	for _, band := range intensityBands {
		if ratio < band.maxRatio {
			factor = band.factor
			break
		}
	}

	eq := RunningEquivalent{
		DistanceMeters:  ride.Distance * factor,
		DurationSeconds: int(float64(ride.MovingTime) * factor),
	}

	if ride.TrainingLoad != nil && *ride.TrainingLoad > 0 {
		eq.TrainingStress = *ride.TrainingLoad
	} else if ratio > 0 {
		// Coggan-style estimate: an hour at FTP is 100 stress points
		hours := float64(ride.MovingTime) / 3600
		eq.TrainingStress = hours * ratio * ratio * 100
	}

	return eq
}
