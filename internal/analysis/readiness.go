package analysis

import (
	"paceline/internal/store"
)

// Readiness status bands, ordered best to worst
const (
	StatusExcellent = "excellent"
	StatusGood      = "good"
	StatusModerate  = "moderate"
	StatusPoor      = "poor"
)

// Score thresholds for the status bands
const (
	baseScore          = 70
	excellentThreshold = 85
	goodThreshold      = 70
	moderateThreshold  = 50
)

// Readiness is a daily training-readiness assessment
type Readiness struct {
	Date     string   `json:"date"`
	Score    int      `json:"score"` // 0..100
	Status   string   `json:"status"`
	Insights []string `json:"insights"`
}

// Baseline holds 7-day rolling averages used to judge today's signals.
// A zero field means the signal was absent from the window.
type Baseline struct {
	RestingHR float64
	HRV       float64
	Weight    float64
}

// WellnessBaseline averages the available signals over a window of daily
// records, typically the 7 days preceding the day being scored.
func WellnessBaseline(records []store.Wellness) Baseline {
	var b Baseline
	var hrN, hrvN, weightN int

	for _, w := range records {
		if w.RestingHR != nil && *w.RestingHR > 0 {
			b.RestingHR += *w.RestingHR
			hrN++
		}
		if w.HRV != nil && *w.HRV > 0 {
			b.HRV += *w.HRV
			hrvN++
		}
		if w.Weight != nil && *w.Weight > 0 {
			b.Weight += *w.Weight
			weightN++
		}
	}

	if hrN > 0 {
		b.RestingHR /= float64(hrN)
	}
	if hrvN > 0 {
		b.HRV /= float64(hrvN)
	}
	if weightN > 0 {
		b.Weight /= float64(weightN)
	}

	return b
}

// ComputeReadiness scores one day's wellness snapshot against its 7-day
// baseline. Pure and deterministic: a baseline score with bounded additive
// adjustments per available signal, clamped to [0,100], then mapped to a
// status band with one insight per triggered adjustment. Absent signals
// contribute nothing.
func ComputeReadiness(day store.Wellness, baseline Baseline) Readiness {
	score := baseScore
	var insights []string

	// Training-stress balance: chronic minus acute load
	if day.CTL != nil && day.ATL != nil {
		tsb := *day.CTL - *day.ATL
		switch {
		case tsb <= -30:
			score -= 30
			insights = append(insights, "Severely fatigued: training stress balance is deeply negative, prioritize recovery")
		case tsb <= -10:
			score -= 15
			insights = append(insights, "Moderately fatigued from recent training load")
		case tsb > 15:
			score += 5
			insights = append(insights, "Fresh: fitness is well ahead of fatigue")
		}
	}

	// Resting heart rate vs 7-day baseline
	if day.RestingHR != nil && *day.RestingHR > 0 && baseline.RestingHR > 0 {
		ratio := *day.RestingHR / baseline.RestingHR
		switch {
		case ratio > 1.08:
			score -= 15
			insights = append(insights, "Resting heart rate is well above your weekly baseline")
		case ratio > 1.04:
			score -= 8
			insights = append(insights, "Resting heart rate is slightly elevated")
		}
	}

	// Heart-rate variability vs baseline
	if day.HRV != nil && *day.HRV > 0 && baseline.HRV > 0 {
		ratio := *day.HRV / baseline.HRV
		switch {
		case ratio < 0.85:
			score -= 15
			insights = append(insights, "HRV is well below your weekly baseline")
		case ratio < 0.93:
			score -= 8
			insights = append(insights, "HRV is slightly suppressed")
		case ratio > 1.10:
			score += 5
			insights = append(insights, "HRV is above baseline, a good recovery signal")
		}
	}

	// Sleep duration
	if day.SleepSeconds != nil && *day.SleepSeconds > 0 {
		hours := float64(*day.SleepSeconds) / 3600
		switch {
		case hours < 6:
			score -= 10
			insights = append(insights, "Short sleep last night")
		case hours >= 8:
			score += 5
			insights = append(insights, "Well rested")
		}
	}

	// Sleep quality, 1 (poor) .. 4 (great)
	if day.SleepQuality != nil {
		switch {
		case *day.SleepQuality == 1:
			score -= 8
			insights = append(insights, "Poor sleep quality")
		case *day.SleepQuality >= 4:
			score += 4
		}
	}

	// Weight swing vs baseline
	if day.Weight != nil && *day.Weight > 0 && baseline.Weight > 0 {
		delta := (*day.Weight - baseline.Weight) / baseline.Weight
		if delta > 0.02 || delta < -0.02 {
			score -= 5
			insights = append(insights, "Weight is off your weekly baseline, check hydration and fueling")
		}
	}

	// Soreness, 1 (none) .. 4 (severe)
	if day.Soreness != nil && *day.Soreness >= 3 {
		score -= 10
		insights = append(insights, "Significant muscle soreness reported")
	}

	// Mood, 1 (low) .. 4 (great)
	if day.Mood != nil && *day.Mood <= 2 && *day.Mood > 0 {
		score -= 5
		insights = append(insights, "Low mood can indicate accumulated fatigue")
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Readiness{
		Date:     day.ID,
		Score:    score,
		Status:   statusForScore(score),
		Insights: insights,
	}
}

func statusForScore(score int) string {
	switch {
	case score >= excellentThreshold:
		return StatusExcellent
	case score >= goodThreshold:
		return StatusGood
	case score >= moderateThreshold:
		return StatusModerate
	default:
		return StatusPoor
	}
}
