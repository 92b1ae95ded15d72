package analysis

import (
	"strings"
	"testing"

	"paceline/internal/store"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func TestComputeReadinessStressBalance(t *testing.T) {
	tests := []struct {
		name       string
		ctl, atl   float64
		wantScore  int
		wantStatus string
	}{
		{"moderately fatigued", 50, 65, 55, StatusModerate},
		{"severely fatigued", 50, 85, 40, StatusPoor},
		{"fresh", 60, 40, 75, StatusGood},
		{"neutral balance", 50, 55, 70, StatusGood},
		// Band boundaries are inclusive on the fatigued side
		{"exactly -30", 50, 80, 40, StatusPoor},
		{"exactly -10", 50, 60, 55, StatusModerate},
		{"just above -10", 50, 59.5, 70, StatusGood},
		{"exactly +15 is neutral", 60, 45, 70, StatusGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := store.Wellness{ID: "2026-02-16", CTL: fp(tt.ctl), ATL: fp(tt.atl)}
			got := ComputeReadiness(day, Baseline{})

			if got.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", got.Score, tt.wantScore)
			}
			if got.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", got.Status, tt.wantStatus)
			}
		})
	}
}

func TestComputeReadinessFatigueInsight(t *testing.T) {
	day := store.Wellness{ID: "2026-02-16", CTL: fp(50), ATL: fp(65)}
	got := ComputeReadiness(day, Baseline{})

	if len(got.Insights) != 1 {
		t.Fatalf("Insights = %v, want exactly one", got.Insights)
	}
	if !strings.Contains(got.Insights[0], "Moderately fatigued") {
		t.Errorf("insight = %q, want the fatigue message", got.Insights[0])
	}
}

func TestComputeReadinessNoSignals(t *testing.T) {
	got := ComputeReadiness(store.Wellness{ID: "2026-02-16"}, Baseline{})

	if got.Score != 70 {
		t.Errorf("Score = %d with no signals, want the base 70", got.Score)
	}
	if got.Status != StatusGood {
		t.Errorf("Status = %q, want good", got.Status)
	}
	if len(got.Insights) != 0 {
		t.Errorf("Insights = %v, want none", got.Insights)
	}
}

func TestComputeReadinessHeartSignals(t *testing.T) {
	baseline := Baseline{RestingHR: 50, HRV: 80}

	// Elevated resting HR and suppressed HRV stack
	day := store.Wellness{
		ID:        "2026-02-16",
		RestingHR: fp(55), // ratio 1.10
		HRV:       fp(64), // ratio 0.80
	}
	got := ComputeReadiness(day, baseline)
	if got.Score != 40 {
		t.Errorf("Score = %d, want 40 (70 - 15 - 15)", got.Score)
	}

	// Mildly elevated signals use the smaller adjustments
	day = store.Wellness{
		ID:        "2026-02-16",
		RestingHR: fp(52.5), // ratio 1.05
		HRV:       fp(72),   // ratio 0.90
	}
	got = ComputeReadiness(day, baseline)
	if got.Score != 54 {
		t.Errorf("Score = %d, want 54 (70 - 8 - 8)", got.Score)
	}

	// High HRV is a positive signal
	day = store.Wellness{ID: "2026-02-16", HRV: fp(92)} // ratio 1.15
	got = ComputeReadiness(day, baseline)
	if got.Score != 75 {
		t.Errorf("Score = %d, want 75", got.Score)
	}
}

func TestComputeReadinessSleepAndSubjective(t *testing.T) {
	day := store.Wellness{
		ID:           "2026-02-16",
		SleepSeconds: ip(5 * 3600),
		SleepQuality: ip(1),
		Soreness:     ip(3),
		Mood:         ip(2),
	}
	got := ComputeReadiness(day, Baseline{})
	// 70 - 10 (short sleep) - 8 (poor quality) - 10 (soreness) - 5 (mood)
	if got.Score != 37 {
		t.Errorf("Score = %d, want 37", got.Score)
	}
	if got.Status != StatusPoor {
		t.Errorf("Status = %q, want poor", got.Status)
	}

	rested := store.Wellness{
		ID:           "2026-02-16",
		SleepSeconds: ip(8 * 3600),
		SleepQuality: ip(4),
	}
	got = ComputeReadiness(rested, Baseline{})
	if got.Score != 79 {
		t.Errorf("Score = %d, want 79 (70 + 5 + 4)", got.Score)
	}
}

func TestComputeReadinessClamps(t *testing.T) {
	day := store.Wellness{
		ID:           "2026-02-16",
		CTL:          fp(40),
		ATL:          fp(80), // tsb -40: -30
		RestingHR:    fp(60), // ratio 1.2: -15
		HRV:          fp(50), // ratio 0.625: -15
		SleepSeconds: ip(4 * 3600),
		SleepQuality: ip(1),
		Soreness:     ip(4),
		Mood:         ip(1),
	}
	got := ComputeReadiness(day, Baseline{RestingHR: 50, HRV: 80})

	if got.Score != 0 {
		t.Errorf("Score = %d, want clamp at 0", got.Score)
	}
	if got.Status != StatusPoor {
		t.Errorf("Status = %q, want poor", got.Status)
	}
}

func TestStatusBandBoundaries(t *testing.T) {
	bands := []struct {
		score int
		want  string
	}{
		{100, StatusExcellent},
		{85, StatusExcellent},
		{84, StatusGood},
		{70, StatusGood},
		{69, StatusModerate},
		{50, StatusModerate},
		{49, StatusPoor},
		{0, StatusPoor},
	}
	for _, b := range bands {
		if got := statusForScore(b.score); got != b.want {
			t.Errorf("statusForScore(%d) = %q, want %q", b.score, got, b.want)
		}
	}
}

func TestWellnessBaseline(t *testing.T) {
	records := []store.Wellness{
		{ID: "2026-02-10", RestingHR: fp(48), HRV: fp(82)},
		{ID: "2026-02-11", RestingHR: fp(52)},
		{ID: "2026-02-12", HRV: fp(78), Weight: fp(70)},
		{ID: "2026-02-13"}, // day with nothing recorded
	}

	b := WellnessBaseline(records)

	if b.RestingHR != 50 {
		t.Errorf("RestingHR = %v, want 50", b.RestingHR)
	}
	if b.HRV != 80 {
		t.Errorf("HRV = %v, want 80", b.HRV)
	}
	if b.Weight != 70 {
		t.Errorf("Weight = %v, want 70", b.Weight)
	}
}

func TestWellnessBaselineEmpty(t *testing.T) {
	b := WellnessBaseline(nil)
	if b.RestingHR != 0 || b.HRV != 0 || b.Weight != 0 {
		t.Errorf("baseline = %+v, want zero values", b)
	}
}
