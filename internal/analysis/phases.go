package analysis

import "time"

// Phase is one block of a marathon training cycle
type Phase struct {
	Name        string
	Description string
	WeeksToRace int
}

// CurrentPhase looks up the training block for today given the race date.
// Returns nil when the race date is unset, in the past, or further out than
// the plan length.
func CurrentPhase(raceDate string, planWeeks int, now time.Time) *Phase {
	if raceDate == "" {
		return nil
	}

	race, err := time.Parse("2006-01-02", raceDate)
	if err != nil {
		return nil
	}

	daysToRace := int(race.Sub(now).Hours() / 24)
	if daysToRace < 0 {
		return nil
	}
	weeksToRace := daysToRace / 7
	if planWeeks > 0 && weeksToRace > planWeeks {
		return nil
	}

	p := Phase{WeeksToRace: weeksToRace}
	switch {
	case weeksToRace == 0:
		p.Name = "Race week"
		p.Description = "Short, easy running with a few strides. Trust the work."
	case weeksToRace <= 3:
		p.Name = "Taper"
		p.Description = "Volume drops while intensity stays light. Recovery is the training."
	case weeksToRace <= 8:
		p.Name = "Peak"
		p.Description = "Longest long runs and marathon-pace work."
	case weeksToRace <= 12:
		p.Name = "Build"
		p.Description = "Volume and workout intensity climb week over week."
	default:
		p.Name = "Base"
		p.Description = "Easy aerobic volume and consistency."
	}

	return &p
}
