package tui

import (
	"fmt"
	"time"

	"paceline/internal/analysis"
	"paceline/internal/service"
	"paceline/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// crossTrainWindowDays is the trailing window the screen shows
const crossTrainWindowDays = 28

// CrossTrainingModel is the cross-training screen model
type CrossTrainingModel struct {
	queryService *service.QueryService
	units        Units
	sessions     []store.CrossTraining
	equivalents  []analysis.RunningEquivalent
	loading      bool
	err          error
}

// NewCrossTrainingModel creates a new cross-training model
func NewCrossTrainingModel(qs *service.QueryService, units Units) CrossTrainingModel {
	return CrossTrainingModel{
		queryService: qs,
		units:        units,
		loading:      true,
	}
}

// Init initializes the cross-training screen
func (m CrossTrainingModel) Init() tea.Cmd {
	return m.loadData
}

type crossTrainLoadedMsg struct {
	sessions    []store.CrossTraining
	equivalents []analysis.RunningEquivalent
	err         error
}

func (m CrossTrainingModel) loadData() tea.Msg {
	newest := time.Now().Format("2006-01-02")
	oldest := time.Now().AddDate(0, 0, -crossTrainWindowDays).Format("2006-01-02")

	sessions, equivalents, err := m.queryService.CrossTraining(oldest, newest)
	if err != nil {
		return crossTrainLoadedMsg{err: err}
	}
	return crossTrainLoadedMsg{sessions: sessions, equivalents: equivalents}
}

// Update handles messages
func (m CrossTrainingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case crossTrainLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.sessions = msg.sessions
		m.equivalents = msg.equivalents
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the cross-training screen
func (m CrossTrainingModel) View() string {
	if m.loading {
		return "\n  Loading cross-training..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	title := cardTitleStyle.Render(fmt.Sprintf("Cross-Training (last %d days)", crossTrainWindowDays))

	if len(m.sessions) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title,
			"\n  No cross-training sessions. Press 's' to sync.")
	}

	var sections []string
	sections = append(sections, title)

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-22s  %-9s  %8s  %7s  %10s  %6s",
		"Date", "Name", "Category", "Distance", "Time", "Equiv Run", "Stress"))
	sections = append(sections, header)

	var totalEquivMeters float64
	var totalStress float64
	for i, s := range m.sessions {
		eq := m.equivalents[i]

		equivRun := "-"
		stress := "-"
		if s.Category == store.CategoryCycling {
			equivRun = m.units.FormatDistance(eq.DistanceMeters)
			stress = fmt.Sprintf("%.0f", eq.TrainingStress)
			totalEquivMeters += eq.DistanceMeters
			totalStress += eq.TrainingStress
		} else if s.TrainingLoad != nil {
			stress = fmt.Sprintf("%.0f", *s.TrainingLoad)
			totalStress += *s.TrainingLoad
		}

		sections = append(sections, tableRowStyle.Render(fmt.Sprintf("%-10s  %-22s  %-9s  %8s  %7s  %10s  %6s",
			s.StartDateLocal.Format("Jan 02"),
			truncateName(s.Name, 22),
			s.Category,
			m.units.FormatDistance(s.Distance),
			formatDuration(s.MovingTime),
			equivRun,
			stress,
		)))
	}

	totals := fmt.Sprintf("\n  Equivalent running volume: %s    Total stress: %.0f",
		m.units.FormatDistance(totalEquivMeters), totalStress)
	sections = append(sections, successStyle.Render(totals))

	help := statusStyle.Render("\n  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
