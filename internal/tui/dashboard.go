package tui

import (
	"context"
	"fmt"
	"time"

	"paceline/internal/analysis"
	"paceline/internal/intervals"
	"paceline/internal/service"
	"paceline/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
)

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	queryService *service.QueryService
	units        Units

	readiness *analysis.Readiness
	phase     *analysis.Phase
	ctl       []float64
	atl       []float64
	weekMeter float64
	recent    []store.Activity
	events    []intervals.Event
	lastSync  time.Time

	// refresh forces the readiness score to be recomputed instead of
	// served from cache
	refresh bool
	loading bool
	err     error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(qs *service.QueryService, units Units) DashboardModel {
	return DashboardModel{
		queryService: qs,
		units:        units,
		loading:      true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

type dashboardDataMsg struct {
	readiness *analysis.Readiness
	phase     *analysis.Phase
	ctl       []float64
	atl       []float64
	weekMeter float64
	recent    []store.Activity
	events    []intervals.Event
	lastSync  time.Time
	err       error
}

func (m DashboardModel) loadData() tea.Msg {
	ctx := context.Background()

	readiness, err := m.queryService.Readiness(ctx, m.refresh)
	if err != nil {
		return dashboardDataMsg{err: err}
	}

	ctl, atl, err := m.queryService.LoadTrend(42)
	if err != nil {
		return dashboardDataMsg{err: err}
	}

	weekMeter, err := m.queryService.WeeklyVolume(ctx)
	if err != nil {
		return dashboardDataMsg{err: err}
	}

	recent, err := m.queryService.RecentSessions(5)
	if err != nil {
		return dashboardDataMsg{err: err}
	}

	// Events are supplementary; an offline fetch failure should not blank
	// the whole dashboard.
	today := time.Now().Format("2006-01-02")
	horizon := time.Now().AddDate(0, 0, 30).Format("2006-01-02")
	events, _ := m.queryService.Events(ctx, today, horizon)

	return dashboardDataMsg{
		readiness: readiness,
		phase:     m.queryService.Phase(),
		ctl:       ctl,
		atl:       atl,
		weekMeter: weekMeter,
		recent:    recent,
		events:    events,
		lastSync:  m.queryService.LastSyncTime(),
	}
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.refresh = false
		if msg.err == nil {
			m.readiness = msg.readiness
			m.phase = msg.phase
			m.ctl = msg.ctl
			m.atl = msg.atl
			m.weekMeter = msg.weekMeter
			m.recent = msg.recent
			m.events = msg.events
			m.lastSync = msg.lastSync
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			m.refresh = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	var sections []string

	// Top row: readiness and training plan side by side
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderReadinessCard(), "  ", m.renderPlanCard())
	sections = append(sections, topRow)

	if len(m.ctl) > 2 {
		sections = append(sections, m.renderLoadChart())
	}

	if len(m.events) > 0 {
		sections = append(sections, m.renderEvents())
	}

	sections = append(sections, m.renderRecentSessions())

	help := statusStyle.Render("Press 'r' to recompute readiness, 's' to sync, '2' for sessions")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderReadinessCard() string {
	title := cardTitleStyle.Render("Today's Readiness")

	if m.readiness == nil {
		return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, "No wellness data yet"))
	}

	r := m.readiness
	scoreLine := lipgloss.JoinHorizontal(
		lipgloss.Left,
		lipgloss.NewStyle().Bold(true).Foreground(statusColor(r.Status)).Render(fmt.Sprintf("%d", r.Score)),
		metricLabelStyle.Render("  "+r.Status),
	)
	bar := RenderProgressBar(float64(r.Score)/100, 30)

	lines := []string{scoreLine, bar, ""}
	for _, insight := range r.Insights {
		lines = append(lines, lipgloss.NewStyle().Foreground(mutedColor).Render("• "+insight))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(44).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderPlanCard() string {
	title := cardTitleStyle.Render("Training Plan")

	var lines []string
	if m.phase != nil {
		lines = append(lines,
			RenderMetric("Phase", m.phase.Name),
			RenderMetric("Weeks to race", fmt.Sprintf("%d", m.phase.WeeksToRace)),
			lipgloss.NewStyle().Foreground(mutedColor).Render(m.phase.Description),
			"",
		)
	} else {
		lines = append(lines, lipgloss.NewStyle().Foreground(mutedColor).Render("No race planned"), "")
	}

	lines = append(lines, RenderMetric("Week volume", m.units.FormatDistance(m.weekMeter)))

	synced := "never"
	if !m.lastSync.IsZero() {
		synced = humanize.Time(m.lastSync)
	}
	lines = append(lines, RenderMetric("Last sync", synced))

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderLoadChart() string {
	title := cardTitleStyle.Render("Training Load - Fitness (blue) vs Fatigue (red)")

	series := [][]float64{m.ctl, m.atl}
	graph := asciigraph.PlotMany(series,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(asciigraph.SkyBlue, asciigraph.Red),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m DashboardModel) renderEvents() string {
	title := cardTitleStyle.Render("Upcoming Events")

	var rows []string
	for i, e := range m.events {
		if i >= 3 {
			break
		}
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-10s  %s",
			e.StartDateLocal.Format("Jan 02"),
			truncateName(e.Name, 40),
		)))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, rows...)))
}

func (m DashboardModel) renderRecentSessions() string {
	title := cardTitleStyle.Render("Recent Sessions")

	if len(m.recent) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No sessions yet. Press 's' to sync."))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-24s  %-6s  %8s  %6s  %5s",
		"Date", "Name", "Type", "Distance", "Pace", "Load"))

	rows := []string{header}
	for _, a := range m.recent {
		load := "-"
		if a.TrainingLoad != nil {
			load = fmt.Sprintf("%.0f", *a.TrainingLoad)
		}

		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-10s  %-24s  %-6s  %8s  %6s  %5s",
			a.StartDateLocal.Format("Jan 02"),
			truncateName(a.Name, 24),
			a.Type,
			m.units.FormatDistance(a.Distance),
			m.units.FormatPace(a.MovingTime, a.Distance),
			load,
		)))
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}

func formatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func truncateName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
