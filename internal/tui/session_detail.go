package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"paceline/internal/service"
	"paceline/internal/store"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SessionDetailModel is the session detail screen model
type SessionDetailModel struct {
	queryService *service.QueryService
	units        Units
	sessionID    string
	session      *store.Activity
	detail       *store.ActivityDetail
	viewport     viewport.Model
	loading      bool
	err          error
	width        int
	height       int
	ready        bool
}

// NewSessionDetailModel creates a new session detail model
func NewSessionDetailModel(qs *service.QueryService, units Units, sessionID string, width, height int) SessionDetailModel {
	m := SessionDetailModel{
		queryService: qs,
		units:        units,
		sessionID:    sessionID,
		loading:      true,
		width:        width,
		height:       height,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6) // Reserve space for header/footer
		m.ready = true
	}

	return m
}

// Init initializes the session detail screen
func (m SessionDetailModel) Init() tea.Cmd {
	return m.loadDetail
}

type sessionDetailLoadedMsg struct {
	session *store.Activity
	detail  *store.ActivityDetail
	err     error
}

func (m SessionDetailModel) loadDetail() tea.Msg {
	session, detail, err := m.queryService.Session(m.sessionID)
	return sessionDetailLoadedMsg{session: session, detail: detail, err: err}
}

// Update handles messages
func (m SessionDetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionDetailLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.session = msg.session
		m.detail = msg.detail
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.session != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadDetail
		}
	}

	// Handle viewport scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the session detail screen
func (m SessionDetailModel) View() string {
	if m.loading {
		return "\n  Loading session..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  esc: back to list  j/k or arrows: scroll  r: refresh")

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m SessionDetailModel) renderContent() string {
	if m.session == nil {
		return "No data"
	}

	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderSummary())

	if m.detail != nil {
		if splits := decodeSplits(m.detail.Intervals); len(splits) > 0 {
			sections = append(sections, m.renderSplits(splits))
		}
		if messages := decodeMessages(m.detail.Messages); len(messages) > 0 {
			sections = append(sections, m.renderMessages(messages))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SessionDetailModel) renderHeader() string {
	a := m.session
	title := cardTitleStyle.Render(a.Name)

	date := a.StartDateLocal.Format("Monday, January 2, 2006 at 3:04 PM")
	duration := formatDuration(a.MovingTime)
	pace := m.units.FormatPaceWithUnit(a.MovingTime, a.Distance)

	subtitle := lipgloss.NewStyle().Foreground(mutedColor).Render(date)

	stats := fmt.Sprintf("%s  •  %s  •  %s", m.units.FormatDistance(a.Distance), duration, pace)
	statsLine := lipgloss.NewStyle().Foreground(textColor).Bold(true).Render(stats)

	return lipgloss.JoinVertical(lipgloss.Left, "", title, subtitle, statsLine, "")
}

func (m SessionDetailModel) renderSummary() string {
	var lines []string

	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Summary"))

	a := m.session
	lines = append(lines, fmt.Sprintf("  Type:            %s", a.Type))

	if a.AverageHR != nil {
		lines = append(lines, fmt.Sprintf("  Average HR:      %.0f bpm", *a.AverageHR))
	}
	if a.AveragePower != nil {
		lines = append(lines, fmt.Sprintf("  Average power:   %.0f W", *a.AveragePower))
	}
	if a.TrainingLoad != nil {
		lines = append(lines, fmt.Sprintf("  Training load:   %.0f", *a.TrainingLoad))
	}
	if a.Tags != "" {
		lines = append(lines, fmt.Sprintf("  Tags:            %s", a.Tags))
	}
	if a.Description != "" {
		lines = append(lines, "", "  "+lipgloss.NewStyle().Foreground(mutedColor).Render(a.Description))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m SessionDetailModel) renderSplits(splits []intervalSplit) string {
	var lines []string

	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Intervals"))

	header := fmt.Sprintf("  %-16s  %9s  %7s  %6s  %6s", "Label", "Distance", "Time", "HR", "Power")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))

	for i, s := range splits {
		label := s.Label
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}

		hr := "-"
		if s.AverageHeartrate > 0 {
			hr = fmt.Sprintf("%.0f", s.AverageHeartrate)
		}

		power := "-"
		if s.AverageWatts > 0 {
			power = fmt.Sprintf("%.0f", s.AverageWatts)
		}

		lines = append(lines, fmt.Sprintf("  %-16s  %9s  %7s  %6s  %6s",
			truncateName(label, 16),
			m.units.FormatDistance(s.Distance),
			formatDuration(s.MovingTime),
			hr,
			power,
		))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m SessionDetailModel) renderMessages(messages []coachMessage) string {
	var lines []string

	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Notes"))

	for _, msg := range messages {
		author := msg.Name
		if author == "" {
			author = "note"
		}
		lines = append(lines, "  "+helpKeyStyle.Render(author))
		lines = append(lines, "  "+lipgloss.NewStyle().Foreground(mutedColor).Render(msg.Content))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// intervalSplit is the subset of the interval payload the detail screen
// renders. Unknown fields in the stored JSON are ignored.
type intervalSplit struct {
	Label            string  `json:"label"`
	Distance         float64 `json:"distance"`
	MovingTime       int     `json:"moving_time"`
	AverageHeartrate float64 `json:"average_heartrate"`
	AverageWatts     float64 `json:"average_watts"`
}

// coachMessage is one chat entry attached to a session
type coachMessage struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// decodeSplits tolerates both a bare array and the wrapped object form the
// remote uses. A payload that decodes to neither renders as no splits.
func decodeSplits(raw string) []intervalSplit {
	if raw == "" {
		return nil
	}

	var splits []intervalSplit
	if err := json.Unmarshal([]byte(raw), &splits); err == nil {
		return splits
	}

	var wrapped struct {
		Intervals []intervalSplit `json:"icu_intervals"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapped); err == nil {
		return wrapped.Intervals
	}

	return nil
}

func decodeMessages(raw string) []coachMessage {
	if raw == "" {
		return nil
	}

	var messages []coachMessage
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil
	}
	return messages
}
