package tui

import (
	"fmt"

	"paceline/internal/service"
	"paceline/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SessionsModel is the sessions list screen model
type SessionsModel struct {
	queryService *service.QueryService
	units        Units
	sessions     []store.Activity
	cursor       int
	offset       int
	total        int
	pageSize     int
	loading      bool
	err          error
}

// NewSessionsModel creates a new sessions model
func NewSessionsModel(qs *service.QueryService, units Units) SessionsModel {
	return SessionsModel{
		queryService: qs,
		units:        units,
		pageSize:     15,
		loading:      true,
	}
}

// Init initializes the sessions screen
func (m SessionsModel) Init() tea.Cmd {
	return m.loadPage
}

type sessionsLoadedMsg struct {
	sessions []store.Activity
	total    int
	err      error
}

func (m SessionsModel) loadPage() tea.Msg {
	sessions, err := m.queryService.Sessions(m.pageSize, m.offset)
	if err != nil {
		return sessionsLoadedMsg{err: err}
	}

	total, err := m.queryService.SessionCount()
	if err != nil {
		return sessionsLoadedMsg{err: err}
	}

	return sessionsLoadedMsg{sessions: sessions, total: total}
}

// Update handles messages
func (m SessionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.sessions = msg.sessions
		m.total = msg.total

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			} else if m.offset > 0 {
				m.offset -= m.pageSize
				m.cursor = m.pageSize - 1
				m.loading = true
				return m, m.loadPage
			}
		case "down", "j":
			if m.cursor < len(m.sessions)-1 {
				m.cursor++
			} else if m.offset+len(m.sessions) < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgup":
			if m.offset > 0 {
				m.offset -= m.pageSize
				if m.offset < 0 {
					m.offset = 0
				}
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgdown":
			if m.offset+m.pageSize < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "r":
			m.loading = true
			return m, m.loadPage
		case "enter":
			if len(m.sessions) > 0 && m.cursor < len(m.sessions) {
				sessionID := m.sessions[m.cursor].ID
				return m, func() tea.Msg {
					return OpenSessionDetailMsg{SessionID: sessionID}
				}
			}
		}
	}
	return m, nil
}

// View renders the sessions list
func (m SessionsModel) View() string {
	if m.loading {
		return "\n  Loading sessions..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.sessions) == 0 {
		return "\n  No sessions found. Press 's' to sync."
	}

	var sections []string

	startNum := m.offset + 1
	endNum := m.offset + len(m.sessions)
	title := cardTitleStyle.Render(fmt.Sprintf("Sessions (%d-%d of %d)", startNum, endNum, m.total))
	sections = append(sections, title)

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-10s  %-25s  %-6s  %8s  %6s  %6s  %5s",
		"Date", "Name", "Type", "Distance", "Pace", "HR", "Load"))
	sections = append(sections, header)

	for i, a := range m.sessions {
		hr := "-"
		if a.AverageHR != nil {
			hr = fmt.Sprintf("%.0f", *a.AverageHR)
		}

		load := "-"
		if a.TrainingLoad != nil {
			load = fmt.Sprintf("%.0f", *a.TrainingLoad)
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		row := fmt.Sprintf("%s%-10s  %-25s  %-6s  %8s  %6s  %6s  %5s",
			cursor,
			a.StartDateLocal.Format("Jan 02"),
			truncateName(a.Name, 25),
			a.Type,
			m.units.FormatDistance(a.Distance),
			m.units.FormatPace(a.MovingTime, a.Distance),
			hr,
			load,
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	help := statusStyle.Render("\n  enter: view detail  j/k: navigate  pgup/pgdn: page  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
