package tui

import (
	"context"
	"fmt"
	"strings"

	"paceline/internal/intervals"
	"paceline/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SyncModel is the sync screen model
type SyncModel struct {
	syncService *service.SyncService
	syncing     bool
	forced      bool
	result      *service.SyncResult
	err         error
	done        bool
}

// NewSyncModel creates a new sync model
func NewSyncModel(ss *service.SyncService) SyncModel {
	return SyncModel{
		syncService: ss,
	}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return nil
}

// SyncDoneMsg is sent when sync finishes
type SyncDoneMsg struct {
	Result *service.SyncResult
	Err    error
}

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SyncDoneMsg:
		m.syncing = false
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		if m.err == nil {
			return m, func() tea.Msg { return SyncCompleteMsg{} }
		}
		return m, nil

	case tea.KeyMsg:
		if !m.syncing {
			switch msg.String() {
			case "enter", "s":
				m.syncing = true
				m.forced = false
				m.done = false
				m.err = nil
				m.result = nil
				return m, m.runSync(false)
			case "f":
				m.syncing = true
				m.forced = true
				m.done = false
				m.err = nil
				m.result = nil
				return m, m.runSync(true)
			}
		}
	}
	return m, nil
}

func (m SyncModel) runSync(forced bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		// Pass nil for the progress channel; per-item updates would force
		// the pipeline to block whenever the buffer fills.
		result, syncErr := m.syncService.SyncAll(ctx, service.SyncOptions{Forced: forced}, nil)

		return SyncDoneMsg{Result: result, Err: syncErr}
	}
}

// View renders the sync screen
func (m SyncModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Sync")
	sections = append(sections, title)

	if m.err != nil {
		sections = append(sections, m.renderError())
		sections = append(sections, "\n"+statusStyle.Render("  Press 's' or Enter to retry"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.done && !m.syncing {
		sections = append(sections, successStyle.Render("\n  Sync complete!"))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press '1' to go to dashboard"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.syncing {
		sections = append(sections, m.renderProgress())
	} else {
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderError() string {
	if m.err == intervals.ErrNotConfigured {
		return errorStyle.Render("\n  No API key configured.") + "\n" +
			statusStyle.Render("  Add your intervals.icu credentials to ~/.paceline/config.json")
	}
	return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
}

func (m SyncModel) renderStartPrompt() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  This will sync your training data:")
	lines = append(lines, "")
	lines = append(lines, "  1. Fetch new activities")
	lines = append(lines, "  2. Download interval details and notes")
	lines = append(lines, "  3. Fetch daily wellness records")
	lines = append(lines, "  4. Merge cross-training sessions")
	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  Press 's' or Enter for incremental sync"))
	lines = append(lines, statusStyle.Render("  Press 'f' to re-fetch the full history window"))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderProgress() string {
	var lines []string

	lines = append(lines, "")
	if m.forced {
		lines = append(lines, "  Running full sync...")
	} else {
		lines = append(lines, "  Syncing new data...")
	}
	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  This may take a moment..."))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	var lines []string

	if m.result == nil {
		return ""
	}

	r := m.result
	lines = append(lines, "")

	if r.ActivitiesStored > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d activities synced", r.ActivitiesStored)))
	} else {
		lines = append(lines, statusStyle.Render("  No new activities"))
	}

	if r.DetailsFetched > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d interval details downloaded", r.DetailsFetched)))
	}

	if r.MessagesFetched > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d notes fetched", r.MessagesFetched)))
	}

	if r.WellnessStored > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d wellness days updated", r.WellnessStored)))
	}

	if r.CrossTrainingMerged > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d cross-training sessions merged", r.CrossTrainingMerged)))
	}

	if len(r.Errors) > 0 {
		lines = append(lines, "")
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d errors occurred", len(r.Errors))))
	}

	return strings.Join(lines, "\n")
}
