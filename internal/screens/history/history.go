// Package history lists past study sessions from the local log.
package history

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/novax/sochratic/internal/screen"
	"github.com/novax/sochratic/internal/store"
	"github.com/novax/sochratic/internal/ui/layout"
	"github.com/novax/sochratic/internal/ui/theme"
)

// Log is the slice of the store this screen needs.
type Log interface {
	History(ctx context.Context, userID, limit int) ([]store.SessionEntry, error)
}

type historyLoadedMsg struct {
	Entries []store.SessionEntry
	Err     error
}

// HistoryScreen shows recent session outcomes.
type HistoryScreen struct {
	log    Log
	userID int

	entries []store.SessionEntry
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a HistoryScreen for the given user.
func New(log Log, userID int) *HistoryScreen {
	return &HistoryScreen{log: log, userID: userID}
}

func (h *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		entries, err := h.log.History(context.Background(), h.userID, 50)
		return historyLoadedMsg{Entries: entries, Err: err}
	}
}

func (h *HistoryScreen) Title() string {
	return "History"
}

func (h *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (h *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if loaded, ok := msg.(historyLoadedMsg); ok {
		if loaded.Err != nil {
			h.errMsg = loaded.Err.Error()
		} else {
			h.entries = loaded.Entries
			h.loaded = true
		}
	}
	return h, nil
}

func (h *HistoryScreen) View(width, height int) string {
	if h.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render("\n\n  Could not load history: " + h.errMsg)
	}
	if !h.loaded {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  Loading history...")
	}
	if len(h.entries) == 0 {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  No sessions yet. Go study something!")
	}

	body := theme.Title.Render("Recent sessions") + "\n\n"
	shown := h.entries
	maxRows := height - 8
	if maxRows > 0 && len(shown) > maxRows {
		shown = shown[:maxRows]
	}
	for _, e := range shown {
		body += renderEntry(e) + "\n"
	}

	card := theme.Card.Width(min(width-8, 72)).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func renderEntry(e store.SessionEntry) string {
	when := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(e.CreatedAt.Format("Jan 02 15:04"))

	var outcome string
	switch e.Outcome {
	case "completed":
		outcome = lipgloss.NewStyle().Foreground(theme.Success).Render("completed")
	case "abandoned":
		outcome = lipgloss.NewStyle().Foreground(theme.Error).Render("abandoned")
	default:
		outcome = lipgloss.NewStyle().Foreground(theme.TextDim).Render(e.Outcome)
	}

	exp := ""
	if e.TotalExp > 0 {
		exp = lipgloss.NewStyle().
			Foreground(theme.Accent).
			Render(fmt.Sprintf("  +%d EXP", e.TotalExp))
	}

	topic := lipgloss.NewStyle().
		Foreground(theme.Text).
		Render(fmt.Sprintf("  topic %d  ", e.TopicID))

	return when + topic + outcome + exp
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
