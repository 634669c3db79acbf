// Package topics lists studyable topics and launches study attempts.
package topics

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/novax/sochratic/internal/api"
	"github.com/novax/sochratic/internal/router"
	"github.com/novax/sochratic/internal/screen"
	"github.com/novax/sochratic/internal/ui/components"
	"github.com/novax/sochratic/internal/ui/layout"
	"github.com/novax/sochratic/internal/ui/theme"
)

// Catalog is the slice of the API client this screen needs.
type Catalog interface {
	Topics(ctx context.Context) ([]api.Topic, error)
}

// topicsLoadedMsg is sent when the topic list arrives.
type topicsLoadedMsg struct {
	Topics []api.Topic
	Err    error
}

// TopicsScreen shows the topic catalog.
type TopicsScreen struct {
	catalog   Catalog
	openStudy func(topic api.Topic) screen.Screen

	topics  []api.Topic
	menu    components.Menu
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*TopicsScreen)(nil)
var _ screen.KeyHintProvider = (*TopicsScreen)(nil)

// New creates a TopicsScreen. openStudy builds the study screen for the
// chosen topic.
func New(catalog Catalog, openStudy func(topic api.Topic) screen.Screen) *TopicsScreen {
	return &TopicsScreen{
		catalog:   catalog,
		openStudy: openStudy,
	}
}

func (t *TopicsScreen) Init() tea.Cmd {
	return t.load()
}

func (t *TopicsScreen) Title() string {
	return "Topics"
}

func (t *TopicsScreen) KeyHints() []layout.KeyHint {
	if t.errMsg != "" {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Study"},
		{Key: "Esc", Description: "Back"},
	}
}

func (t *TopicsScreen) load() tea.Cmd {
	return func() tea.Msg {
		topics, err := t.catalog.Topics(context.Background())
		return topicsLoadedMsg{Topics: topics, Err: err}
	}
}

func (t *TopicsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case topicsLoadedMsg:
		if msg.Err != nil {
			t.errMsg = msg.Err.Error()
			return t, nil
		}
		t.errMsg = ""
		t.loaded = true
		t.topics = msg.Topics
		t.menu = components.NewMenu(t.menuItems())
		return t, nil

	case tea.KeyMsg:
		if t.errMsg != "" && msg.String() == "r" {
			t.errMsg = ""
			return t, t.load()
		}
	}

	if !t.loaded {
		return t, nil
	}
	var cmd tea.Cmd
	t.menu, cmd = t.menu.Update(msg)
	return t, cmd
}

func (t *TopicsScreen) menuItems() []components.MenuItem {
	items := make([]components.MenuItem, 0, len(t.topics))
	for _, topic := range t.topics {
		topic := topic
		items = append(items, components.MenuItem{
			Label: topic.Title,
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: t.openStudy(topic)}
				}
			},
		})
	}
	return items
}

func (t *TopicsScreen) View(width, height int) string {
	if t.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render("\n\n  Could not load topics: " + t.errMsg)
	}
	if !t.loaded {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  Loading topics...")
	}
	if len(t.topics) == 0 {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  No topics available yet.")
	}

	var desc string
	if t.menu.Selected >= 0 && t.menu.Selected < len(t.topics) {
		desc = t.topics[t.menu.Selected].Description
	}

	body := theme.Title.Render("Pick a topic") + "\n\n" +
		t.menu.View()
	if desc != "" {
		body += "\n" + lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Width(min(width-12, 70)).
			Render(desc)
	}

	card := theme.Card.Width(min(width-8, 76)).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
