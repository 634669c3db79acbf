// Package home is the signed-in landing screen.
package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/novax/sochratic/internal/api"
	"github.com/novax/sochratic/internal/screen"
	"github.com/novax/sochratic/internal/ui/components"
	"github.com/novax/sochratic/internal/ui/theme"
)

// Actions are the navigation callbacks the home menu fires. They are wired
// by the app so home doesn't depend on every other screen package.
type Actions struct {
	OpenTopics  func() tea.Cmd
	OpenProfile func() tea.Cmd
	OpenHistory func() tea.Cmd
	OpenPremium func() tea.Cmd
	SignOut     func() tea.Cmd
}

// HomeScreen is the main menu after sign-in.
type HomeScreen struct {
	user api.User
	menu components.Menu
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a HomeScreen for the signed-in user.
func New(user api.User, actions Actions) *HomeScreen {
	items := []components.MenuItem{
		{Label: "STUDY A TOPIC", Action: actions.OpenTopics},
		{Label: "PROFILE", Action: actions.OpenProfile},
		{Label: "HISTORY", Action: actions.OpenHistory},
		{Label: "GO PREMIUM", Action: actions.OpenPremium},
		{Label: "SIGN OUT", Action: actions.SignOut},
		{Label: "QUIT", Action: func() tea.Cmd { return tea.Quit }},
	}

	return &HomeScreen{
		user: user,
		menu: components.NewMenu(items),
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, theme.Title.Width(width).Render("S O C H R A T I C"))
	sections = append(sections, theme.Subtitle.Width(width).Render(
		"Learn by answering, not by reading."))

	greeting := lipgloss.NewStyle().
		Foreground(theme.Text).
		Align(lipgloss.Center).
		Width(width).
		Render(fmt.Sprintf("Signed in as %s", h.user.Username))
	sections = append(sections, greeting)

	menu := lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Card.Render(h.menu.View()))
	sections = append(sections, menu)

	content := strings.Join(sections, "\n\n")
	return lipgloss.PlaceVertical(height, lipgloss.Center, content)
}
