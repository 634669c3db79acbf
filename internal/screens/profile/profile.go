// Package profile shows the signed-in user's progress.
package profile

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/novax/sochratic/internal/api"
	"github.com/novax/sochratic/internal/screen"
	"github.com/novax/sochratic/internal/ui/layout"
	"github.com/novax/sochratic/internal/ui/theme"
)

// Source fetches the profile from the backend.
type Source interface {
	Profile(ctx context.Context) (*api.Profile, error)
}

type profileLoadedMsg struct {
	Profile *api.Profile
	Err     error
}

// ProfileScreen shows EXP, level, and plan.
type ProfileScreen struct {
	source  Source
	profile *api.Profile
	errMsg  string
}

var _ screen.Screen = (*ProfileScreen)(nil)
var _ screen.KeyHintProvider = (*ProfileScreen)(nil)

// New creates a ProfileScreen.
func New(source Source) *ProfileScreen {
	return &ProfileScreen{source: source}
}

func (p *ProfileScreen) Init() tea.Cmd {
	return func() tea.Msg {
		profile, err := p.source.Profile(context.Background())
		return profileLoadedMsg{Profile: profile, Err: err}
	}
}

func (p *ProfileScreen) Title() string {
	return "Profile"
}

func (p *ProfileScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Esc", Description: "Back"},
	}
}

func (p *ProfileScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if loaded, ok := msg.(profileLoadedMsg); ok {
		if loaded.Err != nil {
			p.errMsg = loaded.Err.Error()
		} else {
			p.profile = loaded.Profile
		}
	}
	return p, nil
}

func (p *ProfileScreen) View(width, height int) string {
	if p.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render("\n\n  Could not load profile: " + p.errMsg)
	}
	if p.profile == nil {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  Loading profile...")
	}

	pr := p.profile
	rows := []string{
		row("Username", pr.User.Username),
		row("Email", pr.User.Email),
		row("Level", fmt.Sprintf("%d", pr.Level)),
		row("Total EXP", fmt.Sprintf("%d", pr.TotalExp)),
		row("Plan", planLabel(pr.Plan)),
	}

	body := theme.Title.Render(pr.User.Name) + "\n\n"
	for _, r := range rows {
		body += r + "\n"
	}

	card := theme.Card.Width(min(width-8, 56)).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func row(label, value string) string {
	l := lipgloss.NewStyle().Foreground(theme.TextDim).Width(12).Render(label)
	v := lipgloss.NewStyle().Foreground(theme.Text).Render(value)
	return l + v
}

func planLabel(plan string) string {
	if plan == "" {
		return "Free"
	}
	return plan
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
