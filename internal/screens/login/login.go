// Package login holds the sign-in and registration screens.
package login

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/novax/sochratic/internal/api"
	"github.com/novax/sochratic/internal/auth"
	"github.com/novax/sochratic/internal/router"
	"github.com/novax/sochratic/internal/screen"
	"github.com/novax/sochratic/internal/ui/components"
	"github.com/novax/sochratic/internal/ui/layout"
	"github.com/novax/sochratic/internal/ui/theme"
)

// signedInMsg is sent when login or registration succeeds.
type signedInMsg struct {
	User *api.User
}

// authFailedMsg is sent when the backend rejects the attempt.
type authFailedMsg struct {
	Err error
}

// LoginScreen asks for username and password.
type LoginScreen struct {
	authenticator *auth.Authenticator
	onSuccess     func(user api.User) tea.Cmd

	username components.TextInput
	password components.TextInput
	focus    int
	busy     bool
	errMsg   string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen. onSuccess builds the command to run once the
// user is signed in, typically replacing this screen with home.
func New(authenticator *auth.Authenticator, onSuccess func(user api.User) tea.Cmd) *LoginScreen {
	username := components.NewTextInput("username", false, 64)
	password := components.NewTextInput("password", true, 128)
	password.Blur()

	return &LoginScreen{
		authenticator: authenticator,
		onSuccess:     onSuccess,
		username:      username,
		password:      password,
	}
}

func (l *LoginScreen) Init() tea.Cmd {
	return l.username.Init()
}

func (l *LoginScreen) Title() string {
	return "Sign in"
}

func (l *LoginScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Sign in"},
		{Key: "Ctrl+R", Description: "Register"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (l *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case signedInMsg:
		l.busy = false
		return l, l.onSuccess(*msg.User)

	case authFailedMsg:
		l.busy = false
		l.errMsg = msg.Err.Error()
		return l, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			return l, l.toggleFocus()
		case "enter":
			return l, l.submit()
		case "ctrl+r":
			return l, func() tea.Msg {
				return router.PushScreenMsg{
					Screen: NewRegister(l.authenticator, l.onSuccess),
				}
			}
		}
	}

	return l, l.forward(msg)
}

func (l *LoginScreen) toggleFocus() tea.Cmd {
	l.focus = 1 - l.focus
	if l.focus == 0 {
		l.password.Blur()
		return l.username.Focus()
	}
	l.username.Blur()
	return l.password.Focus()
}

func (l *LoginScreen) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if l.focus == 0 {
		l.username, cmd = l.username.Update(msg)
	} else {
		l.password, cmd = l.password.Update(msg)
	}
	return cmd
}

func (l *LoginScreen) submit() tea.Cmd {
	if l.busy {
		return nil
	}
	username, password := l.username.Value(), l.password.Value()
	if username == "" || password == "" {
		l.errMsg = "Username and password are required."
		return nil
	}
	l.busy = true
	l.errMsg = ""
	return func() tea.Msg {
		user, err := l.authenticator.Login(context.Background(), username, password)
		if err != nil {
			return authFailedMsg{Err: err}
		}
		return signedInMsg{User: user}
	}
}

func (l *LoginScreen) View(width, height int) string {
	form := renderField("Username", l.username.View(), l.focus == 0) + "\n\n" +
		renderField("Password", l.password.View(), l.focus == 1)

	return renderAuthCard(width, height, "Welcome back", form, l.errMsg, l.busy)
}

func renderField(label, input string, focused bool) string {
	style := lipgloss.NewStyle().Foreground(theme.TextDim)
	if focused {
		style = lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	}
	return style.Render(label) + "\n" + input
}

func renderAuthCard(width, height int, title, form, errMsg string, busy bool) string {
	var body string
	body += theme.Title.Render(title) + "\n\n"
	body += form + "\n"
	if errMsg != "" {
		body += "\n" + theme.ErrorBanner.Render(errMsg)
	}
	if busy {
		body += "\n" + theme.Hint.Render("Checking...")
	}

	card := theme.Card.Width(min(width-8, 56)).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
