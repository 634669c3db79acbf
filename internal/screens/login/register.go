package login

import (
	"context"
	"strconv"

	tea "charm.land/bubbletea/v2"

	"github.com/novax/sochratic/internal/api"
	"github.com/novax/sochratic/internal/auth"
	"github.com/novax/sochratic/internal/screen"
	"github.com/novax/sochratic/internal/ui/components"
	"github.com/novax/sochratic/internal/ui/layout"
)

// RegisterScreen collects a new account's details. Success signs the user
// in directly; there is no separate "now log in" step.
type RegisterScreen struct {
	authenticator *auth.Authenticator
	onSuccess     func(user api.User) tea.Cmd

	fields []registerField
	focus  int
	busy   bool
	errMsg string
}

type registerField struct {
	label string
	input components.TextInput
}

var _ screen.Screen = (*RegisterScreen)(nil)
var _ screen.KeyHintProvider = (*RegisterScreen)(nil)

// NewRegister creates a RegisterScreen.
func NewRegister(authenticator *auth.Authenticator, onSuccess func(user api.User) tea.Cmd) *RegisterScreen {
	fields := []registerField{
		{label: "Username", input: components.NewTextInput("username", false, 64)},
		{label: "Email", input: components.NewTextInput("you@example.com", false, 128)},
		{label: "Name", input: components.NewTextInput("full name", false, 128)},
		{label: "Age", input: components.NewTextInput("age", false, 3)},
		{label: "Password", input: components.NewTextInput("password", true, 128)},
	}
	for i := 1; i < len(fields); i++ {
		fields[i].input.Blur()
	}
	return &RegisterScreen{
		authenticator: authenticator,
		onSuccess:     onSuccess,
		fields:        fields,
	}
}

func (r *RegisterScreen) Init() tea.Cmd {
	return r.fields[0].input.Init()
}

func (r *RegisterScreen) Title() string {
	return "Create account"
}

func (r *RegisterScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Create account"},
		{Key: "Esc", Description: "Back"},
	}
}

func (r *RegisterScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case signedInMsg:
		r.busy = false
		return r, r.onSuccess(*msg.User)

	case authFailedMsg:
		r.busy = false
		r.errMsg = msg.Err.Error()
		return r, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			return r, r.moveFocus(1)
		case "shift+tab", "up":
			return r, r.moveFocus(-1)
		case "enter":
			return r, r.submit()
		}
	}

	var cmd tea.Cmd
	r.fields[r.focus].input, cmd = r.fields[r.focus].input.Update(msg)
	return r, cmd
}

func (r *RegisterScreen) moveFocus(delta int) tea.Cmd {
	r.fields[r.focus].input.Blur()
	r.focus = (r.focus + delta + len(r.fields)) % len(r.fields)
	return r.fields[r.focus].input.Focus()
}

func (r *RegisterScreen) submit() tea.Cmd {
	if r.busy {
		return nil
	}

	req := api.RegisterRequest{
		Username: r.fields[0].input.Value(),
		Email:    r.fields[1].input.Value(),
		Name:     r.fields[2].input.Value(),
		Password: r.fields[4].input.Value(),
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		r.errMsg = "Username, email, and password are required."
		return nil
	}
	if ageStr := r.fields[3].input.Value(); ageStr != "" {
		age, err := strconv.Atoi(ageStr)
		if err != nil {
			r.errMsg = "Age must be a number."
			return nil
		}
		req.Age = age
	}

	r.busy = true
	r.errMsg = ""
	return func() tea.Msg {
		user, err := r.authenticator.Register(context.Background(), req)
		if err != nil {
			return authFailedMsg{Err: err}
		}
		return signedInMsg{User: user}
	}
}

func (r *RegisterScreen) View(width, height int) string {
	var form string
	for i, f := range r.fields {
		if i > 0 {
			form += "\n\n"
		}
		form += renderField(f.label, f.input.View(), i == r.focus)
	}
	return renderAuthCard(width, height, "Join Sochratic", form, r.errMsg, r.busy)
}
