// Package premium creates payment checkout sessions for plan upgrades.
package premium

import (
	"context"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/novax/sochratic/internal/api"
	"github.com/novax/sochratic/internal/screen"
	"github.com/novax/sochratic/internal/ui/components"
	"github.com/novax/sochratic/internal/ui/layout"
	"github.com/novax/sochratic/internal/ui/theme"
)

// Payments is the slice of the API client this screen needs.
type Payments interface {
	CreateCheckout(ctx context.Context, req api.CheckoutRequest) (*api.CheckoutSession, error)
}

type checkoutCreatedMsg struct {
	Session *api.CheckoutSession
	Err     error
}

type plan struct {
	id    string
	label string
}

var plans = []plan{
	{id: "premium-monthly", label: "Premium Monthly"},
	{id: "premium-yearly", label: "Premium Yearly (2 months free)"},
}

// PremiumScreen lets the learner start a checkout. The terminal can't host
// a payment page, so the checkout URL is displayed to open in a browser.
type PremiumScreen struct {
	payments Payments
	user     api.User

	menu        components.Menu
	checkoutURL string
	busy        bool
	errMsg      string
}

var _ screen.Screen = (*PremiumScreen)(nil)
var _ screen.KeyHintProvider = (*PremiumScreen)(nil)

// New creates a PremiumScreen.
func New(payments Payments, user api.User) *PremiumScreen {
	p := &PremiumScreen{payments: payments, user: user}

	items := make([]components.MenuItem, 0, len(plans))
	for _, pl := range plans {
		pl := pl
		items = append(items, components.MenuItem{
			Label:  pl.label,
			Action: func() tea.Cmd { return p.checkout(pl) },
		})
	}
	p.menu = components.NewMenu(items)
	return p
}

func (p *PremiumScreen) Init() tea.Cmd {
	return nil
}

func (p *PremiumScreen) Title() string {
	return "Premium"
}

func (p *PremiumScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Choose plan"},
		{Key: "Esc", Description: "Back"},
	}
}

func (p *PremiumScreen) checkout(pl plan) tea.Cmd {
	if p.busy {
		return nil
	}
	p.busy = true
	p.errMsg = ""
	return func() tea.Msg {
		session, err := p.payments.CreateCheckout(context.Background(), api.CheckoutRequest{
			PlanID:        pl.id,
			Quantity:      1,
			Mode:          "subscription",
			UserID:        p.user.ID,
			CustomerEmail: p.user.Email,
		})
		return checkoutCreatedMsg{Session: session, Err: err}
	}
}

func (p *PremiumScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case checkoutCreatedMsg:
		p.busy = false
		if msg.Err != nil {
			p.errMsg = msg.Err.Error()
			return p, nil
		}
		p.checkoutURL = msg.Session.URL
		return p, nil

	case tea.KeyMsg:
		if p.checkoutURL != "" {
			// Any key returns to the plan list.
			p.checkoutURL = ""
			return p, nil
		}
	}

	var cmd tea.Cmd
	p.menu, cmd = p.menu.Update(msg)
	return p, cmd
}

func (p *PremiumScreen) View(width, height int) string {
	var body string

	switch {
	case p.checkoutURL != "":
		body = theme.Title.Render("Almost there") + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.Text).Render(
				"Open this link in your browser to finish:") + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.Secondary).Underline(true).Render(p.checkoutURL) + "\n\n" +
			theme.Hint.Render("Press any key to go back.")

	case p.busy:
		body = theme.Title.Render("Go Premium") + "\n\n" +
			theme.Hint.Render("Creating checkout session...")

	default:
		body = theme.Title.Render("Go Premium") + "\n\n" +
			lipgloss.NewStyle().Foreground(theme.TextDim).Render(
				"Unlimited topics and priority tutoring.") + "\n\n" +
			p.menu.View()
		if p.errMsg != "" {
			body += "\n" + theme.ErrorBanner.Render(p.errMsg)
		}
	}

	card := theme.Card.Width(min(width-8, 64)).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
