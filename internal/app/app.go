// Package app wires configuration, storage, the backend client and the
// tutor gateway into the root Bubble Tea model.
package app

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/novax/sochratic/internal/api"
	"github.com/novax/sochratic/internal/auth"
	"github.com/novax/sochratic/internal/config"
	"github.com/novax/sochratic/internal/llm"
	"github.com/novax/sochratic/internal/logging"
	"github.com/novax/sochratic/internal/router"
	"github.com/novax/sochratic/internal/screen"
	"github.com/novax/sochratic/internal/screens/history"
	"github.com/novax/sochratic/internal/screens/home"
	"github.com/novax/sochratic/internal/screens/login"
	"github.com/novax/sochratic/internal/screens/premium"
	"github.com/novax/sochratic/internal/screens/profile"
	"github.com/novax/sochratic/internal/screens/study"
	"github.com/novax/sochratic/internal/screens/topics"
	"github.com/novax/sochratic/internal/session"
	"github.com/novax/sochratic/internal/store"
	"github.com/novax/sochratic/internal/tutor"
	"github.com/novax/sochratic/internal/ui/layout"
)

// App holds the long-lived dependencies shared by all screens.
type App struct {
	cfg           config.Config
	log           *zap.Logger
	store         *store.Store
	client        *api.Client
	authenticator *auth.Authenticator
	gateway       tutor.Gateway

	// unauthorized flips when the backend rejects our token; the root model
	// reacts by swapping the whole stack for the login screen.
	unauthorized atomic.Bool
}

// storeTokens adapts the store to the client's TokenSource.
type storeTokens struct {
	store *store.Store
}

func (s storeTokens) Token() string {
	tok, err := s.store.Token(context.Background())
	if err != nil {
		return ""
	}
	return tok
}

// New builds the dependency graph from configuration.
func New(cfg config.Config, log *zap.Logger, st *store.Store) (*App, error) {
	a := &App{cfg: cfg, log: log, store: st}

	a.client = api.New(api.Options{
		BaseURL: cfg.APIURL,
		Tokens:  storeTokens{store: st},
		Timeout: cfg.RequestTimeout,
		Logger:  log,
		OnUnauthorized: func() {
			a.unauthorized.Store(true)
			if err := st.ClearCredentials(context.Background()); err != nil {
				log.Warn("clear credentials after 401 failed", zap.Error(err))
			}
		},
	})

	a.authenticator = auth.New(a.client, st, log)

	gateway, err := a.buildGateway()
	if err != nil {
		return nil, err
	}
	a.gateway = gateway

	return a, nil
}

// buildGateway picks the tutor transport: the backend by default, a direct
// model provider in offline mode.
func (a *App) buildGateway() (tutor.Gateway, error) {
	if !a.cfg.Offline {
		return tutor.NewRemote(a.client), nil
	}
	if a.cfg.LLM.Provider == "script" {
		return tutor.NewScript(
			"Let's start with what you already know. How would you describe this topic in one sentence?",
			"<MATERIAL_TYPE=concept> Here is the core idea, step by step.",
			"Good. Here is a first draft of the solution.",
			"<IMPLEMENTATION_START> Build it yourself now.",
			"<ACTIVE_RECALL_MODE> Without looking back: what is the key invariant?",
		), nil
	}
	provider, err := llm.NewProvider(context.Background(), a.cfg.LLM, a.log)
	if err != nil {
		return nil, fmt.Errorf("offline tutor: %w", err)
	}
	return tutor.NewOffline(provider), nil
}

// makeLogin builds the sign-in screen, whose success swaps in home.
func (a *App) makeLogin() screen.Screen {
	return login.New(a.authenticator, func(user api.User) tea.Cmd {
		return func() tea.Msg {
			return router.ReplaceScreenMsg{Screen: a.makeHome(user)}
		}
	})
}

// makeHome builds the signed-in landing screen with its navigation wired.
func (a *App) makeHome(user api.User) screen.Screen {
	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: build()}
			}
		}
	}

	return home.New(user, home.Actions{
		OpenTopics: push(func() screen.Screen {
			return topics.New(a.client, func(topic api.Topic) screen.Screen {
				return a.makeStudy(user, topic)
			})
		}),
		OpenProfile: push(func() screen.Screen { return profile.New(a.client) }),
		OpenHistory: push(func() screen.Screen { return history.New(a.store, user.ID) }),
		OpenPremium: push(func() screen.Screen { return premium.New(a.client, user) }),
		SignOut: func() tea.Cmd {
			return func() tea.Msg {
				if err := a.authenticator.Logout(context.Background()); err != nil {
					a.log.Warn("logout failed", zap.Error(err))
				}
				return router.ReplaceScreenMsg{Screen: a.makeLogin()}
			}
		},
	})
}

func (a *App) makeStudy(user api.User, topic api.Topic) screen.Screen {
	var recorder session.Recorder = a.store
	return study.New(a.gateway, a.client, a.store, recorder, user, topic, a.log)
}

// initialScreen returns home when saved credentials are still usable,
// otherwise the login form.
func (a *App) initialScreen() screen.Screen {
	user, err := a.authenticator.Current(context.Background())
	if err != nil {
		return a.makeLogin()
	}
	return a.makeHome(*user)
}

// Model is the root Bubble Tea model.
type Model struct {
	app    *App
	router *router.Router
	width  int
	height int
}

// NewModel creates the root model starting at the right screen.
func NewModel(a *App) Model {
	return Model{
		app:    a,
		router: router.New(a.initialScreen()),
	}
}

func (m Model) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// A 401 anywhere invalidates the whole signed-in stack.
	if m.app.unauthorized.Swap(false) {
		m.router = router.New(m.app.makeLogin())
		return m, m.router.Active().Init()
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, 0, 0, m.width)

	var footerHints []layout.KeyHint
	if provider, ok := active.(screen.KeyHintProvider); ok {
		footerHints = provider.KeyHints()
	}
	if footerHints == nil {
		if m.router.Depth() > 1 {
			footerHints = []layout.KeyHint{
				{Key: "Esc", Description: "Back"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		} else {
			footerHints = []layout.KeyHint{
				{Key: "↑↓", Description: "Navigate"},
				{Key: "Enter", Description: "Select"},
				{Key: "Ctrl+C", Description: "Quit"},
			}
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the full application: config, logging, storage, then the TUI.
func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logging.New(cfg.LogPath, os.Getenv("SOCHRATIC_DEBUG") != "")
	defer func() { _ = log.Sync() }()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer st.Close()

	a, err := New(cfg, log, st)
	if err != nil {
		return err
	}

	p := tea.NewProgram(NewModel(a))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
