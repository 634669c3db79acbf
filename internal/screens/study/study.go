// Package study hosts one study attempt: a backend session, the stage flow,
// and the per-stage views the learner works through.
package study

import (
	"context"
	"errors"
	"time"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/novax/sochratic/internal/api"
	"github.com/novax/sochratic/internal/flow"
	"github.com/novax/sochratic/internal/router"
	"github.com/novax/sochratic/internal/screen"
	"github.com/novax/sochratic/internal/session"
	"github.com/novax/sochratic/internal/tutor"
	"github.com/novax/sochratic/internal/ui/components"
	"github.com/novax/sochratic/internal/ui/layout"
)

// StageStore persists the resume point for interrupted study attempts.
type StageStore interface {
	SaveStage(ctx context.Context, userID, topicID int, stage string) error
	Stage(ctx context.Context, userID, topicID int) (string, error)
	ClearStage(ctx context.Context, userID, topicID int) error
}

// StudyScreen implements screen.Screen for an active study attempt.
type StudyScreen struct {
	ctrl    *flow.Controller
	manager *session.Manager
	stages  StageStore
	user    api.User
	topic   api.Topic
	log     *zap.Logger

	// ctx is cancelled when the screen closes; in-flight tutor round-trips
	// die with it instead of applying late.
	ctx    context.Context
	cancel context.CancelFunc

	input  components.TextInput
	editor textarea.Model

	material string // rendered explanation markdown
	ready    bool
	errMsg   string
	frame    int
	closed   bool
}

var _ screen.Screen = (*StudyScreen)(nil)
var _ screen.KeyHintProvider = (*StudyScreen)(nil)
var _ screen.Closer = (*StudyScreen)(nil)

// New creates a StudyScreen for one (user, topic) attempt.
func New(gateway tutor.Gateway, backend session.Backend, stages StageStore, recorder session.Recorder, user api.User, topic api.Topic, log *zap.Logger) *StudyScreen {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	manager := session.NewManager(backend, recorder, log, user.ID, topic.ID)
	ctrl := flow.NewController(gateway, manager, log, user.ID, topic.ID)

	ta := textarea.New()
	ta.Placeholder = "Write your solution here..."

	return &StudyScreen{
		ctrl:    ctrl,
		manager: manager,
		stages:  stages,
		user:    user,
		topic:   topic,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		input:   components.NewTextInput("Talk it through with your tutor...", false, 0),
		editor:  ta,
	}
}

func (s *StudyScreen) Init() tea.Cmd {
	return tea.Batch(
		s.start(),
		s.input.Init(),
		spinnerTick(),
	)
}

func (s *StudyScreen) Title() string {
	return s.topic.Title
}

// Close ends the attempt: the in-flight context dies, the backend session is
// abandoned (a no-op after completion), and the resume point is saved or
// cleared. The router calls this exactly once when the screen pops.
func (s *StudyScreen) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	s.manager.Abandon(ctx)

	if !s.ready {
		return
	}
	if s.ctrl.Stage() == flow.StageCompleted {
		if err := s.stages.ClearStage(ctx, s.user.ID, s.topic.ID); err != nil {
			s.log.Warn("clear resume point failed", zap.Error(err))
		}
		return
	}
	if err := s.stages.SaveStage(ctx, s.user.ID, s.topic.ID, string(s.ctrl.Stage())); err != nil {
		s.log.Warn("save resume point failed", zap.Error(err))
	}
}

// start creates the backend session and restores any saved stage.
func (s *StudyScreen) start() tea.Cmd {
	return func() tea.Msg {
		id, err := s.manager.Create(s.ctx)
		if err != nil {
			return startedMsg{Err: err}
		}

		saved, err := s.stages.Stage(s.ctx, s.user.ID, s.topic.ID)
		if err != nil {
			s.log.Warn("load resume point failed", zap.Error(err))
		}
		if saved != "" {
			if st, perr := flow.ParseStage(saved); perr == nil && st != flow.StageCompleted {
				_ = s.ctrl.Resume(st)
			}
		}
		return startedMsg{SessionID: id, Stage: s.ctrl.Stage()}
	}
}

func (s *StudyScreen) KeyHints() []layout.KeyHint {
	switch s.ctrl.Stage() {
	case flow.StageDefault:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Send"},
			{Key: "Ctrl+E", Description: "Ask for material"},
			{Key: "Esc", Description: "Leave"},
		}
	case flow.StageExplanation:
		return []layout.KeyHint{
			{Key: "Ctrl+N", Description: "Draft solution"},
			{Key: "Enter", Description: "Ask a question"},
			{Key: "Esc", Description: "Leave"},
		}
	case flow.StageFinalSolution:
		return []layout.KeyHint{
			{Key: "Ctrl+S", Description: "Submit solution"},
			{Key: "Esc", Description: "Leave"},
		}
	case flow.StageRealisation:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Send"},
			{Key: "Ctrl+N", Description: "Start recall"},
			{Key: "Esc", Description: "Leave"},
		}
	case flow.StageRecall:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Send"},
			{Key: "Ctrl+N", Description: "Finish & claim EXP"},
			{Key: "Esc", Description: "Leave"},
		}
	case flow.StageCompleted:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Back to topics"},
		}
	}
	return nil
}

func (s *StudyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.ready = true
		return s, nil

	case replyMsg:
		return s.handleReply(msg)

	case spinnerTickMsg:
		if s.ctrl.Busy() {
			s.frame++
		}
		return s, spinnerTick()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	return s.forward(msg)
}

func (s *StudyScreen) handleReply(msg replyMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		switch {
		case errors.Is(msg.Err, context.Canceled):
			// Screen is closing; nothing to show.
		case errors.Is(msg.Err, flow.ErrBusy):
			s.errMsg = "Still thinking, hold on..."
		default:
			s.errMsg = msg.Err.Error()
		}
		return s, nil
	}
	s.errMsg = ""

	res := msg.Res
	if !res.Advanced {
		return s, nil
	}

	var cmds []tea.Cmd
	switch res.Stage {
	case flow.StageExplanation:
		s.material = renderMarkdown(s.ctrl.Artifacts().AIText)
	case flow.StageFinalSolution:
		s.editor.SetValue(s.ctrl.Artifacts().FinalSolution)
		cmds = append(cmds, s.editor.Focus())
	case flow.StageCompleted:
		cmds = append(cmds, s.clearResumePoint())
	}
	if res.Stage != flow.StageCompleted {
		cmds = append(cmds, s.saveResumePoint(res.Stage))
	}
	return s, tea.Batch(cmds...)
}

func (s *StudyScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if !s.ready {
		return s, nil
	}
	key := msg.String()

	switch s.ctrl.Stage() {
	case flow.StageDefault:
		switch key {
		case "enter":
			return s, s.submitChat()
		case "ctrl+e":
			return s, s.transition(flow.StageExplanation, s.takeInput())
		}

	case flow.StageExplanation:
		switch key {
		case "enter":
			return s, s.submitChat()
		case "ctrl+n":
			return s, s.transition(flow.StageFinalSolution, "")
		}

	case flow.StageFinalSolution:
		if key == "ctrl+s" {
			if s.ctrl.Busy() {
				return s, nil
			}
			draft := s.editor.Value()
			if err := s.ctrl.SetFinalSolution(draft); err != nil {
				s.errMsg = err.Error()
				return s, nil
			}
			return s, s.transition(flow.StageRealisation, draft)
		}
		var cmd tea.Cmd
		s.editor, cmd = s.editor.Update(msg)
		return s, cmd

	case flow.StageRealisation:
		switch key {
		case "enter":
			return s, s.submitChat()
		case "ctrl+n":
			return s, s.transition(flow.StageRecall, s.takeInput())
		}

	case flow.StageRecall:
		switch key {
		case "enter":
			return s, s.submitChat()
		case "ctrl+n":
			return s, s.transition(flow.StageCompleted, "")
		}

	case flow.StageCompleted:
		if key == "enter" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}

	return s.forward(msg)
}

// forward sends a message to the focused text widget for the current stage.
func (s *StudyScreen) forward(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	if s.ctrl.Stage() == flow.StageFinalSolution {
		s.editor, cmd = s.editor.Update(msg)
	} else {
		s.input, cmd = s.input.Update(msg)
	}
	return s, cmd
}

// takeInput drains the chat input so a transition can carry the typed text.
func (s *StudyScreen) takeInput() string {
	text := s.input.Value()
	s.input.Reset()
	return text
}

// submitChat sends the typed message. Empty input and in-flight turns are
// ignored; the spinner already tells the learner to wait.
func (s *StudyScreen) submitChat() tea.Cmd {
	if s.ctrl.Busy() {
		return nil
	}
	text := s.takeInput()
	if text == "" {
		return nil
	}
	return func() tea.Msg {
		res, err := s.ctrl.Say(s.ctx, text)
		return replyMsg{Res: res, Err: err}
	}
}

func (s *StudyScreen) transition(target flow.Stage, userInput string) tea.Cmd {
	if s.ctrl.Busy() {
		return nil
	}
	return func() tea.Msg {
		res, err := s.ctrl.Transition(s.ctx, target, userInput)
		return replyMsg{Res: res, Err: err}
	}
}

func (s *StudyScreen) saveResumePoint(stage flow.Stage) tea.Cmd {
	return func() tea.Msg {
		if err := s.stages.SaveStage(s.ctx, s.user.ID, s.topic.ID, string(stage)); err != nil {
			s.log.Warn("save resume point failed", zap.Error(err))
		}
		return stageSavedMsg{}
	}
}

func (s *StudyScreen) clearResumePoint() tea.Cmd {
	return func() tea.Msg {
		if err := s.stages.ClearStage(s.ctx, s.user.ID, s.topic.ID); err != nil {
			s.log.Warn("clear resume point failed", zap.Error(err))
		}
		return stageSavedMsg{}
	}
}

// renderMarkdown renders tutor material for the terminal. On renderer
// failure the raw text is still shown.
func renderMarkdown(text string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(76),
	)
	if err != nil {
		return text
	}
	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return out
}

// spinnerTick drives the thinking animation.
func spinnerTick() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return spinnerTickMsg(t)
	})
}
