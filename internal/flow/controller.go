package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/novax/sochratic/internal/session"
	"github.com/novax/sochratic/internal/tutor"
)

// ErrBusy is returned when a transition or chat turn is requested while a
// previous one is still in flight. Callers disable their submit controls on
// this signal; the in-flight turn continues undisturbed.
var ErrBusy = errors.New("a tutor round-trip is already in flight")

// ErrUnknownStage is returned for a transition target that is not a stage.
var ErrUnknownStage = errors.New("unknown stage")

// Sessions is the slice of the session manager the controller needs.
type Sessions interface {
	SessionID() string
	Complete(ctx context.Context) (*session.Reward, error)
}

// defaultContinue is the text sent for stage advances that the learner
// triggers with a button rather than a typed message.
const defaultContinue = "Continue."

// Controller drives the learning flow for one study attempt. All state
// transitions go through it; stage views render its snapshots and never
// mutate flow state themselves.
type Controller struct {
	gateway  tutor.Gateway
	sessions Sessions
	userID   int
	topicID  int
	log      *zap.Logger

	mu         sync.Mutex
	stage      Stage
	artifacts  Artifacts
	transcript []Message
	busy       bool
	reward     *session.Reward
}

// NewController creates a controller starting at the default stage.
func NewController(gateway tutor.Gateway, sessions Sessions, log *zap.Logger, userID, topicID int) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		gateway:  gateway,
		sessions: sessions,
		userID:   userID,
		topicID:  topicID,
		log:      log,
		stage:    StageDefault,
	}
}

// Resume puts the controller at a previously saved stage. Only valid before
// any turn has been taken.
func (c *Controller) Resume(stage Stage) error {
	if !stage.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStage, stage)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy || len(c.transcript) > 0 {
		return errors.New("resume after first turn")
	}
	c.stage = stage
	return nil
}

// Result reports what a transition or chat turn did.
type Result struct {
	// Stage is the stage after the operation; unchanged when gating failed.
	Stage Stage

	// Reply is the tutor's reply text, empty for the completed transition.
	Reply string

	// Advanced reports whether the stage actually changed.
	Advanced bool

	// Reward is set only when the completed transition succeeds.
	Reward *session.Reward
}

// Stage returns the current stage.
func (c *Controller) Stage() Stage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage
}

// Busy reports whether a round-trip is in flight.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Artifacts returns a copy of the stage payloads.
func (c *Controller) Artifacts() Artifacts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.artifacts
}

// Transcript returns a copy of the conversation so far.
func (c *Controller) Transcript() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Reward returns the EXP breakdown once the flow completed, else nil.
func (c *Controller) Reward() *session.Reward {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reward
}

// SetFinalSolution overwrites the solution draft with the learner's edits.
// Legal only in the finalSolution stage, where the draft is learner-owned.
func (c *Controller) SetFinalSolution(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stage != StageFinalSolution {
		return fmt.Errorf("cannot edit solution in stage %q", c.stage)
	}
	c.artifacts.FinalSolution = text
	return nil
}

// acquire marks the controller busy, failing if it already is.
func (c *Controller) acquire() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	c.busy = true
	return nil
}

func (c *Controller) release() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// chatMode maps a stage to the mode used for free-form conversation in it.
func chatMode(s Stage) tutor.Mode {
	switch s {
	case StageExplanation:
		return tutor.ModeExplain
	case StageRealisation:
		return tutor.ModeImplementation
	case StageRecall:
		return tutor.ModeRecall
	default:
		return tutor.ModeDefault
	}
}

// Say sends a free-form chat message in the current stage's conversational
// mode. A material signal in the reply advances default into explanation,
// the only auto-advance in the flow.
func (c *Controller) Say(ctx context.Context, text string) (*Result, error) {
	if err := c.acquire(); err != nil {
		return nil, err
	}
	defer c.release()

	c.append(newMessage(AuthorLearner, text, false))

	c.mu.Lock()
	mode := chatMode(c.stage)
	c.mu.Unlock()

	reply, err := c.send(ctx, text, mode)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.transcript = append(c.transcript, newMessage(AuthorTutor, reply.Text, reply.Signal != tutor.SignalNone))

	res := &Result{Stage: c.stage, Reply: reply.Text}
	if c.stage == StageDefault && reply.Signal == tutor.SignalMaterial {
		c.stage = StageExplanation
		c.artifacts.AIText = reply.Text
		res.Stage = StageExplanation
		res.Advanced = true
		c.log.Info("stage advanced", zap.String("from", string(StageDefault)), zap.String("to", string(StageExplanation)))
	}
	return res, nil
}

// Transition moves the flow toward target. Gated targets require the tutor's
// reply to carry the matching signal; without it the stage holds and the
// reply lands in the transcript as a normal turn. userInput may be empty, in
// which case a neutral continuation message is sent.
func (c *Controller) Transition(ctx context.Context, target Stage, userInput string) (*Result, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, target)
	}
	if err := c.acquire(); err != nil {
		return nil, err
	}
	defer c.release()

	switch target {
	case StageDefault:
		return c.applyLocal(target), nil
	case StageExplanation:
		return c.roundTrip(ctx, target, userInput, tutor.ModeExplain, tutor.SignalMaterial)
	case StageFinalSolution:
		return c.roundTrip(ctx, target, userInput, tutor.ModeSolution, tutor.SignalNone)
	case StageRealisation:
		return c.roundTrip(ctx, target, userInput, tutor.ModeImplementation, tutor.SignalImplementationStart)
	case StageRecall:
		return c.roundTrip(ctx, target, userInput, tutor.ModeRecall, tutor.SignalRecallStart)
	case StageCompleted:
		return c.complete(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, target)
	}
}

// applyLocal switches stage without a tutor round-trip.
func (c *Controller) applyLocal(target Stage) *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	advanced := c.stage != target
	c.stage = target
	return &Result{Stage: target, Advanced: advanced}
}

// roundTrip performs one tutor exchange for a stage advance. want is the
// signal that permits the advance; SignalNone means the advance is ungated.
func (c *Controller) roundTrip(ctx context.Context, target Stage, userInput string, mode tutor.Mode, want tutor.Signal) (*Result, error) {
	text := userInput
	if text == "" {
		text = defaultContinue
	}
	c.append(newMessage(AuthorLearner, text, false))

	reply, err := c.send(ctx, text, mode)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	granted := want == tutor.SignalNone || reply.Signal == want
	c.transcript = append(c.transcript, newMessage(AuthorTutor, reply.Text, granted && want != tutor.SignalNone))

	res := &Result{Stage: c.stage, Reply: reply.Text}
	if !granted {
		c.log.Info("stage advance not granted",
			zap.String("target", string(target)),
			zap.String("signal", reply.Signal.String()))
		return res, nil
	}

	from := c.stage
	c.stage = target
	res.Stage = target
	res.Advanced = true

	// Each advance hands its payload to the next stage by copy.
	switch target {
	case StageExplanation:
		c.artifacts.AIText = reply.Text
	case StageFinalSolution:
		c.artifacts.FinalSolution = reply.Text
	case StageRealisation:
		c.artifacts.Problem = reply.Text
	}

	c.log.Info("stage advanced", zap.String("from", string(from)), zap.String("to", string(target)))
	return res, nil
}

// complete finishes the flow. No tutor round-trip; the session manager call
// is the whole transition, and its failure leaves the stage untouched so the
// learner can retry.
func (c *Controller) complete(ctx context.Context) (*Result, error) {
	reward, err := c.sessions.Complete(ctx)
	if err != nil {
		return nil, fmt.Errorf("complete flow: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stage = StageCompleted
	c.reward = reward
	c.log.Info("flow completed", zap.Int("total_exp", reward.TotalExp))
	return &Result{Stage: StageCompleted, Advanced: true, Reward: reward}, nil
}

// send performs one gateway exchange. A context cancelled mid-flight
// discards the reply even if the gateway settled successfully.
func (c *Controller) send(ctx context.Context, text string, mode tutor.Mode) (*tutor.Reply, error) {
	reply, err := c.gateway.Send(ctx, tutor.Turn{
		SessionID: c.sessions.SessionID(),
		TopicID:   c.topicID,
		UserID:    c.userID,
		Text:      text,
		Mode:      mode,
	})
	if err != nil {
		return nil, fmt.Errorf("tutor: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *Controller) append(msg Message) {
	c.mu.Lock()
	c.transcript = append(c.transcript, msg)
	c.mu.Unlock()
}
