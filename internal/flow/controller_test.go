package flow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/novax/sochratic/internal/session"
	"github.com/novax/sochratic/internal/tutor"
)

type fakeSessions struct {
	mu            sync.Mutex
	completeErr   error
	completeCalls int
}

func (f *fakeSessions) SessionID() string { return "sess-1" }

func (f *fakeSessions) Complete(_ context.Context) (*session.Reward, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completeCalls++
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return &session.Reward{TotalExp: 120, Level: 3}, nil
}

// blockingGateway holds every Send until released, to test concurrency.
type blockingGateway struct {
	release chan struct{}
}

func (g *blockingGateway) Send(ctx context.Context, _ tutor.Turn) (*tutor.Reply, error) {
	select {
	case <-g.release:
		return &tutor.Reply{Text: "ok"}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func newController(gw tutor.Gateway) *Controller {
	return NewController(gw, &fakeSessions{}, nil, 1, 42)
}

func TestSay_MaterialSignalAdvancesToExplanation(t *testing.T) {
	gw := tutor.NewScript("<MATERIAL_TYPE=concept> Closures capture their environment.")
	c := newController(gw)

	res, err := c.Say(context.Background(), "what is a closure?")
	if err != nil {
		t.Fatalf("Say: %v", err)
	}
	if !res.Advanced || res.Stage != StageExplanation {
		t.Fatalf("res = %+v, want advance to explanation", res)
	}
	if c.Stage() != StageExplanation {
		t.Errorf("stage = %q", c.Stage())
	}
	if got := c.Artifacts().AIText; got != res.Reply {
		t.Errorf("AIText = %q, want the reply", got)
	}
}

func TestSay_NoSignalStaysDefault(t *testing.T) {
	gw := tutor.NewScript("What do you already know about closures?")
	c := newController(gw)

	res, err := c.Say(context.Background(), "teach me closures")
	if err != nil {
		t.Fatalf("Say: %v", err)
	}
	if res.Advanced {
		t.Error("must not advance without a material signal")
	}
	if c.Stage() != StageDefault {
		t.Errorf("stage = %q, want default", c.Stage())
	}
	// Both turns land in the transcript as an ordinary exchange.
	if got := len(c.Transcript()); got != 2 {
		t.Errorf("transcript = %d messages, want 2", got)
	}
}

func TestTransition_GatedAdvanceHoldsStageWithoutSignal(t *testing.T) {
	gw := tutor.NewScript("Tell me first: what will you build?")
	c := newController(gw)

	res, err := c.Transition(context.Background(), StageRealisation, "")
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if res.Advanced {
		t.Error("advance must be refused without implementation signal")
	}
	if c.Stage() != StageDefault {
		t.Errorf("stage = %q, want default", c.Stage())
	}
	if c.Artifacts().Problem != "" {
		t.Error("Problem artifact must stay empty on a refused advance")
	}
}

func TestTransition_ImplementationSignalStoresProblem(t *testing.T) {
	gw := tutor.NewScript("<IMPLEMENTATION_START> Build a bounded queue.")
	c := newController(gw)

	res, err := c.Transition(context.Background(), StageRealisation, "")
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if !res.Advanced || c.Stage() != StageRealisation {
		t.Fatalf("stage = %q, res = %+v", c.Stage(), res)
	}
	if c.Artifacts().Problem != res.Reply {
		t.Errorf("Problem = %q, want reply text", c.Artifacts().Problem)
	}
}

func TestTransition_FinalSolutionUngatedAndEditable(t *testing.T) {
	gw := tutor.NewScript("Here is a first draft of the solution.")
	c := newController(gw)

	res, err := c.Transition(context.Background(), StageFinalSolution, "")
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if !res.Advanced || c.Stage() != StageFinalSolution {
		t.Fatalf("stage = %q", c.Stage())
	}
	if c.Artifacts().FinalSolution != res.Reply {
		t.Errorf("draft = %q, want tutor seed", c.Artifacts().FinalSolution)
	}

	if err := c.SetFinalSolution("my own version"); err != nil {
		t.Fatalf("SetFinalSolution: %v", err)
	}
	if got := c.Artifacts().FinalSolution; got != "my own version" {
		t.Errorf("draft = %q after edit", got)
	}
}

func TestSetFinalSolution_RejectedOutsideStage(t *testing.T) {
	c := newController(tutor.NewScript())
	if err := c.SetFinalSolution("x"); err == nil {
		t.Fatal("expected error outside finalSolution stage")
	}
}

func TestTransition_RecallGated(t *testing.T) {
	gw := tutor.NewScript(
		"Not yet, summarise your solution first.",
		"<ACTIVE_RECALL_MODE> First question: what does the queue bound?",
	)
	c := newController(gw)

	res, err := c.Transition(context.Background(), StageRecall, "")
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if res.Advanced {
		t.Fatal("first attempt must be refused")
	}

	res, err = c.Transition(context.Background(), StageRecall, "the queue bounds memory")
	if err != nil {
		t.Fatalf("Transition retry: %v", err)
	}
	if !res.Advanced || c.Stage() != StageRecall {
		t.Fatalf("stage = %q after granted recall", c.Stage())
	}
}

func TestTransition_CompletedRejectKeepsStageAndRetries(t *testing.T) {
	sessions := &fakeSessions{completeErr: errors.New("backend 503")}
	gw := tutor.NewScript("<ACTIVE_RECALL_MODE> q1")
	c := NewController(gw, sessions, nil, 1, 42)

	if _, err := c.Transition(context.Background(), StageRecall, ""); err != nil {
		t.Fatalf("recall: %v", err)
	}

	if _, err := c.Transition(context.Background(), StageCompleted, ""); err == nil {
		t.Fatal("expected completion error to surface")
	}
	if c.Stage() != StageRecall {
		t.Errorf("stage = %q, must hold recall on failure", c.Stage())
	}
	if c.Reward() != nil {
		t.Error("no reward on failed completion")
	}

	sessions.mu.Lock()
	sessions.completeErr = nil
	sessions.mu.Unlock()

	res, err := c.Transition(context.Background(), StageCompleted, "")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.Stage != StageCompleted || res.Reward == nil || res.Reward.TotalExp != 120 {
		t.Fatalf("res = %+v", res)
	}
	if sessions.completeCalls != 2 {
		t.Errorf("completeCalls = %d, want 2", sessions.completeCalls)
	}
}

func TestTransition_CompletedSkipsGateway(t *testing.T) {
	gw := tutor.NewScript()
	c := newController(gw)

	if _, err := c.Transition(context.Background(), StageCompleted, ""); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if len(gw.Turns) != 0 {
		t.Errorf("gateway saw %d turns, want 0", len(gw.Turns))
	}
	if len(c.Transcript()) != 0 {
		t.Error("completion must not add transcript messages")
	}
}

func TestTransition_UnknownStage(t *testing.T) {
	c := newController(tutor.NewScript())
	if _, err := c.Transition(context.Background(), Stage("bogus"), ""); !errors.Is(err, ErrUnknownStage) {
		t.Fatalf("err = %v, want ErrUnknownStage", err)
	}
}

func TestDoubleSubmit_SecondCallBusy(t *testing.T) {
	gw := &blockingGateway{release: make(chan struct{})}
	c := newController(gw)

	done := make(chan error, 1)
	go func() {
		_, err := c.Say(context.Background(), "first")
		done <- err
	}()

	// Wait until the first turn is in flight.
	deadline := time.After(time.Second)
	for !c.Busy() {
		select {
		case <-deadline:
			t.Fatal("first turn never became busy")
		case <-time.After(time.Millisecond):
		}
	}

	if _, err := c.Say(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Fatalf("second Say = %v, want ErrBusy", err)
	}

	close(gw.release)
	if err := <-done; err != nil {
		t.Fatalf("first Say: %v", err)
	}
	if c.Busy() {
		t.Error("controller must not stay busy after the turn settles")
	}
}

func TestCancelledContextDiscardsSettledReply(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gw := cancelThenReply{cancel: cancel}
	c := newController(gw)

	_, err := c.Say(ctx, "hello")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if c.Stage() != StageDefault {
		t.Errorf("stage = %q, cancelled turn must not apply", c.Stage())
	}
}

// cancelThenReply cancels the context, then settles successfully anyway.
type cancelThenReply struct {
	cancel context.CancelFunc
}

func (g cancelThenReply) Send(_ context.Context, _ tutor.Turn) (*tutor.Reply, error) {
	g.cancel()
	return &tutor.Reply{Text: "<MATERIAL_TYPE=concept> late material", Signal: tutor.SignalMaterial}, nil
}

func TestGatewayErrorHoldsStage(t *testing.T) {
	gw := tutor.NewScript()
	gw.Err = errors.New("network down")
	c := newController(gw)

	if _, err := c.Transition(context.Background(), StageExplanation, "explain"); err == nil {
		t.Fatal("expected gateway error")
	}
	if c.Stage() != StageDefault {
		t.Errorf("stage = %q, want default", c.Stage())
	}
	if c.Busy() {
		t.Error("controller must release busy on error")
	}
}

func TestResume(t *testing.T) {
	c := newController(tutor.NewScript())
	if err := c.Resume(StageRealisation); err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if c.Stage() != StageRealisation {
		t.Errorf("stage = %q", c.Stage())
	}
	if err := c.Resume(Stage("bogus")); err == nil {
		t.Error("expected error for unknown stage")
	}
}

func TestArtifactsReturnedByCopy(t *testing.T) {
	gw := tutor.NewScript("<MATERIAL_TYPE=concept> material body")
	c := newController(gw)
	if _, err := c.Say(context.Background(), "go"); err != nil {
		t.Fatalf("Say: %v", err)
	}

	snap := c.Artifacts()
	snap.AIText = "mutated"
	if c.Artifacts().AIText == "mutated" {
		t.Error("mutating a snapshot must not leak into the controller")
	}
}
