// Package flow holds the stage state machine that sequences the Socratic
// learning flow for one topic.
package flow

import "fmt"

// Stage is one discrete step of the learning flow.
type Stage string

const (
	// StageDefault is the guided conversation the flow starts in.
	StageDefault Stage = "default"

	// StageExplanation shows explanatory material from the tutor.
	StageExplanation Stage = "explanation"

	// StageFinalSolution is where the solution draft takes shape.
	StageFinalSolution Stage = "finalSolution"

	// StageRealisation is hands-on implementation of the draft.
	StageRealisation Stage = "realisation"

	// StageRecall is active recall questioning.
	StageRecall Stage = "recall"

	// StageCompleted is terminal; the session has been completed for EXP.
	StageCompleted Stage = "completed"
)

var knownStages = map[Stage]bool{
	StageDefault:       true,
	StageExplanation:   true,
	StageFinalSolution: true,
	StageRealisation:   true,
	StageRecall:        true,
	StageCompleted:     true,
}

// Valid reports whether s is a defined stage.
func (s Stage) Valid() bool {
	return knownStages[s]
}

// ParseStage converts a stored stage name back to a Stage. Used by the
// resumption path; unknown names fail rather than guessing.
func ParseStage(name string) (Stage, error) {
	s := Stage(name)
	if !s.Valid() {
		return "", fmt.Errorf("unknown stage: %q", name)
	}
	return s, nil
}
