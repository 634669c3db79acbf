package tutor

import "strings"

// Signal is the control information embedded in a tutor reply. It decides
// whether the stage flow advances; SignalNone means "ordinary turn".
type Signal int

const (
	// SignalNone means no control information; the flow stays where it is.
	SignalNone Signal = iota

	// SignalMaterial marks the reply as explanatory material; enter the
	// explanation stage.
	SignalMaterial

	// SignalImplementationStart means implementation mode has begun;
	// enter the realisation stage.
	SignalImplementationStart

	// SignalRecallStart means active recall mode has begun; enter the
	// recall stage.
	SignalRecallStart
)

// The backend embeds these markers in free reply text. The material marker
// carries a type suffix (e.g. <MATERIAL_TYPE=video>), so it matches as a
// prefix; the other two are complete tags.
const (
	tagMaterial            = "<MATERIAL_TYPE="
	tagImplementationStart = "<IMPLEMENTATION_START>"
	tagRecallStart         = "<ACTIVE_RECALL_MODE>"
)

// ParseSignal extracts the control signal from raw reply text. Matching is
// case-sensitive and first-match-wins in declaration order; unknown tags
// are plain text.
func ParseSignal(text string) Signal {
	switch {
	case strings.Contains(text, tagMaterial):
		return SignalMaterial
	case strings.Contains(text, tagImplementationStart):
		return SignalImplementationStart
	case strings.Contains(text, tagRecallStart):
		return SignalRecallStart
	default:
		return SignalNone
	}
}

// ParseSignalName maps the offline envelope's signal field to a Signal.
// Unknown names degrade to SignalNone rather than failing the turn.
func ParseSignalName(name string) Signal {
	switch name {
	case "material":
		return SignalMaterial
	case "implementation_start":
		return SignalImplementationStart
	case "recall_start":
		return SignalRecallStart
	default:
		return SignalNone
	}
}

func (s Signal) String() string {
	switch s {
	case SignalMaterial:
		return "material"
	case SignalImplementationStart:
		return "implementation_start"
	case SignalRecallStart:
		return "recall_start"
	default:
		return "none"
	}
}
