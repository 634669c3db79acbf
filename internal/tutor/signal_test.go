package tutor

import "testing"

func TestParseSignal(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Signal
	}{
		{"material with suffix", "Here you go <MATERIAL_TYPE=video> watch this", SignalMaterial},
		{"material mid-text", "intro <MATERIAL_TYPE=article>...", SignalMaterial},
		{"implementation", "Let's build it. <IMPLEMENTATION_START> First step:", SignalImplementationStart},
		{"recall", "<ACTIVE_RECALL_MODE> Question 1: what is a closure?", SignalRecallStart},
		{"plain reply", "What do you think a closure captures?", SignalNone},
		{"unknown tag", "see <RELATED_TOPIC=loops> for more", SignalNone},
		{"lowercase is not a tag", "<material_type=video>", SignalNone},
		{"bare material prefix without equals", "<MATERIAL_TYPE>", SignalNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSignal(tt.text); got != tt.want {
				t.Errorf("ParseSignal(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseSignal_FirstMatchWins(t *testing.T) {
	text := "<MATERIAL_TYPE=text> and also <ACTIVE_RECALL_MODE>"
	if got := ParseSignal(text); got != SignalMaterial {
		t.Errorf("ParseSignal = %v, want SignalMaterial", got)
	}
}

func TestParseSignalName(t *testing.T) {
	tests := []struct {
		name string
		want Signal
	}{
		{"none", SignalNone},
		{"material", SignalMaterial},
		{"implementation_start", SignalImplementationStart},
		{"recall_start", SignalRecallStart},
		{"garbage", SignalNone},
		{"", SignalNone},
	}
	for _, tt := range tests {
		if got := ParseSignalName(tt.name); got != tt.want {
			t.Errorf("ParseSignalName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSignalRoundTrip(t *testing.T) {
	for _, s := range []Signal{SignalNone, SignalMaterial, SignalImplementationStart, SignalRecallStart} {
		if got := ParseSignalName(s.String()); got != s {
			t.Errorf("ParseSignalName(%v.String()) = %v", s, got)
		}
	}
}
