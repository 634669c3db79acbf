package study

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/novax/sochratic/internal/flow"
	"github.com/novax/sochratic/internal/ui/theme"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (s *StudyScreen) View(width, height int) string {
	if s.errMsg != "" && !s.ready {
		return renderFatal(width, s.errMsg)
	}
	if !s.ready {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n\n  Opening your session...")
	}

	switch s.ctrl.Stage() {
	case flow.StageExplanation:
		return s.renderExplanation(width, height)
	case flow.StageFinalSolution:
		return s.renderSolutionDraft(width, height)
	case flow.StageCompleted:
		return s.renderCompleted(width, height)
	default:
		return s.renderChat(width, height)
	}
}

// renderChat shows the transcript tail plus the input line. Used by the
// default, realisation, and recall stages.
func (s *StudyScreen) renderChat(width, height int) string {
	var b strings.Builder

	b.WriteString(s.renderStageLine(width))
	b.WriteString("\n")

	if problem := s.ctrl.Artifacts().Problem; problem != "" && s.ctrl.Stage() == flow.StageRealisation {
		box := theme.Card.Width(min(width-4, 80)).Render(problem)
		b.WriteString(box)
		b.WriteString("\n")
	}

	// Transcript tail sized to the space left above the input line.
	used := lipgloss.Height(b.String())
	avail := height - used - 4
	if avail < 3 {
		avail = 3
	}
	b.WriteString(s.renderTranscript(width, avail))
	b.WriteString("\n")

	b.WriteString(s.renderStatusLine(width))
	b.WriteString("\n  ")
	b.WriteString(s.input.View())

	return b.String()
}

func (s *StudyScreen) renderStageLine(width int) string {
	stage := s.ctrl.Stage()
	labels := map[flow.Stage]string{
		flow.StageDefault:     "Conversation",
		flow.StageExplanation: "Explanation",
		flow.StageRealisation: "Implementation",
		flow.StageRecall:      "Active recall",
	}
	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + labels[stage])
	rule := lipgloss.NewStyle().
		Foreground(theme.Border).
		Render(strings.Repeat("─", max(width-4, 0)))
	return left + "\n" + rule
}

func (s *StudyScreen) renderTranscript(width, lines int) string {
	msgs := s.ctrl.Transcript()
	var rendered []string
	for _, m := range msgs {
		prefix := "  you  "
		style := theme.LearnerText
		if m.Author == flow.AuthorTutor {
			prefix = "  tutor"
			style = theme.TutorText
		}
		text := lipgloss.NewStyle().
			Width(min(width-12, 90)).
			Inherit(style).
			Render(m.Text)
		label := lipgloss.NewStyle().Foreground(theme.TextDim).Render(prefix + " ")
		rendered = append(rendered, label+text)
	}
	joined := strings.Join(rendered, "\n")

	// Keep only the last `lines` rows.
	rows := strings.Split(joined, "\n")
	if len(rows) > lines {
		rows = rows[len(rows)-lines:]
	}
	return strings.Join(rows, "\n")
}

func (s *StudyScreen) renderStatusLine(width int) string {
	if s.errMsg != "" {
		return "  " + theme.ErrorBanner.Render(s.errMsg)
	}
	if s.ctrl.Busy() {
		frame := spinnerFrames[s.frame%len(spinnerFrames)]
		return "  " + lipgloss.NewStyle().
			Foreground(theme.Accent).
			Render(frame+" thinking...")
	}
	return ""
}

func (s *StudyScreen) renderExplanation(width, height int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  Study material"))
	b.WriteString("\n\n")

	material := s.material
	if material == "" {
		material = lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Render("  Material from a previous run isn't kept. Ask a question to pick the thread back up.")
	}
	b.WriteString(material)
	b.WriteString("\n")

	b.WriteString(s.renderStatusLine(width))
	b.WriteString("\n  ")
	b.WriteString(s.input.View())
	return b.String()
}

func (s *StudyScreen) renderSolutionDraft(width, height int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  Your solution"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render("  Edit the draft until it is yours, then submit it."))
	b.WriteString("\n\n")
	b.WriteString(s.editor.View())
	b.WriteString("\n")
	b.WriteString(s.renderStatusLine(width))
	return b.String()
}

func (s *StudyScreen) renderCompleted(width, height int) string {
	reward := s.ctrl.Reward()

	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Success).
		Bold(true).
		Render("Topic completed!"))
	b.WriteString("\n\n")

	if reward != nil {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Accent).
			Bold(true).
			Render(fmt.Sprintf("+%d EXP   Level %d", reward.TotalExp, reward.Level)))
		b.WriteString("\n\n")

		for _, p := range reward.ExpPoints {
			line := fmt.Sprintf("%-20s +%d", p.Element, p.Value)
			b.WriteString(lipgloss.NewStyle().
				Width(width).
				Align(lipgloss.Center).
				Foreground(theme.Text).
				Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.TextDim).
		Render("Press Enter to go back."))
	return b.String()
}

func renderFatal(width int, errMsg string) string {
	return lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Error).
		Render(fmt.Sprintf("\n\n\n  Could not start the session: %s\n\n  Press Esc to go back.", errMsg))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
