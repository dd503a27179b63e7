package tui

import (
	"fmt"
	"strings"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/debug"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/session"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/pkg/utils"
	"github.com/charmbracelet/lipgloss"
)

const maxCodeLines = 20

func formatScore(score float64) string {
	return utils.FormatPercent(score)
}

// View implements tea.Model interface
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var body string
	switch {
	case m.Debug != nil:
		body = renderDebug(*m.Debug)
	default:
		body = m.renderMain()
	}

	if m.Modal != nil {
		return lipgloss.JoinVertical(lipgloss.Left, body, "", m.renderModal())
	}
	return body
}

func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Plagiarism Checker"))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	if m.State.Processing {
		b.WriteString(m.bar.ViewAs(m.State.Progress / 100))
		b.WriteString("\n")
		if m.State.Stage != "" {
			b.WriteString(InfoStyle.Render(m.State.Stage))
			b.WriteString("\n")
		}
		if len(m.State.CurrentComparison) == 2 {
			a, c := m.State.CurrentComparison[0], m.State.CurrentComparison[1]
			b.WriteString(InfoStyle.Render(fmt.Sprintf("Comparing %s (%s) with %s (%s)", a.User, a.File, c.User, c.File)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(m.Results) > 0 {
		b.WriteString(renderSummary(m.Summary))
		b.WriteString("\n\n")
		b.WriteString(m.renderResults())
		b.WriteString("\n")
	} else if m.State.Phase == session.PhaseCompleted {
		b.WriteString(InfoStyle.Render("No comparisons returned."))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(m.helpLine()))
	return b.String()
}

func (m Model) statusLine() string {
	st := m.State
	history := fmt.Sprintf("history: %d", m.History)

	switch st.Phase {
	case session.PhaseProcessing:
		return fmt.Sprintf("Analyzing session %s  %s", st.SessionID, InfoStyle.Render(history))
	case session.PhaseCompleted:
		return fmt.Sprintf("Completed session %s  %s", st.SessionID, InfoStyle.Render(history))
	case session.PhaseFailed:
		return ErrorStyle.Render("Failed: "+st.ErrorMessage) + "  " + InfoStyle.Render(history)
	}
	if len(m.files) > 0 {
		return fmt.Sprintf("Uploading %d file(s)...", len(m.files))
	}
	return "Idle"
}

func (m Model) helpLine() string {
	parts := []string{"↑/↓ select", "enter debug"}
	if m.canRestart() {
		parts = append(parts, "r rerun")
	}
	parts = append(parts, "q quit")
	return strings.Join(parts, " • ")
}

func renderSummary(s models.AnalysisSummary) string {
	return fmt.Sprintf("Submissions: %d  Files: %d  Comparisons: %d  Significant: %d",
		s.TotalSubmissions, s.TotalFiles, s.TotalComparisons, s.SignificantMatches)
}

func (m Model) renderResults() string {
	rows := make([]string, 0, len(m.Results))
	for i, r := range m.Results {
		label := fmt.Sprintf("%s (%s)  vs  %s (%s)",
			utils.Truncate(r.User1, 20), utils.Truncate(r.File1, 24),
			utils.Truncate(r.User2, 20), utils.Truncate(r.File2, 24))
		score := Score(r.EffectiveScore())
		if r.ExactMatch() {
			score += SeverityStyle(r.Severity()).Render(" EXACT")
		}

		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
			label = SelectedStyle.Render(label)
		}
		rows = append(rows, fmt.Sprintf("%s%s  %s", cursor, label, score))
	}
	return BoxStyle.Render(strings.Join(rows, "\n"))
}

func renderDebug(v debug.View) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Debug Comparison"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s (%s)  vs  %s (%s)\n", v.FileName1, v.User1, v.FileName2, v.User2)

	score := v.Similarity
	if v.ExactMatch {
		score = 100
	}
	fmt.Fprintf(&b, "Similarity Score: %s\n", SeverityStyle(v.Severity).Render(formatScore(score)))
	fmt.Fprintf(&b, "Total Lines: %d  Matching Lines: %d\n", v.TotalLines, v.MatchingLines)
	if v.VariableChanges {
		b.WriteString(SeverityStyle(v.Severity).Render("Variable names were changed"))
		b.WriteString("\n")
	}

	for _, seg := range v.MatchingSegments {
		fmt.Fprintf(&b, "\nLines %d-%d in %s match lines %d-%d in %s\n",
			seg.Start1, seg.Start1+seg.Length, v.FileName1,
			seg.Start2, seg.Start2+seg.Length, v.FileName2)
		b.WriteString(CodeStyle.Render(clip(seg.Code, maxCodeLines)))
		b.WriteString("\n")
	}

	if v.OriginalCode1 != "" || v.OriginalCode2 != "" {
		left := BoxStyle.Render(v.FileName1 + "\n\n" + clip(v.OriginalCode1, maxCodeLines))
		right := BoxStyle.Render(v.FileName2 + "\n\n" + clip(v.OriginalCode2, maxCodeLines))
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("esc back • q quit"))
	return b.String()
}

func (m Model) renderModal() string {
	text := ErrorStyle.Render("Error") + "\n\n" +
		utils.Truncate(m.Modal.Error(), 300) + "\n\n" +
		InfoStyle.Render("press enter to dismiss")
	return ModalStyle.Render(text)
}

func clip(code string, maxLines int) string {
	lines := strings.Split(code, "\n")
	if len(lines) <= maxLines {
		return code
	}
	return strings.Join(lines[:maxLines], "\n") + fmt.Sprintf("\n… %d more lines", len(lines)-maxLines)
}
