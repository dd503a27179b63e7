package tui

import (
	"fmt"
	"strings"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/pkg/utils"
)

const maxAnswerRunes = 400

var sourceTypeLabels = map[models.MatchedSourceType]string{
	models.MatchedSourceSubmission: "Submission",
	models.MatchedSourceBrowser:    "Web",
	models.MatchedSourceAI:         "AI",
}

// RenderSubmissions рисует отчеты по ответам форума. Цвет каждой оценки
// определяется тем же классификатором, что и для сравнений кода.
func RenderSubmissions(subs []models.Submission) string {
	if len(subs) == 0 {
		return InfoStyle.Render("No forum submissions.")
	}

	blocks := make([]string, 0, len(subs))
	for _, s := range subs {
		blocks = append(blocks, RenderSubmission(s))
	}
	return strings.Join(blocks, "\n\n")
}

func RenderSubmission(s models.Submission) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s  Overall: %s\n",
		TitleStyle.UnsetMarginBottom().Render("Trainee "+s.TraineeNumber),
		Score(s.OverallPlagiarismScore))

	b.WriteString(InfoStyle.Render("Question: "))
	b.WriteString(s.ForumQuestion)
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("Answer: "))
	b.WriteString(utils.Truncate(s.ForumAnswer, maxAnswerRunes))
	b.WriteString("\n\n")

	r := s.SimilarityResults
	fmt.Fprintf(&b, "Submissions %s   Web %s   AI %s\n",
		Score(r.Submission), Score(r.Browser), Score(r.AI))

	if len(s.MatchedSources) > 0 {
		b.WriteString("\nMatched sources\n")
		for _, src := range s.MatchedSources {
			label, ok := sourceTypeLabels[src.Type]
			if !ok {
				label = string(src.Type)
			}
			fmt.Fprintf(&b, "  %-10s %s  %s\n", label, Score(src.Similarity), src.Source)

			if src.SourceAnswer != nil && *src.SourceAnswer != "" {
				b.WriteString(CodeStyle.Render(InfoStyle.Render(utils.Truncate(*src.SourceAnswer, maxAnswerRunes))))
				b.WriteString("\n")
			}
			if src.PossiblePrompt != nil && *src.PossiblePrompt != "" {
				b.WriteString(CodeStyle.Render(InfoStyle.Render("Possible prompt: " + *src.PossiblePrompt)))
				b.WriteString("\n")
			}
		}
	}

	return BoxStyle.Render(strings.TrimRight(b.String(), "\n"))
}
