package debug

import (
	"fmt"
	"strings"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/models"
	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/severity"
)

// View - детальное представление одного сравнения.
type View struct {
	FileName1        string                   `json:"file_name1"`
	FileName2        string                   `json:"file_name2"`
	User1            string                   `json:"user1"`
	User2            string                   `json:"user2"`
	Similarity       float64                  `json:"similarity"`
	Severity         severity.Level           `json:"severity"`
	ExactMatch       bool                     `json:"exact_match"`
	TotalLines       int                      `json:"total_lines"`
	MatchingLines    int                      `json:"matching_lines"`
	VariableChanges  bool                     `json:"variable_changes"`
	OriginalCode1    string                   `json:"original_code1"`
	OriginalCode2    string                   `json:"original_code2"`
	NormalizedCode1  string                   `json:"normalized_code1"`
	NormalizedCode2  string                   `json:"normalized_code2"`
	MatchingSegments []models.MatchingSegment `json:"matching_segments,omitempty"`
	MatchDetails     []models.MatchDetail     `json:"match_details,omitempty"`
}

// Source отдает результат по индексу; реализуется агрегатором.
type Source interface {
	Result(index int) (models.PlagiarismResult, error)
}

// Reconstruct - чистая функция, пересчитывается при каждом выборе.
func Reconstruct(r models.PlagiarismResult) View {
	v := View{
		FileName1:       r.File1,
		FileName2:       r.File2,
		User1:           r.User1,
		User2:           r.User2,
		Similarity:      r.Score(),
		Severity:        r.Severity(),
		ExactMatch:      r.ExactMatch(),
		TotalLines:      LineCount(models.StringValue(r.OriginalCode1)),
		OriginalCode1:   models.StringValue(r.OriginalCode1),
		OriginalCode2:   models.StringValue(r.OriginalCode2),
		NormalizedCode1: models.StringValue(r.NormalizedCode1),
		NormalizedCode2: models.StringValue(r.NormalizedCode2),
		MatchDetails:    r.MatchDetails,
	}

	for _, seg := range r.SimilarSegments {
		v.MatchingLines += LineCount(seg)
	}

	for _, d := range r.MatchDetails {
		if d.HasVariableChanges {
			v.VariableChanges = true
			break
		}
	}

	if r.ComparisonDetails != nil {
		v.MatchingSegments = r.ComparisonDetails.MatchingSegments
	}

	return v
}

func SelectFrom(src Source, index int) (View, error) {
	r, err := src.Result(index)
	if err != nil {
		return View{}, err
	}
	return Reconstruct(r), nil
}

// LineCount: пустая строка - 0 строк, иначе число частей после разбиения по \n.
func LineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

// Render - текстовое представление для терминала и логов.
func (v View) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s (%s) <-> %s (%s)\n", v.FileName1, v.User1, v.FileName2, v.User2)
	fmt.Fprintf(&b, "Similarity Score: %.2f%% [%s]", v.Similarity, v.Severity)
	if v.ExactMatch {
		b.WriteString(" EXACT MATCH")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Matching Lines: %d / %d\n", v.MatchingLines, v.TotalLines)
	fmt.Fprintf(&b, "Variable Changes: %t\n", v.VariableChanges)

	if len(v.MatchingSegments) > 0 {
		fmt.Fprintf(&b, "\nMatching Segments (%d)\n", len(v.MatchingSegments))
		for _, seg := range v.MatchingSegments {
			fmt.Fprintf(&b, "Lines %d-%d in %s match lines %d-%d in %s\n",
				seg.Start1, seg.Start1+seg.Length, v.FileName1,
				seg.Start2, seg.Start2+seg.Length, v.FileName2)
			b.WriteString(seg.Code)
			b.WriteString("\n")
		}
	}

	for i, d := range v.MatchDetails {
		fmt.Fprintf(&b, "\n#%d %s:%d <-> %s:%d (%d lines)", i+1,
			v.FileName1, d.LineNumber1, v.FileName2, d.LineNumber2, d.LineCount)
		if d.HasVariableChanges {
			b.WriteString(" renamed variables")
		}
		b.WriteString("\n")
	}

	return b.String()
}
