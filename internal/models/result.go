package models

import (
	"errors"
	"fmt"

	"github.com/RubachokBoss/plagiarism-checker/checker-client/internal/severity"
)

type PlagiarismResult struct {
	File1           string   `json:"file1"`
	File2           string   `json:"file2"`
	User1           string   `json:"user1"`
	User2           string   `json:"user2"`
	Similarity      float64  `json:"similarity"`
	SimilarSegments []string `json:"similar_segments"`

	// Необязательные поля: nil означает, что сервис их не прислал
	IsExactMatch      *bool              `json:"is_exact_match,omitempty"`
	MatchDetails      []MatchDetail      `json:"match_details,omitempty"`
	OriginalCode1     *string            `json:"originalCode1,omitempty"`
	OriginalCode2     *string            `json:"originalCode2,omitempty"`
	NormalizedCode1   *string            `json:"normalizedCode1,omitempty"`
	NormalizedCode2   *string            `json:"normalizedCode2,omitempty"`
	ComparisonDetails *ComparisonDetails `json:"comparisonDetails,omitempty"`
}

type MatchDetail struct {
	Segment            string `json:"segment"`
	Segment2           string `json:"segment2"`
	NormalizedSegment  string `json:"normalized_segment"`
	LineNumber1        int    `json:"line_number1"`
	LineNumber2        int    `json:"line_number2"`
	LineCount          int    `json:"line_count"`
	HasVariableChanges bool   `json:"has_variable_changes"`
}

type ComparisonDetails struct {
	LineMatches      int               `json:"lineMatches"`
	TotalLines       int               `json:"totalLines"`
	MatchingSegments []MatchingSegment `json:"matchingSegments"`
}

type MatchingSegment struct {
	Start1 int    `json:"start1"`
	Start2 int    `json:"start2"`
	Length int    `json:"length"`
	Code   string `json:"code"`
}

type AnalysisSummary struct {
	TotalSubmissions   int `json:"total_submissions"`
	TotalFiles         int `json:"total_files"`
	TotalComparisons   int `json:"total_comparisons"`
	SignificantMatches int `json:"significant_matches"`
}

// ResultPayload - содержимое поля results в кадре complete.
type ResultPayload struct {
	Results []PlagiarismResult `json:"results"`
	Summary AnalysisSummary    `json:"summary"`
}

var ErrInvalidSummary = errors.New("invalid analysis summary")

// Score - similarity в шкале 0..100.
func (r PlagiarismResult) Score() float64 {
	return r.Similarity * 100
}

func (r PlagiarismResult) ExactMatch() bool {
	return r.IsExactMatch != nil && *r.IsExactMatch
}

// EffectiveScore учитывает флаг точного совпадения, который важнее числовой оценки.
func (r PlagiarismResult) EffectiveScore() float64 {
	if r.ExactMatch() {
		return 100
	}
	return r.Score()
}

func (r PlagiarismResult) Severity() severity.Level {
	return severity.Classify(r.EffectiveScore())
}

func (s AnalysisSummary) Validate() error {
	switch {
	case s.TotalSubmissions < 0, s.TotalFiles < 0, s.TotalComparisons < 0, s.SignificantMatches < 0:
		return fmt.Errorf("%w: negative counter", ErrInvalidSummary)
	case s.SignificantMatches > s.TotalComparisons:
		return fmt.Errorf("%w: significant_matches %d exceeds total_comparisons %d",
			ErrInvalidSummary, s.SignificantMatches, s.TotalComparisons)
	}
	return nil
}

func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
