package models

import "github.com/RubachokBoss/plagiarism-checker/checker-client/internal/severity"

// Отчет по ответу на форуме. Все оценки уже в шкале 0..100.
type Submission struct {
	TraineeNumber          string            `json:"traineeNumber"`
	ForumQuestion          string            `json:"forumQuestion"`
	ForumAnswer            string            `json:"forumAnswer"`
	SimilarityResults      SimilarityResults `json:"similarityResults"`
	OverallPlagiarismScore float64           `json:"overallPlagiarismScore"`
	MatchedSources         []MatchedSource   `json:"matchedSources"`
}

type SimilarityResults struct {
	Submission float64 `json:"submission"`
	Browser    float64 `json:"browser"`
	AI         float64 `json:"ai"`
}

type MatchedSourceType string

const (
	MatchedSourceSubmission MatchedSourceType = "submission"
	MatchedSourceBrowser    MatchedSourceType = "browser"
	MatchedSourceAI         MatchedSourceType = "ai"
)

type MatchedSource struct {
	Type           MatchedSourceType `json:"type"`
	Source         string            `json:"source"`
	Similarity     float64           `json:"similarity"`
	SourceAnswer   *string           `json:"sourceAnswer,omitempty"`
	PossiblePrompt *string           `json:"possiblePrompt,omitempty"`
}

func (s Submission) OverallSeverity() severity.Level {
	return severity.Classify(s.OverallPlagiarismScore)
}

func (r SimilarityResults) Severities() (submission, browser, ai severity.Level) {
	return severity.Classify(r.Submission), severity.Classify(r.Browser), severity.Classify(r.AI)
}

func (m MatchedSource) Severity() severity.Level {
	return severity.Classify(m.Similarity)
}
